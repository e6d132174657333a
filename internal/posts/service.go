package posts

import (
	"context"

	"go.uber.org/zap"

	"github.com/chaladshare/client-go/internal/engagement"
	"github.com/chaladshare/client-go/internal/models"
	"github.com/chaladshare/client-go/pkg/logging"
)

// Backend is the slice of the posts API the service and views depend on
type Backend interface {
	Popular(ctx context.Context, limit int) ([]models.Post, error)
	Recommended(ctx context.Context, limit int) ([]models.Post, error)
	All(ctx context.Context) ([]models.Post, error)
	Mine(ctx context.Context) ([]models.Post, error)
	ByUser(ctx context.Context, userID int64) ([]models.Post, error)
	Saved(ctx context.Context) ([]models.Post, error)
	Search(ctx context.Context, search string, page, size int) ([]models.Post, int, error)
	ToggleLike(ctx context.Context, postID int64) (LikeResult, error)
	ToggleSave(ctx context.Context, postID int64) (SaveResult, error)
}

// Service runs like/save toggles against the backend and broadcasts the
// authoritative result through the engagement store, so every mounted
// collection converges before the next render.
type Service struct {
	api      Backend
	store    *engagement.Store
	rollback bool
	logger   *zap.Logger
}

// NewService creates a toggle service. rollback controls whether a failed
// call reverts the optimistic flag; off preserves the original client
// behavior of keeping the attempted state.
func NewService(api Backend, store *engagement.Store, rollback bool) *Service {
	return &Service{
		api:      api,
		store:    store,
		rollback: rollback,
		logger:   logging.GetLogger().With(zap.String("component", "posts-service")),
	}
}

// Store returns the shared engagement store
func (s *Service) Store() *engagement.Store {
	return s.store
}

// ToggleLike flips the like flag optimistically, then overwrites it with
// the server-confirmed flag and counter. Counters are never touched
// optimistically; only the server may change them.
func (s *Service) ToggleLike(ctx context.Context, postID int64) (models.EngagementSnapshot, error) {
	prev, _ := s.store.Snapshot(postID)
	intended := !prev.IsLiked
	s.store.ApplyPatch(postID, engagement.Patch{IsLiked: &intended})

	res, err := s.api.ToggleLike(ctx, postID)
	if err != nil {
		if s.rollback {
			s.store.ApplyPatch(postID, engagement.Patch{IsLiked: &prev.IsLiked})
		} else {
			s.logger.Warn("Like toggle failed, keeping attempted state",
				zap.Int64("post_id", postID), zap.Error(err))
		}
		snap, _ := s.store.Snapshot(postID)
		return snap, err
	}

	s.store.ApplyPatch(postID, engagement.Patch{
		IsLiked:   &res.IsLiked,
		LikeCount: &res.LikeCount,
	})

	snap, _ := s.store.Snapshot(postID)
	return snap, nil
}

// ToggleSave flips the save flag, mirroring ToggleLike
func (s *Service) ToggleSave(ctx context.Context, postID int64) (models.EngagementSnapshot, error) {
	prev, _ := s.store.Snapshot(postID)
	intended := !prev.IsSaved
	s.store.ApplyPatch(postID, engagement.Patch{IsSaved: &intended})

	res, err := s.api.ToggleSave(ctx, postID)
	if err != nil {
		if s.rollback {
			s.store.ApplyPatch(postID, engagement.Patch{IsSaved: &prev.IsSaved})
		} else {
			s.logger.Warn("Save toggle failed, keeping attempted state",
				zap.Int64("post_id", postID), zap.Error(err))
		}
		snap, _ := s.store.Snapshot(postID)
		return snap, err
	}

	s.store.ApplyPatch(postID, engagement.Patch{
		IsSaved:   &res.IsSaved,
		SaveCount: &res.SaveCount,
	})

	snap, _ := s.store.Snapshot(postID)
	return snap, nil
}
