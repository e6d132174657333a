package views

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/chaladshare/client-go/internal/models"
	"github.com/chaladshare/client-go/internal/posts"
	"github.com/chaladshare/client-go/internal/social"
	"github.com/chaladshare/client-go/pkg/logging"
)

// ProfileBackend is the social surface the profile screen needs: the
// resolver's directory plus the stats endpoint.
type ProfileBackend interface {
	social.Directory
	Stats(ctx context.Context, userID int64) (*models.SocialStats, error)
}

// ProfileView drives one mounted profile screen. It owns the relationship
// resolver for the (viewer, owner) pair and registers the owner's posts —
// and the saved tab when viewing yourself — with the engagement store.
type ProfileView struct {
	api      ProfileBackend
	postsAPI posts.Backend
	service  *posts.Service
	resolver *social.Resolver
	selfID   int64
	userID   int64
	logger   *zap.Logger

	mu        sync.Mutex
	profile   *models.Profile
	followers int
	following int
}

// NewProfileView builds a profile screen for userID as seen by selfID.
func NewProfileView(api ProfileBackend, postsAPI posts.Backend, service *posts.Service, selfID, userID int64, probeSize int) *ProfileView {
	return &ProfileView{
		api:      api,
		postsAPI: postsAPI,
		service:  service,
		resolver: social.NewResolver(api, selfID, userID, probeSize),
		selfID:   selfID,
		userID:   userID,
		logger:   logging.WithComponent("profile_view"),
	}
}

// IsOwn reports whether the screen shows the viewer's own profile.
func (v *ProfileView) IsOwn() bool { return v.selfID == v.userID }

// Load fetches the profile, its social stats, and the owner's posts. Own
// profiles also load the saved tab; other profiles resolve the
// relationship instead.
func (v *ProfileView) Load(ctx context.Context) error {
	profile, err := v.api.GetProfile(ctx, v.userID)
	if err != nil {
		return fmt.Errorf("loading profile %d: %w", v.userID, err)
	}

	stats, err := v.api.Stats(ctx, v.userID)
	if err != nil {
		return fmt.Errorf("loading social stats: %w", err)
	}

	owned, err := v.postsAPI.ByUser(ctx, v.userID)
	if err != nil {
		return fmt.Errorf("loading profile posts: %w", err)
	}
	v.service.Store().Register(CollectionProfile, owned)

	if v.IsOwn() {
		saved, err := v.postsAPI.Saved(ctx)
		if err != nil {
			return fmt.Errorf("loading saved posts: %w", err)
		}
		v.service.Store().Register(CollectionSaved, saved)
	} else {
		if _, err := v.resolver.Resolve(ctx); err != nil {
			// The profile still renders; the relation buttons fall back
			// to the last derived state.
			v.logger.Warn("Relationship resolve failed", zap.Error(err))
		}
	}

	v.mu.Lock()
	v.profile = profile
	v.followers = stats.Followers
	v.following = stats.Following
	v.mu.Unlock()
	return nil
}

// Profile returns the loaded profile, nil before Load.
func (v *ProfileView) Profile() *models.Profile {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.profile
}

// Stats returns the follower and following counts, including any local
// adjustments from the viewer's own follow toggles.
func (v *ProfileView) Stats() models.SocialStats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return models.SocialStats{Followers: v.followers, Following: v.following}
}

// Posts returns the owner's posts with live engagement state.
func (v *ProfileView) Posts() []models.Post {
	return v.service.Store().Items(CollectionProfile)
}

// SavedPosts returns the saved tab; empty unless viewing your own profile.
func (v *ProfileView) SavedPosts() []models.Post {
	return v.service.Store().Items(CollectionSaved)
}

// Relationship returns the resolver's current view of the pair.
func (v *ProfileView) Relationship() models.RelationshipView {
	return v.resolver.View()
}

// ToggleFollow flips the follow edge and adjusts the follower count
// locally; the count never goes negative.
func (v *ProfileView) ToggleFollow(ctx context.Context) (bool, error) {
	following, err := v.resolver.ToggleFollow(ctx)
	if err != nil {
		return following, err
	}

	v.mu.Lock()
	if following {
		v.followers++
	} else if v.followers > 0 {
		v.followers--
	}
	v.mu.Unlock()
	return following, nil
}

// AddFriend sends a friend request to the profile owner.
func (v *ProfileView) AddFriend(ctx context.Context) error {
	return v.resolver.SendRequest(ctx)
}

// CancelRequest withdraws the pending outgoing request.
func (v *ProfileView) CancelRequest(ctx context.Context) error {
	return v.resolver.CancelRequest(ctx)
}

// Unfriend removes the friendship.
func (v *ProfileView) Unfriend(ctx context.Context) error {
	return v.resolver.Unfriend(ctx)
}

// ToggleLike flips a like on one of the profile's posts.
func (v *ProfileView) ToggleLike(ctx context.Context, postID int64) (models.EngagementSnapshot, error) {
	return v.service.ToggleLike(ctx, postID)
}

// ToggleSave flips a save on one of the profile's posts.
func (v *ProfileView) ToggleSave(ctx context.Context, postID int64) (models.EngagementSnapshot, error) {
	return v.service.ToggleSave(ctx, postID)
}
