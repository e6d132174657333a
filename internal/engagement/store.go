package engagement

import (
	"sync"

	"go.uber.org/zap"

	"github.com/chaladshare/client-go/internal/models"
	"github.com/chaladshare/client-go/pkg/logging"
)

// Patch carries server-confirmed engagement fields. Nil fields are left
// untouched; the client never computes counts locally.
type Patch struct {
	IsLiked   *bool
	LikeCount *int
	IsSaved   *bool
	SaveCount *int
}

// Subscriber is notified after a patch has been applied everywhere
type Subscriber func(postID int64, snap models.EngagementSnapshot)

// Store holds the canonical engagement snapshot per post and every mounted
// view collection that may display it. A single patch rewrites the
// matching entry of each collection in place, so all views converge before
// the next render. It is shared by reference across view adapters.
type Store struct {
	mu          sync.Mutex
	collections map[string][]models.Post
	snapshots   map[int64]models.EngagementSnapshot
	subscribers []Subscriber
	logger      *zap.Logger
}

// NewStore creates an empty broadcast store
func NewStore() *Store {
	return &Store{
		collections: make(map[string][]models.Post),
		snapshots:   make(map[int64]models.EngagementSnapshot),
		logger:      logging.GetLogger().With(zap.String("component", "engagement-store")),
	}
}

// Register mounts a view collection under a name, replacing any previous
// collection with that name. The store records each post's snapshot as the
// latest server-confirmed state.
func (s *Store) Register(name string, items []models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mounted := make([]models.Post, len(items))
	copy(mounted, items)

	// A collection fetched later may carry fresher flags than the cached
	// snapshot; the snapshot map always reflects the newest fetch.
	for _, p := range mounted {
		s.snapshots[p.PostID] = p.Engagement()
	}

	s.collections[name] = mounted
}

// Deregister unmounts a view collection
func (s *Store) Deregister(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
}

// Items returns a copy of a mounted collection, preserving order
func (s *Store) Items(name string) []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, ok := s.collections[name]
	if !ok {
		return nil
	}
	out := make([]models.Post, len(items))
	copy(out, items)
	return out
}

// Snapshot returns the canonical engagement state for a post
func (s *Store) Snapshot(postID int64) (models.EngagementSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[postID]
	return snap, ok
}

// Subscribe registers a callback invoked after every applied patch
func (s *Store) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// ApplyPatch applies server-confirmed fields to the canonical snapshot and
// to every mounted collection containing the post. Non-matching entries
// and collection order are untouched.
func (s *Store) ApplyPatch(postID int64, patch Patch) {
	s.mu.Lock()

	snap := s.snapshots[postID]
	snap.PostID = postID
	applyTo(&snap, patch)
	s.snapshots[postID] = snap

	touched := 0
	for name, items := range s.collections {
		for i := range items {
			if items[i].PostID != postID {
				continue
			}
			items[i].IsLiked = snap.IsLiked
			items[i].LikeCount = snap.LikeCount
			items[i].IsSaved = snap.IsSaved
			items[i].SaveCount = snap.SaveCount
			touched++
		}
		s.collections[name] = items
	}

	subs := make([]Subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	s.logger.Debug("Engagement patch applied",
		zap.Int64("post_id", postID),
		zap.Int("entries", touched),
	)

	for _, fn := range subs {
		fn(postID, snap)
	}
}

func applyTo(snap *models.EngagementSnapshot, patch Patch) {
	if patch.IsLiked != nil {
		snap.IsLiked = *patch.IsLiked
	}
	if patch.LikeCount != nil {
		snap.LikeCount = maxInt(0, *patch.LikeCount)
	}
	if patch.IsSaved != nil {
		snap.IsSaved = *patch.IsSaved
	}
	if patch.SaveCount != nil {
		snap.SaveCount = maxInt(0, *patch.SaveCount)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
