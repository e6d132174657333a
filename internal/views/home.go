// Package views wires the API bindings, the engagement store, the
// relationship resolver, and the search controller into the three screens
// the client renders: home feed, profile, and friends.
package views

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/chaladshare/client-go/internal/engagement"
	"github.com/chaladshare/client-go/internal/models"
	"github.com/chaladshare/client-go/internal/posts"
	"github.com/chaladshare/client-go/internal/search"
	"github.com/chaladshare/client-go/pkg/logging"
)

// Engagement store collection names owned by the views.
const (
	CollectionPopular     = "home:popular"
	CollectionRecommended = "home:recommended"
	CollectionAll         = "home:all"
	CollectionSearch      = "home:search"
	CollectionProfile     = "profile:posts"
	CollectionSaved       = "profile:saved"
)

// Search stream ids.
const (
	StreamPosts      = "posts"
	StreamFriends    = "friends"
	StreamAddFriends = "addfriends"
)

const homeFeedLimit = 3

// HomeView drives the home screen: the three feed rails plus the post
// search stream. All four collections are registered with the engagement
// store, so a like on a search result updates the same post in the
// popular rail.
type HomeView struct {
	api     posts.Backend
	service *posts.Service
	store   *engagement.Store
	queries *search.Controller
	logger  *zap.Logger

	mu          sync.Mutex
	searchTotal int
	searchErr   error
}

// NewHomeView builds the home screen and registers its post-search stream
// with the controller.
func NewHomeView(api posts.Backend, service *posts.Service, queries *search.Controller, pageSize int) *HomeView {
	v := &HomeView{
		api:     api,
		service: service,
		store:   service.Store(),
		queries: queries,
		logger:  logging.WithComponent("home_view"),
	}

	queries.RegisterStream(StreamPosts, pageSize, v.fetchPosts, v.applySearch)
	return v
}

func (v *HomeView) fetchPosts(ctx context.Context, text string, page, size int) (any, int, error) {
	return v.api.Search(ctx, posts.NormalizeQuery(text), page, size)
}

// applySearch runs under the controller lock; it only touches the store
// and the view's own state.
func (v *HomeView) applySearch(up search.Update) {
	items, _ := up.Items.([]models.Post)
	v.store.Register(CollectionSearch, items)

	v.mu.Lock()
	v.searchTotal = up.Total
	v.searchErr = up.Err
	v.mu.Unlock()
}

// Load fetches the three home rails and registers them with the store.
// Popular is ranked by like count descending regardless of server order.
func (v *HomeView) Load(ctx context.Context) error {
	popular, err := v.api.Popular(ctx, homeFeedLimit)
	if err != nil {
		return fmt.Errorf("loading popular posts: %w", err)
	}
	sort.SliceStable(popular, func(i, j int) bool {
		return popular[i].LikeCount > popular[j].LikeCount
	})

	recommended, err := v.api.Recommended(ctx, homeFeedLimit)
	if err != nil {
		return fmt.Errorf("loading recommended posts: %w", err)
	}

	all, err := v.api.All(ctx)
	if err != nil {
		return fmt.Errorf("loading posts: %w", err)
	}

	v.store.Register(CollectionPopular, popular)
	v.store.Register(CollectionRecommended, recommended)
	v.store.Register(CollectionAll, all)

	v.logger.Debug("Home feed loaded",
		zap.Int("popular", len(popular)),
		zap.Int("recommended", len(recommended)),
		zap.Int("all", len(all)))
	return nil
}

// Popular returns the popular rail in ranked order.
func (v *HomeView) Popular() []models.Post { return v.store.Items(CollectionPopular) }

// Recommended returns the recommended rail.
func (v *HomeView) Recommended() []models.Post { return v.store.Items(CollectionRecommended) }

// All returns the full feed.
func (v *HomeView) All() []models.Post { return v.store.Items(CollectionAll) }

// SetSearch feeds a keystroke into the debounced post-search stream.
func (v *HomeView) SetSearch(text string) {
	v.queries.SetText(StreamPosts, text)
}

// SetSearchPage jumps the search stream to a page, bypassing the debounce.
func (v *HomeView) SetSearchPage(page int) {
	v.queries.SetPage(StreamPosts, page)
}

// SearchResults returns the current search page, its server total, and any
// fetch error.
func (v *HomeView) SearchResults() ([]models.Post, int, error) {
	v.mu.Lock()
	total, err := v.searchTotal, v.searchErr
	v.mu.Unlock()
	return v.store.Items(CollectionSearch), total, err
}

// ToggleLike flips a like and fans the server's answer out to every
// registered collection.
func (v *HomeView) ToggleLike(ctx context.Context, postID int64) (models.EngagementSnapshot, error) {
	return v.service.ToggleLike(ctx, postID)
}

// ToggleSave flips a save the same way.
func (v *HomeView) ToggleSave(ctx context.Context, postID int64) (models.EngagementSnapshot, error) {
	return v.service.ToggleSave(ctx, postID)
}
