package posts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/chaladshare/client-go/internal/models"
	"github.com/chaladshare/client-go/internal/rest"
	"github.com/chaladshare/client-go/pkg/logging"
	"github.com/chaladshare/client-go/pkg/telemetry"
)

// LikeResult is the authoritative outcome of a like toggle
type LikeResult struct {
	IsLiked   bool `json:"is_liked"`
	LikeCount int  `json:"like_count"`
}

// SaveResult is the authoritative outcome of a save toggle
type SaveResult struct {
	IsSaved   bool `json:"is_saved"`
	SaveCount int  `json:"save_count"`
}

// API binds the post endpoints
type API struct {
	rest   *rest.Client
	logger *zap.Logger
}

// NewAPI creates a new posts API binding
func NewAPI(client *rest.Client) *API {
	return &API{
		rest:   client,
		logger: logging.GetLogger().With(zap.String("component", "posts-api")),
	}
}

// NormalizeQuery trims the search text and strips a leading hash so tag
// searches behave like plain text searches.
func NormalizeQuery(s string) string {
	return strings.TrimLeft(strings.TrimSpace(s), "#")
}

// collectionEnvelope tolerates both {"data": [...]} and a bare array
type collectionEnvelope struct {
	Data []models.Post
}

func (e *collectionEnvelope) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Data []models.Post `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Data != nil {
		e.Data = wrapped.Data
		return nil
	}
	return json.Unmarshal(data, &e.Data)
}

// Popular fetches the top-liked posts
func (a *API) Popular(ctx context.Context, limit int) ([]models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.popular")
	defer span.End()

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var out collectionEnvelope
	if err := a.rest.Get(ctx, "/posts/popular", q, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch popular posts: %w", err)
	}
	return out.Data, nil
}

// Recommended fetches the recommendation feed
func (a *API) Recommended(ctx context.Context, limit int) ([]models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.recommended")
	defer span.End()

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var out collectionEnvelope
	if err := a.rest.Get(ctx, "/recommend", q, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch recommended posts: %w", err)
	}
	return out.Data, nil
}

// All fetches the full post feed
func (a *API) All(ctx context.Context) ([]models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.all")
	defer span.End()

	var out collectionEnvelope
	if err := a.rest.Get(ctx, "/posts", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch posts: %w", err)
	}
	return out.Data, nil
}

// Mine fetches the authenticated user's posts
func (a *API) Mine(ctx context.Context) ([]models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.mine")
	defer span.End()

	q := url.Values{}
	q.Set("mine", "1")

	var out collectionEnvelope
	if err := a.rest.Get(ctx, "/posts", q, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch own posts: %w", err)
	}
	return out.Data, nil
}

// ByUser fetches another user's posts
func (a *API) ByUser(ctx context.Context, userID int64) ([]models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.by_user")
	defer span.End()

	q := url.Values{}
	q.Set("user_id", strconv.FormatInt(userID, 10))

	var out collectionEnvelope
	if err := a.rest.Get(ctx, "/posts", q, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch posts of %d: %w", userID, err)
	}
	return out.Data, nil
}

// Saved fetches the authenticated user's saved posts
func (a *API) Saved(ctx context.Context) ([]models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.saved")
	defer span.End()

	var out collectionEnvelope
	if err := a.rest.Get(ctx, "/posts/save", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch saved posts: %w", err)
	}
	return out.Data, nil
}

// Search fetches one page of post search results
func (a *API) Search(ctx context.Context, search string, page, size int) ([]models.Post, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.search")
	defer span.End()

	q := url.Values{}
	q.Set("search", NormalizeQuery(search))
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var out struct {
		Data struct {
			Items []models.Post `json:"items"`
			Total int           `json:"total"`
		} `json:"data"`
	}
	if err := a.rest.Get(ctx, "/posts/search", q, &out); err != nil {
		return nil, 0, fmt.Errorf("failed to search posts: %w", err)
	}
	return out.Data.Items, out.Data.Total, nil
}

// ToggleLike flips the viewer's like on a post. The server decides the
// resulting flag and counter.
func (a *API) ToggleLike(ctx context.Context, postID int64) (LikeResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.toggle_like")
	defer span.End()

	var out struct {
		Data LikeResult `json:"data"`
	}
	path := fmt.Sprintf("/posts/%d/like", postID)
	if err := a.rest.Post(ctx, path, nil, &out); err != nil {
		return LikeResult{}, fmt.Errorf("failed to toggle like on %d: %w", postID, err)
	}
	return out.Data, nil
}

// ToggleSave flips the viewer's save on a post
func (a *API) ToggleSave(ctx context.Context, postID int64) (SaveResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.toggle_save")
	defer span.End()

	var out struct {
		Data SaveResult `json:"data"`
	}
	path := fmt.Sprintf("/posts/%d/save", postID)
	if err := a.rest.Post(ctx, path, nil, &out); err != nil {
		return SaveResult{}, fmt.Errorf("failed to toggle save on %d: %w", postID, err)
	}
	return out.Data, nil
}
