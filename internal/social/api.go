package social

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/chaladshare/client-go/internal/models"
	"github.com/chaladshare/client-go/internal/rest"
	"github.com/chaladshare/client-go/pkg/logging"
	"github.com/chaladshare/client-go/pkg/telemetry"
)

// API binds the social and profile endpoints
type API struct {
	rest   *rest.Client
	logger *zap.Logger
}

// NewAPI creates a new social API binding
func NewAPI(client *rest.Client) *API {
	return &API{
		rest:   client,
		logger: logging.GetLogger().With(zap.String("component", "social-api")),
	}
}

type pagedFriends struct {
	Items []models.Friend `json:"items"`
	Total int             `json:"total"`
}

type pagedUsers struct {
	Items []models.UserSummary `json:"items"`
	Total int                  `json:"total"`
}

type pagedRequests struct {
	Items []models.FriendRequest `json:"items"`
	Total int                    `json:"total"`
}

func pageQuery(search string, page, size int) url.Values {
	q := url.Values{}
	q.Set("search", search)
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	return q
}

// Me fetches the authenticated user's profile
func (a *API) Me(ctx context.Context) (*models.Profile, error) {
	ctx, span := telemetry.StartSpan(ctx, "social.me")
	defer span.End()

	var profile models.Profile
	if err := a.rest.Get(ctx, "/profile", nil, &profile); err != nil {
		return nil, fmt.Errorf("failed to fetch own profile: %w", err)
	}
	return &profile, nil
}

// GetProfile fetches another user's profile with relation hints
func (a *API) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	ctx, span := telemetry.StartSpan(ctx, "social.get_profile")
	defer span.End()

	q := url.Values{}
	q.Set("with", "stats,followers,following,rel")

	var profile models.Profile
	if err := a.rest.Get(ctx, fmt.Sprintf("/profile/%d", userID), q, &profile); err != nil {
		return nil, fmt.Errorf("failed to fetch profile %d: %w", userID, err)
	}
	return &profile, nil
}

// ListFriends fetches one page of a user's friend list
func (a *API) ListFriends(ctx context.Context, userID int64, search string, page, size int) ([]models.Friend, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "social.list_friends")
	defer span.End()

	var out pagedFriends
	path := fmt.Sprintf("/social/friends/%d", userID)
	if err := a.rest.Get(ctx, path, pageQuery(search, page, size), &out); err != nil {
		return nil, 0, fmt.Errorf("failed to list friends: %w", err)
	}
	return out.Items, out.Total, nil
}

// SearchAddFriends searches users who can be sent a friend request
func (a *API) SearchAddFriends(ctx context.Context, search string, page, size int) ([]models.UserSummary, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "social.search_add_friends")
	defer span.End()

	var out pagedUsers
	if err := a.rest.Get(ctx, "/social/addfriends", pageQuery(search, page, size), &out); err != nil {
		return nil, 0, fmt.Errorf("failed to search users: %w", err)
	}
	return out.Items, out.Total, nil
}

// ListIncoming fetches pending requests addressed to the viewer
func (a *API) ListIncoming(ctx context.Context, page, size int) ([]models.FriendRequest, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "social.list_incoming")
	defer span.End()

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var out pagedRequests
	if err := a.rest.Get(ctx, "/social/requests/incoming", q, &out); err != nil {
		return nil, 0, fmt.Errorf("failed to list incoming requests: %w", err)
	}
	return out.Items, out.Total, nil
}

// ListOutgoing fetches pending requests the viewer has sent
func (a *API) ListOutgoing(ctx context.Context, page, size int) ([]models.FriendRequest, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "social.list_outgoing")
	defer span.End()

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var out pagedRequests
	if err := a.rest.Get(ctx, "/social/requests/outgoing", q, &out); err != nil {
		return nil, 0, fmt.Errorf("failed to list outgoing requests: %w", err)
	}
	return out.Items, out.Total, nil
}

// SendRequest sends a friend request, returning the new request id
func (a *API) SendRequest(ctx context.Context, toUserID int64) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "social.send_request")
	defer span.End()

	body := map[string]int64{"to_user_id": toUserID}
	var out struct {
		RequestID int64 `json:"request_id"`
	}
	if err := a.rest.Post(ctx, "/social/requests", body, &out); err != nil {
		return 0, fmt.Errorf("failed to send friend request: %w", err)
	}
	return out.RequestID, nil
}

// AcceptRequest accepts an incoming friend request
func (a *API) AcceptRequest(ctx context.Context, requestID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "social.accept_request")
	defer span.End()

	path := fmt.Sprintf("/social/requests/%d/accept", requestID)
	if err := a.rest.Post(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("failed to accept request %d: %w", requestID, err)
	}
	return nil
}

// DeclineRequest declines an incoming friend request
func (a *API) DeclineRequest(ctx context.Context, requestID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "social.decline_request")
	defer span.End()

	path := fmt.Sprintf("/social/requests/%d/decline", requestID)
	if err := a.rest.Post(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("failed to decline request %d: %w", requestID, err)
	}
	return nil
}

// CancelRequest deletes an outgoing friend request
func (a *API) CancelRequest(ctx context.Context, requestID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "social.cancel_request")
	defer span.End()

	path := fmt.Sprintf("/social/requests/%d", requestID)
	if err := a.rest.Delete(ctx, path, nil); err != nil {
		return fmt.Errorf("failed to cancel request %d: %w", requestID, err)
	}
	return nil
}

// Unfriend removes an accepted friendship with the given user
func (a *API) Unfriend(ctx context.Context, userID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "social.unfriend")
	defer span.End()

	path := fmt.Sprintf("/social/friends/%d", userID)
	if err := a.rest.Delete(ctx, path, nil); err != nil {
		return fmt.Errorf("failed to unfriend %d: %w", userID, err)
	}
	return nil
}

// Follow creates a follow edge to the given user
func (a *API) Follow(ctx context.Context, userID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "social.follow")
	defer span.End()

	body := map[string]int64{"followed_user_id": userID}
	if err := a.rest.Post(ctx, "/social/follow", body, nil); err != nil {
		return fmt.Errorf("failed to follow %d: %w", userID, err)
	}
	return nil
}

// Unfollow removes the follow edge to the given user
func (a *API) Unfollow(ctx context.Context, userID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "social.unfollow")
	defer span.End()

	path := fmt.Sprintf("/social/follow/%d", userID)
	if err := a.rest.Delete(ctx, path, nil); err != nil {
		return fmt.Errorf("failed to unfollow %d: %w", userID, err)
	}
	return nil
}

// Stats fetches follower/following counters for a user
func (a *API) Stats(ctx context.Context, userID int64) (*models.SocialStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "social.stats")
	defer span.End()

	var stats models.SocialStats
	path := fmt.Sprintf("/social/stats/%d", userID)
	if err := a.rest.Get(ctx, path, nil, &stats); err != nil {
		return nil, fmt.Errorf("failed to fetch stats for %d: %w", userID, err)
	}
	return &stats, nil
}
