package social

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/chaladshare/client-go/internal/models"
	"github.com/chaladshare/client-go/pkg/logging"
)

// Directory is the slice of the social API the resolver depends on
type Directory interface {
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
	ListFriends(ctx context.Context, userID int64, search string, page, size int) ([]models.Friend, int, error)
	ListOutgoing(ctx context.Context, page, size int) ([]models.FriendRequest, int, error)
	SendRequest(ctx context.Context, toUserID int64) (int64, error)
	AcceptRequest(ctx context.Context, requestID int64) error
	DeclineRequest(ctx context.Context, requestID int64) error
	CancelRequest(ctx context.Context, requestID int64) error
	Unfriend(ctx context.Context, userID int64) error
	Follow(ctx context.Context, userID int64) error
	Unfollow(ctx context.Context, userID int64) error
}

// Resolver derives the relationship between the viewer and one other user.
// No backend endpoint returns this as a single object; it is reconciled
// from the profile's relation hints, the viewer's friend list, and the
// viewer's outgoing request list, in that priority order. One resolver is
// owned by one mounted profile view; relationship state is not shared
// across views.
type Resolver struct {
	api       Directory
	selfID    int64
	otherID   int64
	probeSize int
	logger    *zap.Logger

	mu   sync.Mutex
	view models.RelationshipView
}

// NewResolver creates a resolver for the (self, other) pair. probeSize is
// the page size used when probing the friend and outgoing lists.
func NewResolver(api Directory, selfID, otherID int64, probeSize int) *Resolver {
	return &Resolver{
		api:       api,
		selfID:    selfID,
		otherID:   otherID,
		probeSize: probeSize,
		logger: logging.GetLogger().With(
			zap.String("component", "relationship-resolver"),
			zap.Int64("other_id", otherID),
		),
		view: models.RelationshipView{FriendState: models.FriendStateIdle},
	}
}

// View returns the last derived relationship without querying
func (r *Resolver) View() models.RelationshipView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

// Resolve reconciles the relationship from the backend. Calling it twice
// with no intervening action yields the same view. Once the pair is
// friends no further queries are issued; friendship cannot regress without
// an explicit Unfriend by the viewer.
func (r *Resolver) Resolve(ctx context.Context) (models.RelationshipView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.view.FriendState == models.FriendStateFriends {
		return r.view, nil
	}

	profile, err := r.api.GetProfile(ctx, r.otherID)
	if err != nil {
		return r.view, fmt.Errorf("relationship resolve: %w", err)
	}

	view := models.RelationshipView{
		IsFollowing: profile.IsFollowing.Bool(),
		FriendState: models.FriendStateIdle,
	}

	view.FriendState, err = r.friendState(ctx, profile)
	if err != nil {
		return r.view, fmt.Errorf("relationship resolve: %w", err)
	}

	r.view = view
	return r.view, nil
}

func (r *Resolver) friendState(ctx context.Context, profile *models.Profile) (models.FriendState, error) {
	// An unambiguous hint settles it without any list query.
	if profile.IsFriend.Bool() {
		return models.FriendStateFriends, nil
	}

	// Friend-list membership outranks a pending request: a stale outgoing
	// entry must not mask an accepted friendship.
	friends, _, err := r.api.ListFriends(ctx, r.selfID, "", 1, r.probeSize)
	if err != nil {
		return r.view.FriendState, err
	}

	ids := make(map[int64]struct{}, len(friends))
	for _, f := range friends {
		ids[f.UserID] = struct{}{}
	}
	if _, ok := ids[r.otherID]; ok {
		return models.FriendStateFriends, nil
	}

	if profile.FriendRequestOutgoing.Bool() {
		return models.FriendStateRequested, nil
	}

	outgoing, _, err := r.api.ListOutgoing(ctx, 1, r.probeSize)
	if err != nil {
		return r.view.FriendState, err
	}
	for _, req := range outgoing {
		if req.AddresseeID == r.otherID {
			return models.FriendStateRequested, nil
		}
	}

	return models.FriendStateIdle, nil
}

// SendRequest sends a friend request to the other user. Only valid from
// the idle state; duplicates are refused client-side.
func (r *Resolver) SendRequest(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.view.FriendState != models.FriendStateIdle {
		return fmt.Errorf("cannot send friend request in state %q", r.view.FriendState)
	}

	if _, err := r.api.SendRequest(ctx, r.otherID); err != nil {
		return err
	}

	r.view.FriendState = models.FriendStateRequested
	return nil
}

// CancelRequest withdraws the pending request to the other user. The
// request id is not retained between renders, so the outgoing list is
// re-fetched to find it; a missing entry just resets the state.
func (r *Resolver) CancelRequest(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	outgoing, _, err := r.api.ListOutgoing(ctx, 1, r.probeSize)
	if err != nil {
		return fmt.Errorf("cancel request: %w", err)
	}

	var requestID int64
	for _, req := range outgoing {
		if req.AddresseeID == r.otherID {
			requestID = req.RequestID
			break
		}
	}

	if requestID == 0 {
		// Already resolved on the other side; nothing to delete.
		r.logger.Debug("No pending request found to cancel")
		r.view.FriendState = models.FriendStateIdle
		return nil
	}

	if err := r.api.CancelRequest(ctx, requestID); err != nil {
		return err
	}

	r.view.FriendState = models.FriendStateIdle
	return nil
}

// AcceptRequest accepts an incoming request from the other user
func (r *Resolver) AcceptRequest(ctx context.Context, requestID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.api.AcceptRequest(ctx, requestID); err != nil {
		return err
	}

	r.view.FriendState = models.FriendStateFriends
	return nil
}

// DeclineRequest declines an incoming request from the other user
func (r *Resolver) DeclineRequest(ctx context.Context, requestID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.api.DeclineRequest(ctx, requestID); err != nil {
		return err
	}

	r.view.FriendState = models.FriendStateIdle
	return nil
}

// Unfriend dissolves the friendship with the other user
func (r *Resolver) Unfriend(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.api.Unfriend(ctx, r.otherID); err != nil {
		return err
	}

	r.view.FriendState = models.FriendStateIdle
	return nil
}

// ToggleFollow follows or unfollows the other user depending on the
// current view. The follow edge is orthogonal to the friend state.
func (r *Resolver) ToggleFollow(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.view.IsFollowing {
		if err := r.api.Unfollow(ctx, r.otherID); err != nil {
			return r.view.IsFollowing, err
		}
		r.view.IsFollowing = false
	} else {
		if err := r.api.Follow(ctx, r.otherID); err != nil {
			return r.view.IsFollowing, err
		}
		r.view.IsFollowing = true
	}

	return r.view.IsFollowing, nil
}
