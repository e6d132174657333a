package views

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/chaladshare/client-go/internal/models"
	"github.com/chaladshare/client-go/internal/search"
	"github.com/chaladshare/client-go/pkg/logging"
)

// FriendsBackend is the social surface the friends screen needs.
type FriendsBackend interface {
	ListFriends(ctx context.Context, userID int64, search string, page, size int) ([]models.Friend, int, error)
	SearchAddFriends(ctx context.Context, search string, page, size int) ([]models.UserSummary, int, error)
	ListIncoming(ctx context.Context, page, size int) ([]models.FriendRequest, int, error)
	SendRequest(ctx context.Context, toUserID int64) (int64, error)
	AcceptRequest(ctx context.Context, requestID int64) error
	DeclineRequest(ctx context.Context, requestID int64) error
}

// FriendsView drives the friends screen and its three tabs: my friends,
// add friends, and incoming requests. The two search tabs run on debounced
// streams; the requests tab is a plain list.
type FriendsView struct {
	api      FriendsBackend
	queries  *search.Controller
	selfID   int64
	pageSize int
	logger   *zap.Logger

	mu           sync.Mutex
	friends      []models.Friend
	friendsTotal int
	friendsErr   error
	users        []models.UserSummary
	usersTotal   int
	usersErr     error
	incoming     []models.FriendRequest
}

// NewFriendsView builds the friends screen and registers its two search
// streams with the controller.
func NewFriendsView(api FriendsBackend, queries *search.Controller, selfID int64, pageSize int) *FriendsView {
	v := &FriendsView{
		api:      api,
		queries:  queries,
		selfID:   selfID,
		pageSize: pageSize,
		logger:   logging.WithComponent("friends_view"),
	}

	queries.RegisterStream(StreamFriends, pageSize, v.fetchFriends, v.applyFriends)
	queries.RegisterStream(StreamAddFriends, pageSize, v.fetchUsers, v.applyUsers)
	return v
}

func (v *FriendsView) fetchFriends(ctx context.Context, text string, page, size int) (any, int, error) {
	return v.api.ListFriends(ctx, v.selfID, text, page, size)
}

func (v *FriendsView) fetchUsers(ctx context.Context, text string, page, size int) (any, int, error) {
	return v.api.SearchAddFriends(ctx, text, page, size)
}

func (v *FriendsView) applyFriends(up search.Update) {
	items, _ := up.Items.([]models.Friend)
	v.mu.Lock()
	v.friends = items
	v.friendsTotal = up.Total
	v.friendsErr = up.Err
	v.mu.Unlock()
}

func (v *FriendsView) applyUsers(up search.Update) {
	items, _ := up.Items.([]models.UserSummary)
	v.mu.Lock()
	v.users = items
	v.usersTotal = up.Total
	v.usersErr = up.Err
	v.mu.Unlock()
}

// LoadFriends fetches the unfiltered friend list for a page. The typed
// search path goes through the stream instead.
func (v *FriendsView) LoadFriends(ctx context.Context, page int) error {
	friends, total, err := v.api.ListFriends(ctx, v.selfID, "", page, v.pageSize)
	if err != nil {
		return fmt.Errorf("loading friends: %w", err)
	}

	v.mu.Lock()
	v.friends = friends
	v.friendsTotal = total
	v.friendsErr = nil
	v.mu.Unlock()
	return nil
}

// SearchFriends feeds a keystroke into the my-friends stream.
func (v *FriendsView) SearchFriends(text string) {
	v.queries.SetText(StreamFriends, text)
}

// SearchUsers feeds a keystroke into the add-friends stream.
func (v *FriendsView) SearchUsers(text string) {
	v.queries.SetText(StreamAddFriends, text)
}

// PageFriends jumps the friend search to a page, bypassing the debounce.
func (v *FriendsView) PageFriends(page int) {
	v.queries.SetPage(StreamFriends, page)
}

// PageUsers jumps the add-friends search to a page.
func (v *FriendsView) PageUsers(page int) {
	v.queries.SetPage(StreamAddFriends, page)
}

// Friends returns the current friend rows and total.
func (v *FriendsView) Friends() ([]models.Friend, int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.friends, v.friendsTotal, v.friendsErr
}

// Users returns the current add-friends rows and total.
func (v *FriendsView) Users() ([]models.UserSummary, int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.users, v.usersTotal, v.usersErr
}

// Requests returns the incoming request rows.
func (v *FriendsView) Requests() []models.FriendRequest {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.incoming
}

// LoadRequests fetches the incoming request list.
func (v *FriendsView) LoadRequests(ctx context.Context) error {
	incoming, _, err := v.api.ListIncoming(ctx, 1, v.pageSize)
	if err != nil {
		return fmt.Errorf("loading friend requests: %w", err)
	}

	v.mu.Lock()
	v.incoming = incoming
	v.mu.Unlock()
	return nil
}

// SendRequest sends a friend request from the add-friends tab. On success
// the row disappears and the total drops, never below zero.
func (v *FriendsView) SendRequest(ctx context.Context, userID int64) error {
	if _, err := v.api.SendRequest(ctx, userID); err != nil {
		return fmt.Errorf("sending friend request: %w", err)
	}

	v.mu.Lock()
	for i, u := range v.users {
		if u.UserID == userID {
			v.users = append(v.users[:i], v.users[i+1:]...)
			break
		}
	}
	if v.usersTotal > 0 {
		v.usersTotal--
	}
	v.mu.Unlock()

	v.logger.Debug("Friend request sent", zap.Int64("user_id", userID))
	return nil
}

// Accept accepts an incoming request, drops its row, and reloads the
// friend list so the new friend shows up.
func (v *FriendsView) Accept(ctx context.Context, requestID int64) error {
	if err := v.api.AcceptRequest(ctx, requestID); err != nil {
		return fmt.Errorf("accepting request %d: %w", requestID, err)
	}
	v.removeRequest(requestID)
	return v.LoadFriends(ctx, 1)
}

// Decline declines an incoming request and drops its row.
func (v *FriendsView) Decline(ctx context.Context, requestID int64) error {
	if err := v.api.DeclineRequest(ctx, requestID); err != nil {
		return fmt.Errorf("declining request %d: %w", requestID, err)
	}
	v.removeRequest(requestID)
	return nil
}

func (v *FriendsView) removeRequest(requestID int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, r := range v.incoming {
		if r.RequestID == requestID {
			v.incoming = append(v.incoming[:i], v.incoming[i+1:]...)
			return
		}
	}
}
