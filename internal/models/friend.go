package models

import (
	"encoding/json"
	"time"
)

// FriendState is the derived friendship leg of a relationship
type FriendState string

const (
	FriendStateIdle      FriendState = "idle"
	FriendStateRequested FriendState = "requested"
	FriendStateFriends   FriendState = "friends"
)

// RelationshipView is the derived relationship between the viewer and
// another user. It is recomputed, never stored.
type RelationshipView struct {
	IsFollowing bool
	FriendState FriendState
}

// Friend is one accepted friendship as listed by the friends endpoint
type Friend struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	Avatar      string `json:"avatar"`
	IsFollowing bool   `json:"is_following"`
}

// UserSummary is a row of the add-friend user search
type UserSummary struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// FriendRequest is a pending request, normalized from the many spellings
// backend deployments use for the participant ids.
type FriendRequest struct {
	RequestID   int64
	RequesterID int64
	AddresseeID int64
	Username    string
	Avatar      string
	CreatedAt   time.Time
}

type friendRequestWire struct {
	RequestID       *int64 `json:"request_id"`
	FriendRequestID *int64 `json:"friend_request_id"`
	ID              *int64 `json:"id"`

	RequesterUserID *int64 `json:"requester_user_id"`
	RequesterID     *int64 `json:"requester_id"`
	FromUserID      *int64 `json:"from_user_id"`

	AddresseeUserID *int64 `json:"addressee_user_id"`
	AddresseeID     *int64 `json:"addressee_id"`
	ToUserID        *int64 `json:"to_user_id"`
	ReceiverID      *int64 `json:"receiver_id"`
	RequestedUserID *int64 `json:"requested_user_id"`
	TargetUserID    *int64 `json:"target_user_id"`

	Username    string     `json:"username"`
	Avatar      string     `json:"avatar"`
	RequestedAt *time.Time `json:"requested_at"`
	CreatedAt   *time.Time `json:"request_created_at"`
}

// UnmarshalJSON normalizes a friend request item. Precedence:
// request id: request_id > friend_request_id > id;
// requester: requester_user_id > requester_id > from_user_id;
// addressee: addressee_user_id > addressee_id > to_user_id > receiver_id >
// requested_user_id > target_user_id.
func (r *FriendRequest) UnmarshalJSON(data []byte) error {
	var w friendRequestWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	r.RequestID = firstInt64(w.RequestID, w.FriendRequestID, w.ID)
	r.RequesterID = firstInt64(w.RequesterUserID, w.RequesterID, w.FromUserID)
	r.AddresseeID = firstInt64(w.AddresseeUserID, w.AddresseeID, w.ToUserID,
		w.ReceiverID, w.RequestedUserID, w.TargetUserID)
	r.Username = w.Username
	r.Avatar = w.Avatar

	switch {
	case w.RequestedAt != nil:
		r.CreatedAt = *w.RequestedAt
	case w.CreatedAt != nil:
		r.CreatedAt = *w.CreatedAt
	}

	return nil
}

// SocialStats are the follower counters shown on a profile
type SocialStats struct {
	Followers int `json:"followers"`
	Following int `json:"following"`
}
