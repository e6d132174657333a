package models

import (
	"bytes"
	"encoding/json"
)

// Profile is a user profile fetch, optionally carrying relation hints for
// the viewer (is_following, is_friend, friend_request_outgoing).
type Profile struct {
	UserID     int64    `json:"user_id"`
	ID         int64    `json:"id"`
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	Bio        string   `json:"bio"`
	AvatarURL  string   `json:"avatar_url"`
	PostsCount int      `json:"posts_count"`

	IsFollowing           FlexBool `json:"is_following"`
	IsFriend              FlexBool `json:"is_friend"`
	FriendRequestOutgoing FlexBool `json:"friend_request_outgoing"`
}

// EffectiveID returns the profile's user id under either spelling
func (p *Profile) EffectiveID() int64 {
	if p.UserID != 0 {
		return p.UserID
	}
	return p.ID
}

// FlexBool tolerates the boolean spellings seen in relation hints:
// true/false, 0/1, "0"/"1", "true"/"false". Absent and null decode to false.
type FlexBool bool

// UnmarshalJSON implements loose boolean decoding
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}

	switch string(data) {
	case "true", "1", `"1"`, `"true"`:
		*b = true
		return nil
	case "false", "0", `"0"`, `"false"`, `""`:
		*b = false
		return nil
	}

	// Anything else: fall back to a strict bool so garbage still errors
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = FlexBool(v)
	return nil
}

// Bool returns the plain bool value
func (b FlexBool) Bool() bool {
	return bool(b)
}
