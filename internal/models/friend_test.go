package models

import (
	"encoding/json"
	"testing"
)

func TestFriendRequestAddresseePrecedence(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected int64
	}{
		{"addressee_user_id wins", `{"addressee_user_id": 1, "to_user_id": 2, "target_user_id": 3}`, 1},
		{"addressee_id second", `{"addressee_id": 4, "receiver_id": 5}`, 4},
		{"to_user_id third", `{"to_user_id": 6, "target_user_id": 7}`, 6},
		{"receiver_id fourth", `{"receiver_id": 8, "requested_user_id": 9}`, 8},
		{"requested_user_id fifth", `{"requested_user_id": 10, "target_user_id": 11}`, 10},
		{"target_user_id last", `{"target_user_id": 12}`, 12},
		{"no alias present", `{"request_id": 99}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r FriendRequest
			if err := json.Unmarshal([]byte(tt.payload), &r); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if r.AddresseeID != tt.expected {
				t.Errorf("AddresseeID = %d, want %d", r.AddresseeID, tt.expected)
			}
		})
	}
}

func TestFriendRequestIDPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected int64
	}{
		{"request_id wins", `{"request_id": 1, "friend_request_id": 2, "id": 3}`, 1},
		{"friend_request_id second", `{"friend_request_id": 4, "id": 5}`, 4},
		{"id last", `{"id": 6}`, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r FriendRequest
			if err := json.Unmarshal([]byte(tt.payload), &r); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if r.RequestID != tt.expected {
				t.Errorf("RequestID = %d, want %d", r.RequestID, tt.expected)
			}
		})
	}
}

func TestFriendRequestProductionShape(t *testing.T) {
	// The production outgoing list spells the addressee as target_user_id.
	payload := `{"request_id": 7, "target_user_id": 42, "requested_at": "2024-05-01T10:00:00Z", "username": "ploy", "avatar": "/img/a.png"}`

	var r FriendRequest
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if r.RequestID != 7 {
		t.Errorf("RequestID = %d, want 7", r.RequestID)
	}
	if r.AddresseeID != 42 {
		t.Errorf("AddresseeID = %d, want 42", r.AddresseeID)
	}
	if r.Username != "ploy" {
		t.Errorf("Username = %q, want %q", r.Username, "ploy")
	}
	if r.CreatedAt.IsZero() {
		t.Error("CreatedAt should be parsed from requested_at")
	}
}
