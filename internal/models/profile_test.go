package models

import (
	"encoding/json"
	"testing"
)

func TestFlexBool(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected bool
		wantErr  bool
	}{
		{"bool true", `true`, true, false},
		{"bool false", `false`, false, false},
		{"number one", `1`, true, false},
		{"number zero", `0`, false, false},
		{"string one", `"1"`, true, false},
		{"string zero", `"0"`, false, false},
		{"string true", `"true"`, true, false},
		{"null", `null`, false, false},
		{"empty string", `""`, false, false},
		{"garbage", `{"x":1}`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b FlexBool
			err := json.Unmarshal([]byte(tt.payload), &b)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if b.Bool() != tt.expected {
				t.Errorf("FlexBool = %v, want %v", b.Bool(), tt.expected)
			}
		})
	}
}

func TestProfileEffectiveID(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected int64
	}{
		{"user_id wins", `{"user_id": 1, "id": 2}`, 1},
		{"id fallback", `{"id": 2}`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Profile
			if err := json.Unmarshal([]byte(tt.payload), &p); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if p.EffectiveID() != tt.expected {
				t.Errorf("EffectiveID() = %d, want %d", p.EffectiveID(), tt.expected)
			}
		})
	}
}

func TestProfileRelationHints(t *testing.T) {
	payload := `{"user_id": 9, "username": "mild", "is_following": 1, "is_friend": "1", "friend_request_outgoing": false}`

	var p Profile
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !p.IsFollowing.Bool() {
		t.Error("is_following=1 should decode true")
	}
	if !p.IsFriend.Bool() {
		t.Error(`is_friend="1" should decode true`)
	}
	if p.FriendRequestOutgoing.Bool() {
		t.Error("friend_request_outgoing=false should decode false")
	}
}
