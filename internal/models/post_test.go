package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestPostIDPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected int64
	}{
		{"post_id wins", `{"post_id": 1, "PostID": 2, "id": 3}`, 1},
		{"PostID second", `{"PostID": 4, "id": 5}`, 4},
		{"id last", `{"id": 6}`, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Post
			if err := json.Unmarshal([]byte(tt.payload), &p); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if p.PostID != tt.expected {
				t.Errorf("PostID = %d, want %d", p.PostID, tt.expected)
			}
		})
	}
}

func TestPostEngagementAliases(t *testing.T) {
	payload := `{"post_id": 1, "likeCount": 3, "isLiked": true, "is_saved": false}`

	var p Post
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if p.LikeCount != 3 {
		t.Errorf("LikeCount = %d, want 3", p.LikeCount)
	}
	if !p.IsLiked {
		t.Error("IsLiked should be true from isLiked alias")
	}
	if p.IsSaved {
		t.Error("IsSaved should be false")
	}

	// snake_case beats camelCase when both present
	payload = `{"post_id": 1, "like_count": 5, "likeCount": 9}`
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if p.LikeCount != 5 {
		t.Errorf("LikeCount = %d, want 5 (snake_case precedence)", p.LikeCount)
	}
}

func TestPostAuthorPrecedence(t *testing.T) {
	payload := `{"post_id": 1, "post_user_id": 10, "user_id": 20, "username": "dara"}`

	var p Post
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if p.AuthorID != 10 {
		t.Errorf("AuthorID = %d, want 10 (post_user_id over user_id)", p.AuthorID)
	}
	if p.AuthorName != "dara" {
		t.Errorf("AuthorName = %q, want %q", p.AuthorName, "dara")
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected []string
	}{
		{"array form", `{"tags": ["go", "#notes"]}`, []string{"go", "notes"}},
		{"comma string form", `{"tags": "math, #physics ,"}`, []string{"math", "physics"}},
		{"empty string", `{"tags": ""}`, nil},
		{"absent", `{}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Post
			if err := json.Unmarshal([]byte(tt.payload), &p); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if !reflect.DeepEqual(p.Tags, tt.expected) {
				t.Errorf("Tags = %v, want %v", p.Tags, tt.expected)
			}
		})
	}
}

func TestPostIsPDF(t *testing.T) {
	tests := []struct {
		name     string
		fileURL  string
		expected bool
	}{
		{"pdf", "/files/doc.pdf", true},
		{"upper case", "/files/DOC.PDF", true},
		{"image", "/files/pic.png", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Post{FileURL: tt.fileURL}
			if p.IsPDF() != tt.expected {
				t.Errorf("IsPDF() = %v, want %v", p.IsPDF(), tt.expected)
			}
		})
	}
}
