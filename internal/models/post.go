package models

import (
	"encoding/json"
	"strings"
)

// Post is the canonical client-side shape of a post. Backend payloads spell
// the same concepts under several alternate keys depending on the endpoint;
// UnmarshalJSON resolves each alias chain exactly once at ingestion so the
// rest of the client never touches raw keys.
type Post struct {
	PostID     int64
	Title      string
	Tags       []string
	AuthorID   int64
	AuthorName string
	AvatarURL  string
	FileURL    string
	CoverURL   string

	LikeCount int
	IsLiked   bool
	SaveCount int
	IsSaved   bool
}

type postWire struct {
	PostID   *int64 `json:"post_id"`
	PostIDGo *int64 `json:"PostID"`
	ID       *int64 `json:"id"`

	Title      *string `json:"post_title"`
	TitleAlt   *string `json:"title"`
	TitleGo    *string `json:"Title"`
	Tags       json.RawMessage `json:"tags"`

	AuthorID     *int64 `json:"author_id"`
	PostUserID   *int64 `json:"post_user_id"`
	UserID       *int64 `json:"user_id"`
	AuthorName   *string `json:"author_name"`
	AuthorNameLC *string `json:"authorName"`
	Username     *string `json:"username"`

	AvatarURL  *string `json:"avatar_url"`
	AuthorImg  *string `json:"author_img"`
	FileURL    *string `json:"file_url"`
	DocumentURL *string `json:"document_url"`
	CoverURL   *string `json:"cover_url"`
	PostCover  *string `json:"post_cover_url"`

	LikeCount   *int  `json:"like_count"`
	LikeCountLC *int  `json:"likeCount"`
	IsLiked     *bool `json:"is_liked"`
	IsLikedLC   *bool `json:"isLiked"`
	SaveCount   *int  `json:"save_count"`
	SaveCountLC *int  `json:"saveCount"`
	IsSaved     *bool `json:"is_saved"`
	IsSavedLC   *bool `json:"isSaved"`
}

// UnmarshalJSON normalizes the post payload. Precedence per field:
// id: post_id > PostID > id; title: post_title > title > Title;
// author id: author_id > post_user_id > user_id;
// counters/flags: snake_case > camelCase.
func (p *Post) UnmarshalJSON(data []byte) error {
	var w postWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	p.PostID = firstInt64(w.PostID, w.PostIDGo, w.ID)
	p.Title = firstString(w.Title, w.TitleAlt, w.TitleGo)
	p.Tags = parseTags(w.Tags)
	p.AuthorID = firstInt64(w.AuthorID, w.PostUserID, w.UserID)
	p.AuthorName = firstString(w.AuthorName, w.AuthorNameLC, w.Username)
	p.AvatarURL = firstString(w.AvatarURL, w.AuthorImg)
	p.FileURL = firstString(w.FileURL, w.DocumentURL)
	p.CoverURL = firstString(w.CoverURL, w.PostCover)
	p.LikeCount = firstInt(w.LikeCount, w.LikeCountLC)
	p.IsLiked = firstBool(w.IsLiked, w.IsLikedLC)
	p.SaveCount = firstInt(w.SaveCount, w.SaveCountLC)
	p.IsSaved = firstBool(w.IsSaved, w.IsSavedLC)

	return nil
}

// IsPDF reports whether the post's document is a PDF
func (p *Post) IsPDF() bool {
	return strings.HasSuffix(strings.ToLower(p.FileURL), ".pdf")
}

// Engagement returns the post's engagement snapshot
func (p *Post) Engagement() EngagementSnapshot {
	return EngagementSnapshot{
		PostID:    p.PostID,
		LikeCount: p.LikeCount,
		IsLiked:   p.IsLiked,
		SaveCount: p.SaveCount,
		IsSaved:   p.IsSaved,
	}
}

// parseTags accepts either a JSON array of strings or a comma-separated
// string, returning trimmed non-empty tags without the "#" prefix.
func parseTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		list = strings.Split(s, ",")
	}

	tags := make([]string, 0, len(list))
	for _, t := range list {
		t = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "#"))
		if t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

func firstInt64(candidates ...*int64) int64 {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return 0
}

func firstInt(candidates ...*int) int {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return 0
}

func firstString(candidates ...*string) string {
	for _, c := range candidates {
		if c != nil && *c != "" {
			return *c
		}
	}
	return ""
}

func firstBool(candidates ...*bool) bool {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return false
}
