package models

// EngagementSnapshot is the like/save state of one post as last confirmed
// by the server. Counts are never derived locally.
type EngagementSnapshot struct {
	PostID    int64 `json:"post_id"`
	LikeCount int   `json:"like_count"`
	IsLiked   bool  `json:"is_liked"`
	SaveCount int   `json:"save_count"`
	IsSaved   bool  `json:"is_saved"`
}
