package social

// Follow is a directed edge: the follower sees the author's posts in their
// personalized feed.
type Follow struct {
	UserID   string `json:"user_id"`
	AuthorID string `json:"author_id"`
}
