package post

import (
	"strings"
	"time"
)

const maxCommentLen = 400

type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
}

// GroupRef is the slice of a group a post carries around: enough to link
// back to the group feed.
type GroupRef struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type Post struct {
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	Image   string    `json:"image,omitempty"`
	PubDate time.Time `json:"pub_date"`
	Author  Author    `json:"author"`
	Group   *GroupRef `json:"group,omitempty"`
}

type Comment struct {
	ID      string    `json:"id"`
	PostID  string    `json:"post_id"`
	Text    string    `json:"text"`
	Created time.Time `json:"created"`
	Author  Author    `json:"author"`
}

// Page is one bounded slice of a feed, selected by a 1-based number.
type Page struct {
	Posts      []Post `json:"posts"`
	Number     int    `json:"number"`
	TotalPages int    `json:"total_pages"`
	TotalCount int    `json:"total_count"`
}

type PostForm struct {
	Text    string `json:"text" form:"text"`
	GroupID string `json:"group_id" form:"group_id"`
}

func (f PostForm) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(f.Text) == "" {
		errs["text"] = "text is required"
	}
	return errs
}

type CommentForm struct {
	Text string `json:"text" form:"text"`
}

func (f CommentForm) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(f.Text) == "" {
		errs["text"] = "text is required"
	} else if len([]rune(f.Text)) > maxCommentLen {
		errs["text"] = "text must be at most 400 characters"
	}
	return errs
}
