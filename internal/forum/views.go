package forum

import (
	"time"
)

// CommentView is the render-safe projection of a comment. Content is nil
// when a visibility mask applies; the three flags stay independently
// readable so clients can pick distinct placeholder text per reason.
type CommentView struct {
	ID             string         `json:"id"`
	Content        *string        `json:"content"`
	ContentHTML    string         `json:"contentHtml,omitempty"`
	AuthorID       string         `json:"authorId"`
	AuthorName     string         `json:"authorName"`
	AuthorUsername string         `json:"authorUsername"`
	AuthorRole     string         `json:"authorRole"`
	AvatarURL      string         `json:"avatar"`
	TopicID        string         `json:"topicId"`
	ParentID       *string        `json:"parentId"`
	IsDeleted      bool           `json:"isDeleted"`
	Moderated      bool           `json:"moderated"`
	CreatedAt      time.Time      `json:"createdAt"`
	VoteCount      int            `json:"voteCount"`
	UserVote       int            `json:"userVote"`
	Replies        []*CommentView `json:"replies"`
}

// TopicView is the render-safe projection of a topic with its comment tree.
type TopicView struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Content        *string        `json:"content"`
	ContentHTML    string         `json:"contentHtml,omitempty"`
	AuthorID       string         `json:"authorId"`
	AuthorName     string         `json:"authorName"`
	AuthorUsername string         `json:"authorUsername"`
	AuthorRole     string         `json:"authorRole"`
	AvatarURL      string         `json:"avatar"`
	CategoryID     string         `json:"categoryId"`
	CategoryName   string         `json:"categoryName"`
	Moderated      bool           `json:"moderated"`
	CreatedAt      time.Time      `json:"createdAt"`
	VoteCount      int            `json:"voteCount"`
	UserVote       int            `json:"userVote"`
	Comments       []*CommentView `json:"comments"`
}

// TopicSummary is the list-page projection: no comment tree, just counts.
type TopicSummary struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	AuthorID       string    `json:"authorId"`
	AuthorName     string    `json:"authorName"`
	AuthorUsername string    `json:"authorUsername"`
	AvatarURL      string    `json:"avatar"`
	CategoryID     string    `json:"categoryId"`
	CategoryName   string    `json:"categoryName"`
	Moderated      bool      `json:"moderated"`
	CreatedAt      time.Time `json:"createdAt"`
	CommentCount   int       `json:"commentCount"`
}
