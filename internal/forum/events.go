package forum

import (
	"context"
)

// Event names published on a topic's channel. Payload shapes are fixed:
// subscribers patch their local tree from them without a follow-up fetch.
const (
	EventNewVote        = "new-vote"
	EventNewComment     = "new-comment"
	EventCommentUpdated = "comment-updated"
)

// TargetKind discriminates vote and report targets.
const (
	TargetTopic   = "topic"
	TargetComment = "comment"
)

// TopicChannel returns the broadcast channel for a topic. Every event about
// a topic or any of its comments is published here.
func TopicChannel(topicID string) string {
	return "topic-" + topicID
}

// VoteEvent is the new-vote payload: the new aggregate for a target.
type VoteEvent struct {
	ID    string `json:"id"`
	Type  string `json:"type"` // "topic" or "comment"
	Votes int    `json:"votes"`
}

// CommentUpdatedEvent is the comment-updated payload.
type CommentUpdatedEvent struct {
	ID        string `json:"id"`
	IsDeleted bool   `json:"isDeleted"`
}

// Publisher is the broadcast transport boundary. Publishing is best-effort
// notification: a failed publish never fails the underlying write.
type Publisher interface {
	Publish(ctx context.Context, channel, event string, payload interface{}) error
}

// NopPublisher discards all events.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(ctx context.Context, channel, event string, payload interface{}) error {
	return nil
}
