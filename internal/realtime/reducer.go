package realtime

import (
	"github.com/hearthforum/hearth/internal/forum"
)

// Reducer functions patch a topic view in place from broadcast events, so a
// subscriber that holds a fetched view can track the live discussion without
// refetching. All of them are idempotent: redelivered events are absorbed.

// ApplyNewComment attaches a broadcast comment to the tree. A comment whose
// id is already present is ignored. A comment whose parent is unknown goes
// to the top level, matching how a fresh fetch surfaces orphans.
func ApplyNewComment(t *forum.TopicView, c *forum.CommentView) bool {
	if t == nil || c == nil {
		return false
	}
	if findComment(t.Comments, c.ID) != nil {
		return false
	}
	if c.Replies == nil {
		c.Replies = []*forum.CommentView{}
	}
	if c.ParentID != nil {
		if parent := findComment(t.Comments, *c.ParentID); parent != nil {
			parent.Replies = append(parent.Replies, c)
			return true
		}
	}
	t.Comments = append(t.Comments, c)
	return true
}

// ApplyVote updates the aggregate for the event's target. The event carries
// the full new aggregate, not a delta, so replays converge instead of
// compounding.
func ApplyVote(t *forum.TopicView, ev forum.VoteEvent) bool {
	if t == nil {
		return false
	}
	if ev.Type == forum.TargetTopic {
		if t.ID != ev.ID {
			return false
		}
		t.VoteCount = ev.Votes
		return true
	}
	comment := findComment(t.Comments, ev.ID)
	if comment == nil {
		return false
	}
	comment.VoteCount = ev.Votes
	return true
}

// ApplyCommentUpdated flips a comment's deletion flag and masks its content.
// Replies stay attached.
func ApplyCommentUpdated(t *forum.TopicView, ev forum.CommentUpdatedEvent) bool {
	if t == nil {
		return false
	}
	comment := findComment(t.Comments, ev.ID)
	if comment == nil {
		return false
	}
	comment.IsDeleted = ev.IsDeleted
	if ev.IsDeleted {
		comment.Content = nil
		comment.ContentHTML = ""
	}
	return true
}

func findComment(comments []*forum.CommentView, id string) *forum.CommentView {
	for _, c := range comments {
		if c.ID == id {
			return c
		}
		if found := findComment(c.Replies, id); found != nil {
			return found
		}
	}
	return nil
}
