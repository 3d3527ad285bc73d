package forum

import (
	"github.com/hearthforum/hearth/internal/models"
)

// Visibility masking. Applied after every tree fetch, before data leaves the
// core. The decision per node is local; children are always processed and
// returned, so masking never prunes the tree. Only content is masked;
// vote fields, author names and timestamps stay visible.
//
// Mask precedence per node:
//
//	authorRole == banned  -> content nil
//	moderated             -> content nil
//	isDeleted (comments)  -> content nil
//
// The flags themselves stay readable so the rendering layer can pick a
// distinct placeholder per reason.

// ResolveComment masks a single comment view in place and recurses into its
// replies.
func ResolveComment(c *CommentView) {
	if c == nil {
		return
	}
	if c.AuthorRole == models.RoleBanned || c.Moderated || c.IsDeleted {
		c.Content = nil
		c.ContentHTML = ""
	}
	for _, reply := range c.Replies {
		ResolveComment(reply)
	}
}

// ResolveCommentTree masks a whole forest of comment views.
func ResolveCommentTree(comments []*CommentView) {
	for _, c := range comments {
		ResolveComment(c)
	}
}

// ResolveTopic masks a topic view and its comment tree. A moderated topic is
// not masked but fully suppressed; callers must check ErrTopicModerated
// before reaching this point, so moderation here only guards against misuse.
func ResolveTopic(t *TopicView) {
	if t == nil {
		return
	}
	if t.AuthorRole == models.RoleBanned || t.Moderated {
		t.Content = nil
		t.ContentHTML = ""
	}
	ResolveCommentTree(t.Comments)
}
