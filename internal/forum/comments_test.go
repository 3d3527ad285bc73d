package forum

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hearthforum/hearth/internal/models"
)

func TestCreateCommentFansOutDecorated(t *testing.T) {
	gdb := newTestDB(t)
	bus := &recordingBus{}
	svc := NewCommentService(gdb, bus, DefaultAvatarBaseURL)
	ctx := context.Background()

	alice := seedUser(t, gdb, "alice", models.RoleUser)
	category := seedCategory(t, gdb, "general")
	topic := seedTopic(t, gdb, alice, category, "topic")

	view, err := svc.Create(ctx, ident(alice), topic.ID, nil, "**hello** world")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if view.Content == nil || *view.Content != "**hello** world" {
		t.Errorf("content = %v, want raw markdown", view.Content)
	}
	if !strings.Contains(view.ContentHTML, "<strong>hello</strong>") {
		t.Errorf("contentHtml = %q, want rendered markdown", view.ContentHTML)
	}
	if view.AuthorUsername != "alice" || view.AuthorRole != models.RoleUser {
		t.Errorf("author decoration = %s/%s", view.AuthorUsername, view.AuthorRole)
	}
	if !strings.Contains(view.AvatarURL, "seed=alice") {
		t.Errorf("avatar = %q, want seeded URL", view.AvatarURL)
	}
	if view.VoteCount != 0 || view.UserVote != 0 || len(view.Replies) != 0 {
		t.Errorf("new comment not at initial state: %+v", view)
	}

	got := bus.last(t)
	if got.Channel != TopicChannel(topic.ID) || got.Event != EventNewComment {
		t.Errorf("fan-out = %s/%s, want %s/%s", got.Channel, got.Event, TopicChannel(topic.ID), EventNewComment)
	}
	payload, ok := got.Payload.(*CommentView)
	if !ok {
		t.Fatalf("payload type = %T, want *CommentView", got.Payload)
	}
	if payload.ID != view.ID {
		t.Errorf("payload id = %s, want %s", payload.ID, view.ID)
	}
}

func TestCreateCommentParentChecks(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb, nil, "")
	ctx := context.Background()

	alice := seedUser(t, gdb, "alice", models.RoleUser)
	category := seedCategory(t, gdb, "general")
	topic := seedTopic(t, gdb, alice, category, "topic")
	other := seedTopic(t, gdb, alice, category, "other")
	stranger := seedComment(t, gdb, alice, other, nil, "elsewhere")

	missing := "does-not-exist"
	if _, err := svc.Create(ctx, ident(alice), topic.ID, &missing, "reply"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing parent: err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Create(ctx, ident(alice), topic.ID, &stranger.ID, "reply"); !IsValidation(err) {
		t.Errorf("cross-topic parent: err = %v, want validation error", err)
	}
	if _, err := svc.Create(ctx, ident(alice), "nope", nil, "reply"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing topic: err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Create(ctx, ident(alice), topic.ID, nil, "   "); !IsValidation(err) {
		t.Errorf("blank content: err = %v, want validation error", err)
	}
}

func TestCreateCommentOnModeratedTopic(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb, nil, "")
	ctx := context.Background()

	alice := seedUser(t, gdb, "alice", models.RoleUser)
	category := seedCategory(t, gdb, "general")
	topic := seedTopic(t, gdb, alice, category, "topic")
	gdb.Model(topic).Update("moderated", true)

	if _, err := svc.Create(ctx, ident(alice), topic.ID, nil, "hi"); !errors.Is(err, ErrTopicModerated) {
		t.Errorf("err = %v, want ErrTopicModerated", err)
	}
}

func TestSoftDeleteOwnerOnly(t *testing.T) {
	gdb := newTestDB(t)
	bus := &recordingBus{}
	svc := NewCommentService(gdb, bus, "")
	ctx := context.Background()

	alice := seedUser(t, gdb, "alice", models.RoleUser)
	bob := seedUser(t, gdb, "bob", models.RoleUser)
	category := seedCategory(t, gdb, "general")
	topic := seedTopic(t, gdb, alice, category, "topic")
	comment := seedComment(t, gdb, alice, topic, nil, "mine")

	if err := svc.SoftDelete(ctx, ident(bob), comment.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner delete: err = %v, want ErrForbidden", err)
	}
	if err := svc.SoftDelete(ctx, ident(alice), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing comment: err = %v, want ErrNotFound", err)
	}

	if err := svc.SoftDelete(ctx, ident(alice), comment.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}

	got := bus.last(t)
	if got.Event != EventCommentUpdated || got.Channel != TopicChannel(topic.ID) {
		t.Errorf("fan-out = %s/%s, want %s/%s", got.Channel, got.Event, TopicChannel(topic.ID), EventCommentUpdated)
	}
	event, ok := got.Payload.(CommentUpdatedEvent)
	if !ok {
		t.Fatalf("payload type = %T, want CommentUpdatedEvent", got.Payload)
	}
	if event.ID != comment.ID || !event.IsDeleted {
		t.Errorf("payload = %+v, want id=%s isDeleted=true", event, comment.ID)
	}
}

func TestFetchTopicBuildsTree(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb, nil, "")
	ctx := context.Background()

	alice := seedUser(t, gdb, "alice", models.RoleUser)
	bob := seedUser(t, gdb, "bob", models.RoleUser)
	category := seedCategory(t, gdb, "general")
	topic := seedTopic(t, gdb, alice, category, "topic")

	a := seedComment(t, gdb, alice, topic, nil, "a")
	b := seedComment(t, gdb, bob, topic, &a.ID, "b")
	c := seedComment(t, gdb, alice, topic, &b.ID, "c")
	d := seedComment(t, gdb, bob, topic, nil, "d")

	view, err := svc.FetchTopicWithComments(ctx, topic.ID, "")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(view.Comments) != 2 {
		t.Fatalf("top-level comments = %d, want 2", len(view.Comments))
	}
	if view.Comments[0].ID != a.ID || view.Comments[1].ID != d.ID {
		t.Errorf("top-level order = %s,%s, want %s,%s", view.Comments[0].ID, view.Comments[1].ID, a.ID, d.ID)
	}
	if len(view.Comments[0].Replies) != 1 || view.Comments[0].Replies[0].ID != b.ID {
		t.Fatalf("a's replies wrong: %+v", view.Comments[0].Replies)
	}
	nested := view.Comments[0].Replies[0].Replies
	if len(nested) != 1 || nested[0].ID != c.ID {
		t.Errorf("b's replies wrong: %+v", nested)
	}
}

func TestFetchTopicOrphanedReplySurfacesAtTopLevel(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb, nil, "")
	ctx := context.Background()

	alice := seedUser(t, gdb, "alice", models.RoleUser)
	category := seedCategory(t, gdb, "general")
	topic := seedTopic(t, gdb, alice, category, "topic")

	ghost := "vanished-parent"
	orphan := seedComment(t, gdb, alice, topic, &ghost, "orphan")

	view, err := svc.FetchTopicWithComments(ctx, topic.ID, "")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(view.Comments) != 1 || view.Comments[0].ID != orphan.ID {
		t.Errorf("orphan not at top level: %+v", view.Comments)
	}
}

func TestFetchTopicModerated(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb, nil, "")
	ctx := context.Background()

	alice := seedUser(t, gdb, "alice", models.RoleUser)
	category := seedCategory(t, gdb, "general")
	topic := seedTopic(t, gdb, alice, category, "topic")
	gdb.Model(topic).Update("moderated", true)

	if _, err := svc.FetchTopicWithComments(ctx, topic.ID, ""); !errors.Is(err, ErrTopicModerated) {
		t.Errorf("err = %v, want ErrTopicModerated", err)
	}
	if _, err := svc.FetchTopicWithComments(ctx, "nope", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFetchTopicVoteDecoration(t *testing.T) {
	gdb := newTestDB(t)
	votes := NewVoteService(gdb, nil)
	svc := NewCommentService(gdb, nil, "")
	ctx := context.Background()

	alice := seedUser(t, gdb, "alice", models.RoleUser)
	bob := seedUser(t, gdb, "bob", models.RoleUser)
	category := seedCategory(t, gdb, "general")
	topic := seedTopic(t, gdb, alice, category, "topic")
	comment := seedComment(t, gdb, alice, topic, nil, "hello")

	if _, err := votes.Cast(ctx, ident(alice), TargetTopic, topic.ID, models.VoteUp); err != nil {
		t.Fatalf("cast failed: %v", err)
	}
	if _, err := votes.Cast(ctx, ident(bob), TargetTopic, topic.ID, models.VoteUp); err != nil {
		t.Fatalf("cast failed: %v", err)
	}
	if _, err := votes.Cast(ctx, ident(bob), TargetComment, comment.ID, models.VoteDown); err != nil {
		t.Fatalf("cast failed: %v", err)
	}

	view, err := svc.FetchTopicWithComments(ctx, topic.ID, bob.ID)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if view.VoteCount != 2 || view.UserVote != 1 {
		t.Errorf("topic votes = %d/%d, want 2/1", view.VoteCount, view.UserVote)
	}
	if len(view.Comments) != 1 {
		t.Fatalf("comments = %d, want 1", len(view.Comments))
	}
	if view.Comments[0].VoteCount != -1 || view.Comments[0].UserVote != -1 {
		t.Errorf("comment votes = %d/%d, want -1/-1", view.Comments[0].VoteCount, view.Comments[0].UserVote)
	}

	// Anonymous viewer sees aggregates but no own-vote marker
	anon, err := svc.FetchTopicWithComments(ctx, topic.ID, "")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if anon.UserVote != 0 || anon.Comments[0].UserVote != 0 {
		t.Errorf("anonymous viewer has user votes: %d/%d", anon.UserVote, anon.Comments[0].UserVote)
	}
}

func TestFetchTopicMasksDeletedButKeepsReplies(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb, nil, "")
	ctx := context.Background()

	alice := seedUser(t, gdb, "alice", models.RoleUser)
	bob := seedUser(t, gdb, "bob", models.RoleUser)
	category := seedCategory(t, gdb, "general")
	topic := seedTopic(t, gdb, alice, category, "topic")

	parent := seedComment(t, gdb, alice, topic, nil, "going away")
	child := seedComment(t, gdb, bob, topic, &parent.ID, "still here")

	if err := svc.SoftDelete(ctx, ident(alice), parent.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	view, err := svc.FetchTopicWithComments(ctx, topic.ID, "")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(view.Comments) != 1 {
		t.Fatalf("top-level = %d, want 1", len(view.Comments))
	}
	masked := view.Comments[0]
	if masked.Content != nil || masked.ContentHTML != "" {
		t.Errorf("deleted comment content not masked: %v / %q", masked.Content, masked.ContentHTML)
	}
	if !masked.IsDeleted {
		t.Error("isDeleted flag not set")
	}
	if len(masked.Replies) != 1 || masked.Replies[0].ID != child.ID {
		t.Fatalf("reply pruned: %+v", masked.Replies)
	}
	if masked.Replies[0].Content == nil || *masked.Replies[0].Content != "still here" {
		t.Errorf("child content masked: %v", masked.Replies[0].Content)
	}
}
