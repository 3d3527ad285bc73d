package forum

import (
	"context"
	"errors"
	"testing"

	"github.com/hearthforum/hearth/internal/models"
)

func TestUpdateRoleBanRevokesSessions(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewUserService(gdb, "")
	ctx := context.Background()

	admin := seedUser(t, gdb, "admin", models.RoleAdmin)
	mallory := seedUser(t, gdb, "mallory", models.RoleUser)
	other := seedUser(t, gdb, "other", models.RoleUser)
	seedSession(t, gdb, mallory)
	seedSession(t, gdb, mallory)
	keep := seedSession(t, gdb, other)

	if err := svc.UpdateRole(ctx, ident(admin), mallory.ID, models.RoleBanned); err != nil {
		t.Fatalf("ban failed: %v", err)
	}

	var reloaded models.User
	if err := gdb.First(&reloaded, "id = ?", mallory.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Role != models.RoleBanned {
		t.Errorf("role = %s, want banned", reloaded.Role)
	}

	var count int64
	gdb.Model(&models.Session{}).Where("user_id = ?", mallory.ID).Count(&count)
	if count != 0 {
		t.Errorf("banned user still has %d sessions, want 0", count)
	}
	gdb.Model(&models.Session{}).Where("id = ?", keep.ID).Count(&count)
	if count != 1 {
		t.Error("unrelated session revoked")
	}
}

func TestUpdateRoleRestore(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewUserService(gdb, "")
	ctx := context.Background()

	admin := seedUser(t, gdb, "admin", models.RoleAdmin)
	mallory := seedUser(t, gdb, "mallory", models.RoleBanned)

	if err := svc.UpdateRole(ctx, ident(admin), mallory.ID, models.RoleUser); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	var reloaded models.User
	gdb.First(&reloaded, "id = ?", mallory.ID)
	if reloaded.Role != models.RoleUser {
		t.Errorf("role = %s, want user", reloaded.Role)
	}
}

func TestUpdateRoleGuards(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewUserService(gdb, "")
	ctx := context.Background()

	admin := seedUser(t, gdb, "admin", models.RoleAdmin)
	alice := seedUser(t, gdb, "alice", models.RoleUser)

	if err := svc.UpdateRole(ctx, ident(alice), admin.ID, models.RoleUser); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-admin: err = %v, want ErrForbidden", err)
	}
	if err := svc.UpdateRole(ctx, ident(admin), admin.ID, models.RoleUser); !IsValidation(err) {
		t.Errorf("self-change: err = %v, want validation error", err)
	}
	if err := svc.UpdateRole(ctx, ident(admin), alice.ID, "emperor"); !IsValidation(err) {
		t.Errorf("unknown role: err = %v, want validation error", err)
	}
	if err := svc.UpdateRole(ctx, ident(admin), "nope", models.RoleBanned); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user: err = %v, want ErrNotFound", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewUserService(gdb, DefaultAvatarBaseURL)
	ctx := context.Background()

	alice := seedUser(t, gdb, "alice", models.RoleUser)

	name := "Alice A."
	bio := "  hello there  "
	banner := "https://example.com/banner.png"
	view, err := svc.UpdateProfile(ctx, ident(alice), ProfileUpdate{
		Name:      &name,
		Bio:       &bio,
		BannerURL: &banner,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if view.Name != "Alice A." || view.Bio != "hello there" || view.BannerURL != banner {
		t.Errorf("profile = %+v", view)
	}

	// Clearing the banner is allowed
	empty := ""
	view, err = svc.UpdateProfile(ctx, ident(alice), ProfileUpdate{BannerURL: &empty})
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if view.BannerURL != "" {
		t.Errorf("banner = %q, want empty", view.BannerURL)
	}
}

func TestUpdateProfileValidation(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewUserService(gdb, "")
	ctx := context.Background()

	alice := seedUser(t, gdb, "alice", models.RoleUser)
	banned := seedUser(t, gdb, "mallory", models.RoleBanned)

	name := "anything"
	if _, err := svc.UpdateProfile(ctx, ident(banned), ProfileUpdate{Name: &name}); !errors.Is(err, ErrForbidden) {
		t.Errorf("banned edit: err = %v, want ErrForbidden", err)
	}

	blank := "   "
	if _, err := svc.UpdateProfile(ctx, ident(alice), ProfileUpdate{Name: &blank}); !IsValidation(err) {
		t.Errorf("blank name: err = %v, want validation error", err)
	}

	bad := []string{
		"not a url",
		"ftp://example.com/banner.png",
		"javascript:alert(1)",
		"/relative/path.png",
	}
	for _, raw := range bad {
		banner := raw
		if _, err := svc.UpdateProfile(ctx, ident(alice), ProfileUpdate{BannerURL: &banner}); !IsValidation(err) {
			t.Errorf("banner %q: err = %v, want validation error", raw, err)
		}
	}
}

func TestGetProfileActivity(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewUserService(gdb, DefaultAvatarBaseURL)
	ctx := context.Background()

	alice := seedUser(t, gdb, "alice", models.RoleUser)
	bob := seedUser(t, gdb, "bob", models.RoleUser)
	category := seedCategory(t, gdb, "general")
	t1 := seedTopic(t, gdb, alice, category, "one")
	hidden := seedTopic(t, gdb, alice, category, "hidden")
	gdb.Model(hidden).Update("moderated", true)

	seedComment(t, gdb, alice, t1, nil, "c1")
	seedComment(t, gdb, bob, t1, nil, "c2")
	deleted := seedComment(t, gdb, alice, t1, nil, "gone")
	gdb.Model(deleted).Update("is_deleted", true)

	view, err := svc.GetProfile(ctx, "alice")
	if err != nil {
		t.Fatalf("get profile failed: %v", err)
	}
	if view.Username != "alice" || view.AvatarURL == "" {
		t.Errorf("profile = %+v", view)
	}
	if len(view.Topics) != 1 || view.Topics[0].Title != "one" {
		t.Errorf("topics = %+v, want moderated excluded", view.Topics)
	}
	if view.Topics[0].CommentCount != 3 {
		t.Errorf("comment count = %d, want 3", view.Topics[0].CommentCount)
	}
	if len(view.Comments) != 2 {
		t.Fatalf("comments = %d, want alice's 2", len(view.Comments))
	}
	for _, c := range view.Comments {
		if c.ID == deleted.ID {
			if c.Content != nil {
				t.Error("deleted comment content not masked on profile")
			}
		} else if c.Content == nil {
			t.Errorf("live comment %s masked on profile", c.ID)
		}
	}

	if _, err := svc.GetProfile(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing profile: err = %v, want ErrNotFound", err)
	}
}

func TestUpdateProfileUsername(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewUserService(gdb, "")
	ctx := context.Background()

	alice := seedUser(t, gdb, "alice", models.RoleUser)
	seedUser(t, gdb, "bob", models.RoleUser)

	taken := "bob"
	if _, err := svc.UpdateProfile(ctx, ident(alice), ProfileUpdate{Username: &taken}); !IsValidation(err) {
		t.Errorf("collision: err = %v, want validation error", err)
	}

	bad := "No Spaces!"
	if _, err := svc.UpdateProfile(ctx, ident(alice), ProfileUpdate{Username: &bad}); !IsValidation(err) {
		t.Errorf("bad charset: err = %v, want validation error", err)
	}

	fresh := "Alice_2"
	view, err := svc.UpdateProfile(ctx, ident(alice), ProfileUpdate{Username: &fresh})
	if err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if view.Username != "alice_2" {
		t.Errorf("username = %q, want lowercased alice_2", view.Username)
	}

	// The caller may resubmit their own current username
	same := "alice_2"
	if _, err := svc.UpdateProfile(ctx, ident(alice), ProfileUpdate{Username: &same}); err != nil {
		t.Errorf("no-op rename failed: %v", err)
	}
}

func TestListUsersAdminOnly(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewUserService(gdb, "")
	ctx := context.Background()

	admin := seedUser(t, gdb, "admin", models.RoleAdmin)
	alice := seedUser(t, gdb, "alice", models.RoleUser)

	if _, err := svc.ListUsers(ctx, ident(alice)); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-admin: err = %v, want ErrForbidden", err)
	}
	users, err := svc.ListUsers(ctx, ident(admin))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("users = %d, want 2", len(users))
	}
}
