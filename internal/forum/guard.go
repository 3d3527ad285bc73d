package forum

import (
	"github.com/hearthforum/hearth/internal/auth"
)

// Capability checks are centralized here so no operation re-implements the
// session/role rules inline.

// RequireWriter admits authenticated, non-banned callers. Every mutating
// operation (vote, comment, report, topic creation, profile edit) runs this
// first.
func RequireWriter(id auth.Identity) error {
	if id.Anonymous() {
		return ErrUnauthorized
	}
	if id.Banned() {
		return ErrForbidden
	}
	return nil
}

// RequireAdmin admits admin callers only.
func RequireAdmin(id auth.Identity) error {
	if id.Anonymous() {
		return ErrUnauthorized
	}
	if !id.Admin() {
		return ErrForbidden
	}
	return nil
}
