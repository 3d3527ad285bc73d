package auth

import (
	"github.com/hearthforum/hearth/internal/models"
)

// Identity is the resolved session: who is calling and with which role.
// The zero value means "no session".
type Identity struct {
	UserID string
	Role   string
}

// Anonymous reports whether no session could be resolved.
func (id Identity) Anonymous() bool {
	return id.UserID == ""
}

// Banned reports whether the caller's role forbids writes.
func (id Identity) Banned() bool {
	return id.Role == models.RoleBanned
}

// Admin reports whether the caller may moderate.
func (id Identity) Admin() bool {
	return id.Role == models.RoleAdmin
}
