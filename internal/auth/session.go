package auth

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/hearthforum/hearth/internal/db"
)

// Resolver turns bearer tokens into identities. Sessions are minted
// elsewhere; this service only reads them, honoring expiry.
type Resolver struct {
	sessions *db.SessionRepository
}

// NewResolver creates a new session resolver
func NewResolver(gdb *gorm.DB) *Resolver {
	return &Resolver{sessions: db.NewSessionRepository(db.NewRepository(gdb))}
}

// Resolve looks up a session token. An unknown or expired token yields the
// anonymous identity, not an error; the capability checks downstream decide
// what anonymous callers may do.
func (r *Resolver) Resolve(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, nil
	}
	session, err := r.sessions.GetByToken(ctx, token)
	if err != nil {
		return Identity{}, err
	}
	if session == nil || session.Expired(time.Now()) {
		return Identity{}, nil
	}
	return Identity{UserID: session.UserID, Role: session.User.Role}, nil
}
