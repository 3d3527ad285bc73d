package models

import (
	"time"
)

// User roles. A banned user keeps its rows but loses all write access,
// and its existing content is masked on read.
const (
	RoleUser   = "user"
	RoleAdmin  = "admin"
	RoleBanned = "banned"
)

// User is owned by the external identity provider; this service reads it
// and only ever mutates role and profile fields.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex" json:"email"`
	Role      string    `gorm:"size:20;default:'user';not null" json:"role"`
	Bio       string    `gorm:"size:500" json:"bio"`
	BannerURL string    `json:"banner_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsBanned reports whether the user may not write.
func (u *User) IsBanned() bool {
	return u.Role == RoleBanned
}

// IsAdmin reports whether the user may moderate.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
