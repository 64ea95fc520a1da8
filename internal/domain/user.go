package domain

import "time"

// Role represents what a user does on the platform.
type Role string

const (
	// RoleWriter can publish books, upload EPUBs, and fork forkable books.
	RoleWriter Role = "writer"
	// RoleReader can love, bookmark, rate, and comment on books.
	RoleReader Role = "reader"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleWriter || r == RoleReader
}

// User represents an account on the platform. A user is both a potential
// publisher (books they upload or fork) and a reader (interactions).
type User struct {
	Syncable
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	PasswordHash   string   `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	FullName       string   `json:"full_name"`
	Role           Role     `json:"role"`
	FavoriteGenres []string `json:"favorite_genres,omitempty"` // Genre IDs
	IsRoot         bool     `json:"is_root"`
	LastLoginAt    time.Time `json:"last_login_at"`
}

// IsWriter returns true if the user can publish and fork books.
func (u *User) IsWriter() bool {
	return u.Role == RoleWriter
}
