package model

import "time"

// User represents an application user record as stored in the
// `users` table.  Password holds the bcrypt hash and is never
// serialised.
type User struct {
	ID        string    `json:"id"`       // users.id (UUID)
	Username  string    `json:"username"` // users.username (unique)
	Email     string    `json:"email"`    // users.email (unique)
	Password  string    `json:"-"`        // users.password (bcrypt)
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicUser is the shape returned to clients after signup and signin.
type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is the shape returned by the "me" endpoints.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public strips everything a client must not see.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
}

// Profile returns the username/email pair.
func (u User) Profile() Profile {
	return Profile{Username: u.Username, Email: u.Email}
}

// RefreshToken models an entry in the `refresh_tokens` table.  The
// plain token is not stored; only its SHA-256 hash.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – owner of the token.
//	TokenHash – SHA-256 hex digest of the token value.
//	ExpiresAt – expiry as unix seconds.
//	CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64    // refresh_tokens.id
	UserID    string    // refresh_tokens.user_id
	TokenHash string    // refresh_tokens.token_hash
	ExpiresAt int64     // refresh_tokens.expires_at
	CreatedAt time.Time // refresh_tokens.created_at
}
