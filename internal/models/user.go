package models

import "time"

// Account represents a trainer's login in the system.
type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	CreatedAt    time.Time `json:"created_at"`
}

// Caller identifies the authenticated account behind a request. It is
// resolved once per request and handed to every service call.
type Caller struct {
	AccountID int64
	SessionID string
}

// Session is the server-side record behind a session cookie.
type Session struct {
	ID        string
	AccountID int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer usable at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
