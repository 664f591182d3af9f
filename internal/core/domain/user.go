package domain

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is created on login/signup, read on every authenticated
// request, never updated. Expiry is absolute from issuance.
type Session struct {
	ID              string
	UserID          string
	AccessTokenHash string
	UserAgent       string
	IPAddress       string
	ExpiresAt       time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// IssuedSession is the one-time view of a fresh session: the raw token
// exists only here, storage keeps its hash.
type IssuedSession struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionMeta is the client fingerprint recorded with a session.
type SessionMeta struct {
	UserAgent string
	IPAddress string
}
