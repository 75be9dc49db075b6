package domain

import "time"

// AccessToken is an opaque bearer credential. Stored by fingerprint; validity
// is decided solely by expires_at at introspection time.
type AccessToken struct {
	ID        string
	TokenHash string
	ClientID  string
	Scope     string
	CreatedAt time.Time
	ExpiresAt time.Time
}
