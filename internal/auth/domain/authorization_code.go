package domain

import "time"

// AuthorizationCode is a single-use credential bridging the authorize and
// token steps. The raw code is never stored, only its SHA-256 fingerprint.
type AuthorizationCode struct {
	ID                  string
	CodeHash            string
	ClientID            string // the client the code was issued to
	RedirectURI         string
	Scope               string
	CodeChallenge       string
	CodeChallengeMethod string // always "S256"; plain is never issued
	CreatedAt           time.Time
	ExpiresAt           time.Time
}
