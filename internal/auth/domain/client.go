package domain

import "time"

// Client is a dynamically registered OAuth client (RFC 7591).
type Client struct {
	ID            string // client_id, UUID, immutable once issued
	SecretHash    string // argon2id hash; the plaintext secret is shown once at registration
	RedirectURIs  []string
	GrantTypes    []string
	ResponseTypes []string
	Scope         string // space-delimited
	Name          string
	CreatedAt     time.Time
	ExpiresAt     time.Time // advisory 30-day expiry; not enforced on lookup
}
