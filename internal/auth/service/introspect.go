package service

import (
	"context"
	"errors"
	"time"

	"github.com/taskwire/taskwire/internal/auth/store"
	"github.com/taskwire/taskwire/pkg/cryptox"
)

// IntrospectService implements RFC 7662 token introspection.
type IntrospectService struct {
	Store store.Store
}

// IntrospectionResult mirrors the wire response. Inactive results carry only
// Active=false; RFC 7662 forbids leaking anything else about unknown tokens.
type IntrospectionResult struct {
	Active   bool
	ClientID string
	Scope    string
	Exp      int64
	Iat      int64
}

// Introspect reports the state of a token. Unknown, malformed, and expired
// tokens all yield {active:false}; an error is returned only when the store
// itself fails.
func (s *IntrospectService) Introspect(ctx context.Context, token string) (*IntrospectionResult, error) {
	inactive := &IntrospectionResult{Active: false}

	if token == "" {
		return inactive, nil
	}

	record, err := s.Store.AccessTokens().GetAccessTokenByHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return inactive, nil
		}
		return nil, err
	}

	if !time.Now().UTC().Before(record.ExpiresAt) {
		return inactive, nil
	}

	return &IntrospectionResult{
		Active:   true,
		ClientID: record.ClientID,
		Scope:    record.Scope,
		Exp:      record.ExpiresAt.Unix(),
		Iat:      record.CreatedAt.Unix(),
	}, nil
}
