package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/taskwire/taskwire/internal/auth/domain"
	"github.com/taskwire/taskwire/internal/auth/store"
	"github.com/taskwire/taskwire/pkg/cryptox"
	"github.com/taskwire/taskwire/pkg/idx"
	"github.com/taskwire/taskwire/pkg/slogx"
)

// DefaultTokenTTL is the access token lifetime.
const DefaultTokenTTL = time.Hour

// TokenService exchanges authorization codes for access tokens.
type TokenService struct {
	Store    store.Store
	TokenTTL time.Duration
}

// TokenRequest captures the form parameters of a token request.
type TokenRequest struct {
	GrantType    string
	Code         string
	RedirectURI  string
	ClientID     string
	ClientSecret string
	CodeVerifier string
}

// TokenResult is the successful exchange payload.
type TokenResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int
	Scope       string
}

// ExchangeAuthorizationCode redeems a code for a bearer token.
//
// The code is consumed before any further validation. A redemption attempt
// with a wrong verifier, client, or redirect_uri burns the code; the client
// must restart the grant. That keeps the at-most-once property unconditional.
//
// Returns:
//   - ErrUnsupportedGrantType when grant_type is not "authorization_code"
//   - ErrInvalidRequest when a required parameter is missing
//   - ErrInvalidGrant when the code is unknown, expired, already consumed, or
//     fails the PKCE / client / redirect binding
//   - ErrInvalidClient when a supplied client_secret does not verify
func (s *TokenService) ExchangeAuthorizationCode(ctx context.Context, req TokenRequest) (*TokenResult, error) {
	log := slogx.FromContext(ctx)

	if strings.TrimSpace(req.GrantType) != "authorization_code" {
		return nil, ErrUnsupportedGrantType
	}
	if strings.TrimSpace(req.Code) == "" ||
		strings.TrimSpace(req.RedirectURI) == "" ||
		strings.TrimSpace(req.ClientID) == "" ||
		strings.TrimSpace(req.CodeVerifier) == "" {
		return nil, ErrInvalidRequest
	}

	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	// Consume and mint run in one transaction so a redeemed code and its token
	// commit together. Denials after the consume return nil from the
	// transaction function: rolling back would resurrect the code, and a
	// denied redemption must still burn it.
	var result *TokenResult
	var denied error

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		code, err := tx.AuthorizationCodes().ConsumeAuthorizationCode(ctx, cryptox.FingerprintToken(req.Code))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				denied = ErrInvalidGrant
				return nil
			}
			return err
		}

		now := time.Now().UTC()
		if now.After(code.ExpiresAt) {
			log.Warn("token: expired code redemption attempt", "client_id", req.ClientID)
			denied = ErrInvalidGrant
			return nil
		}
		if code.ClientID != req.ClientID {
			denied = ErrInvalidGrant
			return nil
		}
		if code.RedirectURI != req.RedirectURI {
			denied = ErrInvalidGrant
			return nil
		}
		if !cryptox.VerifyS256(req.CodeVerifier, code.CodeChallenge) {
			log.Warn("token: PKCE verification failed", "client_id", req.ClientID)
			denied = ErrInvalidGrant
			return nil
		}

		// client_secret is optional (public PKCE clients authenticate with the
		// verifier alone), but when supplied it must match.
		if req.ClientSecret != "" {
			client, err := tx.Clients().GetClientByID(ctx, req.ClientID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					denied = ErrInvalidClient
					return nil
				}
				return err
			}
			if cryptox.VerifySecret(req.ClientSecret, client.SecretHash) != nil {
				denied = ErrInvalidClient
				return nil
			}
		}

		token := cryptox.MustGenerateToken(cryptox.TokenSize256)
		record := domain.AccessToken{
			ID:        idx.New().String(),
			TokenHash: cryptox.FingerprintToken(token),
			ClientID:  code.ClientID,
			Scope:     code.Scope,
			CreatedAt: now,
			ExpiresAt: now.Add(ttl),
		}

		if err := tx.AccessTokens().CreateAccessToken(ctx, record); err != nil {
			return err
		}

		result = &TokenResult{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int(ttl / time.Second),
			Scope:       code.Scope,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if denied != nil {
		return nil, denied
	}

	log.Info("access token issued", "client_id", req.ClientID, "scope", result.Scope)
	return result, nil
}
