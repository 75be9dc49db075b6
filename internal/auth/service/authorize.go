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

// DefaultCodeTTL bounds the authorize-to-token window.
const DefaultCodeTTL = 10 * time.Minute

// AuthorizeService encapsulates the OAuth2 authorization-code issuance flow.
//
// There is no resource-owner login or consent screen: every well-formed
// request from a registered client is approved immediately. The PKCE binding
// is the security boundary of the grant.
type AuthorizeService struct {
	Store   store.Store
	CodeTTL time.Duration
}

// AuthorizeRequest captures the query parameters of an authorization request.
type AuthorizeRequest struct {
	ResponseType        string
	ClientID            string
	RedirectURI         string
	Scope               string
	State               string
	CodeChallenge       string
	CodeChallengeMethod string
}

// AuthorizeCodeResponse contains the authorization code and redirect
// information used to build the 302 Location header.
type AuthorizeCodeResponse struct {
	Code        string
	RedirectURI string
	State       string
}

// IssueAuthorizationCode validates the request and mints a single-use code.
//
// Returns:
//   - ErrInvalidRequest when response_type is not "code", required parameters
//     are missing, or the PKCE challenge is absent or not S256
//   - ErrInvalidClient when client_id is unknown
//   - ErrInvalidRedirectURI when redirect_uri is not registered for the client
func (s *AuthorizeService) IssueAuthorizationCode(ctx context.Context, req AuthorizeRequest) (*AuthorizeCodeResponse, error) {
	log := slogx.FromContext(ctx)

	if strings.TrimSpace(req.ResponseType) != "code" {
		return nil, ErrInvalidRequest
	}
	if strings.TrimSpace(req.ClientID) == "" || strings.TrimSpace(req.RedirectURI) == "" {
		return nil, ErrInvalidRequest
	}

	// S256 only. A missing challenge, a missing method, or a "plain" method
	// never mints a code.
	if strings.TrimSpace(req.CodeChallenge) == "" ||
		strings.TrimSpace(req.CodeChallengeMethod) != "S256" {
		return nil, ErrInvalidRequest
	}

	client, err := s.Store.Clients().GetClientByID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidClient
		}
		return nil, err
	}

	if !redirectRegistered(client, req.RedirectURI) {
		log.Warn("authorize: redirect_uri not registered", "client_id", client.ID)
		return nil, ErrInvalidRedirectURI
	}

	scope := strings.TrimSpace(req.Scope)
	if scope == "" {
		scope = client.Scope
	}

	ttl := s.CodeTTL
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}

	code := cryptox.MustGenerateToken(cryptox.TokenSize256)
	now := time.Now().UTC()

	record := domain.AuthorizationCode{
		ID:                  idx.New().String(),
		CodeHash:            cryptox.FingerprintToken(code),
		ClientID:            client.ID,
		RedirectURI:         req.RedirectURI,
		Scope:               scope,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: "S256",
		CreatedAt:           now,
		ExpiresAt:           now.Add(ttl),
	}

	if err := s.Store.AuthorizationCodes().CreateAuthorizationCode(ctx, record); err != nil {
		return nil, err
	}

	log.Info("authorization code issued", "client_id", client.ID, "scope", scope)
	return &AuthorizeCodeResponse{
		Code:        code,
		RedirectURI: req.RedirectURI,
		State:       req.State,
	}, nil
}

func redirectRegistered(client domain.Client, redirectURI string) bool {
	for _, registered := range client.RedirectURIs {
		if registered == redirectURI {
			return true
		}
	}
	return false
}
