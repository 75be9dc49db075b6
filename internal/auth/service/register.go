package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskwire/taskwire/internal/auth/domain"
	"github.com/taskwire/taskwire/internal/auth/store"
	"github.com/taskwire/taskwire/pkg/cryptox"
	"github.com/taskwire/taskwire/pkg/slogx"
)

// Registration defaults applied when the client omits optional metadata.
const (
	DefaultScope      = "mcp:read mcp:write"
	DefaultClientName = "MCP Client"

	// ClientTTL is advisory; lookups never enforce it, housekeeping reaps it.
	ClientTTL = 30 * 24 * time.Hour
)

// RegistrationService implements RFC 7591 dynamic client registration.
type RegistrationService struct {
	Store store.Store
}

// RegisterRequest captures the client metadata accepted at registration.
// Unknown fields are ignored at the HTTP layer.
type RegisterRequest struct {
	RedirectURIs  []string
	GrantTypes    []string
	ResponseTypes []string
	Scope         string
	ClientName    string
}

// RegisterResponse carries the issued credentials. Secret is the plaintext
// client_secret; it is returned exactly once and stored only as a hash.
type RegisterResponse struct {
	Client domain.Client
	Secret string
}

// Register validates the metadata, mints credentials, and persists the client.
//
// Returns ErrInvalidRedirectURI when redirect_uris is missing or contains a
// relative or fragment-carrying URI.
func (s *RegistrationService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	log := slogx.FromContext(ctx)

	if len(req.RedirectURIs) == 0 {
		return nil, ErrInvalidRedirectURI
	}
	for _, raw := range req.RedirectURIs {
		u, err := url.Parse(raw)
		if err != nil || !u.IsAbs() || u.Fragment != "" {
			return nil, ErrInvalidRedirectURI
		}
	}

	grantTypes := req.GrantTypes
	if len(grantTypes) == 0 {
		grantTypes = []string{"authorization_code"}
	}
	responseTypes := req.ResponseTypes
	if len(responseTypes) == 0 {
		responseTypes = []string{"code"}
	}
	scope := strings.TrimSpace(req.Scope)
	if scope == "" {
		scope = DefaultScope
	}
	name := strings.TrimSpace(req.ClientName)
	if name == "" {
		name = DefaultClientName
	}

	secret := cryptox.MustGenerateToken(cryptox.TokenSize256)
	secretHash, err := cryptox.HashSecret(secret)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	client := domain.Client{
		ID:            uuid.NewString(),
		SecretHash:    secretHash,
		RedirectURIs:  req.RedirectURIs,
		GrantTypes:    grantTypes,
		ResponseTypes: responseTypes,
		Scope:         scope,
		Name:          name,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ClientTTL),
	}

	if err := s.Store.Clients().CreateClient(ctx, client); err != nil {
		return nil, err
	}

	log.Info("client registered", "client_id", client.ID, "client_name", client.Name)
	return &RegisterResponse{Client: client, Secret: secret}, nil
}
