package http

import (
	"net/http"

	"github.com/taskwire/taskwire/pkg/httpx"
	"github.com/taskwire/taskwire/pkg/oauthsdk"
)

// MetadataHandler serves GET /.well-known/oauth-authorization-server with the
// RFC 8414 discovery document. The document is static per issuer.
func MetadataHandler(issuer string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc := oauthsdk.AuthorizationServerMetadata{
			Issuer:                            issuer,
			AuthorizationEndpoint:             issuer + "/authorize",
			TokenEndpoint:                     issuer + "/token",
			RegistrationEndpoint:              issuer + "/register",
			IntrospectionEndpoint:             issuer + "/introspect",
			ResponseTypesSupported:            []string{"code"},
			GrantTypesSupported:               []string{"authorization_code"},
			CodeChallengeMethodsSupported:     []string{"S256"},
			TokenEndpointAuthMethodsSupported: []string{"none", "client_secret_basic"},
			ScopesSupported:                   []string{"mcp:read", "mcp:write"},
			SubjectTypesSupported:             []string{"public"},
		}
		httpx.WriteJSON(w, http.StatusOK, doc)
	}
}
