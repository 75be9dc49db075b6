package http

import (
	"net/http"

	"github.com/taskwire/taskwire/pkg/httpx"
	"github.com/taskwire/taskwire/pkg/oauthsdk"
)

// MetadataHandler serves the RFC 9728 protected resource metadata that points
// MCP clients at the authorization server.
func MetadataHandler(resource, authServerURL string) http.Handler {
	doc := oauthsdk.ProtectedResourceMetadata{
		Resource:               resource,
		AuthorizationServers:   []string{authServerURL},
		ScopesSupported:        []string{"mcp:read", "mcp:write"},
		BearerMethodsSupported: []string{"header"},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, doc)
	})
}
