package http

import (
	"net/http"

	"github.com/taskwire/taskwire/internal/auth/service"
	"github.com/taskwire/taskwire/pkg/httpx"
	"github.com/taskwire/taskwire/pkg/oauthsdk"
	"github.com/taskwire/taskwire/pkg/slogx"
)

// IntrospectHandler serves POST /introspect (RFC 7662).
//
// The endpoint never reports why a token is inactive. Malformed requests,
// unknown tokens, and expired tokens all answer 200 {"active": false}.
type IntrospectHandler struct {
	IntrospectService *service.IntrospectService
}

func (h *IntrospectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	inactive := oauthsdk.IntrospectionResponse{Active: false}

	if err := r.ParseForm(); err != nil {
		httpx.WriteJSON(w, http.StatusOK, inactive)
		return
	}

	result, err := h.IntrospectService.Introspect(ctx, r.Form.Get("token"))
	if err != nil {
		log.Error("introspection lookup failed", "err", err)
		httpx.WriteJSON(w, http.StatusOK, inactive)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, oauthsdk.IntrospectionResponse{
		Active:   result.Active,
		ClientID: result.ClientID,
		Scope:    result.Scope,
		Exp:      result.Exp,
		Iat:      result.Iat,
	})
}
