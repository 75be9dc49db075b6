package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taskwire/taskwire/internal/auth/service"
	"github.com/taskwire/taskwire/pkg/httpx"
	"github.com/taskwire/taskwire/pkg/oauthsdk"
	"github.com/taskwire/taskwire/pkg/slogx"
)

// RegisterHandler serves POST /register (RFC 7591 dynamic registration).
type RegisterHandler struct {
	RegistrationService *service.RegistrationService
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req oauthsdk.RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		oauthsdk.NewOAuth2Error(http.StatusBadRequest, "invalid_request", "Request body must be a JSON object").WriteError(w)
		return
	}

	resp, err := h.RegistrationService.Register(ctx, service.RegisterRequest{
		RedirectURIs:  req.RedirectURIs,
		GrantTypes:    req.GrantTypes,
		ResponseTypes: req.ResponseTypes,
		Scope:         req.Scope,
		ClientName:    req.ClientName,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidRedirectURI) {
			oauthsdk.NewOAuth2Error(http.StatusBadRequest, "invalid_redirect_uri", "redirect_uris must contain at least one absolute URI without a fragment").WriteError(w)
			return
		}
		log.Error("client registration failed", "err", err)
		oauthsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, oauthsdk.RegistrationResponse{
		ClientID:      resp.Client.ID,
		ClientSecret:  resp.Secret,
		RedirectURIs:  resp.Client.RedirectURIs,
		GrantTypes:    resp.Client.GrantTypes,
		ResponseTypes: resp.Client.ResponseTypes,
		ClientName:    resp.Client.Name,
		Scope:         resp.Client.Scope,
	})
}
