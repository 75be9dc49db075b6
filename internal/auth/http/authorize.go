package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/taskwire/taskwire/internal/auth/service"
	"github.com/taskwire/taskwire/pkg/oauthsdk"
	"github.com/taskwire/taskwire/pkg/slogx"
)

// AuthorizeHandler serves GET /authorize.
//
// Every well-formed request from a registered client is approved without a
// consent step, so failures are answered as 400 JSON bodies rather than
// error redirects. A client that cannot render the redirect would not render
// an error redirect either.
type AuthorizeHandler struct {
	AuthorizeService *service.AuthorizeService
}

func (h *AuthorizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	q := r.URL.Query()

	resp, err := h.AuthorizeService.IssueAuthorizationCode(ctx, service.AuthorizeRequest{
		ResponseType:        q.Get("response_type"),
		ClientID:            q.Get("client_id"),
		RedirectURI:         q.Get("redirect_uri"),
		Scope:               q.Get("scope"),
		State:               q.Get("state"),
		CodeChallenge:       q.Get("code_challenge"),
		CodeChallengeMethod: q.Get("code_challenge_method"),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidClient):
			oauthsdk.ErrInvalidClient.WriteError(w)
		// An unregistered redirect_uri is an invalid_request here; the
		// invalid_redirect_uri code belongs to registration.
		case errors.Is(err, service.ErrInvalidRedirectURI):
			oauthsdk.ErrInvalidRequest.WriteError(w)
		case errors.Is(err, service.ErrInvalidRequest):
			oauthsdk.ErrInvalidRequest.WriteError(w)
		default:
			log.Error("authorization failed", "err", err)
			oauthsdk.ErrServerError.WriteError(w)
		}
		return
	}

	location, err := url.Parse(resp.RedirectURI)
	if err != nil {
		oauthsdk.ErrInvalidRedirectURI.WriteError(w)
		return
	}
	params := location.Query()
	params.Set("code", resp.Code)
	if resp.State != "" {
		params.Set("state", resp.State)
	}
	location.RawQuery = params.Encode()

	http.Redirect(w, r, location.String(), http.StatusFound)
}
