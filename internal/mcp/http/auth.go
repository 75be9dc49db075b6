package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/taskwire/taskwire/pkg/oauthsdk"
	"github.com/taskwire/taskwire/pkg/slogx"
)

// TokenValidator decides whether a presented Bearer token is active.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (bool, error)
}

// IntrospectValidator checks tokens against the authorization server's
// introspection endpoint on every request. Revocation therefore takes effect
// immediately at the cost of one upstream round trip per call.
type IntrospectValidator struct {
	Client *oauthsdk.Client
}

func (v *IntrospectValidator) Validate(ctx context.Context, token string) (bool, error) {
	resp, err := v.Client.Introspect(ctx, token)
	if err != nil {
		return false, err
	}
	return resp.Active, nil
}

// AllowAllValidator accepts any non-empty token. Used when token validation
// is switched off; the Bearer header itself is still required.
type AllowAllValidator struct{}

func (AllowAllValidator) Validate(ctx context.Context, token string) (bool, error) {
	return true, nil
}

// RequireBearer rejects requests without an active Bearer token. Every
// rejection is a 401 with the same body so callers cannot distinguish a
// missing header from a revoked token.
func RequireBearer(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				oauthsdk.ErrUnauthorized.WriteError(w)
				return
			}

			active, err := validator.Validate(r.Context(), token)
			if err != nil {
				slogx.FromContext(r.Context()).Error("token introspection failed", "error", err)
				oauthsdk.ErrUnauthorized.WriteError(w)
				return
			}
			if !active {
				oauthsdk.ErrUnauthorized.WriteError(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
