package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	authhttp "github.com/taskwire/taskwire/internal/auth/http"
	"github.com/taskwire/taskwire/internal/auth/service"
	"github.com/taskwire/taskwire/internal/auth/store/drivers/sqlite"
	"github.com/taskwire/taskwire/internal/mcp/dispatch"
	mcphttp "github.com/taskwire/taskwire/internal/mcp/http"
	"github.com/taskwire/taskwire/internal/mcp/jira"
	"github.com/taskwire/taskwire/pkg/cryptox"
	"github.com/taskwire/taskwire/pkg/mcp"
	"github.com/taskwire/taskwire/pkg/oauthsdk"
	"github.com/taskwire/taskwire/pkg/slogx"
)

const (
	redirectURI  = "https://app.example/callback"
	codeVerifier = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
)

// stack is a full deployment in miniature: an authorization server, a fake
// issue tracker and the gateway introspecting against the former and proxying
// to the latter.
type stack struct {
	auth    *httptest.Server
	gateway *httptest.Server
	sdk     *oauthsdk.Client
}

func newStack(t *testing.T) *stack {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	logger := slogx.Discard()

	authRouter := authhttp.NewRouter("http://auth.test", "test", st, logger)
	authRouter.RegistrationService = &service.RegistrationService{Store: st}
	authRouter.AuthorizeService = &service.AuthorizeService{Store: st}
	authRouter.TokenService = &service.TokenService{Store: st}
	authRouter.IntrospectService = &service.IntrospectService{Store: st}
	authRouter.ApplyRoutes()

	authSrv := httptest.NewServer(authRouter)
	t.Cleanup(authSrv.Close)

	jiraSrv := httptest.NewServer(http.HandlerFunc(fakeJira))
	t.Cleanup(jiraSrv.Close)

	backend := jira.NewClient(jiraSrv.URL, "bot@example.com", "api-token")

	gwRouter := mcphttp.NewRouter("http://mcp.test", authSrv.URL, "test", logger)
	gwRouter.Backend = backend
	gwRouter.Dispatcher = &dispatch.Dispatcher{Backend: backend, Logger: logger}
	gwRouter.Validator = &mcphttp.IntrospectValidator{Client: oauthsdk.NewClient(authSrv.URL)}
	gwRouter.ApplyRoutes()

	gwSrv := httptest.NewServer(gwRouter)
	t.Cleanup(gwSrv.Close)

	return &stack{
		auth:    authSrv,
		gateway: gwSrv,
		sdk:     oauthsdk.NewClient(authSrv.URL),
	}
}

func fakeJira(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/rest/api/2/serverInfo":
		_ = json.NewEncoder(w).Encode(jira.ServerInfo{BaseURL: "https://jira.example", Version: "9.4.0"})
	case r.URL.Path == "/rest/api/2/search":
		_ = json.NewEncoder(w).Encode(jira.SearchResult{
			Total: 2,
			Issues: []jira.Issue{
				{Key: "DP-1", Fields: jira.IssueFields{Summary: "Pipeline stalls"}},
				{Key: "DP-2", Fields: jira.IssueFields{Summary: "Retry storms"}},
			},
		})
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errorMessages":["no such resource"]}`))
	}
}

// grantToken walks the full authorization code grant and returns an access
// token.
func grantToken(t *testing.T, s *stack) string {
	t.Helper()
	ctx := context.Background()

	reg, err := s.sdk.Register(ctx, oauthsdk.RegistrationRequest{RedirectURIs: []string{redirectURI}})
	require.NoError(t, err)

	code, _, err := s.sdk.Authorize(ctx, reg.ClientID, redirectURI, "", "", cryptox.ChallengeS256(codeVerifier))
	require.NoError(t, err)

	token, err := s.sdk.Token(ctx, reg.ClientID, code, redirectURI, codeVerifier)
	require.NoError(t, err)
	return token.AccessToken
}

func callTool(t *testing.T, s *stack, token, name string, arguments map[string]any) (*http.Response, *mcp.Response) {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": arguments},
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, s.gateway.URL+"/mcp", strings.NewReader(string(body)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.gateway.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var envelope mcp.Response
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	}
	return resp, &envelope
}

func TestFullGrantFlow(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	meta, err := s.sdk.Metadata(ctx)
	require.NoError(t, err)
	require.Equal(t, "http://auth.test", meta.Issuer)
	require.Contains(t, meta.CodeChallengeMethodsSupported, "S256")

	reg, err := s.sdk.Register(ctx, oauthsdk.RegistrationRequest{RedirectURIs: []string{redirectURI}})
	require.NoError(t, err)
	require.NotEmpty(t, reg.ClientID)
	require.NotEmpty(t, reg.ClientSecret)

	code, state, err := s.sdk.Authorize(ctx, reg.ClientID, redirectURI, "mcp:read", "xyzzy", cryptox.ChallengeS256(codeVerifier))
	require.NoError(t, err)
	require.NotEmpty(t, code)
	require.Equal(t, "xyzzy", state)

	token, err := s.sdk.Token(ctx, reg.ClientID, code, redirectURI, codeVerifier)
	require.NoError(t, err)
	require.Equal(t, "Bearer", token.TokenType)
	require.Equal(t, 3600, token.ExpiresIn)

	intro, err := s.sdk.Introspect(ctx, token.AccessToken)
	require.NoError(t, err)
	require.True(t, intro.Active)
	require.Equal(t, reg.ClientID, intro.ClientID)
}

func TestAuthorizationCodeIsSingleUse(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	reg, err := s.sdk.Register(ctx, oauthsdk.RegistrationRequest{RedirectURIs: []string{redirectURI}})
	require.NoError(t, err)

	code, _, err := s.sdk.Authorize(ctx, reg.ClientID, redirectURI, "", "", cryptox.ChallengeS256(codeVerifier))
	require.NoError(t, err)

	_, err = s.sdk.Token(ctx, reg.ClientID, code, redirectURI, codeVerifier)
	require.NoError(t, err)

	_, err = s.sdk.Token(ctx, reg.ClientID, code, redirectURI, codeVerifier)
	require.Error(t, err)

	var oauthErr *oauthsdk.OAuth2Error
	require.ErrorAs(t, err, &oauthErr)
	require.Equal(t, oauthsdk.ErrorCodeInvalidGrant, oauthErr.Code)
}

func TestFailedRedemptionBurnsTheCode(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	reg, err := s.sdk.Register(ctx, oauthsdk.RegistrationRequest{RedirectURIs: []string{redirectURI}})
	require.NoError(t, err)

	code, _, err := s.sdk.Authorize(ctx, reg.ClientID, redirectURI, "", "", cryptox.ChallengeS256(codeVerifier))
	require.NoError(t, err)

	_, err = s.sdk.Token(ctx, reg.ClientID, code, redirectURI, "wrong-verifier-wrong-verifier-wrong-verifier")
	require.Error(t, err)

	// The failed attempt consumed the code; the correct verifier no longer helps.
	_, err = s.sdk.Token(ctx, reg.ClientID, code, redirectURI, codeVerifier)
	require.Error(t, err)

	var oauthErr *oauthsdk.OAuth2Error
	require.ErrorAs(t, err, &oauthErr)
	require.Equal(t, oauthsdk.ErrorCodeInvalidGrant, oauthErr.Code)
}

func TestSearchToolThroughGateway(t *testing.T) {
	s := newStack(t)
	token := grantToken(t, s)

	resp, envelope := callTool(t, s, token, "jira_search_issues", map[string]any{
		"jql":         "project = DP",
		"max_results": 5,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Nil(t, envelope.Error)

	raw, err := json.Marshal(envelope.Result)
	require.NoError(t, err)

	var result mcp.CallToolResult
	require.NoError(t, json.Unmarshal(raw, &result))
	require.Len(t, result.Content, 1)
	require.Contains(t, result.Content[0].Text, "Found")
	require.Contains(t, result.Content[0].Text, "project = DP")
	require.Contains(t, result.Content[0].Text, "DP-1")
}

func TestGatewayRejectsAnonymousAndBogusTokens(t *testing.T) {
	s := newStack(t)

	t.Run("no token", func(t *testing.T) {
		resp, _ := callTool(t, s, "", "jira_search_issues", map[string]any{"jql": "project = DP"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Equal(t, "unauthorized", body["error"])
	})

	t.Run("made-up token", func(t *testing.T) {
		resp, _ := callTool(t, s, "not-a-real-token", "jira_search_issues", map[string]any{"jql": "project = DP"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestProtectedResourceMetadataPointsAtAuthServer(t *testing.T) {
	s := newStack(t)

	resp, err := s.gateway.Client().Get(s.gateway.URL + "/.well-known/oauth-protected-resource")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc oauthsdk.ProtectedResourceMetadata
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	require.Equal(t, []string{s.auth.URL}, doc.AuthorizationServers)
}
