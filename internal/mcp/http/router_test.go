package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskwire/taskwire/internal/mcp/dispatch"
	"github.com/taskwire/taskwire/internal/mcp/jira"
	"github.com/taskwire/taskwire/pkg/mcp"
	"github.com/taskwire/taskwire/pkg/slogx"
)

type stubBackend struct {
	serverInfoErr error
}

func (s *stubBackend) ServerInfo(ctx context.Context) (*jira.ServerInfo, error) {
	if s.serverInfoErr != nil {
		return nil, s.serverInfoErr
	}
	return &jira.ServerInfo{BaseURL: "https://jira.example", Version: "9.4.0"}, nil
}

func (s *stubBackend) Projects(ctx context.Context) ([]jira.Project, error) {
	return []jira.Project{{ID: "10000", Key: "DP", Name: "Data Platform"}}, nil
}

func (s *stubBackend) CreateIssue(ctx context.Context, req jira.CreateIssueRequest) (*jira.CreatedIssue, error) {
	return &jira.CreatedIssue{ID: "10042", Key: "DP-42"}, nil
}

func (s *stubBackend) SearchIssues(ctx context.Context, jql string, maxResults int, fields string) (*jira.SearchResult, error) {
	return &jira.SearchResult{Total: 0}, nil
}

func (s *stubBackend) GetIssue(ctx context.Context, issueKey string) (*jira.Issue, error) {
	return &jira.Issue{Key: issueKey}, nil
}

func (s *stubBackend) AddComment(ctx context.Context, issueKey, comment string) (*jira.Comment, error) {
	return &jira.Comment{ID: "20001"}, nil
}

type stubValidator struct {
	activeTokens map[string]bool
}

func (v *stubValidator) Validate(ctx context.Context, token string) (bool, error) {
	return v.activeTokens[token], nil
}

func newTestServer(t *testing.T, backend dispatch.ToolBackend, validator TokenValidator) *httptest.Server {
	t.Helper()

	logger := slogx.Discard()
	router := NewRouter("http://localhost:9001", "http://localhost:9000", "test", logger)
	router.Backend = backend
	router.Dispatcher = &dispatch.Dispatcher{Backend: backend, Logger: logger}
	router.Validator = validator
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func rpcBody(t *testing.T, id, method string, params any) string {
	t.Helper()

	req := map[string]any{"jsonrpc": "2.0", "id": id, "method": method}
	if params != nil {
		req["params"] = params
	}
	raw, err := json.Marshal(req)
	require.NoError(t, err)
	return string(raw)
}

func postRPC(t *testing.T, srv *httptest.Server, path, token, body string) (*http.Response, mcp.Response) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var envelope mcp.Response
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	}
	return resp, envelope
}

func TestMCPRejectsMissingOrInactiveTokens(t *testing.T) {
	srv := newTestServer(t, &stubBackend{}, &stubValidator{activeTokens: map[string]bool{"good-token": true}})

	tests := []struct {
		name  string
		token string
	}{
		{name: "no token", token: ""},
		{name: "inactive token", token: "revoked-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postRPC(t, srv, "/mcp", tt.token, rpcBody(t, "1", "tools/list", nil))
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			require.Equal(t, "unauthorized", body["error"])
			require.Contains(t, body["error_description"], "Bearer token")
		})
	}
}

func TestMCPToolsListWithActiveToken(t *testing.T) {
	srv := newTestServer(t, &stubBackend{}, &stubValidator{activeTokens: map[string]bool{"good-token": true}})

	resp, envelope := postRPC(t, srv, "/mcp", "good-token", rpcBody(t, "1", "tools/list", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Nil(t, envelope.Error)

	raw, err := json.Marshal(envelope.Result)
	require.NoError(t, err)

	var result mcp.ListToolsResult
	require.NoError(t, json.Unmarshal(raw, &result))
	require.Len(t, result.Tools, 6)
}

func TestRootSniffsJSONRPCBodies(t *testing.T) {
	srv := newTestServer(t, &stubBackend{}, &stubValidator{activeTokens: map[string]bool{"good-token": true}})

	t.Run("rpc body is dispatched", func(t *testing.T) {
		resp, envelope := postRPC(t, srv, "/", "good-token", rpcBody(t, "7", "tools/list", nil))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Nil(t, envelope.Error)
		require.Equal(t, json.RawMessage(`"7"`), envelope.ID)
	})

	t.Run("rpc body still needs a token", func(t *testing.T) {
		resp, _ := postRPC(t, srv, "/", "", rpcBody(t, "8", "tools/list", nil))
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("non-rpc body falls through to health", func(t *testing.T) {
		resp, err := srv.Client().Post(srv.URL+"/", "application/json", strings.NewReader(`{"ping": true}`))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var health HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
		require.Equal(t, "healthy", health.Status)
	})
}

func TestHealthReflectsJiraReachability(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		srv := newTestServer(t, &stubBackend{}, AllowAllValidator{})

		resp, err := srv.Client().Get(srv.URL + "/health")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var health HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
		require.Equal(t, "healthy", health.Status)
		require.Equal(t, "connected", health.Jira)
	})

	t.Run("unhealthy", func(t *testing.T) {
		srv := newTestServer(t, &stubBackend{serverInfoErr: errors.New("connection refused")}, AllowAllValidator{})

		resp, err := srv.Client().Get(srv.URL + "/health")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var health HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
		require.Equal(t, "unhealthy", health.Status)
		require.Equal(t, "unavailable", health.Jira)
	})
}

func TestProtectedResourceMetadata(t *testing.T) {
	srv := newTestServer(t, &stubBackend{}, AllowAllValidator{})

	resp, err := srv.Client().Get(srv.URL + "/.well-known/oauth-protected-resource")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var doc map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	require.Equal(t, "http://localhost:9001", doc["resource"])
	require.Equal(t, []any{"http://localhost:9000"}, doc["authorization_servers"])
	require.Equal(t, []any{"header"}, doc["bearer_methods_supported"])
}

func TestUnknownPathReturnsJSONNotFound(t *testing.T) {
	srv := newTestServer(t, &stubBackend{}, AllowAllValidator{})

	resp, err := srv.Client().Get(srv.URL + "/nope")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "Not Found", body["message"])
}

func TestMalformedRPCBodyIsAProtocolError(t *testing.T) {
	srv := newTestServer(t, &stubBackend{}, AllowAllValidator{})

	resp, envelope := postRPC(t, srv, "/mcp", "any-token", `{"jsonrpc":"2.0", "id": `)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, envelope.Error)
	require.Equal(t, mcp.CodeInternalError, envelope.Error.Code)
}
