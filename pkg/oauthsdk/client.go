package oauthsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is an HTTP client for the taskwire authorization server. The MCP
// gateway uses it for synchronous token introspection; end-to-end tests use
// it to drive the full grant flow.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the authorization server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			// The authorize endpoint answers with a 302 carrying the code;
			// the client must see the redirect, not follow it.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Metadata fetches the RFC 8414 discovery document.
func (c *Client) Metadata(ctx context.Context) (*AuthorizationServerMetadata, error) {
	var meta AuthorizationServerMetadata
	if err := c.getJSON(ctx, "/.well-known/oauth-authorization-server", &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Register performs RFC 7591 dynamic client registration.
func (c *Client) Register(ctx context.Context, reg RegistrationRequest) (*RegistrationResponse, error) {
	body, err := json.Marshal(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode registration request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/register"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var out RegistrationResponse
	if err := decodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Authorize requests an authorization code and returns the code and echoed
// state extracted from the 302 Location header.
func (c *Client) Authorize(ctx context.Context, clientID, redirectURI, scope, state, codeChallenge string) (code, echoedState string, err error) {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", clientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("code_challenge", codeChallenge)
	q.Set("code_challenge_method", "S256")
	if scope != "" {
		q.Set("scope", scope)
	}
	if state != "" {
		q.Set("state", state)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/authorize")+"?"+q.Encode(), nil)
	if err != nil {
		return "", "", err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusFound {
		return "", "", errorFromResponse(resp)
	}

	location, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		return "", "", fmt.Errorf("invalid redirect location: %w", err)
	}

	code = location.Query().Get("code")
	if code == "" {
		return "", "", fmt.Errorf("redirect location carries no code: %s", location)
	}
	return code, location.Query().Get("state"), nil
}

// Token exchanges an authorization code for an access token.
func (c *Client) Token(ctx context.Context, clientID, code, redirectURI, codeVerifier string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)
	form.Set("client_id", clientID)
	form.Set("code_verifier", codeVerifier)

	var out TokenResponse
	if err := c.postForm(ctx, "/token", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Introspect reports whether token is currently active. A transport failure
// is returned as an error; a well-formed "active": false answer is not.
func (c *Client) Introspect(ctx context.Context, token string) (*IntrospectionResponse, error) {
	form := url.Values{}
	form.Set("token", token)

	var out IntrospectionResponse
	if err := c.postForm(ctx, "/introspect", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	return decodeResponse(resp, out)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	return decodeResponse(resp, out)
}

// decodeResponse decodes a JSON success body into out, or converts a non-2xx
// response into an *OAuth2Error.
func decodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

func errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var oauthErr OAuth2Error
	if err := json.Unmarshal(body, &oauthErr); err == nil && oauthErr.Code != "" {
		oauthErr.StatusCode = resp.StatusCode
		return &oauthErr
	}
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
