// Package jira is a minimal JIRA Cloud REST v2 client covering the calls the
// MCP tool catalog needs.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultSearchFields is the field projection requested when a search caller
// does not name one.
const DefaultSearchFields = "summary,status,assignee,created,updated,issuetype,priority"

// DefaultMaxResults caps a search when the caller does not bound it.
const DefaultMaxResults = 50

// Client talks to a JIRA Cloud instance with basic auth (username + API
// token). All calls are synchronous and context-bound.
type Client struct {
	BaseURL    string
	Username   string
	APIToken   string
	HTTPClient *http.Client
}

// NewClient creates a client for the JIRA instance at baseURL.
func NewClient(baseURL, username, apiToken string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		Username:   username,
		APIToken:   apiToken,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ServerInfo fetches /rest/api/2/serverInfo, the connectivity probe.
func (c *Client) ServerInfo(ctx context.Context) (*ServerInfo, error) {
	var info ServerInfo
	if err := c.get(ctx, "/rest/api/2/serverInfo", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Projects lists every project the credential can see.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.get(ctx, "/rest/api/2/project", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateIssue creates an issue. Optional fields absent from req are omitted
// from the payload entirely; JIRA rejects unknown or unsupported fields
// per-project, so an empty "priority" must not be sent as null.
func (c *Client) CreateIssue(ctx context.Context, req CreateIssueRequest) (*CreatedIssue, error) {
	fields := map[string]any{
		"project":   map[string]string{"key": req.ProjectKey},
		"summary":   req.Summary,
		"issuetype": map[string]string{"name": req.IssueType},
	}
	if req.Description != "" {
		fields["description"] = req.Description
	}
	if req.Priority != "" {
		fields["priority"] = map[string]string{"name": req.Priority}
	}
	if req.Assignee != "" {
		fields["assignee"] = map[string]string{"name": req.Assignee}
	}

	var created CreatedIssue
	if err := c.post(ctx, "/rest/api/2/issue", map[string]any{"fields": fields}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// SearchIssues runs a JQL search.
func (c *Client) SearchIssues(ctx context.Context, jql string, maxResults int, fields string) (*SearchResult, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if fields == "" {
		fields = DefaultSearchFields
	}

	q := url.Values{}
	q.Set("jql", jql)
	q.Set("maxResults", strconv.Itoa(maxResults))
	q.Set("fields", fields)

	var result SearchResult
	if err := c.get(ctx, "/rest/api/2/search", q, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetIssue fetches a single issue by key.
func (c *Client) GetIssue(ctx context.Context, issueKey string) (*Issue, error) {
	var issue Issue
	if err := c.get(ctx, "/rest/api/2/issue/"+url.PathEscape(issueKey), nil, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// AddComment appends a comment to an issue.
func (c *Client) AddComment(ctx context.Context, issueKey, comment string) (*Comment, error) {
	var created Comment
	path := "/rest/api/2/issue/" + url.PathEscape(issueKey) + "/comment"
	if err := c.post(ctx, path, map[string]string{"body": comment}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.SetBasicAuth(c.Username, c.APIToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("jira: %s %s returned %d: %s",
			req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("jira: failed to decode response: %w", err)
	}
	return nil
}
