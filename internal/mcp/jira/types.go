package jira

// ServerInfo is the /serverInfo probe response.
type ServerInfo struct {
	BaseURL        string `json:"baseUrl"`
	Version        string `json:"version"`
	DeploymentType string `json:"deploymentType,omitempty"`
	ServerTitle    string `json:"serverTitle,omitempty"`
}

// Project is a JIRA project summary.
type Project struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// CreateIssueRequest carries the fields for a new issue. Empty optional
// fields are left out of the outbound payload.
type CreateIssueRequest struct {
	ProjectKey  string
	Summary     string
	Description string
	IssueType   string
	Priority    string
	Assignee    string
}

// CreatedIssue is JIRA's response to an issue creation.
type CreatedIssue struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// Issue is a JIRA issue with the projected field set.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Self   string      `json:"self,omitempty"`
	Fields IssueFields `json:"fields"`
}

// IssueFields is the subset of issue fields the tools surface.
type IssueFields struct {
	Summary   string    `json:"summary"`
	Status    *NamedRef `json:"status,omitempty"`
	Assignee  *UserRef  `json:"assignee,omitempty"`
	IssueType *NamedRef `json:"issuetype,omitempty"`
	Priority  *NamedRef `json:"priority,omitempty"`
	Created   string    `json:"created,omitempty"`
	Updated   string    `json:"updated,omitempty"`
}

// NamedRef is any JIRA entity referenced by display name.
type NamedRef struct {
	Name string `json:"name"`
}

// UserRef identifies a JIRA user.
type UserRef struct {
	DisplayName string `json:"displayName"`
}

// SearchResult is the /search response.
type SearchResult struct {
	Total      int     `json:"total"`
	MaxResults int     `json:"maxResults"`
	Issues     []Issue `json:"issues"`
}

// Comment is JIRA's response to adding a comment.
type Comment struct {
	ID      string   `json:"id"`
	Body    string   `json:"body"`
	Created string   `json:"created"`
	Author  *UserRef `json:"author,omitempty"`
}
