package dispatch

import "github.com/taskwire/taskwire/pkg/mcp"

// Catalog returns the static tool catalog. The inputSchema of each entry is
// the authoritative contract for its arguments.
func Catalog() []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        "jira_health_check",
			Description: "Check JIRA server health and connection",
			InputSchema: mcp.InputSchema{
				Type:       "object",
				Properties: map[string]mcp.Property{},
				Required:   []string{},
			},
		},
		{
			Name:        "jira_list_projects",
			Description: "List all JIRA projects you have access to",
			InputSchema: mcp.InputSchema{
				Type:       "object",
				Properties: map[string]mcp.Property{},
				Required:   []string{},
			},
		},
		{
			Name:        "jira_create_issue",
			Description: "Create a new JIRA issue",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]mcp.Property{
					"project_key": {
						Type:        "string",
						Description: "Project key (e.g., 'DP')",
					},
					"summary": {
						Type:        "string",
						Description: "Issue summary/title",
					},
					"description": {
						Type:        "string",
						Description: "Issue description (optional)",
					},
					"issue_type": {
						Type:        "string",
						Description: "Issue type (e.g., 'Task', 'Bug', 'Story')",
						Default:     "Task",
					},
					"priority": {
						Type:        "string",
						Description: "Issue priority (optional - only if supported by project)",
					},
				},
				Required: []string{"project_key", "summary"},
			},
		},
		{
			Name:        "jira_search_issues",
			Description: "Search for JIRA issues using JQL",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]mcp.Property{
					"jql": {
						Type:        "string",
						Description: "JQL query string",
					},
					"max_results": {
						Type:        "integer",
						Description: "Maximum number of results",
						Default:     10,
					},
				},
				Required: []string{"jql"},
			},
		},
		{
			Name:        "jira_get_issue",
			Description: "Get detailed information about a specific JIRA issue",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]mcp.Property{
					"issue_key": {
						Type:        "string",
						Description: "Issue key (e.g., 'DP-123')",
					},
				},
				Required: []string{"issue_key"},
			},
		},
		{
			Name:        "jira_add_comment",
			Description: "Add a comment to a JIRA issue",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]mcp.Property{
					"issue_key": {
						Type:        "string",
						Description: "Issue key (e.g., 'DP-123')",
					},
					"comment": {
						Type:        "string",
						Description: "Comment text to add to the issue",
					},
				},
				Required: []string{"issue_key", "comment"},
			},
		},
	}
}
