package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taskwire/taskwire/internal/mcp/jira"
	"github.com/taskwire/taskwire/pkg/mcp"
)

// Dispatcher routes JSON-RPC requests onto the tool catalog.
//
// Protocol errors (unknown method, internal panic) become JSON-RPC error
// objects. Domain failures, including unknown tool names and backend errors,
// become text content inside a successful result so clients can tell "you
// called this wrong" from "the tool ran and failed".
type Dispatcher struct {
	Backend ToolBackend
	Logger  *slog.Logger
}

// Dispatch handles one request and always returns a response echoing its id.
func (d *Dispatcher) Dispatch(ctx context.Context, req *mcp.Request) (resp *mcp.Response) {
	defer func() {
		if r := recover(); r != nil {
			d.Logger.Error("dispatch panicked", "method", req.Method, "panic", r)
			resp = mcp.NewErrorResponse(req.ID, mcp.CodeInternalError, fmt.Sprintf("Internal error: %v", r))
		}
	}()

	switch req.Method {
	case "tools/list":
		return mcp.NewResponse(req.ID, mcp.ListToolsResult{Tools: Catalog()})
	case "tools/call":
		var params mcp.CallParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				return mcp.NewErrorResponse(req.ID, mcp.CodeInternalError, "Internal error: malformed tools/call params")
			}
		}
		return mcp.NewResponse(req.ID, d.callTool(ctx, params.Name, params.Arguments))
	default:
		return mcp.NewErrorResponse(req.ID, mcp.CodeMethodNotFound, "Method not found: "+req.Method)
	}
}

// callTool runs one tool. Every failure path is rendered as an error text
// block; nothing the backend does can raise past this function.
func (d *Dispatcher) callTool(ctx context.Context, name string, arguments json.RawMessage) *mcp.CallToolResult {
	switch name {
	case "jira_health_check":
		return d.healthCheck(ctx)
	case "jira_list_projects":
		return d.listProjects(ctx)
	case "jira_create_issue":
		return d.createIssue(ctx, arguments)
	case "jira_search_issues":
		return d.searchIssues(ctx, arguments)
	case "jira_get_issue":
		return d.getIssue(ctx, arguments)
	case "jira_add_comment":
		return d.addComment(ctx, arguments)
	default:
		return mcp.TextResult("Unknown tool: " + name)
	}
}

func (d *Dispatcher) healthCheck(ctx context.Context) *mcp.CallToolResult {
	info, err := d.Backend.ServerInfo(ctx)
	if err != nil {
		return toolError("jira_health_check", err)
	}
	return mcp.TextResult("JIRA Health Check:\n" + prettyJSON(map[string]any{
		"status":      "success",
		"server_info": info,
	}))
}

func (d *Dispatcher) listProjects(ctx context.Context) *mcp.CallToolResult {
	projects, err := d.Backend.Projects(ctx)
	if err != nil {
		return toolError("jira_list_projects", err)
	}
	return mcp.TextResult("JIRA Projects:\n" + prettyJSON(projects))
}

func (d *Dispatcher) createIssue(ctx context.Context, arguments json.RawMessage) *mcp.CallToolResult {
	var args struct {
		ProjectKey  string `json:"project_key"`
		Summary     string `json:"summary"`
		Description string `json:"description"`
		IssueType   string `json:"issue_type"`
		Priority    string `json:"priority"`
	}
	if result := parseArgs("jira_create_issue", arguments, &args); result != nil {
		return result
	}
	if args.ProjectKey == "" || args.Summary == "" {
		return mcp.TextResult("Error calling jira_create_issue: project_key and summary are required")
	}
	if args.IssueType == "" {
		args.IssueType = "Task"
	}

	created, err := d.Backend.CreateIssue(ctx, jira.CreateIssueRequest{
		ProjectKey:  args.ProjectKey,
		Summary:     args.Summary,
		Description: args.Description,
		IssueType:   args.IssueType,
		Priority:    args.Priority,
	})
	if err != nil {
		return toolError("jira_create_issue", err)
	}
	return mcp.TextResult(fmt.Sprintf(
		"Created JIRA issue successfully!\n\nKey: %s\nID: %s\nSelf: %s",
		created.Key, created.ID, created.Self,
	))
}

func (d *Dispatcher) searchIssues(ctx context.Context, arguments json.RawMessage) *mcp.CallToolResult {
	var args struct {
		JQL        string `json:"jql"`
		MaxResults int    `json:"max_results"`
	}
	if result := parseArgs("jira_search_issues", arguments, &args); result != nil {
		return result
	}
	if args.JQL == "" {
		return mcp.TextResult("Error calling jira_search_issues: jql is required")
	}
	if args.MaxResults <= 0 {
		args.MaxResults = 10
	}

	result, err := d.Backend.SearchIssues(ctx, args.JQL, args.MaxResults, "")
	if err != nil {
		return toolError("jira_search_issues", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d issue(s) for JQL: %s\n", result.Total, args.JQL)
	for _, issue := range result.Issues {
		fmt.Fprintf(&b, "\n- %s: %s", issue.Key, issue.Fields.Summary)
	}
	return mcp.TextResult(b.String())
}

func (d *Dispatcher) getIssue(ctx context.Context, arguments json.RawMessage) *mcp.CallToolResult {
	var args struct {
		IssueKey string `json:"issue_key"`
	}
	if result := parseArgs("jira_get_issue", arguments, &args); result != nil {
		return result
	}
	if args.IssueKey == "" {
		return mcp.TextResult("Error calling jira_get_issue: issue_key is required")
	}

	issue, err := d.Backend.GetIssue(ctx, args.IssueKey)
	if err != nil {
		return toolError("jira_get_issue", err)
	}
	return mcp.TextResult("JIRA Issue Details:\n" + prettyJSON(issue))
}

func (d *Dispatcher) addComment(ctx context.Context, arguments json.RawMessage) *mcp.CallToolResult {
	var args struct {
		IssueKey string `json:"issue_key"`
		Comment  string `json:"comment"`
	}
	if result := parseArgs("jira_add_comment", arguments, &args); result != nil {
		return result
	}
	if args.IssueKey == "" || args.Comment == "" {
		return mcp.TextResult("Error calling jira_add_comment: issue_key and comment are required")
	}

	comment, err := d.Backend.AddComment(ctx, args.IssueKey, args.Comment)
	if err != nil {
		return toolError("jira_add_comment", err)
	}

	author := "Unknown"
	if comment.Author != nil {
		author = comment.Author.DisplayName
	}
	return mcp.TextResult(fmt.Sprintf(
		"Comment added successfully to JIRA issue %s!\n\nComment ID: %s\nAuthor: %s\nCreated: %s",
		args.IssueKey, comment.ID, author, comment.Created,
	))
}

func parseArgs(tool string, arguments json.RawMessage, out any) *mcp.CallToolResult {
	if len(arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(arguments, out); err != nil {
		return mcp.TextResult(fmt.Sprintf("Error calling %s: malformed arguments: %v", tool, err))
	}
	return nil
}

func toolError(tool string, err error) *mcp.CallToolResult {
	return mcp.TextResult(fmt.Sprintf("Error calling %s: %v", tool, err))
}

func prettyJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
