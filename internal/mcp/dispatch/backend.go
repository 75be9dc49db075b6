package dispatch

import (
	"context"

	"github.com/taskwire/taskwire/internal/mcp/jira"
)

// ToolBackend is the issue-tracker surface the tool catalog is built over.
// *jira.Client implements it; tests substitute a stub.
type ToolBackend interface {
	ServerInfo(ctx context.Context) (*jira.ServerInfo, error)
	Projects(ctx context.Context) ([]jira.Project, error)
	CreateIssue(ctx context.Context, req jira.CreateIssueRequest) (*jira.CreatedIssue, error)
	SearchIssues(ctx context.Context, jql string, maxResults int, fields string) (*jira.SearchResult, error)
	GetIssue(ctx context.Context, issueKey string) (*jira.Issue, error)
	AddComment(ctx context.Context, issueKey, comment string) (*jira.Comment, error)
}
