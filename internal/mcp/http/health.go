package http

import (
	"net/http"

	"github.com/taskwire/taskwire/internal/mcp/dispatch"
	"github.com/taskwire/taskwire/pkg/httpx"
	"github.com/taskwire/taskwire/pkg/slogx"
)

// HealthResponse reports gateway liveness plus the upstream issue tracker's
// reachability. The endpoint always answers 200; "status" carries the verdict.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Jira    string `json:"jira_connection"`
	Detail  string `json:"detail,omitempty"`
}

// HealthHandler probes the issue tracker with a serverInfo call.
func HealthHandler(backend dispatch.ToolBackend, buildVersion string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:  "healthy",
			Service: "taskwire-mcp",
			Version: buildVersion,
			Jira:    "connected",
		}

		if _, err := backend.ServerInfo(r.Context()); err != nil {
			slogx.FromContext(r.Context()).Warn("jira health probe failed", "error", err)
			resp.Status = "unhealthy"
			resp.Jira = "unavailable"
			resp.Detail = err.Error()
		}

		httpx.WriteJSON(w, http.StatusOK, resp)
	})
}
