package http

import (
	"net/http"
	"time"

	"github.com/taskwire/taskwire/pkg/httpx"
	"github.com/taskwire/taskwire/pkg/oauthsdk"
)

// LivezHandler answers the liveness probe. Always 200 while the process runs.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := oauthsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		}
		httpx.WriteJSON(w, http.StatusOK, response)
	}
}
