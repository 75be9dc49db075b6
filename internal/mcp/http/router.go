package http

import (
	"log/slog"
	"net/http"

	"github.com/taskwire/taskwire/internal/mcp/dispatch"
	"github.com/taskwire/taskwire/pkg/httpx"
	"github.com/taskwire/taskwire/pkg/slogx"
)

// Router holds shared dependencies for the gateway's HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	resource      string
	authServerURL string
	buildVersion  string
	logger        *slog.Logger

	Dispatcher *dispatch.Dispatcher
	Backend    dispatch.ToolBackend
	Validator  TokenValidator
}

func NewRouter(resource, authServerURL, buildVersion string, logger *slog.Logger) *Router {
	r := &Router{
		Mux:           http.NewServeMux(),
		resource:      resource,
		authServerURL: authServerURL,
		buildVersion:  buildVersion,
		logger:        logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(),
		recoverMiddleware(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	health := HealthHandler(r.Backend, r.buildVersion)
	rpc := httpx.Chain(&RPCHandler{Dispatcher: r.Dispatcher},
		RequireBearer(r.Validator),
		httpx.RateLimitByIP(httpx.ModerateLimit),
	)

	// GET /.well-known/oauth-protected-resource - unauthenticated discovery
	r.Mux.Handle("GET /.well-known/oauth-protected-resource",
		httpx.Chain(MetadataHandler(r.resource, r.authServerURL),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	// GET /health - unauthenticated probe, answers 200 even when JIRA is down
	r.Mux.Handle("GET /health",
		httpx.Chain(health, httpx.RateLimitByIP(httpx.LenientLimit)),
	)

	// POST /mcp - the JSON-RPC endpoint, Bearer required
	r.Mux.Handle("POST /mcp", rpc)

	// POST / - body-sniffed compatibility route for clients that post JSON-RPC
	// to the root. Non-RPC bodies fall through to the health payload.
	r.Mux.Handle("POST /{$}", &RootHandler{RPC: rpc, Health: health})

	// GET / - health for load balancers that only probe the root
	r.Mux.Handle("GET /{$}", health)

	r.Mux.Handle("/", http.HandlerFunc(notFound))
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
}

func recoverMiddleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slogx.FromContext(r.Context()).Error("handler panicked", "panic", rec)
					httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_server_error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
