package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/taskwire/taskwire/internal/mcp/dispatch"
	"github.com/taskwire/taskwire/pkg/httpx"
	"github.com/taskwire/taskwire/pkg/mcp"
)

const maxRPCBodySize = 1 << 20

// RPCHandler serves JSON-RPC requests through the dispatcher.
type RPCHandler struct {
	Dispatcher *dispatch.Dispatcher
}

func (h *RPCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRPCBodySize))
	if err != nil {
		httpx.WriteJSON(w, http.StatusOK, mcp.NewErrorResponse(nil, mcp.CodeInternalError, "Internal error: failed to read request body"))
		return
	}

	var req mcp.Request
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteJSON(w, http.StatusOK, mcp.NewErrorResponse(nil, mcp.CodeInternalError, "Internal error: malformed JSON-RPC request"))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, h.Dispatcher.Dispatch(r.Context(), &req))
}

// RootHandler serves POST / which some MCP clients use instead of /mcp. The
// body decides the route: a JSON-RPC envelope goes to rpc (behind the same
// Bearer check as /mcp), anything else gets the health payload.
type RootHandler struct {
	RPC    http.Handler
	Health http.Handler
}

func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRPCBodySize))
	if err != nil {
		h.Health.ServeHTTP(w, r)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	if bytes.Contains(body, []byte(`"jsonrpc":"2.0"`)) || bytes.Contains(body, []byte(`"jsonrpc": "2.0"`)) {
		h.RPC.ServeHTTP(w, r)
		return
	}
	h.Health.ServeHTTP(w, r)
}
