// Package handler serves the tool catalog over HTTP and WebSocket.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/damon-houk/lkr-exchange-tools/internal/application/tools"
	"github.com/damon-houk/lkr-exchange-tools/internal/domain/toolerror"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/logger"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/middleware"
)

const maxBodyBytes = 1 << 20

// ToolCaller is the part of the dispatcher the HTTP handlers need
type ToolCaller interface {
	Tools() []tools.Tool
	Names() []string
	Call(ctx context.Context, name string, args map[string]any) (*tools.Result, error)
}

// ToolHandler exposes direct REST-style tool calls
type ToolHandler struct {
	caller ToolCaller
	logger logger.Logger
}

// NewToolHandler creates a new tool handler
func NewToolHandler(caller ToolCaller, log logger.Logger) *ToolHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ToolHandler{
		caller: caller,
		logger: log,
	}
}

// ListTools returns the catalog
func (h *ToolHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, ToolListResponse{Tools: h.caller.Tools()})
}

// CallTool runs the tool named in the path with the JSON object body as arguments
func (h *ToolHandler) CallTool(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	name := mux.Vars(r)["name"]

	h.logger.Info("Handling tool call request", map[string]interface{}{
		"request_id": requestID,
		"tool":       name,
	})

	var args map[string]any
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		sendErrorResponse(w, h.logger, "Failed to read request body", string(toolerror.KindInvalidParams), http.StatusBadRequest, requestID)
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &args); err != nil {
			h.logger.Warn("Invalid request body", map[string]interface{}{
				"request_id": requestID,
				"tool":       name,
				"error":      err.Error(),
			})
			sendErrorResponse(w, h.logger, "Request body must be a JSON object", string(toolerror.KindInvalidParams), http.StatusBadRequest, requestID)
			return
		}
	}

	result, err := h.caller.Call(r.Context(), name, args)
	if err != nil {
		var te *toolerror.Error
		if !errors.As(err, &te) {
			te = toolerror.Internal(err)
		}
		sendErrorResponse(w, h.logger, te.Message, string(te.Kind), statusForKind(te.Kind), requestID)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}

// Health reports liveness and the registered tools
func (h *ToolHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, HealthResponse{Status: "ok", Tools: h.caller.Names()})
}

// RegisterRoutes registers the tool handler routes
func (h *ToolHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/tools", h.ListTools).Methods("GET")
	router.HandleFunc("/tools/{name}", h.CallTool).Methods("POST")
	router.HandleFunc("/healthz", h.Health).Methods("GET")

	h.logger.Info("Tool routes registered", map[string]interface{}{
		"routes": []string{
			"GET /tools",
			"POST /tools/{name}",
			"GET /healthz",
		},
	})
}

func statusForKind(kind toolerror.Kind) int {
	switch kind {
	case toolerror.KindMethodNotFound:
		return http.StatusNotFound
	case toolerror.KindInvalidParams:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
