package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/logger"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/middleware"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/rpc"
)

const wsWriteTimeout = 10 * time.Second

// RPCHandler carries JSON-RPC over plain HTTP and over WebSocket
type RPCHandler struct {
	server   *rpc.Server
	logger   logger.Logger
	upgrader websocket.Upgrader
}

// NewRPCHandler creates a new JSON-RPC handler
func NewRPCHandler(server *rpc.Server, log logger.Logger) *RPCHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RPCHandler{
		server: server,
		logger: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// ServeRPC answers one JSON-RPC message per POST. Notifications get 202.
func (h *RPCHandler) ServeRPC(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		sendErrorResponse(w, h.logger, "Failed to read request body", "", http.StatusBadRequest, requestID)
		return
	}

	reply, ok := h.server.Handle(r.Context(), body)
	if !ok {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(reply); err != nil {
		h.logger.Error("Failed to write JSON-RPC response", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
	}
}

// ServeWebSocket upgrades the connection and answers each text frame as a
// JSON-RPC message until the client disconnects.
func (h *RPCHandler) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxBodyBytes)

	h.logger.Info("WebSocket session opened", map[string]interface{}{
		"request_id": requestID,
		"remote":     r.RemoteAddr,
	})

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("WebSocket read failed", map[string]interface{}{
					"request_id": requestID,
					"error":      err.Error(),
				})
			}
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}

		// each frame gets its own request ID
		ctx := middleware.WithRequestID(r.Context(), "")
		reply, ok := h.server.Handle(ctx, msg)
		if !ok {
			continue
		}

		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
			h.logger.Warn("WebSocket write failed", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			break
		}
	}

	h.logger.Info("WebSocket session closed", map[string]interface{}{
		"request_id": requestID,
	})
}

// RegisterRoutes registers the JSON-RPC routes
func (h *RPCHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/rpc", h.ServeRPC).Methods("POST")
	router.HandleFunc("/ws", h.ServeWebSocket).Methods("GET")

	h.logger.Info("JSON-RPC routes registered", map[string]interface{}{
		"routes": []string{
			"POST /rpc",
			"GET /ws",
		},
	})
}
