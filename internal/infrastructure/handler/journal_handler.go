package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/damon-houk/lkr-exchange-tools/internal/domain/repository"
	"github.com/damon-houk/lkr-exchange-tools/internal/domain/toolerror"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/logger"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/middleware"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

// JournalHandler exposes the most recent tool calls
type JournalHandler struct {
	journal repository.CallJournal
	logger  logger.Logger
}

// NewJournalHandler creates a new journal handler
func NewJournalHandler(journal repository.CallJournal, log logger.Logger) *JournalHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &JournalHandler{
		journal: journal,
		logger:  log,
	}
}

// RecentCalls handles GET /calls?limit=N
func (h *JournalHandler) RecentCalls(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			sendErrorResponse(w, h.logger, "limit must be an integer between 1 and 500", string(toolerror.KindInvalidParams), http.StatusBadRequest, requestID)
			return
		}
		limit = n
	}

	calls, err := h.journal.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to read call journal", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Unable to read call history", string(toolerror.KindInternal), http.StatusInternalServerError, requestID)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, CallHistoryResponse{Calls: calls, Count: len(calls)})
}

// RegisterRoutes registers the journal handler routes
func (h *JournalHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/calls", h.RecentCalls).Methods("GET")

	h.logger.Info("Journal routes registered", map[string]interface{}{
		"routes": []string{
			"GET /calls",
		},
	})
}
