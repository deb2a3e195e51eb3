package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/damon-houk/lkr-exchange-tools/internal/domain/repository"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/logger"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/middleware"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/rpc"
)

// RouterConfig collects the collaborators served over HTTP. Journal and
// Metrics are optional.
type RouterConfig struct {
	Tools   ToolCaller
	RPC     *rpc.Server
	Journal repository.CallJournal
	Metrics http.Handler
	Logger  logger.Logger
}

// NewRouter builds the HTTP router with request ID and access logging
func NewRouter(cfg RouterConfig) *mux.Router {
	log := cfg.Logger
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(log))

	NewToolHandler(cfg.Tools, log).RegisterRoutes(router)
	NewRPCHandler(cfg.RPC, log).RegisterRoutes(router)

	if cfg.Journal != nil {
		NewJournalHandler(cfg.Journal, log).RegisterRoutes(router)
	}
	if cfg.Metrics != nil {
		router.Handle("/metrics", cfg.Metrics).Methods("GET")
	}

	return router
}
