package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dgraph-io/badger/v3"

	"github.com/damon-houk/lkr-exchange-tools/internal/application/service"
	"github.com/damon-houk/lkr-exchange-tools/internal/application/tools"
	"github.com/damon-houk/lkr-exchange-tools/internal/config"
	"github.com/damon-houk/lkr-exchange-tools/internal/domain/repository"
	domainservice "github.com/damon-houk/lkr-exchange-tools/internal/domain/service"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/api"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/db"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/handler"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/logger"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/metrics"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/rpc"
)

// App is the process-wide handle: built once at startup, closed on shutdown
type App struct {
	Config     *config.Config
	Logger     logger.Logger
	Metrics    *metrics.Metrics
	Journal    repository.CallJournal
	Dispatcher *tools.Dispatcher
	RPC        *rpc.Server

	badgerDB *badger.DB
}

// journalMode says how a command uses the call journal
type journalMode int

const (
	// journalOff skips the journal; one-shot tool commands never take the badger lock
	journalOff journalMode = iota
	// journalWrite records calls. An on-disk journal held by another
	// process is skipped with a warning.
	journalWrite
	// journalRead opens an on-disk journal read-only for history listing
	journalRead
)

// newApp wires every component from cfg. logOutput overrides the configured
// log destination when non-nil.
func newApp(cfg *config.Config, logOutput io.Writer, mode journalMode) (*App, error) {
	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	if logOutput == nil {
		logOutput = os.Stderr
		if cfg.Logging.Output == "stdout" {
			logOutput = os.Stdout
		}
	}
	log := logger.NewJSONLogger(logOutput, level)
	logger.SetDefaultLogger(log)

	app := &App{Config: cfg, Logger: log}

	var recorder tools.Recorder
	var observer db.FetchObserver
	if cfg.Metrics.Enabled {
		app.Metrics = metrics.NewMetrics()
		recorder = app.Metrics
		observer = app.Metrics
	}

	if err := app.openJournal(mode); err != nil {
		return nil, err
	}

	var sources []domainservice.RateSource
	if cfg.Sources.PrimaryURL != "" {
		sources = append(sources, api.NewBankRateScraper(
			cfg.Sources.PrimaryURL,
			cfg.Sources.UserAgent,
			&http.Client{Timeout: cfg.Sources.PrimaryTimeout},
			log.WithField("source", "bank_page"),
		))
	}
	if cfg.Sources.FallbackURL != "" {
		sources = append(sources, api.NewExchangeRateAPIClient(api.ExchangeRateAPIConfig{
			BaseURL:           cfg.Sources.FallbackURL,
			LocalCurrency:     cfg.LocalCurrency,
			AllowedCurrencies: cfg.Sources.AllowedCurrencies,
			Spread:            cfg.Simulation.Spread,
			Timeout:           cfg.Sources.FallbackTimeout,
		}, nil, log.WithField("source", "exchange_rate_api")))
	}

	repo := db.NewFallbackRateRepository(log, observer, sources...)

	opts := []tools.Option{tools.WithLogger(log)}
	if recorder != nil {
		opts = append(opts, tools.WithRecorder(recorder))
	}
	if app.Journal != nil {
		opts = append(opts, tools.WithJournal(app.Journal))
	}

	app.Dispatcher = tools.NewDispatcher(
		service.NewRatesService(repo, log),
		service.NewConversionService(repo, cfg.LocalCurrency, log),
		service.NewTrendService(repo, cfg.Simulation.TrendVariation, cfg.Simulation.MaxTrendDays, log),
		opts...,
	)
	app.RPC = rpc.NewServer(app.Dispatcher, rpc.ServerInfo{Name: serverName, Version: version}, log)

	return app, nil
}

func (a *App) openJournal(mode journalMode) error {
	cfg := a.Config.Journal
	if mode == journalOff || !cfg.Enabled {
		if mode == journalRead {
			return errJournalDisabled
		}
		return nil
	}

	var err error
	switch {
	case mode == journalRead && cfg.InMemory:
		return errJournalInMemory
	case mode == journalRead:
		a.badgerDB, err = db.OpenBadgerReadOnly(cfg.Path)
		if err != nil {
			return fmt.Errorf("journal at %s is unavailable; a running server keeps it locked, use GET /calls instead: %w", cfg.Path, err)
		}
	default:
		a.badgerDB, err = db.OpenBadger(cfg.Path, cfg.InMemory)
		if err != nil {
			a.Logger.Warn("Call journal unavailable, continuing without it", map[string]interface{}{
				"path":  cfg.Path,
				"error": err.Error(),
			})
			return nil
		}
	}

	a.Journal = db.NewBadgerCallJournal(a.badgerDB)
	return nil
}

// Router builds the HTTP transport over the app's components
func (a *App) Router() http.Handler {
	cfg := handler.RouterConfig{
		Tools:   a.Dispatcher,
		RPC:     a.RPC,
		Journal: a.Journal,
		Logger:  a.Logger,
	}
	if a.Metrics != nil {
		cfg.Metrics = a.Metrics.Handler()
	}
	return handler.NewRouter(cfg)
}

// Close releases the journal
func (a *App) Close() error {
	if a.badgerDB == nil {
		return nil
	}
	if err := a.badgerDB.Close(); err != nil {
		return fmt.Errorf("failed to close journal: %w", err)
	}
	a.badgerDB = nil
	return nil
}

var (
	errJournalDisabled = errors.New("the call journal is disabled (journal.enabled=false)")
	errJournalInMemory = errors.New("the call journal is in memory; set journal.in_memory=false to keep history on disk")
)
