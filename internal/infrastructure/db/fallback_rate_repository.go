// Package db internal/infrastructure/db/fallback_rate_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/damon-houk/lkr-exchange-tools/internal/domain/entity"
	"github.com/damon-houk/lkr-exchange-tools/internal/domain/repository"
	"github.com/damon-houk/lkr-exchange-tools/internal/domain/service"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/logger"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/middleware"
)

// FetchObserver receives the outcome of every source attempt
type FetchObserver interface {
	ObserveRateFetch(source, outcome string, elapsed time.Duration)
}

// FallbackRateRepository tries an ordered list of rate sources until one
// produces a non-empty table. Nothing is cached between calls.
type FallbackRateRepository struct {
	sources  []service.RateSource
	logger   logger.Logger
	observer FetchObserver
}

// NewFallbackRateRepository creates a repository over sources, in priority order
func NewFallbackRateRepository(log logger.Logger, observer FetchObserver, sources ...service.RateSource) repository.ExchangeRateRepository {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &FallbackRateRepository{
		sources:  sources,
		logger:   log,
		observer: observer,
	}
}

// FetchRates returns the first non-empty table produced by the sources
func (r *FallbackRateRepository) FetchRates(ctx context.Context) (entity.RateTable, error) {
	requestID := middleware.GetRequestID(ctx)

	if len(r.sources) == 0 {
		return nil, fmt.Errorf("%w: no rate sources configured", repository.ErrRatesUnavailable)
	}

	var lastErr error
	for i, src := range r.sources {
		start := time.Now()
		table, err := src.FetchRates(ctx)
		elapsed := time.Since(start)

		if err == nil && len(table) == 0 {
			err = service.ErrNoRates
		}

		if err == nil {
			r.observe(src.Name(), "ok", elapsed)
			r.logger.Info("Exchange rates fetched", map[string]interface{}{
				"request_id":  requestID,
				"source":      src.Name(),
				"currencies":  len(table),
				"duration_ms": elapsed.Milliseconds(),
			})
			return table, nil
		}

		outcome := "error"
		if errors.Is(err, service.ErrNoRates) {
			outcome = "empty"
		}
		r.observe(src.Name(), outcome, elapsed)

		lastErr = err
		if i < len(r.sources)-1 {
			r.logger.Warn("Rate source failed, falling back", map[string]interface{}{
				"request_id": requestID,
				"source":     src.Name(),
				"next":       r.sources[i+1].Name(),
				"outcome":    outcome,
				"error":      err.Error(),
			})
			continue
		}

		r.logger.Error("All rate sources failed", map[string]interface{}{
			"request_id": requestID,
			"source":     src.Name(),
			"error":      err.Error(),
		})
	}

	return nil, fmt.Errorf("%w: %w", repository.ErrRatesUnavailable, lastErr)
}

func (r *FallbackRateRepository) observe(source, outcome string, elapsed time.Duration) {
	if r.observer != nil {
		r.observer.ObserveRateFetch(source, outcome, elapsed)
	}
}
