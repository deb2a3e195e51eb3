// Package service internal/application/service/rates_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/damon-houk/lkr-exchange-tools/internal/domain/entity"
	"github.com/damon-houk/lkr-exchange-tools/internal/domain/repository"
	"github.com/damon-houk/lkr-exchange-tools/internal/domain/toolerror"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/logger"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/middleware"
)

// AllCurrencies is the sentinel that selects the whole table
const AllCurrencies = "ALL"

// SingleRateResult is the response for one requested currency
type SingleRateResult struct {
	Currency    string           `json:"currency"`
	Rate        entity.RateEntry `json:"rate"`
	LastUpdated string           `json:"last_updated"`
}

// AllRatesResult is the response when every currency is requested
type AllRatesResult struct {
	Rates           entity.RateTable `json:"rates"`
	LastUpdated     string           `json:"last_updated"`
	TotalCurrencies int              `json:"total_currencies"`
}

// RatesService lists current exchange rates
type RatesService struct {
	repo   repository.ExchangeRateRepository
	logger logger.Logger
	now    func() time.Time
}

// NewRatesService creates a new rates service
func NewRatesService(repo repository.ExchangeRateRepository, log logger.Logger) *RatesService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RatesService{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

// GetRate returns the entry for a single currency
func (s *RatesService) GetRate(ctx context.Context, currency string) (*SingleRateResult, error) {
	code := entity.NormalizeCode(currency)

	table, err := s.repo.FetchRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exchange rates: %w", err)
	}

	entry, ok := table.Lookup(code)
	if !ok {
		s.logger.Warn("Currency not found in rate table", map[string]interface{}{
			"request_id": middleware.GetRequestID(ctx),
			"currency":   code,
		})
		return nil, toolerror.InvalidParams("currency %s not found", code)
	}

	return &SingleRateResult{
		Currency:    code,
		Rate:        entry,
		LastUpdated: entry.Timestamp,
	}, nil
}

// GetAllRates returns the whole table with a currency count
func (s *RatesService) GetAllRates(ctx context.Context) (*AllRatesResult, error) {
	table, err := s.repo.FetchRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exchange rates: %w", err)
	}

	return &AllRatesResult{
		Rates:           table,
		LastUpdated:     s.now().UTC().Format(time.RFC3339),
		TotalCurrencies: len(table),
	}, nil
}
