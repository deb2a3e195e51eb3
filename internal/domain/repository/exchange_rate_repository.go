// Package repository internal/domain/repository/exchange_rate_repository.go
package repository

import (
	"context"
	"errors"

	"github.com/damon-houk/lkr-exchange-tools/internal/domain/entity"
)

// ErrRatesUnavailable is returned when every configured rate source failed
var ErrRatesUnavailable = errors.New("exchange rates unavailable")

// ExchangeRateRepository defines the interface for exchange rate access
type ExchangeRateRepository interface {
	// FetchRates builds a fresh rate table for the current moment
	FetchRates(ctx context.Context) (entity.RateTable, error)
}
