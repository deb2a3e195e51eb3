// Package service internal/application/service/conversion_service.go
package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/damon-houk/lkr-exchange-tools/internal/domain/entity"
	"github.com/damon-houk/lkr-exchange-tools/internal/domain/repository"
	"github.com/damon-houk/lkr-exchange-tools/internal/domain/toolerror"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/logger"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/middleware"
)

// ConversionRequest describes an amount to convert between two currencies
type ConversionRequest struct {
	Amount       float64
	FromCurrency string
	ToCurrency   string
	RateType     entity.RateType
}

// ConversionResult represents a completed conversion
type ConversionResult struct {
	OriginalAmount  float64         `json:"original_amount"`
	FromCurrency    string          `json:"from_currency"`
	ToCurrency      string          `json:"to_currency"`
	ConvertedAmount float64         `json:"converted_amount"`
	ConversionRate  float64         `json:"conversion_rate"`
	RateType        entity.RateType `json:"rate_type"`
	Timestamp       string          `json:"timestamp"`
}

// ConversionService converts amounts using the local currency as pivot
type ConversionService struct {
	repo          repository.ExchangeRateRepository
	localCurrency string
	logger        logger.Logger
	now           func() time.Time
}

// NewConversionService creates a new conversion service
func NewConversionService(repo repository.ExchangeRateRepository, localCurrency string, log logger.Logger) *ConversionService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ConversionService{
		repo:          repo,
		localCurrency: entity.NormalizeCode(localCurrency),
		logger:        log,
		now:           time.Now,
	}
}

// Convert validates the request, fetches fresh rates and converts the amount
func (s *ConversionService) Convert(ctx context.Context, req ConversionRequest) (*ConversionResult, error) {
	requestID := middleware.GetRequestID(ctx)

	from := entity.NormalizeCode(req.FromCurrency)
	to := entity.NormalizeCode(req.ToCurrency)

	// Validation happens before any network activity
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) || req.Amount <= 0 {
		return nil, toolerror.InvalidParams("amount must be a positive number")
	}
	if from == "" {
		return nil, toolerror.InvalidParams("from_currency is required")
	}
	if to == "" {
		return nil, toolerror.InvalidParams("to_currency is required")
	}
	rateType, ok := entity.ParseRateType(string(req.RateType))
	if !ok {
		return nil, toolerror.InvalidParams("rate_type must be %q or %q", entity.RateBuying, entity.RateSelling)
	}

	s.logger.Info("Converting currency", map[string]interface{}{
		"request_id": requestID,
		"amount":     req.Amount,
		"from":       from,
		"to":         to,
		"rate_type":  rateType,
	})

	table, err := s.repo.FetchRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exchange rates: %w", err)
	}

	fromRate, err := s.quote(table, from, rateType)
	if err != nil {
		return nil, err
	}
	toRate, err := s.quote(table, to, rateType)
	if err != nil {
		return nil, err
	}

	var converted, rate float64
	switch {
	case from == s.localCurrency:
		converted = req.Amount / toRate
		rate = 1 / toRate
	case to == s.localCurrency:
		converted = req.Amount * fromRate
		rate = fromRate
	default:
		// pivot through the local currency; rate is the per-unit from→to rate
		converted = req.Amount * fromRate / toRate
		rate = fromRate / toRate
	}

	result := &ConversionResult{
		OriginalAmount:  req.Amount,
		FromCurrency:    from,
		ToCurrency:      to,
		ConvertedAmount: round(converted, 2),
		ConversionRate:  round(rate, 4),
		RateType:        rateType,
		Timestamp:       s.now().UTC().Format(time.RFC3339),
	}

	s.logger.Info("Conversion completed", map[string]interface{}{
		"request_id":       requestID,
		"from":             from,
		"to":               to,
		"converted_amount": result.ConvertedAmount,
		"conversion_rate":  result.ConversionRate,
	})

	return result, nil
}

// quote returns the local-currency price of one unit of code.
// The local currency is always worth exactly one unit of itself.
func (s *ConversionService) quote(table entity.RateTable, code string, rateType entity.RateType) (float64, error) {
	if code == s.localCurrency {
		return 1, nil
	}

	entry, ok := table.Lookup(code)
	if !ok {
		return 0, toolerror.InvalidParams("unsupported currency: %s", code)
	}

	rate := entry.Rate(rateType)
	if rate <= 0 {
		return 0, toolerror.InvalidParams("no %s rate available for %s", rateType, code)
	}

	return rate, nil
}
