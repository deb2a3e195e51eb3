package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/damon-houk/lkr-exchange-tools/internal/domain/entity"
	"github.com/damon-houk/lkr-exchange-tools/internal/domain/repository"
	"github.com/damon-houk/lkr-exchange-tools/internal/domain/toolerror"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/logger"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/middleware"
)

const (
	// DefaultTrendDays is used when the caller does not ask for a period
	DefaultTrendDays = 7
	// DefaultMaxTrendDays caps the simulated period
	DefaultMaxTrendDays = 90
	// DefaultTrendVariation is the maximum relative perturbation per point
	DefaultTrendVariation = 0.02

	// SimulatedTrendNote is attached to every trend result
	SimulatedTrendNote = "Simulated data: points are random perturbations of the current selling rate, not historical rates."
)

// TrendResult is a synthetic rate series for one currency
type TrendResult struct {
	Currency    string              `json:"currency"`
	PeriodDays  int                 `json:"period_days"`
	Trend       []entity.TrendPoint `json:"trend"`
	CurrentRate float64             `json:"current_rate"`
	GeneratedAt string              `json:"generated_at"`
	Note        string              `json:"note"`
}

// TrendService simulates a short rate history around the current selling rate
type TrendService struct {
	repo      repository.ExchangeRateRepository
	variation float64
	maxDays   int
	logger    logger.Logger
	random    func() float64
	now       func() time.Time
}

// NewTrendService creates a new trend service
func NewTrendService(repo repository.ExchangeRateRepository, variation float64, maxDays int, log logger.Logger) *TrendService {
	if variation <= 0 || variation >= 1 {
		variation = DefaultTrendVariation
	}
	if maxDays <= 0 {
		maxDays = DefaultMaxTrendDays
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &TrendService{
		repo:      repo,
		variation: variation,
		maxDays:   maxDays,
		logger:    log,
		random:    rand.Float64,
		now:       time.Now,
	}
}

// MaxDays is the longest period Trend accepts
func (s *TrendService) MaxDays() int {
	return s.maxDays
}

// Trend produces days points ending today, in chronological order
func (s *TrendService) Trend(ctx context.Context, currency string, days int) (*TrendResult, error) {
	code := entity.NormalizeCode(currency)
	if code == "" {
		return nil, toolerror.InvalidParams("currency is required")
	}
	if days < 1 || days > s.maxDays {
		return nil, toolerror.InvalidParams("days must be between 1 and %d", s.maxDays)
	}

	table, err := s.repo.FetchRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exchange rates: %w", err)
	}

	entry, ok := table.Lookup(code)
	if !ok {
		return nil, toolerror.InvalidParams("currency %s not found", code)
	}

	baseRate := entry.Selling
	today := s.now()
	points := make([]entity.TrendPoint, 0, days)

	for i := days - 1; i >= 0; i-- {
		// uniform in [-variation, +variation)
		delta := (s.random()*2 - 1) * s.variation
		rate := round(baseRate*(1+delta), 2)

		change := 0.0
		if i > 0 && baseRate != 0 {
			change = round((rate-baseRate)/baseRate*100, 2)
		}

		points = append(points, entity.TrendPoint{
			Date:   today.AddDate(0, 0, -i).Format("2006-01-02"),
			Rate:   rate,
			Change: change,
		})
	}

	s.logger.Debug("Generated simulated trend", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"currency":   code,
		"days":       days,
	})

	return &TrendResult{
		Currency:    code,
		PeriodDays:  days,
		Trend:       points,
		CurrentRate: baseRate,
		GeneratedAt: today.UTC().Format(time.RFC3339),
		Note:        SimulatedTrendNote,
	}, nil
}
