package service

import (
	"context"
	"errors"

	"github.com/damon-houk/lkr-exchange-tools/internal/domain/entity"
)

// ErrNoRates is returned by a source that responded but yielded no usable rows
var ErrNoRates = errors.New("no exchange rates found")

// RateSource defines an upstream that can produce a full rate table
type RateSource interface {
	// Name identifies the source in logs and metrics
	Name() string

	// FetchRates retrieves the current rate table from the upstream
	FetchRates(ctx context.Context) (entity.RateTable, error)
}
