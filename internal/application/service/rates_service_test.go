package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/damon-houk/lkr-exchange-tools/internal/domain/repository"
	"github.com/damon-houk/lkr-exchange-tools/internal/domain/toolerror"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/logger"
	"github.com/damon-houk/lkr-exchange-tools/internal/mocks"
)

func newTestRatesService(repo *mocks.MockExchangeRateRepository) *RatesService {
	svc := NewRatesService(repo, logger.NewJSONLogger(io.Discard, logger.ErrorLevel))
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestRatesService_GetAllRates(t *testing.T) {
	repo := new(mocks.MockExchangeRateRepository)
	repo.On("FetchRates", mock.Anything).Return(mocks.SampleRates(), nil)
	svc := newTestRatesService(repo)

	result, err := svc.GetAllRates(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalCurrencies)
	assert.Len(t, result.Rates, 3)
	assert.Equal(t, "2024-05-01T09:00:00Z", result.LastUpdated)
	repo.AssertExpectations(t)
}

func TestRatesService_GetRate(t *testing.T) {
	repo := new(mocks.MockExchangeRateRepository)
	repo.On("FetchRates", mock.Anything).Return(mocks.SampleRates(), nil)
	svc := newTestRatesService(repo)

	result, err := svc.GetRate(context.Background(), "eur")

	require.NoError(t, err)
	assert.Equal(t, "EUR", result.Currency)
	assert.Equal(t, 320.0, result.Rate.Buying)
	assert.Equal(t, 330.0, result.Rate.Selling)
	assert.Equal(t, "2024-05-01T08:30:00Z", result.LastUpdated)
}

func TestRatesService_GetRate_NotFound(t *testing.T) {
	repo := new(mocks.MockExchangeRateRepository)
	repo.On("FetchRates", mock.Anything).Return(mocks.SampleRates(), nil)
	svc := newTestRatesService(repo)

	result, err := svc.GetRate(context.Background(), "XYZ")

	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, toolerror.Is(err, toolerror.KindInvalidParams))
	assert.Equal(t, "currency XYZ not found", err.Error())
}

func TestRatesService_RepositoryFailure(t *testing.T) {
	repo := new(mocks.MockExchangeRateRepository)
	repo.On("FetchRates", mock.Anything).Return(nil, repository.ErrRatesUnavailable)
	svc := newTestRatesService(repo)

	_, err := svc.GetAllRates(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrRatesUnavailable))

	_, err = svc.GetRate(context.Background(), "USD")
	require.Error(t, err)
	assert.Equal(t, toolerror.KindInternal, toolerror.KindOf(err))
}
