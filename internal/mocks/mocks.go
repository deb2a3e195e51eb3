// internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/damon-houk/lkr-exchange-tools/internal/domain/entity"
)

// MockExchangeRateRepository mocks the ExchangeRateRepository interface
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) FetchRates(ctx context.Context) (entity.RateTable, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entity.RateTable), args.Error(1)
}

// MockRateSource mocks the RateSource interface
type MockRateSource struct {
	mock.Mock
	SourceName string
}

func (m *MockRateSource) Name() string {
	return m.SourceName
}

func (m *MockRateSource) FetchRates(ctx context.Context) (entity.RateTable, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entity.RateTable), args.Error(1)
}

// MockCallJournal mocks the CallJournal interface
type MockCallJournal struct {
	mock.Mock
}

func (m *MockCallJournal) Record(ctx context.Context, record *entity.CallRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockCallJournal) Recent(ctx context.Context, limit int) ([]*entity.CallRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.CallRecord), args.Error(1)
}

// SampleRates is the table used across service and dispatcher tests
func SampleRates() entity.RateTable {
	ts := "2024-05-01T08:30:00Z"
	return entity.RateTable{
		"USD": {Currency: "USD", Buying: 299, Selling: 301, Source: entity.SourcePrimary, Timestamp: ts},
		"EUR": {Currency: "EUR", Buying: 320, Selling: 330, Source: entity.SourcePrimary, Timestamp: ts},
		"LKR": {Currency: "LKR", Buying: 1, Selling: 1, Source: entity.SourceBase, Timestamp: ts},
	}
}
