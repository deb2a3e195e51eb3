package tools

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/damon-houk/lkr-exchange-tools/internal/application/service"
	"github.com/damon-houk/lkr-exchange-tools/internal/domain/entity"
	"github.com/damon-houk/lkr-exchange-tools/internal/domain/repository"
	"github.com/damon-houk/lkr-exchange-tools/internal/domain/toolerror"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/logger"
	"github.com/damon-houk/lkr-exchange-tools/internal/mocks"
)

type recordedCall struct {
	tool   string
	status string
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *fakeRecorder) ObserveToolCall(tool, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{tool: tool, status: status})
}

type panickingTrend struct{}

func (panickingTrend) Trend(context.Context, string, int) (*service.TrendResult, error) {
	panic("boom")
}

func (panickingTrend) MaxDays() int { return 30 }

func newTestDispatcher(repo repository.ExchangeRateRepository, opts ...Option) *Dispatcher {
	log := logger.NewJSONLogger(io.Discard, logger.ErrorLevel)
	opts = append([]Option{WithLogger(log)}, opts...)

	return NewDispatcher(
		service.NewRatesService(repo, log),
		service.NewConversionService(repo, "LKR", log),
		service.NewTrendService(repo, 0.02, 30, log),
		opts...,
	)
}

func decodeText(t *testing.T, result *Result, out any) {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	assert.Equal(t, "text", result.Content[0].Type)
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), out))
}

func TestDispatcher_Catalog(t *testing.T) {
	d := newTestDispatcher(new(mocks.MockExchangeRateRepository))

	assert.Equal(t, []string{ToolGetExchangeRates, ToolConvertCurrency, ToolGetCurrencyTrend}, d.Names())

	convert, ok := d.Lookup(ToolConvertCurrency)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"amount", "from_currency", "to_currency"}, convert.InputSchema.Required)
	assert.Equal(t, []string{"buying", "selling"}, convert.InputSchema.Properties["rate_type"].Enum)
	assert.Equal(t, "selling", convert.InputSchema.Properties["rate_type"].Default)

	trend, ok := d.Lookup(ToolGetCurrencyTrend)
	require.True(t, ok)
	assert.Contains(t, trend.Description, "SIMULATED")
	assert.Equal(t, 30.0, *trend.InputSchema.Properties["days"].Maximum)

	_, ok = d.Lookup("nope")
	assert.False(t, ok)
}

func TestDispatcher_UnknownTool(t *testing.T) {
	repo := new(mocks.MockExchangeRateRepository)
	recorder := &fakeRecorder{}
	d := newTestDispatcher(repo, WithRecorder(recorder))

	result, err := d.Call(context.Background(), "get_weather", nil)

	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, toolerror.Is(err, toolerror.KindMethodNotFound))
	assert.Contains(t, err.Error(), "get_weather")
	repo.AssertNotCalled(t, "FetchRates", mock.Anything)
	assert.Equal(t, []recordedCall{{tool: "get_weather", status: "method_not_found"}}, recorder.calls)
}

func TestDispatcher_GetExchangeRates(t *testing.T) {
	repo := new(mocks.MockExchangeRateRepository)
	repo.On("FetchRates", mock.Anything).Return(mocks.SampleRates(), nil)
	d := newTestDispatcher(repo)

	t.Run("defaults to all", func(t *testing.T) {
		result, err := d.Call(context.Background(), ToolGetExchangeRates, nil)
		require.NoError(t, err)

		var out service.AllRatesResult
		decodeText(t, result, &out)
		assert.Equal(t, 3, out.TotalCurrencies)
		assert.Equal(t, len(out.Rates), out.TotalCurrencies)
	})

	t.Run("lower case single currency", func(t *testing.T) {
		result, err := d.Call(context.Background(), ToolGetExchangeRates, map[string]any{"currency": "usd"})
		require.NoError(t, err)

		var out service.SingleRateResult
		decodeText(t, result, &out)
		assert.Equal(t, "USD", out.Currency)
		assert.Equal(t, 301.0, out.Rate.Selling)
	})

	t.Run("result text is indented", func(t *testing.T) {
		result, err := d.Call(context.Background(), ToolGetExchangeRates, map[string]any{"currency": "EUR"})
		require.NoError(t, err)
		assert.Contains(t, result.Content[0].Text, "\n  \"currency\": \"EUR\"")
	})

	t.Run("unknown currency", func(t *testing.T) {
		_, err := d.Call(context.Background(), ToolGetExchangeRates, map[string]any{"currency": "XYZ"})
		assert.True(t, toolerror.Is(err, toolerror.KindInvalidParams))
	})
}

func TestDispatcher_ConvertCurrency(t *testing.T) {
	repo := new(mocks.MockExchangeRateRepository)
	repo.On("FetchRates", mock.Anything).Return(mocks.SampleRates(), nil)
	d := newTestDispatcher(repo)

	result, err := d.Call(context.Background(), ToolConvertCurrency, map[string]any{
		"amount":        "100",
		"from_currency": "USD",
		"to_currency":   "LKR",
	})
	require.NoError(t, err)

	var out service.ConversionResult
	decodeText(t, result, &out)
	assert.Equal(t, 30100.0, out.ConvertedAmount)
	assert.Equal(t, 301.0, out.ConversionRate)
	assert.Equal(t, entity.RateSelling, out.RateType)
}

func TestDispatcher_ConvertCurrency_InvalidParams(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing amount", map[string]any{"from_currency": "USD", "to_currency": "LKR"}},
		{"non numeric amount", map[string]any{"amount": "lots", "from_currency": "USD", "to_currency": "LKR"}},
		{"negative amount", map[string]any{"amount": -1.0, "from_currency": "USD", "to_currency": "LKR"}},
		{"missing from", map[string]any{"amount": 1.0, "to_currency": "LKR"}},
		{"bad rate type", map[string]any{"amount": 1.0, "from_currency": "USD", "to_currency": "LKR", "rate_type": "mid"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockExchangeRateRepository)
			d := newTestDispatcher(repo)

			_, err := d.Call(context.Background(), ToolConvertCurrency, tt.args)

			assert.True(t, toolerror.Is(err, toolerror.KindInvalidParams), "got %v", err)
			repo.AssertNotCalled(t, "FetchRates", mock.Anything)
		})
	}
}

func TestDispatcher_GetCurrencyTrend(t *testing.T) {
	repo := new(mocks.MockExchangeRateRepository)
	repo.On("FetchRates", mock.Anything).Return(mocks.SampleRates(), nil)
	d := newTestDispatcher(repo)

	result, err := d.Call(context.Background(), ToolGetCurrencyTrend, map[string]any{"currency": "EUR"})
	require.NoError(t, err)

	var out service.TrendResult
	decodeText(t, result, &out)
	assert.Equal(t, service.DefaultTrendDays, out.PeriodDays)
	assert.Len(t, out.Trend, service.DefaultTrendDays)
	assert.NotEmpty(t, out.Note)

	// JSON numbers arrive as float64
	result, err = d.Call(context.Background(), ToolGetCurrencyTrend, map[string]any{"currency": "USD", "days": float64(3)})
	require.NoError(t, err)
	decodeText(t, result, &out)
	assert.Len(t, out.Trend, 3)

	_, err = d.Call(context.Background(), ToolGetCurrencyTrend, map[string]any{"currency": "USD", "days": 31})
	assert.True(t, toolerror.Is(err, toolerror.KindInvalidParams))
}

func TestDispatcher_UpstreamFailureIsInternal(t *testing.T) {
	repo := new(mocks.MockExchangeRateRepository)
	repo.On("FetchRates", mock.Anything).Return(nil, repository.ErrRatesUnavailable)
	recorder := &fakeRecorder{}
	d := newTestDispatcher(repo, WithRecorder(recorder))

	result, err := d.Call(context.Background(), ToolGetExchangeRates, nil)

	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, toolerror.Is(err, toolerror.KindInternal))
	assert.True(t, errors.Is(err, repository.ErrRatesUnavailable))
	assert.Contains(t, err.Error(), "failed to fetch exchange rates")
	assert.Equal(t, "internal_error", recorder.calls[0].status)
}

func TestDispatcher_PanicIsInternal(t *testing.T) {
	repo := new(mocks.MockExchangeRateRepository)
	log := logger.NewJSONLogger(io.Discard, logger.ErrorLevel)
	d := NewDispatcher(
		service.NewRatesService(repo, log),
		service.NewConversionService(repo, "LKR", log),
		panickingTrend{},
		WithLogger(log),
	)

	result, err := d.Call(context.Background(), ToolGetCurrencyTrend, map[string]any{"currency": "USD"})

	assert.Nil(t, result)
	assert.True(t, toolerror.Is(err, toolerror.KindInternal))
	assert.Contains(t, err.Error(), "boom")
}

func TestDispatcher_JournalsCalls(t *testing.T) {
	repo := new(mocks.MockExchangeRateRepository)
	repo.On("FetchRates", mock.Anything).Return(mocks.SampleRates(), nil)

	journal := new(mocks.MockCallJournal)
	journal.On("Record", mock.Anything, mock.MatchedBy(func(r *entity.CallRecord) bool {
		return r.Tool == ToolGetExchangeRates && r.Status == StatusOK
	})).Return(nil).Once()
	journal.On("Record", mock.Anything, mock.MatchedBy(func(r *entity.CallRecord) bool {
		return r.Tool == ToolConvertCurrency && r.ErrorKind == "invalid_params" && r.Message != ""
	})).Return(errors.New("disk full")).Once()

	d := newTestDispatcher(repo, WithJournal(journal))

	_, err := d.Call(context.Background(), ToolGetExchangeRates, nil)
	require.NoError(t, err)

	// a journal failure never changes the call outcome
	_, err = d.Call(context.Background(), ToolConvertCurrency, map[string]any{})
	assert.True(t, toolerror.Is(err, toolerror.KindInvalidParams))

	journal.AssertExpectations(t)
}

func TestDispatcher_ConcurrentCalls(t *testing.T) {
	repo := new(mocks.MockExchangeRateRepository)
	repo.On("FetchRates", mock.Anything).Return(mocks.SampleRates(), nil)
	d := newTestDispatcher(repo)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := []string{ToolGetExchangeRates, ToolConvertCurrency, ToolGetCurrencyTrend}[i%3]
			args := map[string]any{"currency": "USD", "amount": 10.0, "from_currency": "USD", "to_currency": "EUR"}
			if _, err := d.Call(context.Background(), name, args); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}
	repo.AssertNumberOfCalls(t, "FetchRates", workers)
}
