package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveToolCall(t *testing.T) {
	m := NewMetrics()

	m.ObserveToolCall("convert_currency", "ok", 20*time.Millisecond)
	m.ObserveToolCall("convert_currency", "ok", 30*time.Millisecond)
	m.ObserveToolCall("convert_currency", "invalid_params", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ToolCallsTotal.WithLabelValues("convert_currency", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCallsTotal.WithLabelValues("convert_currency", "invalid_params")))
}

func TestObserveRateFetch(t *testing.T) {
	m := NewMetrics()

	m.ObserveRateFetch("bank_page", "empty", time.Second)
	m.ObserveRateFetch("exchange_rate_api", "ok", time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateFetchesTotal.WithLabelValues("bank_page", "empty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateFetchesTotal.WithLabelValues("exchange_rate_api", "ok")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveToolCall("get_exchange_rates", "ok", time.Millisecond)
		m.ObserveRateFetch("bank_page", "ok", time.Millisecond)
	})
}

func TestHandler(t *testing.T) {
	m := NewMetrics()
	m.ObserveToolCall("get_currency_trend", "ok", time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "lkr_rates_tool_calls_total")
}
