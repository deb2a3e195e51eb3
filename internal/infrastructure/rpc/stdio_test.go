package rpc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/logger"
	"github.com/damon-houk/lkr-exchange-tools/internal/mocks"
)

func TestStdioTransport_AnswersEachLine(t *testing.T) {
	s := newTestServer(new(mocks.MockExchangeRateRepository))
	in := strings.NewReader(strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"get_weather"}}`,
	}, "\n") + "\n")
	var out bytes.Buffer

	transport := NewStdioTransport(s, in, &out, logger.NewJSONLogger(io.Discard, logger.ErrorLevel))
	require.NoError(t, transport.Serve(context.Background()))

	scanner := bufio.NewScanner(&out)
	var ids []string
	var last decodedResponse
	for scanner.Scan() {
		var resp decodedResponse
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		ids = append(ids, string(resp.ID))
		last = resp
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)

	require.NotNil(t, last.Error)
	assert.Equal(t, CodeMethodNotFound, last.Error.Code)
}

func TestStdioTransport_CloseStopsServe(t *testing.T) {
	s := newTestServer(new(mocks.MockExchangeRateRepository))
	pr, pw := io.Pipe()
	defer pw.Close()

	transport := NewStdioTransport(s, pr, io.Discard, logger.NewJSONLogger(io.Discard, logger.ErrorLevel))

	done := make(chan error, 1)
	go func() { done <- transport.Serve(context.Background()) }()

	require.NoError(t, transport.Close())
	require.NoError(t, transport.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Close")
	}
}

func TestStdioTransport_ContextCancel(t *testing.T) {
	s := newTestServer(new(mocks.MockExchangeRateRepository))
	pr, pw := io.Pipe()
	defer pw.Close()
	defer pr.Close()

	transport := NewStdioTransport(s, pr, io.Discard, logger.NewJSONLogger(io.Discard, logger.ErrorLevel))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- transport.Serve(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
