// Package tools exposes the exchange-rate operations as a named tool catalog.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/damon-houk/lkr-exchange-tools/internal/domain/entity"
	"github.com/damon-houk/lkr-exchange-tools/internal/domain/repository"
	"github.com/damon-houk/lkr-exchange-tools/internal/domain/toolerror"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/logger"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/middleware"
)

// StatusOK is the status recorded for a successful call
const StatusOK = "ok"

type handlerFunc func(ctx context.Context, args map[string]any) (any, error)

// Tool is one entry of the catalog
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema *JSONSchema `json:"inputSchema"`
	handler     handlerFunc
}

// Content is a single block of a tool result
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the payload returned by a successful call
type Result struct {
	Content []Content `json:"content"`
}

// Recorder receives one observation per call
type Recorder interface {
	ObserveToolCall(tool, status string, elapsed time.Duration)
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithLogger sets the dispatcher logger
func WithLogger(log logger.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.logger = log
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) { d.recorder = r }
}

// WithJournal sets the journal that receives a record of every call
func WithJournal(j repository.CallJournal) Option {
	return func(d *Dispatcher) { d.journal = j }
}

// Dispatcher routes named calls to their handlers. It keeps no state between
// calls and is safe for concurrent use once built.
type Dispatcher struct {
	tools    []Tool
	byName   map[string]int
	logger   logger.Logger
	recorder Recorder
	journal  repository.CallJournal
}

// NewDispatcher registers the catalog over the given operations
func NewDispatcher(rates RatesLister, converter Converter, trend TrendGenerator, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		logger: logger.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.tools = buildCatalog(rates, converter, trend)
	d.byName = make(map[string]int, len(d.tools))
	for i, t := range d.tools {
		d.byName[t.Name] = i
	}

	d.logger.Debug("Tool catalog registered", map[string]interface{}{
		"tools": d.Names(),
	})

	return d
}

// Tools returns the catalog in registration order
func (d *Dispatcher) Tools() []Tool {
	out := make([]Tool, len(d.tools))
	copy(out, d.tools)
	return out
}

// Names returns the tool names in registration order
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.tools))
	for _, t := range d.tools {
		names = append(names, t.Name)
	}
	return names
}

// Lookup finds a tool by name
func (d *Dispatcher) Lookup(name string) (Tool, bool) {
	i, ok := d.byName[name]
	if !ok {
		return Tool{}, false
	}
	return d.tools[i], true
}

// Call runs the named tool. Every returned error is a *toolerror.Error.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) (result *Result, err error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = toolerror.Internal(fmt.Errorf("tool %s failed unexpectedly: %v", name, r))
		}
		d.finish(ctx, name, start, err)
	}()

	tool, ok := d.Lookup(name)
	if !ok {
		return nil, toolerror.MethodNotFound(name)
	}

	payload, err := tool.handler(ctx, args)
	if err != nil {
		return nil, toolerror.Normalize(err)
	}

	text, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, toolerror.Internal(fmt.Errorf("failed to encode result: %w", err))
	}

	return &Result{
		Content: []Content{{Type: "text", Text: string(text)}},
	}, nil
}

func (d *Dispatcher) finish(ctx context.Context, name string, start time.Time, err error) {
	elapsed := time.Since(start)
	requestID := middleware.GetRequestID(ctx)

	record := &entity.CallRecord{
		Tool:       name,
		Status:     StatusOK,
		DurationMS: elapsed.Milliseconds(),
		RequestID:  requestID,
	}

	fields := map[string]interface{}{
		"request_id":  requestID,
		"tool":        name,
		"duration_ms": record.DurationMS,
	}

	if te := toolerror.Normalize(err); te != nil {
		record.Status = string(te.Kind)
		record.ErrorKind = string(te.Kind)
		record.Message = te.Message
		fields["error_kind"] = te.Kind
		fields["error"] = te.Message

		if te.Kind == toolerror.KindInternal {
			d.logger.Error("Tool call failed", fields)
		} else {
			d.logger.Warn("Tool call rejected", fields)
		}
	} else {
		d.logger.Info("Tool call completed", fields)
	}

	if d.recorder != nil {
		d.recorder.ObserveToolCall(name, record.Status, elapsed)
	}

	if d.journal != nil {
		if jerr := d.journal.Record(ctx, record); jerr != nil {
			d.logger.Warn("Failed to journal tool call", map[string]interface{}{
				"request_id": requestID,
				"tool":       name,
				"error":      jerr.Error(),
			})
		}
	}
}
