package handler

import (
	"github.com/damon-houk/lkr-exchange-tools/internal/application/tools"
	"github.com/damon-houk/lkr-exchange-tools/internal/domain/entity"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Kind        string `json:"kind,omitempty"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// ToolListResponse is the body of GET /tools
type ToolListResponse struct {
	Tools []tools.Tool `json:"tools"`
}

// CallHistoryResponse is the body of GET /calls
type CallHistoryResponse struct {
	Calls []*entity.CallRecord `json:"calls"`
	Count int                  `json:"count"`
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status string   `json:"status"`
	Tools  []string `json:"tools"`
}
