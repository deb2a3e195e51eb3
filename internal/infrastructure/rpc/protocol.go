// Package rpc serves the tool catalog to MCP clients over JSON-RPC 2.0.
// Session methods (initialize, ping, tools/list, notifications) are answered
// by an mcp-go server; tools/call is answered here so tool errors keep their
// JSON-RPC codes.
package rpc

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/damon-houk/lkr-exchange-tools/internal/domain/toolerror"
)

// Version is the only JSON-RPC version accepted
const Version = mcp.JSONRPC_VERSION

// Standard JSON-RPC error codes
const (
	CodeParseError     = mcp.PARSE_ERROR
	CodeInvalidRequest = mcp.INVALID_REQUEST
	CodeMethodNotFound = mcp.METHOD_NOT_FOUND
	CodeInvalidParams  = mcp.INVALID_PARAMS
	CodeInternalError  = mcp.INTERNAL_ERROR
)

// envelope is the part of a message needed to route it
type envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (e *envelope) isNotification() bool {
	return len(e.ID) == 0 || string(e.ID) == "null"
}

// Response carries either Result or Error
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is the JSON-RPC error object
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// ServerInfo identifies this server to clients
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// errorFromTool maps a tool error kind onto its JSON-RPC code
func errorFromTool(err error) *Error {
	te := toolerror.Normalize(err)
	if te == nil {
		return nil
	}

	code := CodeInternalError
	switch te.Kind {
	case toolerror.KindMethodNotFound:
		code = CodeMethodNotFound
	case toolerror.KindInvalidParams:
		code = CodeInvalidParams
	}

	return &Error{
		Code:    code,
		Message: te.Message,
		Data:    map[string]string{"kind": string(te.Kind)},
	}
}
