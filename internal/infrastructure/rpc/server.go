package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/damon-houk/lkr-exchange-tools/internal/application/tools"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/logger"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/middleware"
)

// ToolCaller is the part of the dispatcher the server needs
type ToolCaller interface {
	Tools() []tools.Tool
	Call(ctx context.Context, name string, args map[string]any) (*tools.Result, error)
}

// Server decodes JSON-RPC messages and answers them from a ToolCaller.
// It is transport agnostic and safe for concurrent use.
type Server struct {
	caller ToolCaller
	mcp    *server.MCPServer
	logger logger.Logger
}

// NewServer creates a new JSON-RPC server and registers every tool of caller
func NewServer(caller ToolCaller, info ServerInfo, log logger.Logger) *Server {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	s := &Server{
		caller: caller,
		mcp:    server.NewMCPServer(info.Name, info.Version, server.WithToolCapabilities(false)),
		logger: log,
	}

	for _, t := range caller.Tools() {
		schema, err := json.Marshal(t.InputSchema)
		if err != nil {
			log.Error("Failed to encode tool schema", map[string]interface{}{
				"tool":  t.Name,
				"error": err.Error(),
			})
			continue
		}
		s.mcp.AddTool(mcp.NewToolWithRawSchema(t.Name, t.Description, schema), s.callTool)
	}

	return s
}

// Handle processes one raw message. The bool result is false when nothing
// should be written back, as for notifications.
func (s *Server) Handle(ctx context.Context, raw []byte) ([]byte, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, false
	}

	if middleware.GetRequestID(ctx) == "unknown" {
		ctx = middleware.WithRequestID(ctx, "")
	}

	if raw[0] == '[' {
		return s.encode(&Response{
			JSONRPC: Version,
			ID:      nullID,
			Error:   &Error{Code: CodeInvalidRequest, Message: "batch requests are not supported"},
		}), true
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil &&
		env.JSONRPC == Version && env.Method == string(mcp.MethodToolsCall) && !env.isNotification() {
		return s.encode(s.handleToolsCall(ctx, &env)), true
	}

	s.logger.Debug("JSON-RPC message received", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"method":     env.Method,
	})

	reply := s.mcp.HandleMessage(ctx, raw)
	if reply == nil {
		return nil, false
	}

	data, err := json.Marshal(reply)
	if err != nil {
		return s.encode(&Response{
			JSONRPC: Version,
			ID:      env.ID,
			Error:   &Error{Code: CodeInternalError, Message: "failed to encode response"},
		}), true
	}
	return data, true
}

// handleToolsCall answers tools/call with the error code of the tool error kind
func (s *Server) handleToolsCall(ctx context.Context, env *envelope) *Response {
	s.logger.Debug("JSON-RPC request received", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"method":     env.Method,
	})

	resp := &Response{JSONRPC: Version, ID: env.ID}

	if len(env.Params) == 0 {
		resp.Error = &Error{Code: CodeInvalidParams, Message: "missing params"}
		return resp
	}

	var req mcp.CallToolRequest
	if err := json.Unmarshal(env.Params, &req.Params); err != nil {
		resp.Error = &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)}
		return resp
	}
	if req.Params.Name == "" {
		resp.Error = &Error{Code: CodeInvalidParams, Message: "tool name is required"}
		return resp
	}

	result, err := s.callTool(ctx, req)
	if err != nil {
		resp.Error = errorFromTool(err)
		return resp
	}
	resp.Result = result
	return resp
}

// callTool runs one tool through the caller and converts its content blocks
func (s *Server) callTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.caller.Call(ctx, req.Params.Name, req.GetArguments())
	if err != nil {
		return nil, err
	}

	out := &mcp.CallToolResult{Content: make([]mcp.Content, 0, len(result.Content))}
	for _, c := range result.Content {
		out.Content = append(out.Content, mcp.NewTextContent(c.Text))
	}
	return out, nil
}

var nullID = json.RawMessage("null")

func (s *Server) encode(resp *Response) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("Failed to encode JSON-RPC response", map[string]interface{}{
			"error": err.Error(),
		})
		data, _ = json.Marshal(&Response{
			JSONRPC: Version,
			ID:      resp.ID,
			Error:   &Error{Code: CodeInternalError, Message: "failed to encode response"},
		})
	}
	return data
}
