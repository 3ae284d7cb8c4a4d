// Package mcp implements the tool server side of the stdio transport: a
// JSON-RPC loop that advertises the tool registry and executes one call at
// a time.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"snapsort/internal/analyze"
	"snapsort/internal/classify"
	"snapsort/internal/config"
	"snapsort/internal/protocol"
	"snapsort/internal/store"
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Result  interface{} `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
}

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type Server struct {
	cfg        *config.Config
	engine     *analyze.Engine
	classifier *classify.Classifier
	history    *store.SQLiteStore
	logger     *slog.Logger

	tools map[string]toolDefinition
}

// NewServer builds the tool server. history may be nil to disable move
// bookkeeping.
func NewServer(cfg *config.Config, engine *analyze.Engine, classifier *classify.Classifier, history *store.SQLiteStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:        cfg,
		engine:     engine,
		classifier: classifier,
		history:    history,
		logger:     logger,
	}
	s.tools = s.buildToolRegistry()
	return s
}

// Serve runs the request loop until the input stream closes or ctx is
// cancelled. Requests are handled strictly one at a time so filesystem
// mutations never race within a session. A failing tool handler produces an
// isError result; it never takes the loop down.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := protocol.ReadMessage(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		var req rpcRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			s.logger.Warn("dropping malformed request", "error", err)
			if writeErr := s.writeError(out, nil, -32700, "parse error"); writeErr != nil {
				return writeErr
			}
			continue
		}

		if err := s.dispatch(ctx, out, req); err != nil {
			return err
		}
	}
}

func (s *Server) dispatch(ctx context.Context, out io.Writer, req rpcRequest) error {
	switch req.Method {
	case protocol.RPCMethodInitialize:
		return s.writeResult(out, req.ID, map[string]interface{}{
			"protocolVersion": protocol.DefaultProtocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "snapsort",
				"version": "1.0.0",
			},
		})
	case protocol.RPCMethodNotificationsInitialized:
		// notification, no response
		return nil
	case protocol.RPCMethodToolsList:
		return s.writeResult(out, req.ID, map[string]interface{}{
			"tools": s.Tools(),
		})
	case protocol.RPCMethodToolsCall:
		result, rpcErr := s.processToolsCall(ctx, req.Params)
		if rpcErr != nil {
			return s.write(out, rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: rpcErr})
		}
		return s.writeResult(out, req.ID, result)
	default:
		if req.ID == nil {
			// unknown notification, ignore
			return nil
		}
		return s.writeError(out, req.ID, -32601, fmt.Sprintf("method not found: %s", req.Method))
	}
}

func (s *Server) processToolsCall(ctx context.Context, rawParams json.RawMessage) (toolCallResult, *rpcError) {
	params, err := parseToolsCallParams(rawParams)
	if err != nil {
		return toolCallResult{}, &rpcError{Code: -32600, Message: err.Error()}
	}

	tool, ok := s.tools[params.Name]
	if !ok {
		return newToolErrorResult(toolExecutionError{
			Code:    protocol.ErrorCodeUnknownTool,
			Message: fmt.Sprintf("unknown tool: %s", params.Name),
		}), nil
	}

	s.logger.Debug("tool call", "tool", params.Name)
	result, toolErr := s.executeTool(ctx, tool, params.Arguments)
	if toolErr != nil {
		return newToolErrorResult(*toolErr), nil
	}
	return result, nil
}

// executeTool runs the handler behind a panic guard so one bad call cannot
// crash the server process.
func (s *Server) executeTool(ctx context.Context, tool toolDefinition, args map[string]interface{}) (result toolCallResult, toolErr *toolExecutionError) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("tool handler panicked", "tool", tool.Name, "panic", r)
			toolErr = &toolExecutionError{
				Code:    protocol.ErrorCodeExecutionFailed,
				Message: fmt.Sprintf("tool %s failed: %v", tool.Name, r),
			}
		}
	}()
	return tool.handler(ctx, args)
}

func parseToolsCallParams(raw json.RawMessage) (toolsCallParams, error) {
	if len(raw) == 0 {
		return toolsCallParams{}, errors.New("params is required")
	}
	var params toolsCallParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return toolsCallParams{}, errors.New("invalid tools/call params")
	}
	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return toolsCallParams{}, errors.New("tools/call params.name is required")
	}
	if params.Arguments == nil {
		params.Arguments = map[string]interface{}{}
	}
	return params, nil
}

func (s *Server) writeResult(out io.Writer, id, result interface{}) error {
	return s.write(out, rpcResponse{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) writeError(out io.Writer, id interface{}, code int, message string) error {
	return s.write(out, rpcResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}})
}

func (s *Server) write(out io.Writer, resp rpcResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return protocol.WriteMessage(out, payload)
}
