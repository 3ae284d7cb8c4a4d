// Package mcp is the client side of the tool transport: it owns the server
// subprocess, performs the capability handshake, and exposes every
// registered tool as a blocking call.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"snapsort/internal/protocol"
)

const (
	handshakeTimeout = 10 * time.Second
	stopGracePeriod  = 3 * time.Second
)

// SessionError is fatal to the session, unlike tool errors which travel
// inside results.
type SessionError struct {
	Code    string
	Message string
	Cause   error
}

func (e *SessionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *SessionError) Unwrap() error { return e.Cause }

type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ToolCallResult struct {
	Content           []ContentItem  `json:"content"`
	StructuredContent map[string]any `json:"structuredContent"`
	IsError           bool           `json:"isError"`
	Elapsed           time.Duration  `json:"-"`
}

type jsonRPCRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      *int           `json:"id,omitempty"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params,omitempty"`
}

type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Session owns exactly one server subprocess for its active lifetime. No
// tool call may happen before Start completes or after Stop begins.
type Session struct {
	command string
	logger  *slog.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	nextID  int
	pending map[int]chan jsonRPCResponse
	tools   []Tool
	started bool
	stopped bool

	readerDone chan struct{}
}

// NewSession prepares a wrapper around the given server command line. The
// subprocess is not spawned until Start.
func NewSession(command string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		command: strings.TrimSpace(command),
		logger:  logger,
		nextID:  1,
		pending: make(map[int]chan jsonRPCResponse),
	}
}

// Start spawns the server, performs the handshake, and caches the tool
// descriptor set.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	if s.stopped {
		s.mu.Unlock()
		return &SessionError{Code: protocol.ErrorCodeStartupFailed, Message: "session already stopped"}
	}

	cmdline := s.command
	if cmdline == "" {
		cmdline = "snapsortd"
	}
	parts := strings.Fields(cmdline)
	cmd := exec.Command(parts[0], parts[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		s.mu.Unlock()
		return &SessionError{Code: protocol.ErrorCodeStartupFailed, Message: "opening stdin pipe", Cause: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		s.mu.Unlock()
		return &SessionError{Code: protocol.ErrorCodeStartupFailed, Message: "opening stdout pipe", Cause: err}
	}
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		return &SessionError{Code: protocol.ErrorCodeStartupFailed, Message: "spawning " + parts[0], Cause: err}
	}

	s.cmd = cmd
	s.stdin = stdin
	s.readerDone = make(chan struct{})
	go s.readLoop(bufio.NewReader(stdout))
	s.mu.Unlock()

	if err := s.handshake(ctx); err != nil {
		_ = s.Stop()
		return err
	}

	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	return nil
}

func (s *Session) handshake(ctx context.Context) error {
	hsCtx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()

	_, err := s.roundTrip(hsCtx, protocol.RPCMethodInitialize, map[string]any{
		"protocolVersion": protocol.DefaultProtocolVersion,
		"capabilities":    map[string]any{"tools": map[string]any{}},
		"clientInfo":      map[string]any{"name": "snapsort", "version": "1.0.0"},
	})
	if err != nil {
		return s.classifyHandshakeError(hsCtx, err)
	}
	if err := s.notify(protocol.RPCMethodNotificationsInitialized); err != nil {
		return &SessionError{Code: protocol.ErrorCodeStartupFailed, Message: "notifications/initialized failed", Cause: err}
	}

	result, err := s.roundTrip(hsCtx, protocol.RPCMethodToolsList, map[string]any{})
	if err != nil {
		return s.classifyHandshakeError(hsCtx, err)
	}
	var payload struct {
		Tools []Tool `json:"tools"`
	}
	if err := json.Unmarshal(result, &payload); err != nil {
		return &SessionError{Code: protocol.ErrorCodeStartupFailed, Message: "invalid tools/list payload", Cause: err}
	}
	s.mu.Lock()
	s.tools = payload.Tools
	s.mu.Unlock()
	return nil
}

func (s *Session) classifyHandshakeError(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return &SessionError{Code: protocol.ErrorCodeHandshakeTimeout, Message: "server did not respond during handshake", Cause: err}
	}
	return &SessionError{Code: protocol.ErrorCodeStartupFailed, Message: "server exited before completing handshake", Cause: err}
}

// Tools returns the cached descriptor set fetched during Start.
func (s *Session) Tools() []Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Tool, len(s.tools))
	copy(out, s.tools)
	return out
}

// Call invokes a tool by name and blocks until the matching result arrives.
// An unregistered name fails fast without touching the transport.
func (s *Session) Call(ctx context.Context, name string, args map[string]any) (*ToolCallResult, error) {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return nil, &SessionError{Code: protocol.ErrorCodeTransportClosed, Message: "session is not running"}
	}
	known := false
	for _, t := range s.tools {
		if t.Name == name {
			known = true
			break
		}
	}
	s.mu.Unlock()
	if !known {
		return nil, &SessionError{Code: protocol.ErrorCodeUnknownTool, Message: "unknown tool: " + name}
	}

	start := time.Now()
	result, err := s.roundTrip(ctx, protocol.RPCMethodToolsCall, map[string]any{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		return nil, err
	}

	var out ToolCallResult
	if err := json.Unmarshal(result, &out); err != nil {
		return nil, &SessionError{Code: protocol.ErrorCodeTransportClosed, Message: "invalid tools/call result", Cause: err}
	}
	out.Elapsed = time.Since(start)
	return &out, nil
}

func (s *Session) roundTrip(ctx context.Context, method string, params map[string]any) (json.RawMessage, error) {
	s.mu.Lock()
	if s.stdin == nil {
		s.mu.Unlock()
		return nil, &SessionError{Code: protocol.ErrorCodeTransportClosed, Message: "transport is closed"}
	}
	id := s.nextID
	s.nextID++
	ch := make(chan jsonRPCResponse, 1)
	s.pending[id] = ch
	stdin := s.stdin
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}()

	payload, err := json.Marshal(jsonRPCRequest{JSONRPC: "2.0", ID: &id, Method: method, Params: params})
	if err != nil {
		return nil, err
	}
	if err := protocol.WriteMessage(stdin, payload); err != nil {
		return nil, &SessionError{Code: protocol.ErrorCodeTransportClosed, Message: "writing request", Cause: err}
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp, ok := <-ch:
		if !ok {
			return nil, &SessionError{Code: protocol.ErrorCodeTransportClosed, Message: "transport closed while awaiting result"}
		}
		if resp.Error != nil {
			return nil, &SessionError{
				Code:    protocol.ErrorCodeTransportClosed,
				Message: fmt.Sprintf("rpc error %d: %s", resp.Error.Code, resp.Error.Message),
			}
		}
		return resp.Result, nil
	}
}

func (s *Session) notify(method string) error {
	s.mu.Lock()
	stdin := s.stdin
	s.mu.Unlock()
	if stdin == nil {
		return &SessionError{Code: protocol.ErrorCodeTransportClosed, Message: "transport is closed"}
	}
	payload, err := json.Marshal(jsonRPCRequest{JSONRPC: "2.0", Method: method, Params: map[string]any{}})
	if err != nil {
		return err
	}
	return protocol.WriteMessage(stdin, payload)
}

// readLoop delivers responses to their waiting callers by id. On stream end
// all pending channels are closed so blocked calls fail with a transport
// error instead of hanging.
func (s *Session) readLoop(reader *bufio.Reader) {
	defer close(s.readerDone)
	for {
		payload, err := protocol.ReadMessage(reader)
		if err != nil {
			s.mu.Lock()
			for id, ch := range s.pending {
				close(ch)
				delete(s.pending, id)
			}
			s.mu.Unlock()
			return
		}
		var resp jsonRPCResponse
		if err := json.Unmarshal(payload, &resp); err != nil {
			s.logger.Warn("dropping malformed response", "error", err)
			continue
		}
		var id int
		if err := json.Unmarshal(resp.ID, &id); err != nil {
			continue
		}
		s.mu.Lock()
		ch, ok := s.pending[id]
		if ok {
			delete(s.pending, id)
		}
		s.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

// Stop closes the transport and terminates the subprocess, forcing a kill
// after a grace period. Idempotent.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	cmd := s.cmd
	stdin := s.stdin
	s.stdin = nil
	readerDone := s.readerDone
	s.mu.Unlock()

	if cmd == nil {
		return nil
	}
	if stdin != nil {
		_ = stdin.Close()
	}

	waitErr := make(chan error, 1)
	go func() { waitErr <- cmd.Wait() }()
	select {
	case err := <-waitErr:
		if readerDone != nil {
			<-readerDone
		}
		return ignoreCleanExit(err)
	case <-time.After(stopGracePeriod):
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		err := <-waitErr
		if readerDone != nil {
			<-readerDone
		}
		return ignoreCleanExit(err)
	}
}

// ignoreCleanExit drops exit-status errors; a server killed or closed
// during Stop is not a failure.
func ignoreCleanExit(err error) error {
	var exitErr *exec.ExitError
	if err == nil || errors.As(err, &exitErr) {
		return nil
	}
	return err
}
