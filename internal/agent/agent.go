// Package agent drives the conversation loop: user text goes to the model,
// tool-call requests are executed through the client session, and results
// are fed back until the model answers in plain text.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	mcpclient "snapsort/internal/agent/mcp"
	"snapsort/internal/llm"
	"snapsort/internal/model"
	"snapsort/internal/protocol"
)

// maxToolRounds bounds one user message's tool loop so a confused model
// cannot spin forever.
const maxToolRounds = 15

const systemPrompt = `You are a screenshot organization assistant. You help the user inspect, analyze, and sort screenshot files into category folders.

When tools are available, use them to observe before acting: list files, analyze their content, suggest a category, create the category directory, then move the file. Report what you did in plain language. A failed tool call is information, not a dead end; adjust and continue, and tell the user about files you could not process.`

// ToolSession is the slice of the client session wrapper the agent needs.
type ToolSession interface {
	Tools() []mcpclient.Tool
	Call(ctx context.Context, name string, args map[string]any) (*mcpclient.ToolCallResult, error)
}

// Agent owns the only live thread for its conversation. Modes differ only
// in the wired provider and whether a tool session is attached; the loop is
// identical.
type Agent struct {
	provider llm.Provider
	session  ToolSession
	thread   *Thread
	logger   *slog.Logger
}

// New builds an agent. session may be nil, which leaves the tool loop
// unreachable (the local, conversation-only mode).
func New(provider llm.Provider, session ToolSession, thread *Thread, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	if thread.Len() == 0 && session != nil {
		thread.Append(model.Turn{Role: model.RoleSystem, Content: systemPrompt})
	}
	return &Agent{
		provider: provider,
		session:  session,
		thread:   thread,
		logger:   logger,
	}
}

func (a *Agent) Thread() *Thread { return a.thread }

// HandleMessage runs one full round: the user turn, any number of tool
// rounds, and the model's final text. Nothing is committed to the thread
// until the round succeeds, so a model outage leaves the history exactly as
// it was and the session stays usable.
func (a *Agent) HandleMessage(ctx context.Context, text string) (string, error) {
	pending := []model.Turn{{Role: model.RoleUser, Content: text}}
	tools := a.toolSpecs()

	for round := 0; ; round++ {
		if round >= maxToolRounds {
			return "", fmt.Errorf("tool loop exceeded %d rounds without a final answer", maxToolRounds)
		}

		reply, err := a.provider.Send(ctx, append(a.thread.Turns(), pending...), tools)
		if err != nil {
			if errors.Is(err, model.ErrModelUnavailable) {
				return "", fmt.Errorf("%s: %s backend unavailable: %w", protocol.ErrorCodeModelUnavailable, a.provider.Name(), err)
			}
			return "", err
		}

		if reply.ToolCall == nil {
			pending = append(pending, model.Turn{Role: model.RoleAssistant, Content: reply.Text})
			a.thread.Append(pending...)
			return reply.Text, nil
		}

		call := reply.ToolCall
		a.logger.Debug("executing tool", "tool", call.Name)
		pending = append(pending, model.Turn{
			Role:       model.RoleAssistant,
			ToolName:   call.Name,
			ToolArgs:   call.Args,
			ToolCallID: call.ID,
		})

		resultText, err := a.executeTool(ctx, call)
		if err != nil {
			return "", err
		}
		pending = append(pending, model.Turn{
			Role:       model.RoleTool,
			Content:    resultText,
			ToolCallID: call.ID,
		})
	}
}

// executeTool runs one tool call through the session. Tool failures come
// back as text for the model to react to; only session-level transport
// failures are returned as errors.
func (a *Agent) executeTool(ctx context.Context, call *llm.ToolCall) (string, error) {
	if a.session == nil {
		return "", fmt.Errorf("model requested tool %s but no tool session is attached", call.Name)
	}
	result, err := a.session.Call(ctx, call.Name, call.Args)
	if err != nil {
		var sessErr *mcpclient.SessionError
		if errors.As(err, &sessErr) && sessErr.Code == protocol.ErrorCodeUnknownTool {
			return fmt.Sprintf("ERROR: %s", sessErr.Message), nil
		}
		return "", err
	}

	var parts []string
	for _, item := range result.Content {
		if item.Type == "text" && item.Text != "" {
			parts = append(parts, item.Text)
		}
	}
	text := strings.Join(parts, "\n")
	if text == "" {
		text = "(tool returned no text)"
	}
	if result.IsError {
		a.logger.Debug("tool returned error", "tool", call.Name, "result", text)
	}
	return text, nil
}

func (a *Agent) toolSpecs() []llm.ToolSpec {
	if a.session == nil {
		return nil
	}
	tools := a.session.Tools()
	specs := make([]llm.ToolSpec, 0, len(tools))
	for _, t := range tools {
		specs = append(specs, llm.ToolSpec{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	return specs
}
