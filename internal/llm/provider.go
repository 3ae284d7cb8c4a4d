// Package llm abstracts the conversational model behind a single Send call
// so the orchestrator does not care which backend mode is active.
package llm

import (
	"context"

	"snapsort/internal/model"
)

// ToolSpec describes one callable tool in the form the model consumes.
type ToolSpec struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// ToolCall is the model asking for a tool invocation.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// Reply is either plain text or a tool-call request, never both.
type Reply struct {
	Text     string
	ToolCall *ToolCall
}

// Provider sends the full turn history plus the attached tool set and
// returns the model's next move. Implementations report backend outages by
// wrapping model.ErrModelUnavailable.
type Provider interface {
	Send(ctx context.Context, turns []model.Turn, tools []ToolSpec) (*Reply, error)
	Name() string
}
