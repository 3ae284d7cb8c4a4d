package agent

import (
	"encoding/json"
	"fmt"

	"snapsort/internal/model"
)

// Thread is the ordered turn history of one conversation. Turns are only
// ever appended; committed turns are never reordered or dropped.
type Thread struct {
	mode  string
	turns []model.Turn
}

func NewThread(mode string) *Thread {
	return &Thread{mode: mode}
}

func (t *Thread) Mode() string { return t.mode }

func (t *Thread) Append(turns ...model.Turn) {
	t.turns = append(t.turns, turns...)
}

func (t *Thread) Len() int { return len(t.turns) }

// Turns returns a copy so callers cannot mutate committed history.
func (t *Thread) Turns() []model.Turn {
	out := make([]model.Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

type threadEnvelope struct {
	Mode  string       `json:"mode"`
	Turns []model.Turn `json:"turns"`
}

// Serialize renders the thread as a stable JSON envelope. Round-tripping
// through Deserialize preserves turn order and content exactly.
func (t *Thread) Serialize() ([]byte, error) {
	return json.MarshalIndent(threadEnvelope{Mode: t.mode, Turns: t.turns}, "", "  ")
}

func Deserialize(data []byte) (*Thread, error) {
	var env threadEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding thread: %w", err)
	}
	if env.Mode == "" {
		return nil, fmt.Errorf("thread is missing a mode")
	}
	return &Thread{mode: env.Mode, turns: env.Turns}, nil
}
