package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"snapsort/internal/model"
)

const localRequestTimeout = 120 * time.Second

// LocalProvider is a minimal chat client for a locally hosted model (an
// Ollama-style OpenAI-compatible endpoint). It never attaches tools; the
// local mode runs conversation-only.
type LocalProvider struct {
	Endpoint   string
	Model      string
	HTTPClient *http.Client
}

func NewLocalProvider(endpoint, modelName string) *LocalProvider {
	return &LocalProvider{
		Endpoint:   strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		Model:      modelName,
		HTTPClient: &http.Client{Timeout: localRequestTimeout},
	}
}

func (p *LocalProvider) Name() string { return "local" }

type localChatRequest struct {
	Model    string             `json:"model"`
	Messages []localChatMessage `json:"messages"`
	Stream   bool               `json:"stream"`
}

type localChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type localChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *LocalProvider) Send(ctx context.Context, turns []model.Turn, tools []ToolSpec) (*Reply, error) {
	if len(tools) > 0 {
		return nil, fmt.Errorf("local provider does not support tools")
	}

	messages := make([]localChatMessage, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case model.RoleSystem, model.RoleUser, model.RoleAssistant:
			messages = append(messages, localChatMessage{Role: turn.Role, Content: turn.Content})
		}
	}

	payload, err := json.Marshal(localChatRequest{Model: p.Model, Messages: messages})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrModelUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrModelUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", model.ErrModelUnavailable, resp.StatusCode)
	}

	var parsed localChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid response", model.ErrModelUnavailable)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrModelUnavailable, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: response contained no choices", model.ErrModelUnavailable)
	}
	return &Reply{Text: strings.TrimSpace(parsed.Choices[0].Message.Content)}, nil
}
