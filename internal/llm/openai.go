package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"snapsort/internal/model"
)

// OpenAIProvider talks to an OpenAI-compatible chat completions endpoint
// with function-calling support. It backs the remote (tool-capable) mode.
type OpenAIProvider struct {
	client    openai.Client
	modelName string
}

func NewOpenAIProvider(baseURL, apiKey, modelName string) *OpenAIProvider {
	options := []option.RequestOption{}
	if strings.TrimSpace(baseURL) != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}
	if strings.TrimSpace(apiKey) != "" {
		options = append(options, option.WithAPIKey(apiKey))
	}
	return &OpenAIProvider{
		client:    openai.NewClient(options...),
		modelName: modelName,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Send(ctx context.Context, turns []model.Turn, tools []ToolSpec) (*Reply, error) {
	params := openai.ChatCompletionNewParams{
		Model:    p.modelName,
		Messages: buildMessages(turns),
	}
	for _, tool := range tools {
		params.Tools = append(params.Tools, openai.ChatCompletionToolUnionParam{
			OfFunction: &openai.ChatCompletionFunctionToolParam{
				Function: openai.FunctionDefinitionParam{
					Name:        tool.Name,
					Description: openai.String(tool.Description),
					Parameters:  openai.FunctionParameters(tool.InputSchema),
				},
			},
		})
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrModelUnavailable, err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: response contained no choices", model.ErrModelUnavailable)
	}

	message := completion.Choices[0].Message
	if len(message.ToolCalls) > 0 {
		call := message.ToolCalls[0]
		args := map[string]any{}
		if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return nil, fmt.Errorf("model returned malformed tool arguments: %w", err)
			}
		}
		return &Reply{ToolCall: &ToolCall{
			ID:   call.ID,
			Name: call.Function.Name,
			Args: args,
		}}, nil
	}
	return &Reply{Text: message.Content}, nil
}

func buildMessages(turns []model.Turn) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case model.RoleSystem:
			messages = append(messages, openai.SystemMessage(turn.Content))
		case model.RoleUser:
			messages = append(messages, openai.UserMessage(turn.Content))
		case model.RoleAssistant:
			if turn.ToolName != "" {
				args, _ := json.Marshal(turn.ToolArgs)
				messages = append(messages, openai.ChatCompletionMessageParamUnion{
					OfAssistant: &openai.ChatCompletionAssistantMessageParam{
						ToolCalls: []openai.ChatCompletionMessageToolCallUnionParam{{
							OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
								ID: turn.ToolCallID,
								Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
									Name:      turn.ToolName,
									Arguments: string(args),
								},
							},
						}},
					},
				})
				continue
			}
			messages = append(messages, openai.AssistantMessage(turn.Content))
		case model.RoleTool:
			messages = append(messages, openai.ToolMessage(turn.Content, turn.ToolCallID))
		}
	}
	return messages
}
