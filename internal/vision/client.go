// Package vision calls an OpenAI-compatible vision model to describe an
// image. It is the slow fallback capability of the tiered analysis pipeline.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"snapsort/internal/model"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 60 * time.Second
	defaultModel   = "gpt-4o-mini"

	describePrompt = "Describe this screenshot. Mention visible text, the kind of application shown, and anything that helps categorize it (code, error message, chat, design mockup, documentation, meme)."
)

type Client struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey, modelName string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = defaultModel
	}
	return &Client{
		BaseURL:    baseURL,
		APIKey:     strings.TrimSpace(apiKey),
		Model:      modelName,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Extract sends the image as a base64 data URL and returns the model's
// description.
func (c *Client) Extract(ctx context.Context, path string) (string, float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", 0, &model.ProviderError{Code: "VISION_INPUT_MISSING", Message: "image not found: " + path, Cause: err}
		}
		return "", 0, &model.ProviderError{Code: "VISION_INPUT_UNREADABLE", Message: "cannot read image: " + path, Cause: err}
	}
	if c.APIKey == "" {
		return "", 0, &model.ProviderError{Code: "VISION_AUTH", Message: "missing vision API key"}
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = "image/png"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	payload, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: describePrompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			},
		}},
		MaxTokens: 500,
	})
	if err != nil {
		return "", 0, &model.ProviderError{Code: "VISION_FAILED", Message: "failed to build request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", 0, &model.ProviderError{Code: "VISION_FAILED", Message: "failed to build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", 0, &model.ProviderError{Code: "VISION_UNREACHABLE", Message: err.Error(), Retryable: true, Cause: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, &model.ProviderError{Code: "VISION_FAILED", Message: "failed reading response", Retryable: true, Cause: err}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", 0, &model.ProviderError{
			Code:    "VISION_FAILED",
			Message: fmt.Sprintf("invalid response (status %d)", resp.StatusCode),
			Cause:   err,
		}
	}
	if parsed.Error != nil {
		return "", 0, &model.ProviderError{
			Code:      "VISION_FAILED",
			Message:   parsed.Error.Message,
			Retryable: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", 0, &model.ProviderError{
			Code:      "VISION_FAILED",
			Message:   fmt.Sprintf("unexpected status %d", resp.StatusCode),
			Retryable: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		}
	}
	if len(parsed.Choices) == 0 {
		return "", 0, &model.ProviderError{Code: "VISION_FAILED", Message: "response contained no choices"}
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), 0, nil
}
