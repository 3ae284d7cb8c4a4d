package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"snapsort/internal/model"
)

func TestLocalProviderSend(t *testing.T) {
	var gotReq struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path=%q", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": " hi there "}}},
		})
	}))
	defer server.Close()

	provider := NewLocalProvider(server.URL+"/", "phi-4")
	turns := []model.Turn{
		{Role: model.RoleUser, Content: "hello"},
		{Role: model.RoleAssistant, Content: "hi"},
		{Role: model.RoleTool, Content: "tool output that must be dropped"},
		{Role: model.RoleUser, Content: "and again"},
	}
	reply, err := provider.Send(context.Background(), turns, nil)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply.Text != "hi there" || reply.ToolCall != nil {
		t.Fatalf("reply=%+v", reply)
	}
	if gotReq.Model != "phi-4" {
		t.Fatalf("model=%q", gotReq.Model)
	}
	// Tool turns have no meaning for a chat-only backend.
	if len(gotReq.Messages) != 3 {
		t.Fatalf("len(messages)=%d want=3 (%+v)", len(gotReq.Messages), gotReq.Messages)
	}
}

func TestLocalProviderRejectsTools(t *testing.T) {
	provider := NewLocalProvider("http://unused", "phi-4")
	_, err := provider.Send(context.Background(), nil, []ToolSpec{{Name: "list_files"}})
	if err == nil {
		t.Fatal("expected error when tools are requested")
	}
}

func TestLocalProviderBackendDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	provider := NewLocalProvider(server.URL, "phi-4")
	_, err := provider.Send(context.Background(), []model.Turn{{Role: model.RoleUser, Content: "hi"}}, nil)
	if !errors.Is(err, model.ErrModelUnavailable) {
		t.Fatalf("err=%v want ErrModelUnavailable", err)
	}
}

func TestLocalProviderErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewLocalProvider(server.URL, "phi-4")
	_, err := provider.Send(context.Background(), []model.Turn{{Role: model.RoleUser, Content: "hi"}}, nil)
	if !errors.Is(err, model.ErrModelUnavailable) {
		t.Fatalf("err=%v want ErrModelUnavailable", err)
	}
}

func TestLocalProviderNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	provider := NewLocalProvider(server.URL, "phi-4")
	_, err := provider.Send(context.Background(), []model.Turn{{Role: model.RoleUser, Content: "hi"}}, nil)
	if !errors.Is(err, model.ErrModelUnavailable) {
		t.Fatalf("err=%v want ErrModelUnavailable", err)
	}
}
