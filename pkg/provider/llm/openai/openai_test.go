package openai

import (
	"testing"
	"time"

	"github.com/novanode-ai/callbridge/pkg/provider/llm"
)

// ── convertMessage ────────────────────────────────────────────────────────────

func TestConvertMessage_System(t *testing.T) {
	t.Parallel()
	param, err := convertMessage(llm.Message{Role: "system", Content: "You are helpful."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if param.OfSystem == nil {
		t.Fatal("expected OfSystem to be set")
	}
}

func TestConvertMessage_User(t *testing.T) {
	t.Parallel()
	param, err := convertMessage(llm.Message{Role: "user", Content: "Hello!"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if param.OfUser == nil {
		t.Fatal("expected OfUser to be set")
	}
}

func TestConvertMessage_Assistant(t *testing.T) {
	t.Parallel()
	param, err := convertMessage(llm.Message{Role: "assistant", Content: "Hi there!"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if param.OfAssistant == nil {
		t.Fatal("expected OfAssistant to be set")
	}
}

func TestConvertMessage_AssistantWithToolCalls(t *testing.T) {
	t.Parallel()
	msg := llm.Message{
		Role: "assistant",
		ToolCalls: []llm.ToolCall{
			{ID: "call_1", Name: "searchAvailability", Arguments: `{"date":"2026-09-01"}`},
		},
	}
	param, err := convertMessage(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if param.OfAssistant == nil {
		t.Fatal("expected OfAssistant to be set")
	}
	if len(param.OfAssistant.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(param.OfAssistant.ToolCalls))
	}
	tc := param.OfAssistant.ToolCalls[0]
	if tc.ID != "call_1" {
		t.Errorf("expected ID call_1, got %s", tc.ID)
	}
	if tc.Function.Name != "searchAvailability" {
		t.Errorf("expected function name searchAvailability, got %s", tc.Function.Name)
	}
	if tc.Function.Arguments != `{"date":"2026-09-01"}` {
		t.Errorf("unexpected arguments: %s", tc.Function.Arguments)
	}
}

func TestConvertMessage_Tool(t *testing.T) {
	t.Parallel()
	param, err := convertMessage(llm.Message{Role: "tool", Content: "No appointments available.", ToolCallID: "call_1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if param.OfTool == nil {
		t.Fatal("expected OfTool to be set")
	}
	if param.OfTool.ToolCallID != "call_1" {
		t.Errorf("expected ToolCallID call_1, got %s", param.OfTool.ToolCallID)
	}
}

func TestConvertMessage_UnknownRole(t *testing.T) {
	t.Parallel()
	if _, err := convertMessage(llm.Message{Role: "narrator", Content: "test"}); err == nil {
		t.Fatal("expected error for unknown role, got nil")
	}
}

// ── modelCapabilities ─────────────────────────────────────────────────────────

func TestModelCapabilities(t *testing.T) {
	t.Parallel()
	tests := []struct {
		model         string
		contextWindow int
		toolCalling   bool
	}{
		{"gpt-4o-mini", 128_000, true},
		{"gpt-4o", 128_000, true},
		{"gpt-4-turbo", 128_000, true},
		{"gpt-4", 8_192, true},
		{"gpt-3.5-turbo", 16_385, true},
		{"o1-mini", 128_000, false},
		{"o1", 200_000, true},
	}
	for _, tt := range tests {
		caps := modelCapabilities(tt.model)
		if caps.ContextWindow != tt.contextWindow {
			t.Errorf("%s: expected context window %d, got %d", tt.model, tt.contextWindow, caps.ContextWindow)
		}
		if caps.SupportsToolCalling != tt.toolCalling {
			t.Errorf("%s: expected SupportsToolCalling=%v", tt.model, tt.toolCalling)
		}
		if !caps.SupportsStreaming {
			t.Errorf("%s: expected SupportsStreaming=true", tt.model)
		}
	}
}

func TestModelCapabilities_UnknownModel(t *testing.T) {
	t.Parallel()
	caps := modelCapabilities("my-custom-model")
	if caps.ContextWindow <= 0 {
		t.Error("unknown model: expected positive ContextWindow")
	}
	if caps.MaxOutputTokens <= 0 {
		t.Error("unknown model: expected positive MaxOutputTokens")
	}
}

// ── Constructor ───────────────────────────────────────────────────────────────

func TestNew_MissingAPIKey(t *testing.T) {
	t.Parallel()
	if _, err := New("", "gpt-4o"); err == nil {
		t.Fatal("expected error for empty API key")
	}
}

func TestNew_EmptyModelUsesDefault(t *testing.T) {
	t.Parallel()
	p, err := New("sk-test", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.model != DefaultModel {
		t.Errorf("expected model %q, got %q", DefaultModel, p.model)
	}
}

func TestNew_Options(t *testing.T) {
	t.Parallel()
	p, err := New("sk-test", "gpt-4o",
		WithBaseURL("https://custom.example.com"),
		WithTimeout(5*time.Second),
	)
	if err != nil {
		t.Fatalf("unexpected error with valid options: %v", err)
	}
	if p == nil {
		t.Fatal("expected non-nil provider")
	}
}

// ── buildParams ───────────────────────────────────────────────────────────────

func TestBuildParams_SystemPromptAndTools(t *testing.T) {
	t.Parallel()
	p := &Provider{model: "gpt-4o"}
	params, err := p.buildParams(llm.CompletionRequest{
		SystemPrompt: "You are a helpful voice assistant.",
		Messages: []llm.Message{
			{Role: "user", Content: "Check client 42."},
		},
		Tools: []llm.ToolDefinition{
			{
				Name:        "checkClientId",
				Description: "Verify a client ID.",
				Parameters:  map[string]any{"type": "object"},
			},
		},
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(params.Messages) != 2 {
		t.Fatalf("expected 2 messages (system + user), got %d", len(params.Messages))
	}
	if params.Messages[0].OfSystem == nil {
		t.Error("expected first message to be the system prompt")
	}
	if len(params.Tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(params.Tools))
	}
	if params.Tools[0].Function.Name != "checkClientId" {
		t.Errorf("expected tool name checkClientId, got %q", params.Tools[0].Function.Name)
	}
	if !params.MaxCompletionTokens.Valid() || params.MaxCompletionTokens.Value != 256 {
		t.Errorf("expected MaxCompletionTokens 256, got %+v", params.MaxCompletionTokens)
	}
}
