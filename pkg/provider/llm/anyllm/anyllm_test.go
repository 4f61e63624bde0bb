package anyllm

import (
	"testing"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/novanode-ai/callbridge/pkg/provider/llm"
)

// ── convertMessage ────────────────────────────────────────────────────────────

func TestConvertMessage_Roles(t *testing.T) {
	t.Parallel()
	tests := []struct {
		role    string
		content string
	}{
		{"system", "You are helpful."},
		{"user", "Hello!"},
		{"assistant", "Hi there!"},
	}
	for _, tt := range tests {
		got := convertMessage(llm.Message{Role: tt.role, Content: tt.content})
		if got.Role != tt.role {
			t.Errorf("expected role %q, got %q", tt.role, got.Role)
		}
		if got.ContentString() != tt.content {
			t.Errorf("expected content %q, got %q", tt.content, got.ContentString())
		}
	}
}

func TestConvertMessage_AssistantWithToolCalls(t *testing.T) {
	t.Parallel()
	m := llm.Message{
		Role: "assistant",
		ToolCalls: []llm.ToolCall{
			{ID: "call_1", Name: "checkClientId", Arguments: `{"clientId":"42"}`},
		},
	}
	got := convertMessage(m)
	if len(got.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(got.ToolCalls))
	}
	tc := got.ToolCalls[0]
	if tc.ID != "call_1" {
		t.Errorf("expected ID call_1, got %q", tc.ID)
	}
	if tc.Function.Name != "checkClientId" {
		t.Errorf("expected function name checkClientId, got %q", tc.Function.Name)
	}
	if tc.Function.Arguments != `{"clientId":"42"}` {
		t.Errorf("unexpected arguments: %q", tc.Function.Arguments)
	}
	if tc.Type != "function" {
		t.Errorf("expected type function, got %q", tc.Type)
	}
}

func TestConvertMessage_ToolResult(t *testing.T) {
	t.Parallel()
	m := llm.Message{Role: "tool", Content: "Welcome back, Ana!", ToolCallID: "call_1"}
	got := convertMessage(m)
	if got.Role != "tool" {
		t.Errorf("expected role tool, got %q", got.Role)
	}
	if got.ToolCallID != "call_1" {
		t.Errorf("expected ToolCallID call_1, got %q", got.ToolCallID)
	}
	if got.ContentString() != "Welcome back, Ana!" {
		t.Errorf("unexpected content: %q", got.ContentString())
	}
}

func TestConvertMessage_EmptyToolCalls(t *testing.T) {
	t.Parallel()
	got := convertMessage(llm.Message{Role: "assistant", Content: "No tools here."})
	if len(got.ToolCalls) != 0 {
		t.Errorf("expected no tool calls, got %d", len(got.ToolCalls))
	}
}

// ── modelCapabilities ─────────────────────────────────────────────────────────

func TestModelCapabilities(t *testing.T) {
	t.Parallel()
	tests := []struct {
		model         string
		contextWindow int
		maxOutput     int
	}{
		{"gpt-4o-mini", 128_000, 16_384},
		{"gpt-4o", 128_000, 16_384},
		{"claude-3-5-sonnet-latest", 200_000, 8_192},
		{"claude-future-model", 200_000, 8_192},
		{"gemini-2.0-flash", 1_048_576, 8_192},
		{"gemini-1.5-pro", 2_097_152, 8_192},
		{"llama3.2", 32_768, 4_096},
		{"mistral-small", 32_768, 4_096},
	}
	for _, tt := range tests {
		caps := modelCapabilities(tt.model)
		if caps.ContextWindow != tt.contextWindow {
			t.Errorf("%s: expected context window %d, got %d", tt.model, tt.contextWindow, caps.ContextWindow)
		}
		if caps.MaxOutputTokens != tt.maxOutput {
			t.Errorf("%s: expected max output %d, got %d", tt.model, tt.maxOutput, caps.MaxOutputTokens)
		}
		if !caps.SupportsStreaming {
			t.Errorf("%s: expected SupportsStreaming=true", tt.model)
		}
	}
}

func TestModelCapabilities_UnknownDefaults(t *testing.T) {
	t.Parallel()
	caps := modelCapabilities("my-custom-model")
	if caps.ContextWindow <= 0 {
		t.Error("unknown model: expected positive ContextWindow")
	}
	if caps.MaxOutputTokens <= 0 {
		t.Error("unknown model: expected positive MaxOutputTokens")
	}
	if !caps.SupportsToolCalling {
		t.Error("unknown model: expected SupportsToolCalling=true")
	}
}

func TestModelCapabilities_CaseInsensitive(t *testing.T) {
	t.Parallel()
	lower := modelCapabilities("claude-3-5-haiku-latest")
	upper := modelCapabilities("CLAUDE-3-5-HAIKU-LATEST")
	if lower.ContextWindow != upper.ContextWindow {
		t.Errorf("case should not matter: got %d vs %d", lower.ContextWindow, upper.ContextWindow)
	}
}

// ── Constructor ───────────────────────────────────────────────────────────────

func TestNew_EmptyVendor(t *testing.T) {
	t.Parallel()
	if _, err := New("", "gpt-4o"); err == nil {
		t.Fatal("expected error for empty vendor")
	}
}

func TestNew_EmptyModel(t *testing.T) {
	t.Parallel()
	if _, err := New("openai", ""); err == nil {
		t.Fatal("expected error for empty model")
	}
}

func TestNew_UnsupportedVendor(t *testing.T) {
	t.Parallel()
	if _, err := New("fakecloud", "some-model", anyllmlib.WithAPIKey("dummy")); err == nil {
		t.Fatal("expected error for unsupported vendor")
	}
}

func TestNew_KnownVendors(t *testing.T) {
	tests := []struct {
		vendor string
		model  string
		opts   []anyllmlib.Option
	}{
		{"openai", "gpt-4o", []anyllmlib.Option{anyllmlib.WithAPIKey("sk-test")}},
		{"anthropic", "claude-3-5-sonnet-latest", []anyllmlib.Option{anyllmlib.WithAPIKey("sk-ant-test")}},
		{"ollama", "llama3.2", nil},
		{"llamacpp", "llama3.2", nil},
		{"llamafile", "llama3.2", nil},
	}
	for _, tt := range tests {
		t.Run(tt.vendor, func(t *testing.T) {
			p, err := New(tt.vendor, tt.model, tt.opts...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p == nil {
				t.Fatal("expected non-nil provider")
			}
			if p.model != tt.model {
				t.Errorf("expected model %q, got %q", tt.model, p.model)
			}
		})
	}
}

func TestNew_VendorCaseInsensitive(t *testing.T) {
	p, err := New("OpenAI", "gpt-4o", anyllmlib.WithAPIKey("sk-test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatal("expected non-nil provider")
	}
}

// ── Capabilities ──────────────────────────────────────────────────────────────

func TestCapabilities_DelegatesToModel(t *testing.T) {
	t.Parallel()
	p := &Provider{model: "claude-3-5-sonnet-latest"}
	caps := p.Capabilities()
	expected := modelCapabilities("claude-3-5-sonnet-latest")
	if caps.ContextWindow != expected.ContextWindow {
		t.Errorf("expected ContextWindow %d, got %d", expected.ContextWindow, caps.ContextWindow)
	}
	if caps.MaxOutputTokens != expected.MaxOutputTokens {
		t.Errorf("expected MaxOutputTokens %d, got %d", expected.MaxOutputTokens, caps.MaxOutputTokens)
	}
}
