// Package anyllm adapts github.com/mozilla-ai/any-llm-go to the llm.Provider
// interface, so agent profiles can name any supported vendor — Anthropic,
// Gemini, Ollama, DeepSeek, Mistral, Groq, local llama.cpp — without the
// factory growing one adapter per vendor.
//
// Vendor API keys are not plumbed through the bootstrap config; each backend
// reads its own environment variable (ANTHROPIC_API_KEY, GROQ_API_KEY, ...)
// unless an explicit option overrides it:
//
//	p, err := anyllm.New("anthropic", "claude-3-5-haiku-latest")
//	p, err := anyllm.New("ollama", "llama3.2", anyllmlib.WithBaseURL("http://gpu-box:11434"))
package anyllm

import (
	"context"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/deepseek"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/llamacpp"
	"github.com/mozilla-ai/any-llm-go/providers/llamafile"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/novanode-ai/callbridge/pkg/provider/llm"
)

var _ llm.Provider = (*Provider)(nil)

// Provider routes completions through one any-llm-go backend.
type Provider struct {
	backend anyllmlib.Provider
	model   string
}

// New creates a Provider for the vendor/model pair a profile names. Both must
// be non-empty; unlike the OpenAI default there is no sensible model to fall
// back to across nine vendors.
func New(vendor string, model string, opts ...anyllmlib.Option) (*Provider, error) {
	if vendor == "" {
		return nil, fmt.Errorf("anyllm: vendor must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("anyllm: model must not be empty")
	}

	backend, err := createBackend(vendor, opts...)
	if err != nil {
		return nil, fmt.Errorf("anyllm: create %q backend: %w", vendor, err)
	}
	return &Provider{backend: backend, model: model}, nil
}

// createBackend resolves a vendor name, case-insensitively, to its any-llm-go
// constructor.
func createBackend(vendor string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(vendor) {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	case "deepseek":
		return deepseek.New(opts...)
	case "mistral":
		return mistral.New(opts...)
	case "groq":
		return groq.New(opts...)
	case "llamacpp":
		return llamacpp.New(opts...)
	case "llamafile":
		return llamafile.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported vendor %q; supported: openai, anthropic, gemini, ollama, deepseek, mistral, groq, llamacpp, llamafile", vendor)
	}
}

// StreamCompletion implements llm.Provider.
func (p *Provider) StreamCompletion(ctx context.Context, req llm.CompletionRequest) (<-chan llm.Chunk, error) {
	chunks, errs := p.backend.CompletionStream(ctx, p.buildParams(req))

	out := make(chan llm.Chunk, 32)
	go p.relay(ctx, chunks, errs, out)
	return out, nil
}

// relay forwards backend chunks to the caller, stitching fragmented tool call
// arguments back together by index so the finishing chunk carries complete
// invocations.
func (p *Provider) relay(ctx context.Context, chunks <-chan anyllmlib.ChatCompletionChunk, errs <-chan error, out chan<- llm.Chunk) {
	defer close(out)

	var pending []llm.ToolCall

	for chunk := range chunks {
		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]

		for i, tc := range choice.Delta.ToolCalls {
			for len(pending) <= i {
				pending = append(pending, llm.ToolCall{})
			}
			if tc.ID != "" {
				pending[i].ID = tc.ID
			}
			if tc.Function.Name != "" {
				pending[i].Name = tc.Function.Name
			}
			pending[i].Arguments += tc.Function.Arguments
		}

		next := llm.Chunk{
			Text:         choice.Delta.Content,
			FinishReason: choice.FinishReason,
		}
		if choice.FinishReason != "" && len(pending) > 0 {
			next.ToolCalls = pending
		}

		select {
		case out <- next:
		case <-ctx.Done():
			return
		}
	}

	// The error channel resolves only after the chunk channel closes.
	if err := <-errs; err != nil {
		select {
		case out <- llm.Chunk{FinishReason: "error", Text: err.Error()}:
		case <-ctx.Done():
		}
	}
}

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	resp, err := p.backend.Completion(ctx, p.buildParams(req))
	if err != nil {
		return nil, fmt.Errorf("anyllm: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("anyllm: response carried no choices")
	}

	msg := resp.Choices[0].Message
	result := &llm.CompletionResponse{Content: msg.ContentString()}
	if resp.Usage != nil {
		result.Usage = llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	for _, tc := range msg.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, llm.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return result, nil
}

// Capabilities implements llm.Provider.
func (p *Provider) Capabilities() llm.ModelCapabilities {
	return modelCapabilities(p.model)
}

// buildParams translates a CompletionRequest to any-llm-go params, the system
// prompt leading the message list.
func (p *Provider) buildParams(req llm.CompletionRequest) anyllmlib.CompletionParams {
	messages := make([]anyllmlib.Message, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, anyllmlib.Message{
			Role:    anyllmlib.RoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, m := range req.Messages {
		messages = append(messages, convertMessage(m))
	}

	params := anyllmlib.CompletionParams{
		Model:    p.model,
		Messages: messages,
	}
	if req.Temperature != 0 {
		t := req.Temperature
		params.Temperature = &t
	}
	if req.MaxTokens > 0 {
		mt := req.MaxTokens
		params.MaxTokens = &mt
	}
	for _, td := range req.Tools {
		params.Tools = append(params.Tools, anyllmlib.Tool{
			Type: "function",
			Function: anyllmlib.Function{
				Name:        td.Name,
				Description: td.Description,
				Parameters:  td.Parameters,
			},
		})
	}
	return params
}

// convertMessage maps one conversation message, tool invocations included, to
// the any-llm-go shape. Roles transfer verbatim; every vendor backend
// understands the OpenAI role vocabulary.
func convertMessage(m llm.Message) anyllmlib.Message {
	msg := anyllmlib.Message{
		Role:       m.Role,
		Content:    m.Content,
		Name:       m.Name,
		ToolCallID: m.ToolCallID,
	}
	for _, tc := range m.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, anyllmlib.ToolCall{
			ID:   tc.ID,
			Type: "function",
			Function: anyllmlib.FunctionCall{
				Name:      tc.Name,
				Arguments: tc.Arguments,
			},
		})
	}
	return msg
}

// modelCapabilities maps model name prefixes to published limits. Unknown
// models get conservative mid-range defaults rather than failing.
func modelCapabilities(model string) llm.ModelCapabilities {
	caps := llm.ModelCapabilities{
		SupportsToolCalling: true,
		SupportsStreaming:   true,
		ContextWindow:       128_000,
		MaxOutputTokens:     4_096,
	}

	switch name := strings.ToLower(model); {
	case strings.HasPrefix(name, "gpt-4o"):
		caps.MaxOutputTokens = 16_384
	case strings.HasPrefix(name, "claude"):
		caps.ContextWindow = 200_000
		caps.MaxOutputTokens = 8_192
	case strings.HasPrefix(name, "gemini-1.5-pro"):
		caps.ContextWindow = 2_097_152
		caps.MaxOutputTokens = 8_192
	case strings.HasPrefix(name, "gemini"):
		caps.ContextWindow = 1_048_576
		caps.MaxOutputTokens = 8_192
	case strings.HasPrefix(name, "llama"), strings.HasPrefix(name, "mistral"):
		caps.ContextWindow = 32_768
	}
	return caps
}
