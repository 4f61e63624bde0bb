// Package openai implements the llm.Provider interface on top of the OpenAI
// chat completions API. It is the default language backend: every agent
// profile that names no vendor, and every resilience chain's standby, ends up
// here.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/openai/openai-go/shared"

	"github.com/novanode-ai/callbridge/pkg/provider/llm"
)

// DefaultModel is used when a profile does not name a model. Chosen for
// latency: voice turns cannot afford the bigger models' time to first token.
const DefaultModel = "gpt-4o-mini"

var _ llm.Provider = (*Provider)(nil)

// Provider talks to the OpenAI chat completions API.
type Provider struct {
	client oai.Client
	model  string
}

type config struct {
	baseURL string
	timeout time.Duration
}

// Option configures a [Provider].
type Option func(*config)

// WithBaseURL points the client at an OpenAI-compatible endpoint, e.g. a
// proxy or a self-hosted gateway.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithTimeout caps each HTTP request. Zero leaves the SDK default in place.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// New creates a Provider for the given model; an empty model selects
// [DefaultModel].
func New(apiKey string, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}))
	}

	return &Provider{client: oai.NewClient(reqOpts...), model: model}, nil
}

// StreamCompletion implements llm.Provider. Chunks flow on the returned
// channel until the model finishes or ctx is cancelled.
func (p *Provider) StreamCompletion(ctx context.Context, req llm.CompletionRequest) (<-chan llm.Chunk, error) {
	params, err := p.buildParams(req)
	if err != nil {
		return nil, fmt.Errorf("openai: build params: %w", err)
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("openai: start stream: %w", err)
	}

	out := make(chan llm.Chunk, 32)
	go p.pumpStream(ctx, stream, out)
	return out, nil
}

// pumpStream relays SSE events as llm chunks. Tool call arguments arrive
// fragmented across events, keyed by index; they are stitched together here
// and emitted complete on the finishing chunk.
func (p *Provider) pumpStream(ctx context.Context, stream *ssestream.Stream[oai.ChatCompletionChunk], out chan<- llm.Chunk) {
	defer close(out)
	defer stream.Close()

	var pending []llm.ToolCall

	for stream.Next() {
		ev := stream.Current()
		if len(ev.Choices) == 0 {
			continue
		}
		choice := ev.Choices[0]

		for _, tc := range choice.Delta.ToolCalls {
			idx := int(tc.Index)
			for len(pending) <= idx {
				pending = append(pending, llm.ToolCall{})
			}
			if tc.ID != "" {
				pending[idx].ID = tc.ID
			}
			if tc.Function.Name != "" {
				pending[idx].Name = tc.Function.Name
			}
			pending[idx].Arguments += tc.Function.Arguments
		}

		chunk := llm.Chunk{
			Text:         choice.Delta.Content,
			FinishReason: choice.FinishReason,
		}
		if choice.FinishReason != "" && len(pending) > 0 {
			chunk.ToolCalls = pending
		}

		select {
		case out <- chunk:
		case <-ctx.Done():
			return
		}
	}

	if err := stream.Err(); err != nil {
		// The stream was already handed to the caller, so mid-stream failures
		// surface as an error chunk rather than a return value.
		select {
		case out <- llm.Chunk{FinishReason: "error", Text: err.Error()}:
		case <-ctx.Done():
		}
	}
}

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	params, err := p.buildParams(req)
	if err != nil {
		return nil, fmt.Errorf("openai: build params: %w", err)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: response carried no choices")
	}

	msg := resp.Choices[0].Message
	result := &llm.CompletionResponse{
		Content: msg.Content,
		Usage: llm.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
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

// modelCapabilities maps a model name to its published limits. Unrecognised
// names get the gpt-4o family defaults, which every current OpenAI chat model
// meets or exceeds.
func modelCapabilities(model string) llm.ModelCapabilities {
	caps := llm.ModelCapabilities{
		SupportsToolCalling: true,
		SupportsStreaming:   true,
		ContextWindow:       128_000,
		MaxOutputTokens:     4_096,
	}

	switch name := strings.ToLower(model); {
	case strings.HasPrefix(name, "gpt-4o-mini"), strings.HasPrefix(name, "gpt-4o"):
		caps.MaxOutputTokens = 16_384
	case strings.HasPrefix(name, "gpt-4-turbo"):
		caps.MaxOutputTokens = 4_096
	case strings.HasPrefix(name, "gpt-4"):
		caps.ContextWindow = 8_192
	case strings.HasPrefix(name, "gpt-3.5-turbo"):
		caps.ContextWindow = 16_385
	case strings.HasPrefix(name, "o1-mini"):
		// o1-mini cannot call functions, which disqualifies it for dispatch
		// sessions; the capability flag lets callers catch that early.
		caps.MaxOutputTokens = 65_536
		caps.SupportsToolCalling = false
	case strings.HasPrefix(name, "o1"), strings.HasPrefix(name, "o3"):
		caps.ContextWindow = 200_000
		caps.MaxOutputTokens = 100_000
	}
	return caps
}

// buildParams translates a CompletionRequest into SDK params. The system
// prompt always leads the message list.
func (p *Provider) buildParams(req llm.CompletionRequest) (oai.ChatCompletionNewParams, error) {
	messages := make([]oai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, oai.SystemMessage(req.SystemPrompt))
	}
	for _, m := range req.Messages {
		converted, err := convertMessage(m)
		if err != nil {
			return oai.ChatCompletionNewParams{}, err
		}
		messages = append(messages, converted)
	}

	params := oai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
	}
	if req.Temperature != 0 {
		params.Temperature = param.NewOpt(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(req.MaxTokens))
	}
	for _, td := range req.Tools {
		params.Tools = append(params.Tools, oai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        td.Name,
				Description: param.NewOpt(td.Description),
				Parameters:  shared.FunctionParameters(td.Parameters),
			},
		})
	}
	return params, nil
}

// convertMessage maps one conversation message to the SDK's union type.
func convertMessage(m llm.Message) (oai.ChatCompletionMessageParamUnion, error) {
	switch m.Role {
	case "system":
		return oai.SystemMessage(m.Content), nil

	case "user":
		return oai.UserMessage(m.Content), nil

	case "assistant":
		msg := oai.ChatCompletionAssistantMessageParam{}
		if m.Content != "" {
			msg.Content.OfString = oai.String(m.Content)
		}
		if m.Name != "" {
			msg.Name = oai.String(m.Name)
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, oai.ChatCompletionMessageToolCallParam{
				ID: tc.ID,
				Function: oai.ChatCompletionMessageToolCallFunctionParam{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		return oai.ChatCompletionMessageParamUnion{OfAssistant: &msg}, nil

	case "tool":
		return oai.ToolMessage(m.Content, m.ToolCallID), nil

	default:
		return oai.ChatCompletionMessageParamUnion{}, fmt.Errorf("openai: unknown message role %q", m.Role)
	}
}
