package resilience

import (
	"context"

	"github.com/novanode-ai/callbridge/pkg/provider/llm"
	"github.com/novanode-ai/callbridge/pkg/provider/stt"
	"github.com/novanode-ai/callbridge/pkg/provider/tts"
)

// The capability chains below wrap a [Chain] so the factory can hand the
// session a plain provider interface. Callers never see which entry served a
// request; degradation shows up only in the logs and in the voice quality.

var (
	_ tts.Provider = (*TTSChain)(nil)
	_ stt.Provider = (*STTChain)(nil)
	_ llm.Provider = (*LLMChain)(nil)
)

// TTSChain is a [tts.Provider] that fails over between synthesis backends.
type TTSChain struct {
	chain *Chain[tts.Provider]
}

// NewTTSChain creates a synthesis chain with its preferred provider.
func NewTTSChain(name string, primary tts.Provider, cfg BreakerConfig) *TTSChain {
	return &TTSChain{chain: NewChain(name, primary, cfg)}
}

// Add appends a standby synthesis provider.
func (c *TTSChain) Add(name string, p tts.Provider) {
	c.chain.Add(name, p)
}

// Synthesize implements tts.Provider.
func (c *TTSChain) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return Run(c.chain, func(p tts.Provider) ([]byte, error) {
		return p.Synthesize(ctx, text)
	})
}

// SynthesizeStream implements tts.Provider. Failover applies to opening the
// stream; once a provider has accepted the stream, it serves it to the end.
func (c *TTSChain) SynthesizeStream(ctx context.Context, text <-chan string) (<-chan []byte, error) {
	return Run(c.chain, func(p tts.Provider) (<-chan []byte, error) {
		return p.SynthesizeStream(ctx, text)
	})
}

// STTChain is an [stt.Provider] that fails over between recognition backends.
type STTChain struct {
	chain *Chain[stt.Provider]
}

// NewSTTChain creates a recognition chain with its preferred provider.
func NewSTTChain(name string, primary stt.Provider, cfg BreakerConfig) *STTChain {
	return &STTChain{chain: NewChain(name, primary, cfg)}
}

// Add appends a standby recognition provider.
func (c *STTChain) Add(name string, p stt.Provider) {
	c.chain.Add(name, p)
}

// StartStream implements stt.Provider. A session started on a standby stays
// on that standby for its whole lifetime.
func (c *STTChain) StartStream(ctx context.Context, cfg stt.StreamConfig) (stt.SessionHandle, error) {
	return Run(c.chain, func(p stt.Provider) (stt.SessionHandle, error) {
		return p.StartStream(ctx, cfg)
	})
}

// LLMChain is an [llm.Provider] that fails over between language model
// vendors.
type LLMChain struct {
	chain *Chain[llm.Provider]
}

// NewLLMChain creates a language model chain with its preferred provider.
func NewLLMChain(name string, primary llm.Provider, cfg BreakerConfig) *LLMChain {
	return &LLMChain{chain: NewChain(name, primary, cfg)}
}

// Add appends a standby language model provider.
func (c *LLMChain) Add(name string, p llm.Provider) {
	c.chain.Add(name, p)
}

// Complete implements llm.Provider.
func (c *LLMChain) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return Run(c.chain, func(p llm.Provider) (*llm.CompletionResponse, error) {
		return p.Complete(ctx, req)
	})
}

// StreamCompletion implements llm.Provider. Failover applies to starting the
// stream; mid-stream errors surface as chunks and do not trip the breaker.
func (c *LLMChain) StreamCompletion(ctx context.Context, req llm.CompletionRequest) (<-chan llm.Chunk, error) {
	return Run(c.chain, func(p llm.Provider) (<-chan llm.Chunk, error) {
		return p.StreamCompletion(ctx, req)
	})
}

// Capabilities implements llm.Provider, reporting the preferred provider's
// limits. Standbys may differ; callers size prompts for the preferred model.
func (c *LLMChain) Capabilities() llm.ModelCapabilities {
	return c.chain.Primary().Capabilities()
}
