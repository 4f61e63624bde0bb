// Package openai provides a TTS provider backed by the OpenAI speech API.
// It is the default synthesis backend when no premium provider is configured.
package openai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/novanode-ai/callbridge/pkg/provider/tts"
)

const (
	// DefaultModel is the realtime-friendly OpenAI speech model.
	DefaultModel = "tts-1"

	// DefaultVoice is used when a profile does not name a voice.
	DefaultVoice = "nova"

	// streamChunkSize is the PCM chunk size emitted by SynthesizeStream.
	streamChunkSize = 4096
)

// Ensure Provider implements the tts.Provider interface.
var _ tts.Provider = (*Provider)(nil)

// Provider implements tts.Provider using the OpenAI speech API.
type Provider struct {
	client oai.Client
	model  string
	voice  string
	speed  float64
}

// config holds optional configuration for the provider.
type config struct {
	baseURL string
	timeout time.Duration
	speed   float64
}

// Option is a functional option for Provider.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithSpeed adjusts speaking rate (0.25–4.0, 1.0 = default).
func WithSpeed(speed float64) Option {
	return func(c *config) {
		c.speed = speed
	}
}

// New constructs a new OpenAI TTS Provider. If model or voice are empty,
// DefaultModel and DefaultVoice are used.
func New(apiKey, model, voice string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai tts: apiKey must not be empty")
	}
	if model == "" {
		model = DefaultModel
	}
	if voice == "" {
		voice = DefaultVoice
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	client := oai.NewClient(reqOpts...)
	return &Provider{client: client, model: model, voice: voice, speed: cfg.speed}, nil
}

// Synthesize implements tts.Provider.
func (p *Provider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("openai tts: text must not be empty")
	}

	params := oai.AudioSpeechNewParams{
		Model:          oai.SpeechModel(p.model),
		Input:          text,
		Voice:          oai.AudioSpeechNewParamsVoice(strings.ToLower(p.voice)),
		ResponseFormat: oai.AudioSpeechNewParamsResponseFormatPCM,
	}
	if p.speed > 0 {
		params.Speed = oai.Float(p.speed)
	}

	resp, err := p.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai tts: synthesize: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai tts: read audio: %w", err)
	}
	return audio, nil
}

// SynthesizeStream implements tts.Provider. The OpenAI speech endpoint has no
// incremental text input, so fragments are accumulated until the text channel
// closes and the rendered audio is emitted in fixed-size chunks.
func (p *Provider) SynthesizeStream(ctx context.Context, text <-chan string) (<-chan []byte, error) {
	audioCh := make(chan []byte, 64)

	go func() {
		defer close(audioCh)

		var sb strings.Builder
		for {
			select {
			case fragment, ok := <-text:
				if !ok {
					p.emit(ctx, sb.String(), audioCh)
					return
				}
				sb.WriteString(fragment)
			case <-ctx.Done():
				return
			}
		}
	}()

	return audioCh, nil
}

// emit synthesises the accumulated text and writes it to out in chunks.
func (p *Provider) emit(ctx context.Context, text string, out chan<- []byte) {
	if strings.TrimSpace(text) == "" {
		return
	}
	audio, err := p.Synthesize(ctx, text)
	if err != nil {
		return
	}
	for off := 0; off < len(audio); off += streamChunkSize {
		end := min(off+streamChunkSize, len(audio))
		select {
		case out <- audio[off:end]:
		case <-ctx.Done():
			return
		}
	}
}
