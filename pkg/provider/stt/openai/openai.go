// Package openai provides an STT provider backed by the OpenAI transcription
// API. It is the default recognition backend when no premium provider is
// configured.
//
// The OpenAI API is batch-only, so the session buffers incoming PCM and
// transcribes the full utterance when the session is closed. No partial
// transcripts are emitted.
package openai

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/novanode-ai/callbridge/pkg/provider/stt"
)

// DefaultModel is used when a profile does not name a model.
const DefaultModel = "whisper-1"

// Ensure Provider implements the stt.Provider interface.
var _ stt.Provider = (*Provider)(nil)

// Provider implements stt.Provider using the OpenAI transcription API.
type Provider struct {
	client oai.Client
	model  string
}

// config holds optional configuration for the provider.
type config struct {
	baseURL string
	timeout time.Duration
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

// New constructs a new OpenAI STT Provider. If model is empty, DefaultModel
// is used.
func New(apiKey, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai stt: apiKey must not be empty")
	}
	if model == "" {
		model = DefaultModel
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
	return &Provider{client: client, model: model}, nil
}

// StartStream opens a buffering transcription session.
func (p *Provider) StartStream(ctx context.Context, cfg stt.StreamConfig) (stt.SessionHandle, error) {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels == 0 {
		cfg.Channels = 1
	}
	return &session{
		provider: p,
		ctx:      ctx,
		cfg:      cfg,
		partials: make(chan stt.Transcript),
		finals:   make(chan stt.Transcript, 1),
		done:     make(chan struct{}),
	}, nil
}

// session buffers PCM audio and transcribes it on Close.
// It implements stt.SessionHandle.
type session struct {
	provider *Provider
	ctx      context.Context
	cfg      stt.StreamConfig

	mu  sync.Mutex
	buf bytes.Buffer

	partials chan stt.Transcript
	finals   chan stt.Transcript
	done     chan struct{}
	once     sync.Once
}

// SendAudio appends a PCM chunk to the utterance buffer.
func (s *session) SendAudio(chunk []byte) error {
	select {
	case <-s.done:
		return errors.New("openai stt: session is closed")
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Write(chunk)
	return nil
}

// Partials returns a channel that never emits; the OpenAI API has no interim
// results. The channel is closed when the session ends.
func (s *session) Partials() <-chan stt.Transcript { return s.partials }

// Finals returns the channel carrying the single end-of-session transcript.
func (s *session) Finals() <-chan stt.Transcript { return s.finals }

// Close transcribes the buffered audio and closes both channels.
func (s *session) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		defer close(s.partials)
		defer close(s.finals)

		s.mu.Lock()
		pcm := s.buf.Bytes()
		s.mu.Unlock()
		if len(pcm) == 0 {
			return
		}

		params := oai.AudioTranscriptionNewParams{
			Model: oai.AudioModel(s.provider.model),
			File:  oai.File(bytes.NewReader(wavEncode(pcm, s.cfg.SampleRate, s.cfg.Channels)), "audio.wav", "audio/wav"),
		}
		if s.cfg.Language != "" {
			params.Language = oai.String(s.cfg.Language)
		}

		resp, terr := s.provider.client.Audio.Transcriptions.New(s.ctx, params)
		if terr != nil {
			err = fmt.Errorf("openai stt: transcribe: %w", terr)
			return
		}

		s.finals <- stt.Transcript{
			Text:    resp.Text,
			IsFinal: true,
		}
	})
	return err
}

// wavEncode wraps raw 16-bit little-endian PCM in a minimal WAV container.
func wavEncode(pcm []byte, sampleRate, channels int) []byte {
	const bitsPerSample = 16
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(36+len(pcm)))
	out.WriteString("WAVE")
	out.WriteString("fmt ")
	binary.Write(&out, binary.LittleEndian, uint32(16))
	binary.Write(&out, binary.LittleEndian, uint16(1)) // PCM format
	binary.Write(&out, binary.LittleEndian, uint16(channels))
	binary.Write(&out, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&out, binary.LittleEndian, uint32(byteRate))
	binary.Write(&out, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&out, binary.LittleEndian, uint16(bitsPerSample))
	out.WriteString("data")
	binary.Write(&out, binary.LittleEndian, uint32(len(pcm)))
	out.Write(pcm)
	return out.Bytes()
}
