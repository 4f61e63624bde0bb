// Package deepgram implements the stt.Provider interface against the
// Deepgram streaming recognition API. It is the premium recognition backend:
// the factory only builds it when a profile asks for it and the API key is
// present, with the OpenAI transcriber as standby.
//
// Audio goes up as binary WebSocket frames; Deepgram answers with JSON
// "Results" events that are split into interim and final transcript channels,
// which is the shape the turn detector wants.
package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/novanode-ai/callbridge/pkg/provider/stt"
)

const streamEndpoint = "wss://api.deepgram.com/v1/listen"

// DefaultModel is the realtime model used when a profile does not name one.
const DefaultModel = "nova-2"

// Provider-level defaults; a session's StreamConfig overrides them per call.
const (
	defaultLanguage   = "en"
	defaultSampleRate = 16000
)

var _ stt.Provider = (*Provider)(nil)

// Provider opens streaming recognition sessions against Deepgram.
type Provider struct {
	apiKey     string
	model      string
	language   string
	sampleRate int
}

// Option configures a [Provider].
type Option func(*Provider)

// WithModel selects the Deepgram model (e.g. "nova-2", "nova-3").
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// WithLanguage sets the default recognition language (BCP-47, e.g. "es").
func WithLanguage(language string) Option {
	return func(p *Provider) { p.language = language }
}

// WithSampleRate sets the default input sample rate in Hz.
func WithSampleRate(rate int) Option {
	return func(p *Provider) { p.sampleRate = rate }
}

// New creates a Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("deepgram: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:     apiKey,
		model:      DefaultModel,
		language:   defaultLanguage,
		sampleRate: defaultSampleRate,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// StartStream implements stt.Provider. The session is live as soon as the
// WebSocket handshake completes; the caller owns Close.
func (p *Provider) StartStream(ctx context.Context, cfg stt.StreamConfig) (stt.SessionHandle, error) {
	wsURL, err := p.buildURL(cfg)
	if err != nil {
		return nil, fmt.Errorf("deepgram: build URL: %w", err)
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+p.apiKey)

	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{HTTPHeader: headers})
	if err != nil {
		return nil, fmt.Errorf("deepgram: dial: %w", err)
	}

	sess := &session{
		conn:     conn,
		partials: make(chan stt.Transcript, 64),
		finals:   make(chan stt.Transcript, 64),
		audio:    make(chan []byte, 256),
		done:     make(chan struct{}),
	}
	sess.wg.Add(2)
	go sess.readLoop(ctx)
	go sess.writeLoop(ctx)
	return sess, nil
}

// buildURL assembles the listen endpoint with the session's audio format.
// StreamConfig values win over the provider defaults; punctuation and interim
// results are always on, since partial transcripts drive turn taking.
func (p *Provider) buildURL(cfg stt.StreamConfig) (string, error) {
	u, err := url.Parse(streamEndpoint)
	if err != nil {
		return "", err
	}

	language := cfg.Language
	if language == "" {
		language = p.language
	}
	rate := cfg.SampleRate
	if rate == 0 {
		rate = p.sampleRate
	}

	q := u.Query()
	q.Set("model", p.model)
	q.Set("language", language)
	q.Set("encoding", "linear16")
	q.Set("punctuate", "true")
	q.Set("interim_results", "true")
	q.Set("sample_rate", strconv.Itoa(rate))
	if cfg.Channels > 0 {
		q.Set("channels", strconv.Itoa(cfg.Channels))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ── session ──────────────────────────────────────────────────────────────────

// session is one live recognition stream. It implements stt.SessionHandle.
type session struct {
	conn     *websocket.Conn
	partials chan stt.Transcript
	finals   chan stt.Transcript
	audio    chan []byte

	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// SendAudio queues one PCM chunk for upload. Fails once the session closed.
func (s *session) SendAudio(chunk []byte) error {
	select {
	case <-s.done:
		return errors.New("deepgram: session is closed")
	default:
	}
	select {
	case s.audio <- chunk:
		return nil
	case <-s.done:
		return errors.New("deepgram: session is closed")
	}
}

// Partials returns the interim transcript channel.
func (s *session) Partials() <-chan stt.Transcript { return s.partials }

// Finals returns the final transcript channel.
func (s *session) Finals() <-chan stt.Transcript { return s.finals }

// Close tells Deepgram the stream is over, waits for both loops, and closes
// the socket. Safe to call more than once.
func (s *session) Close() error {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Write(context.Background(), websocket.MessageText, []byte(`{"type":"CloseStream"}`))
		s.wg.Wait()
		s.conn.Close(websocket.StatusNormalClosure, "session closed")
	})
	return nil
}

// writeLoop uploads queued audio as binary frames until the session ends,
// draining whatever is still buffered at shutdown so trailing speech is not
// lost.
func (s *session) writeLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case chunk, ok := <-s.audio:
			if !ok {
				return
			}
			if err := s.conn.Write(ctx, websocket.MessageBinary, chunk); err != nil {
				return
			}
		case <-s.done:
			for {
				select {
				case chunk, ok := <-s.audio:
					if !ok {
						return
					}
					_ = s.conn.Write(ctx, websocket.MessageBinary, chunk)
				default:
					return
				}
			}
		}
	}
}

// readLoop routes incoming Results events to the partial or final channel.
func (s *session) readLoop(ctx context.Context) {
	defer s.wg.Done()
	defer close(s.partials)
	defer close(s.finals)

	for {
		_, msg, err := s.conn.Read(ctx)
		if err != nil {
			return
		}

		t, ok := parseResults(msg)
		if !ok {
			continue
		}

		target := s.partials
		if t.IsFinal {
			target = s.finals
		}
		select {
		case target <- t:
		case <-s.done:
		}
	}
}

// ── wire format ──────────────────────────────────────────────────────────────

// wordInfo is one recognised word with timing inside a Results event.
type wordInfo struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// resultsEvent is the subset of the Deepgram Results message the session
// consumes. Other event types (Metadata, SpeechStarted, ...) are skipped.
type resultsEvent struct {
	Type    string `json:"type"`
	IsFinal bool   `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string     `json:"transcript"`
			Confidence float64    `json:"confidence"`
			Words      []wordInfo `json:"words"`
		} `json:"alternatives"`
	} `json:"channel"`
}

// parseResults turns a raw Deepgram message into a Transcript. The second
// return is false for non-Results events, malformed JSON, and Results events
// with no alternatives.
func parseResults(data []byte) (stt.Transcript, bool) {
	var ev resultsEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return stt.Transcript{}, false
	}
	if ev.Type != "Results" || len(ev.Channel.Alternatives) == 0 {
		return stt.Transcript{}, false
	}

	best := ev.Channel.Alternatives[0]
	words := make([]stt.WordDetail, 0, len(best.Words))
	for _, w := range best.Words {
		words = append(words, stt.WordDetail{
			Word:       w.Word,
			Start:      time.Duration(w.Start * float64(time.Second)),
			End:        time.Duration(w.End * float64(time.Second)),
			Confidence: w.Confidence,
		})
	}

	t := stt.Transcript{
		Text:       best.Transcript,
		IsFinal:    ev.IsFinal,
		Confidence: best.Confidence,
		Words:      words,
	}
	if len(words) > 0 {
		t.Duration = words[len(words)-1].End - words[0].Start
	}
	return t, true
}
