// Package silero provides a VAD engine backed by the Silero VAD ONNX model
// via github.com/streamer45/silero-vad-go. It implements the vad.Engine
// interface.
package silero

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/streamer45/silero-vad-go/speech"

	"github.com/novanode-ai/callbridge/pkg/provider/vad"
)

// Defaults applied when a session config leaves fields zero.
const (
	DefaultSampleRate   = 16000
	DefaultThreshold    = 0.5
	DefaultMinSilenceMs = 250
	DefaultSpeechPadMs  = 30
)

// Ensure Engine implements the vad.Engine interface.
var _ vad.Engine = (*Engine)(nil)

// Engine creates Silero VAD sessions. Each session owns its own detector
// instance, so sessions are independent of one another.
type Engine struct {
	modelPath string
}

// New creates a Silero Engine loading the ONNX model at modelPath.
func New(modelPath string) (*Engine, error) {
	if modelPath == "" {
		return nil, errors.New("silero: modelPath must not be empty")
	}
	return &Engine{modelPath: modelPath}, nil
}

// NewSession implements vad.Engine.
func (e *Engine) NewSession(cfg vad.Config) (vad.SessionHandle, error) {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.MinSilenceMs == 0 {
		cfg.MinSilenceMs = DefaultMinSilenceMs
	}
	if cfg.SpeechPadMs == 0 {
		cfg.SpeechPadMs = DefaultSpeechPadMs
	}

	detector, err := speech.NewDetector(speech.DetectorConfig{
		ModelPath:            e.modelPath,
		SampleRate:           cfg.SampleRate,
		Threshold:            float32(cfg.Threshold),
		MinSilenceDurationMs: cfg.MinSilenceMs,
		SpeechPadMs:          cfg.SpeechPadMs,
		LogLevel:             speech.LogLevelWarn,
	})
	if err != nil {
		return nil, fmt.Errorf("silero: create detector: %w", err)
	}

	return &session{detector: detector}, nil
}

// session wraps a Silero detector. It implements vad.SessionHandle.
type session struct {
	mu       sync.Mutex
	detector *speech.Detector
	closed   bool
}

// Process implements vad.SessionHandle.
func (s *session) Process(pcm []float32) ([]vad.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.New("silero: session is closed")
	}

	raw, err := s.detector.Detect(pcm)
	if err != nil {
		return nil, fmt.Errorf("silero: detect: %w", err)
	}

	segments := make([]vad.Segment, 0, len(raw))
	for _, seg := range raw {
		segments = append(segments, vad.Segment{
			Start: time.Duration(seg.SpeechStartAt * float64(time.Second)),
			End:   time.Duration(seg.SpeechEndAt * float64(time.Second)),
		})
	}
	return segments, nil
}

// Reset implements vad.SessionHandle.
func (s *session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("silero: session is closed")
	}
	if err := s.detector.Reset(); err != nil {
		return fmt.Errorf("silero: reset: %w", err)
	}
	return nil
}

// Close implements vad.SessionHandle.
func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.detector.Destroy(); err != nil {
		return fmt.Errorf("silero: destroy detector: %w", err)
	}
	return nil
}

// PCM16ToFloat32 converts 16-bit little-endian PCM bytes to normalised
// float32 samples as expected by the detector. A trailing odd byte is ignored.
func PCM16ToFloat32(pcm []byte) []float32 {
	out := make([]float32, 0, len(pcm)/2)
	for i := 0; i+1 < len(pcm); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(pcm[i:]))
		out = append(out, float32(sample)/float32(math.MaxInt16+1))
	}
	return out
}
