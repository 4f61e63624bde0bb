// Package vad defines the Engine interface for Voice Activity Detection
// backends.
//
// A VAD engine wraps a speech detector (e.g. the Silero VAD model) and
// surfaces it as a stateful per-stream session. Each session maintains its own
// internal detector state so that concurrent audio streams can be processed
// independently.
//
// Implementations must be safe for concurrent use across different sessions.
// A single SessionHandle must not be shared across goroutines unless the
// implementation documents otherwise.
package vad

import "time"

// Config holds the parameters for a VAD session.
type Config struct {
	// SampleRate is the audio sample rate in Hz. Silero supports 8000 and
	// 16000.
	SampleRate int

	// Threshold is the speech probability above which audio is classified as
	// speech. Range [0.0, 1.0], typical 0.5.
	Threshold float64

	// MinSilenceMs is the trailing silence, in milliseconds, required before
	// an active speech segment is considered ended.
	MinSilenceMs int

	// SpeechPadMs widens detected segments by this many milliseconds on each
	// side.
	SpeechPadMs int
}

// Segment is a detected span of speech within processed audio. End is zero
// when speech was still active at the end of the analysed window.
type Segment struct {
	Start time.Duration
	End   time.Duration
}

// SessionHandle represents an active VAD session for a single audio stream.
type SessionHandle interface {
	// Process analyses a window of mono float32 PCM samples and returns the
	// speech segments detected within it. The window must match the sample
	// rate configured for the session.
	Process(pcm []float32) ([]Segment, error)

	// Reset clears accumulated detector state without closing the session.
	// Use when the audio stream is interrupted or restarted.
	Reset() error

	// Close releases all resources associated with the session. Calling
	// Close more than once is safe and returns nil.
	Close() error
}

// Engine is the factory for VAD sessions, implemented by each backend.
type Engine interface {
	// NewSession creates a session with the given configuration, immediately
	// ready to accept audio. Returns an error if the configuration is invalid
	// or resources cannot be allocated.
	NewSession(cfg Config) (SessionHandle, error)
}
