// Package stt defines the Provider interface for Speech-to-Text backends.
//
// An STT provider wraps a transcription service (e.g. Deepgram or the OpenAI
// transcription API) behind a uniform streaming interface. The central
// abstraction is SessionHandle: once opened, a session accepts raw PCM audio
// and emits two streams of Transcript values — low-latency partials for
// responsiveness and authoritative finals for the conversation log.
//
// Implementations must be safe for concurrent use.
package stt

import "context"

// StreamConfig describes the audio format for a new STT session.
type StreamConfig struct {
	// SampleRate is the audio sample rate in Hz (typically 16000).
	SampleRate int

	// Channels is the number of audio channels. 1 = mono, required by most
	// providers.
	Channels int

	// Language is the BCP-47 language tag for recognition (e.g. "en", "es").
	// Empty lets the provider auto-detect, if supported.
	Language string
}

// SessionHandle represents an open STT streaming session.
//
// Callers must call Close when done; failing to do so may leak goroutines and
// network connections inside the provider. All methods are safe for
// concurrent use.
type SessionHandle interface {
	// SendAudio delivers a chunk of raw PCM audio bytes for transcription.
	// The chunk must match the format agreed in StreamConfig. Calling
	// SendAudio after Close returns an error.
	SendAudio(chunk []byte) error

	// Partials returns a channel emitting low-latency interim transcripts.
	// These must not be written to the conversation log. The channel is
	// closed when the session ends. Providers without interim results never
	// emit on it.
	Partials() <-chan Transcript

	// Finals returns a channel emitting authoritative transcripts once the
	// provider commits to a result. The channel is closed when the session
	// ends.
	Finals() <-chan Transcript

	// Close terminates the session, flushes pending audio, and releases all
	// resources. After Close returns, both channels will be closed. Calling
	// Close more than once is safe and returns nil.
	Close() error
}

// Provider is the abstraction over any STT backend.
//
// Multiple sessions may be open simultaneously.
type Provider interface {
	// StartStream opens a new transcription session with the given audio
	// format. The returned SessionHandle is ready to accept audio
	// immediately. The caller owns the handle and must call Close when done.
	StartStream(ctx context.Context, cfg StreamConfig) (SessionHandle, error)
}
