// Package tts defines the Provider interface for Text-to-Speech backends.
//
// A TTS provider wraps a speech synthesis service (e.g. ElevenLabs or the
// OpenAI speech API) configured for a single voice. The voice, model and
// delivery settings are fixed at construction from the agent profile, so a
// provider handle can be passed straight to the session runtime.
//
// Implementations must be safe for concurrent use.
package tts

import "context"

// Provider is the abstraction over any TTS backend.
type Provider interface {
	// Synthesize renders text to a single raw PCM buffer. Suitable for short
	// utterances such as the session greeting.
	//
	// Returns an error if the backend cannot be reached or rejects the
	// request; ctx cancellation aborts the synthesis.
	Synthesize(ctx context.Context, text string) ([]byte, error)

	// SynthesizeStream consumes text fragments from the text channel and
	// returns a channel that emits raw PCM audio chunks as they are
	// synthesised, allowing LLM streaming output to be piped directly into
	// synthesis.
	//
	// The returned channel is closed when all text has been synthesised or
	// when ctx is cancelled. The caller must drain it. A non-nil error is
	// returned only if the stream cannot be started.
	SynthesizeStream(ctx context.Context, text <-chan string) (<-chan []byte, error)
}
