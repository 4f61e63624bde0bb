// Package profile provides the agent profile model and the layered
// [Store] that resolves profiles from the remote config service, an optional
// PostgreSQL source, a local config file, and a built-in fallback — in that
// order. An [AgentProfile] is the full declarative configuration for one voice
// agent: its prompt, greeting behaviour, and the speech/LLM provider stack to
// assemble for a session.
//
// The JSON field layout matches the config service's /agents resource, so a
// profile can round-trip unchanged between the remote API, the local file and
// the database.
package profile

import (
	"errors"
	"fmt"
)

// AgentProfile is the full declarative configuration for a voice agent.
type AgentProfile struct {
	// Name is the unique profile name used for lookups.
	Name string `json:"name"`

	// Prompt is the agent's system prompt. Empty means use the generic
	// fallback prompt.
	Prompt string `json:"prompt,omitempty"`

	// TTS configures the speech synthesis provider.
	TTS TTSConfig `json:"tts"`

	// STT configures the speech recognition provider.
	STT STTConfig `json:"stt"`

	// LLM configures the language model provider.
	LLM LLMConfig `json:"llm"`

	// VAD configures voice activity detection.
	VAD VADConfig `json:"vad"`

	// Agent holds behaviour settings (dispatch mode, greeting).
	Agent BehaviorConfig `json:"agent"`
}

// BehaviorConfig holds agent behaviour settings.
type BehaviorConfig struct {
	// Mode selects which tool domain the agent serves ("orders",
	// "appointments", "leads", "airline", "jarvis-consultation").
	Mode string `json:"mode"`

	// GreetingInstructions tells the agent how to open the conversation.
	GreetingInstructions string `json:"greeting_instructions"`
}

// TTSConfig configures speech synthesis.
type TTSConfig struct {
	// Provider is "openai" or "elevenlabs".
	Provider string `json:"provider"`

	// Voice is the OpenAI voice name (e.g. "nova").
	Voice string `json:"voice,omitempty"`

	// VoiceID is the ElevenLabs voice identifier.
	VoiceID string `json:"voice_id,omitempty"`

	// Model is the provider-specific model ID.
	Model string `json:"model,omitempty"`

	// Language is the ISO 639-1 synthesis language (e.g. "es").
	Language string `json:"language,omitempty"`

	// ElevenLabs delivery tuning. Zero values mean provider defaults.
	Stability       float64 `json:"stability,omitempty"`
	SimilarityBoost float64 `json:"similarity_boost,omitempty"`
	Style           float64 `json:"style,omitempty"`
	UseSpeakerBoost bool    `json:"use_speaker_boost,omitempty"`
	Speed           float64 `json:"speed,omitempty"`
}

// STTConfig configures speech recognition.
type STTConfig struct {
	// Provider is "openai" or "deepgram".
	Provider string `json:"provider"`

	// Model is the provider-specific model ID (e.g. "nova-2").
	Model string `json:"model,omitempty"`

	// Language is the BCP-47 recognition language.
	Language string `json:"language,omitempty"`
}

// LLMConfig configures the language model.
type LLMConfig struct {
	// Provider is "openai" or one of the any-llm vendors ("anthropic",
	// "gemini", "ollama", "deepseek", "mistral", "groq", "llamacpp",
	// "llamafile").
	Provider string `json:"provider"`

	// Model is the model ID (e.g. "gpt-4o-mini").
	Model string `json:"model,omitempty"`

	// Temperature controls randomness. Zero means provider default.
	Temperature float64 `json:"temperature,omitempty"`
}

// VADConfig configures voice activity detection.
type VADConfig struct {
	// Provider is "silero".
	Provider string `json:"provider"`

	// Threshold is the speech probability threshold (0.0–1.0).
	Threshold float64 `json:"threshold,omitempty"`

	// MinSilenceMs is the trailing silence before end-of-speech.
	MinSilenceMs int `json:"min_silence_ms,omitempty"`
}

// ValidProviders maps each capability to its accepted provider tags. An empty
// tag is accepted everywhere and resolves to the capability default.
var ValidProviders = map[string]map[string]struct{}{
	"tts": {"": {}, "openai": {}, "elevenlabs": {}},
	"stt": {"": {}, "openai": {}, "deepgram": {}},
	"llm": {
		"": {}, "openai": {}, "anthropic": {}, "gemini": {}, "ollama": {},
		"deepseek": {}, "mistral": {}, "groq": {}, "llamacpp": {}, "llamafile": {},
	},
	"vad": {"": {}, "silero": {}},
}

// Validate checks the profile for logical consistency. It returns a joined
// error describing every violation found, or nil if the profile is valid.
func (p *AgentProfile) Validate() error {
	var errs []error

	if _, ok := ValidProviders["tts"][p.TTS.Provider]; !ok {
		errs = append(errs, fmt.Errorf("profile: unknown tts provider %q", p.TTS.Provider))
	}
	if _, ok := ValidProviders["stt"][p.STT.Provider]; !ok {
		errs = append(errs, fmt.Errorf("profile: unknown stt provider %q", p.STT.Provider))
	}
	if _, ok := ValidProviders["llm"][p.LLM.Provider]; !ok {
		errs = append(errs, fmt.Errorf("profile: unknown llm provider %q", p.LLM.Provider))
	}
	if _, ok := ValidProviders["vad"][p.VAD.Provider]; !ok {
		errs = append(errs, fmt.Errorf("profile: unknown vad provider %q", p.VAD.Provider))
	}

	if p.TTS.Speed != 0 && (p.TTS.Speed < 0.25 || p.TTS.Speed > 4.0) {
		errs = append(errs, fmt.Errorf("profile: tts speed must be in [0.25, 4.0], got %g", p.TTS.Speed))
	}
	if p.VAD.Threshold != 0 && (p.VAD.Threshold < 0 || p.VAD.Threshold > 1) {
		errs = append(errs, fmt.Errorf("profile: vad threshold must be in [0.0, 1.0], got %g", p.VAD.Threshold))
	}
	if p.LLM.Temperature != 0 && (p.LLM.Temperature < 0 || p.LLM.Temperature > 2) {
		errs = append(errs, fmt.Errorf("profile: llm temperature must be in [0.0, 2.0], got %g", p.LLM.Temperature))
	}

	return errors.Join(errs...)
}

// DefaultGreeting is used when a profile omits greeting instructions.
const DefaultGreeting = "Greet the user and offer your assistance."

// DefaultMode is the dispatch mode of the built-in profile.
const DefaultMode = "orders"

// BuiltinDefault returns the hardcoded last-resort profile used when neither
// the config service nor the local file yields a usable profile.
func BuiltinDefault() *AgentProfile {
	return &AgentProfile{
		Name: "default",
		TTS:  TTSConfig{Provider: "openai", Voice: "nova"},
		STT:  STTConfig{Provider: "openai"},
		LLM:  LLMConfig{Provider: "openai", Model: "gpt-4o-mini"},
		VAD:  VADConfig{Provider: "silero"},
		Agent: BehaviorConfig{
			Mode:                 DefaultMode,
			GreetingInstructions: DefaultGreeting,
		},
	}
}
