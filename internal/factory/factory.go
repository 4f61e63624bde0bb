// Package factory assembles the speech and language providers for a session
// from an agent profile and the credentials available at startup.
//
// Provider selection is credential-gated: a profile may ask for a premium
// provider (ElevenLabs TTS, Deepgram STT), but when the matching API key is
// absent the factory silently degrades to the OpenAI default and logs the
// substitution. Premium providers that are built get wrapped in a
// [resilience] chain with the OpenAI default as the standby, so a runtime
// outage degrades the voice instead of killing the call.
package factory

import (
	"errors"
	"log/slog"
	"time"

	"github.com/novanode-ai/callbridge/internal/profile"
	"github.com/novanode-ai/callbridge/internal/resilience"
	"github.com/novanode-ai/callbridge/pkg/provider/llm"
	"github.com/novanode-ai/callbridge/pkg/provider/llm/anyllm"
	llmopenai "github.com/novanode-ai/callbridge/pkg/provider/llm/openai"
	"github.com/novanode-ai/callbridge/pkg/provider/stt"
	"github.com/novanode-ai/callbridge/pkg/provider/stt/deepgram"
	sttopenai "github.com/novanode-ai/callbridge/pkg/provider/stt/openai"
	"github.com/novanode-ai/callbridge/pkg/provider/tts"
	"github.com/novanode-ai/callbridge/pkg/provider/tts/elevenlabs"
	ttsopenai "github.com/novanode-ai/callbridge/pkg/provider/tts/openai"
	"github.com/novanode-ai/callbridge/pkg/provider/vad"
	"github.com/novanode-ai/callbridge/pkg/provider/vad/silero"
)

// ElevenLabs delivery defaults tuned for the Spanish-language order agents.
const (
	DefaultElevenVoiceID  = "21m00Tcm4TlvDq8ikWAM"
	DefaultElevenLanguage = "es"
)

// defaultElevenSettings is applied when a profile leaves the delivery tuning
// at zero values.
var defaultElevenSettings = tts.VoiceSettings{
	Stability:       0.7,
	SimilarityBoost: 0.8,
	Style:           0.3,
	UseSpeakerBoost: true,
	Speed:           1.1,
}

// Credentials holds the API keys and model paths the factory may use. Only
// the OpenAI key is mandatory; everything else gates an optional provider.
type Credentials struct {
	OpenAIAPIKey     string
	ElevenLabsAPIKey string
	DeepgramAPIKey   string

	// SileroModelPath locates the VAD ONNX model. Empty disables VAD.
	SileroModelPath string
}

// Factory builds providers for agent sessions. Safe for concurrent use.
type Factory struct {
	creds Credentials
	log   *slog.Logger
}

// New creates a Factory. The OpenAI key is required because it backs the
// default provider for every capability.
func New(creds Credentials, log *slog.Logger) (*Factory, error) {
	if creds.OpenAIAPIKey == "" {
		return nil, errors.New("factory: OpenAI API key is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Factory{creds: creds, log: log}, nil
}

// breakerConfig tunes the per-provider breakers inside the chains.
func (f *Factory) breakerConfig() resilience.BreakerConfig {
	return resilience.BreakerConfig{
		Trip:     3,
		Cooldown: 30 * time.Second,
		Logger:   f.log,
	}
}

// BuildTTS assembles the synthesis provider for the profile. It always
// returns a usable provider.
func (f *Factory) BuildTTS(p *profile.AgentProfile) tts.Provider {
	standard := f.openaiTTS(p.TTS)
	if p.TTS.Provider != "elevenlabs" {
		return standard
	}
	if f.creds.ElevenLabsAPIKey == "" {
		f.log.Warn("profile requests elevenlabs tts but no API key is configured, using openai",
			"profile", p.Name)
		return standard
	}

	voiceID := p.TTS.VoiceID
	if voiceID == "" {
		voiceID = DefaultElevenVoiceID
	}
	language := p.TTS.Language
	if language == "" {
		language = DefaultElevenLanguage
	}
	settings := defaultElevenSettings
	if p.TTS.Stability != 0 {
		settings.Stability = p.TTS.Stability
	}
	if p.TTS.SimilarityBoost != 0 {
		settings.SimilarityBoost = p.TTS.SimilarityBoost
	}
	if p.TTS.Style != 0 {
		settings.Style = p.TTS.Style
	}
	if p.TTS.Speed != 0 {
		settings.Speed = p.TTS.Speed
	}

	opts := []elevenlabs.Option{
		elevenlabs.WithLanguage(language),
		elevenlabs.WithVoiceSettings(settings),
	}
	if p.TTS.Model != "" {
		opts = append(opts, elevenlabs.WithModel(p.TTS.Model))
	}

	premium, err := elevenlabs.New(f.creds.ElevenLabsAPIKey, voiceID, opts...)
	if err != nil {
		f.log.Error("elevenlabs tts construction failed, using openai",
			"profile", p.Name, "error", err)
		return standard
	}

	group := resilience.NewTTSChain("elevenlabs", premium, f.breakerConfig())
	group.Add("openai", standard)
	return group
}

// openaiTTS builds the default OpenAI synthesis provider. Profile model and
// speed settings only apply when the profile targets openai directly.
func (f *Factory) openaiTTS(cfg profile.TTSConfig) tts.Provider {
	var (
		model string
		opts  []ttsopenai.Option
	)
	if cfg.Provider == "openai" {
		model = cfg.Model
		if cfg.Speed != 0 {
			opts = append(opts, ttsopenai.WithSpeed(cfg.Speed))
		}
	}
	p, err := ttsopenai.New(f.creds.OpenAIAPIKey, model, cfg.Voice, opts...)
	if err != nil {
		// Unreachable: New only rejects an empty API key, which the
		// Factory constructor already guards against.
		f.log.Error("openai tts construction failed", "error", err)
	}
	return p
}

// BuildSTT assembles the recognition provider for the profile.
func (f *Factory) BuildSTT(p *profile.AgentProfile) stt.Provider {
	standard := f.openaiSTT(p.STT)
	if p.STT.Provider != "deepgram" {
		return standard
	}
	if f.creds.DeepgramAPIKey == "" {
		f.log.Warn("profile requests deepgram stt but no API key is configured, using openai",
			"profile", p.Name)
		return standard
	}

	var opts []deepgram.Option
	if p.STT.Model != "" {
		opts = append(opts, deepgram.WithModel(p.STT.Model))
	}
	if p.STT.Language != "" {
		opts = append(opts, deepgram.WithLanguage(p.STT.Language))
	}

	premium, err := deepgram.New(f.creds.DeepgramAPIKey, opts...)
	if err != nil {
		f.log.Error("deepgram stt construction failed, using openai",
			"profile", p.Name, "error", err)
		return standard
	}

	group := resilience.NewSTTChain("deepgram", premium, f.breakerConfig())
	group.Add("openai", standard)
	return group
}

// openaiSTT builds the default OpenAI transcription provider.
func (f *Factory) openaiSTT(cfg profile.STTConfig) stt.Provider {
	var model string
	if cfg.Provider == "openai" {
		model = cfg.Model
	}
	p, err := sttopenai.New(f.creds.OpenAIAPIKey, model)
	if err != nil {
		// Unreachable, see openaiTTS.
		f.log.Error("openai stt construction failed", "error", err)
	}
	return p
}

// BuildLLM assembles the language model provider for the profile. Non-OpenAI
// vendors go through any-llm with the OpenAI default as runtime fallback;
// their API keys are resolved from the environment by the vendor SDKs.
func (f *Factory) BuildLLM(p *profile.AgentProfile) llm.Provider {
	standard := f.openaiLLM(p.LLM)
	vendor := p.LLM.Provider
	if vendor == "" || vendor == "openai" {
		return standard
	}

	premium, err := anyllm.New(vendor, p.LLM.Model)
	if err != nil {
		f.log.Error("llm vendor construction failed, using openai",
			"profile", p.Name, "vendor", vendor, "error", err)
		return standard
	}

	group := resilience.NewLLMChain(vendor, premium, f.breakerConfig())
	group.Add("openai", standard)
	return group
}

// openaiLLM builds the default OpenAI chat provider.
func (f *Factory) openaiLLM(cfg profile.LLMConfig) llm.Provider {
	var model string
	if cfg.Provider == "" || cfg.Provider == "openai" {
		model = cfg.Model
	}
	p, err := llmopenai.New(f.creds.OpenAIAPIKey, model)
	if err != nil {
		// Unreachable, see openaiTTS.
		f.log.Error("openai llm construction failed", "error", err)
	}
	return p
}

// BuildVAD assembles the voice activity detector. Returns nil when no Silero
// model path is configured; callers treat a nil engine as VAD disabled.
func (f *Factory) BuildVAD(p *profile.AgentProfile) vad.Engine {
	if f.creds.SileroModelPath == "" {
		f.log.Warn("no silero model path configured, voice activity detection disabled",
			"profile", p.Name)
		return nil
	}
	engine, err := silero.New(f.creds.SileroModelPath)
	if err != nil {
		f.log.Error("silero vad construction failed, voice activity detection disabled",
			"profile", p.Name, "error", err)
		return nil
	}
	return engine
}

// SessionVADConfig translates the profile's VAD block into a session config.
func SessionVADConfig(p *profile.AgentProfile) vad.Config {
	return vad.Config{
		Threshold:    p.VAD.Threshold,
		MinSilenceMs: p.VAD.MinSilenceMs,
	}
}
