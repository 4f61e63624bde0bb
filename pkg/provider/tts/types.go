package tts

// VoiceSettings holds delivery tuning shared by TTS backends. Backends ignore
// fields they do not support.
type VoiceSettings struct {
	// Stability controls consistency across renderings (0.0–1.0).
	Stability float64

	// SimilarityBoost controls adherence to the reference voice (0.0–1.0).
	SimilarityBoost float64

	// Style controls expressiveness (0.0–1.0).
	Style float64

	// UseSpeakerBoost enables perceptual loudness enhancement.
	UseSpeakerBoost bool

	// Speed adjusts speaking rate (1.0 = default).
	Speed float64
}
