package elevenlabs

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/novanode-ai/callbridge/pkg/provider/tts"
)

func TestNew_RequiresKeyAndVoice(t *testing.T) {
	t.Parallel()

	if _, err := New("", "21m00Tcm4TlvDq8ikWAM"); err == nil {
		t.Error("New with empty API key should fail")
	}
	if _, err := New("el-key", ""); err == nil {
		t.Error("New with empty voice ID should fail")
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	p, err := New("el-key", "21m00Tcm4TlvDq8ikWAM")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.model != DefaultModel {
		t.Errorf("model = %q, want %q", p.model, DefaultModel)
	}
	if p.outputFormat != defaultOutputFmt {
		t.Errorf("outputFormat = %q, want %q", p.outputFormat, defaultOutputFmt)
	}
	if p.settings != defaultSettings {
		t.Errorf("settings = %+v, want the package defaults", p.settings)
	}
}

func TestNew_Options(t *testing.T) {
	t.Parallel()

	vs := tts.VoiceSettings{Stability: 0.7, SimilarityBoost: 0.8, Style: 0.3, UseSpeakerBoost: true, Speed: 1.1}
	p, err := New("el-key", "v-123",
		WithModel("eleven_multilingual_v2"),
		WithLanguage("es"),
		WithOutputFormat("pcm_24000"),
		WithVoiceSettings(vs),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.model != "eleven_multilingual_v2" || p.language != "es" || p.outputFormat != "pcm_24000" {
		t.Errorf("options not applied: model=%q language=%q format=%q", p.model, p.language, p.outputFormat)
	}
	if p.settings != vs {
		t.Errorf("settings = %+v, want %+v", p.settings, vs)
	}
}

func TestStreamURL(t *testing.T) {
	t.Parallel()

	p, err := New("el-key", "v-123", WithLanguage("es"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	u := p.streamURL()
	if !strings.HasPrefix(u, "wss://api.elevenlabs.io/v1/text-to-speech/v-123/stream-input?") {
		t.Fatalf("streamURL() = %q, want the stream-input endpoint for the voice", u)
	}
	for _, param := range []string{
		"model_id=" + DefaultModel,
		"output_format=pcm_16000",
		"language_code=es",
	} {
		if !strings.Contains(u, param) {
			t.Errorf("streamURL() = %q, missing %q", u, param)
		}
	}
}

func TestStreamURL_NoLanguageParamByDefault(t *testing.T) {
	t.Parallel()

	p, err := New("el-key", "v-123")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if strings.Contains(p.streamURL(), "language_code") {
		t.Errorf("streamURL() = %q, language_code must be absent when unset", p.streamURL())
	}
}

func TestWSSettings_MirrorsConfiguredSettings(t *testing.T) {
	t.Parallel()

	p, err := New("el-key", "v-123", WithVoiceSettings(tts.VoiceSettings{
		Stability:       0.7,
		SimilarityBoost: 0.8,
		Style:           0.3,
		UseSpeakerBoost: true,
		Speed:           1.1,
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	data, err := json.Marshal(p.wsSettings())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["stability"] != 0.7 || got["similarity_boost"] != 0.8 {
		t.Errorf("wire settings = %v", got)
	}
	if got["use_speaker_boost"] != true {
		t.Errorf("use_speaker_boost missing from wire settings: %v", got)
	}
}

func TestTextMessage_FlushShape(t *testing.T) {
	t.Parallel()

	// The end-of-stream flush is {"text":""} with voice_settings omitted.
	data, err := json.Marshal(textMessage{Text: ""})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"text":""}` {
		t.Errorf("flush message = %s, want {\"text\":\"\"}", data)
	}
}

func TestBOIMessage_CarriesKeyAndSettings(t *testing.T) {
	t.Parallel()

	p, err := New("el-key", "v-123")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data, err := json.Marshal(boiMessage{
		Text:          " ",
		VoiceSettings: p.wsSettings(),
		XiAPIKey:      "el-key",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(raw["text"]) != `" "` {
		t.Errorf("handshake text = %s, want a single space", raw["text"])
	}
	if string(raw["xi_api_key"]) != `"el-key"` {
		t.Errorf("xi_api_key = %s", raw["xi_api_key"])
	}
	if _, ok := raw["voice_settings"]; !ok {
		t.Error("handshake must carry voice_settings")
	}
}

func TestAudioResponse_Decode(t *testing.T) {
	t.Parallel()

	var resp audioResponse
	if err := json.Unmarshal([]byte(`{"audio":"cGNt","isFinal":true}`), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Audio != "cGNt" || !resp.IsFinal {
		t.Errorf("decoded response = %+v", resp)
	}
}

func TestSynthesize_RejectsEmptyText(t *testing.T) {
	t.Parallel()

	p, err := New("el-key", "v-123")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Synthesize(context.Background(), ""); err == nil {
		t.Error("Synthesize with empty text should fail before any network call")
	}
}
