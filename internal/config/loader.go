package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ValidModes lists the dispatch modes the function catalog knows about.
// Used by [Validate] to warn about unrecognised mode names.
var ValidModes = []string{"orders", "appointments", "leads", "airline", "jarvis-consultation"}

// Load reads the YAML configuration file at path, overlays environment
// variables, and returns a validated [Config]. A missing file is not an
// error: the service can run from environment variables alone.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := &Config{}
		ApplyEnv(cfg)
		cfg.applyDefaults()
		if err := Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, overlays environment
// variables, and validates the result. Useful in tests where configs are
// constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyEnv(cfg)
	cfg.applyDefaults()
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto cfg. Set variables always win
// over file values.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.ListenAddr = ":" + v
	}
	setString(&cfg.Server.ListenAddr, "LISTEN_ADDR")
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = LogLevel(v)
	}

	setString(&cfg.Backend.BaseURL, "API_BASE_URL")

	setString(&cfg.Agent.Name, "AGENT_NAME")
	setString(&cfg.Agent.Mode, "MODE")

	if v := os.Getenv("USE_API_CONFIG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("USE_API_CONFIG is not a boolean, ignoring", "value", v)
		} else {
			cfg.Profiles.UseRemote = b
		}
	}
	setString(&cfg.Profiles.PostgresDSN, "PROFILE_DB_DSN")
	setString(&cfg.Profiles.File, "PROFILE_FILE")

	setString(&cfg.Credentials.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&cfg.Credentials.ElevenLabsAPIKey, "ELEVEN_API_KEY")
	setString(&cfg.Credentials.DeepgramAPIKey, "DEEPGRAM_API_KEY")
	setString(&cfg.Credentials.SileroModelPath, "SILERO_MODEL_PATH")
}

// setString overwrites dst with the environment variable when it is set.
func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Backend.BaseURL != "" {
		u, err := url.Parse(cfg.Backend.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("backend.base_url %q is not an absolute URL", cfg.Backend.BaseURL))
		}
	}

	validateMode(cfg.Agent.Mode)

	if cfg.Credentials.OpenAIAPIKey == "" {
		slog.Warn("no OpenAI API key configured; the service cannot start voice sessions without one")
	}

	if cfg.Profiles.UseRemote && cfg.Backend.BaseURL == "" {
		errs = append(errs, errors.New("profiles.use_remote requires backend.base_url"))
	}

	return errors.Join(errs...)
}

// validateMode logs a warning if mode is non-empty and not found in
// [ValidModes].
func validateMode(mode string) {
	if mode == "" {
		return
	}
	if slices.Contains(ValidModes, mode) {
		return
	}
	slog.Warn("unknown agent mode — may be a typo; no functions will be offered",
		"mode", mode,
		"known", ValidModes,
	)
}
