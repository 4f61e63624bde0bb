package config

import "log/slog"

// ConfigDiff describes what changed between two bootstrap configs. Only the
// log level and the agent selection can be applied without a restart; the
// rest is reported so [ConfigDiff.HotApply] can log that a restart is needed.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// AgentChanged is true when the requested agent name or mode changed.
	// Applies to the next session; running sessions keep their profile.
	AgentChanged bool

	// BackendChanged is true when the backend base URL changed. Requires a
	// restart: the bridge client and the profile sources hold the old URL.
	BackendChanged bool

	// CredentialsChanged is true when any provider credential changed.
	// Requires a restart: the provider factory is built once at startup.
	CredentialsChanged bool

	// ProfileSourcesChanged is true when the profile source cascade changed.
	// Requires a restart.
	ProfileSourcesChanged bool
}

// Empty reports whether the diff contains no changes at all.
func (d ConfigDiff) Empty() bool {
	return !d.LogLevelChanged && !d.AgentChanged && !d.BackendChanged &&
		!d.CredentialsChanged && !d.ProfileSourcesChanged
}

// HotApply applies the runtime-adjustable parts of the diff to a running
// service: a changed log level is set on level immediately. Changes that the
// running process cannot absorb are logged as requiring a restart.
func (d ConfigDiff) HotApply(level *slog.LevelVar, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	if d.LogLevelChanged && level != nil {
		level.Set(d.NewLogLevel.Level())
		log.Info("log level updated", "level", d.NewLogLevel)
	}
	if d.AgentChanged {
		log.Info("agent selection changed, applies from the next session")
	}
	if d.BackendChanged {
		log.Warn("backend base URL changed, restart required")
	}
	if d.CredentialsChanged {
		log.Warn("provider credentials changed, restart required")
	}
	if d.ProfileSourcesChanged {
		log.Warn("profile sources changed, restart required")
	}
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Agent != new.Agent {
		d.AgentChanged = true
	}

	if old.Backend != new.Backend {
		d.BackendChanged = true
	}

	if old.Credentials != new.Credentials {
		d.CredentialsChanged = true
	}

	if old.Profiles != new.Profiles {
		d.ProfileSourcesChanged = true
	}

	return d
}
