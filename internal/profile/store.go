package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/antzucaro/matchr"
)

// ErrNotFound is returned by [Store.LoadByName] when no source knows the
// requested agent name. It signals "configure a default session" rather than
// a failure.
var ErrNotFound = errors.New("profile: agent not found")

// Source is a single profile origin consulted by the [Store]. Implementations
// must be safe for concurrent use.
//
// ByName returns (nil, nil) when the source is reachable but does not know the
// name; a non-nil error means the source itself failed and the next source
// should be consulted.
type Source interface {
	// Name identifies the source in logs ("remote", "postgres", "file").
	Name() string

	// Default returns the source's default profile.
	Default(ctx context.Context) (*AgentProfile, error)

	// ByName returns the profile with the given name, or (nil, nil) when the
	// source does not have it.
	ByName(ctx context.Context, name string) (*AgentProfile, error)

	// Names lists the agent names the source knows about.
	Names(ctx context.Context) ([]string, error)
}

// Store resolves agent profiles through an ordered source cascade, ending in
// the built-in default. Store never propagates source failures to callers of
// LoadDefault; every fallback transition is logged.
//
// Store is safe for concurrent use.
type Store struct {
	sources []Source
	log     *slog.Logger
}

// NewStore creates a Store consulting the given sources in order. A nil
// logger uses slog.Default.
func NewStore(log *slog.Logger, sources ...Source) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{sources: sources, log: log}
}

// LoadDefault returns the default agent profile. It walks the source cascade
// and falls back to [BuiltinDefault] when every source fails, so the returned
// profile is always usable.
func (s *Store) LoadDefault(ctx context.Context) *AgentProfile {
	for _, src := range s.sources {
		p, err := src.Default(ctx)
		if err != nil {
			s.log.Warn("profile source failed, falling back",
				"source", src.Name(), "error", err)
			continue
		}
		if p == nil {
			s.log.Debug("profile source has no default", "source", src.Name())
			continue
		}
		if err := p.Validate(); err != nil {
			s.log.Warn("profile source returned invalid default, falling back",
				"source", src.Name(), "error", err)
			continue
		}
		s.log.Info("loaded default agent profile",
			"source", src.Name(), "agent", p.Name, "mode", p.Agent.Mode)
		return p
	}

	s.log.Info("no profile source available, using built-in default")
	return BuiltinDefault()
}

// LoadByName returns the profile with the given name. A miss across all
// sources yields an error wrapping [ErrNotFound]; source failures are logged
// and skipped. A failed lookup never disturbs previously loaded state.
func (s *Store) LoadByName(ctx context.Context, name string) (*AgentProfile, error) {
	if name == "" {
		return nil, fmt.Errorf("profile: name must not be empty")
	}

	for _, src := range s.sources {
		p, err := src.ByName(ctx, name)
		if err != nil {
			s.log.Warn("profile source failed, falling back",
				"source", src.Name(), "agent", name, "error", err)
			continue
		}
		if p == nil {
			continue
		}
		if err := p.Validate(); err != nil {
			s.log.Warn("profile source returned invalid profile, falling back",
				"source", src.Name(), "agent", name, "error", err)
			continue
		}
		s.log.Info("loaded agent profile",
			"source", src.Name(), "agent", p.Name, "mode", p.Agent.Mode)
		return p, nil
	}

	if hint := s.closestName(ctx, name); hint != "" {
		s.log.Info("agent profile not found", "agent", name, "closest_match", hint)
	} else {
		s.log.Info("agent profile not found", "agent", name)
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// ListNames returns the agent names of the first source that yields a
// non-empty list, or the built-in default's name when none does.
func (s *Store) ListNames(ctx context.Context) []string {
	for _, src := range s.sources {
		names, err := src.Names(ctx)
		if err != nil {
			s.log.Warn("profile source failed to list agents",
				"source", src.Name(), "error", err)
			continue
		}
		if len(names) > 0 {
			return names
		}
	}
	return []string{BuiltinDefault().Name}
}

// closestName returns the known agent name with the smallest edit distance to
// the miss, for "did you mean" logging. Returns "" when nothing is close.
func (s *Store) closestName(ctx context.Context, miss string) string {
	const maxDistance = 5

	best := ""
	bestDist := maxDistance + 1
	for _, candidate := range s.ListNames(ctx) {
		d := matchr.Levenshtein(miss, candidate)
		if d < bestDist {
			best = candidate
			bestDist = d
		}
	}
	return best
}
