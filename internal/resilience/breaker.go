// Package resilience keeps voice sessions alive through provider outages.
//
// A premium speech or language provider that starts timing out mid-call must
// not take the call down with it: the [Breaker] suspends a provider after
// repeated consecutive failures, and a [Chain] routes each request to the
// first provider whose breaker still admits traffic. A suspended provider is
// re-probed after a cooldown so the session returns to the premium voice once
// the outage clears.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrTripped is returned by [Breaker.Do] when the provider is suspended and
// the request was rejected without being attempted.
var ErrTripped = errors.New("resilience: provider suspended")

// Health describes what a [Breaker] currently does with incoming requests.
type Health int

const (
	// Healthy admits every request.
	Healthy Health = iota
	// Suspended rejects every request until the cooldown elapses.
	Suspended
	// Probing admits a limited number of trial requests to find out whether
	// the provider has recovered.
	Probing
)

// String returns the lowercase name of the health state.
func (h Health) String() string {
	switch h {
	case Healthy:
		return "healthy"
	case Suspended:
		return "suspended"
	case Probing:
		return "probing"
	default:
		return "unknown"
	}
}

// BreakerConfig tunes a [Breaker]. The zero value is usable; unset fields
// take the documented defaults.
type BreakerConfig struct {
	// Provider labels the guarded provider in log output, e.g. "elevenlabs".
	Provider string

	// Trip is the number of consecutive failures that suspends the provider.
	// Default 5.
	Trip int

	// Cooldown is how long a suspension lasts before probing starts.
	// Default 30s.
	Cooldown time.Duration

	// Probes is the number of trial requests admitted while probing, and the
	// number of successes required to restore the provider. Default 3.
	Probes int

	// Logger receives state-transition events. Defaults to [slog.Default].
	Logger *slog.Logger
}

// Breaker guards a single provider. Safe for concurrent use.
type Breaker struct {
	provider string
	trip     int
	cooldown time.Duration
	probes   int
	log      *slog.Logger

	mu          sync.Mutex
	health      Health
	strikes     int
	suspendedAt time.Time
	probesSent  int
	probeWins   int
}

// NewBreaker creates a Breaker from cfg, applying defaults for unset fields.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.Trip <= 0 {
		cfg.Trip = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.Probes <= 0 {
		cfg.Probes = 3
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Breaker{
		provider: cfg.Provider,
		trip:     cfg.Trip,
		cooldown: cfg.Cooldown,
		probes:   cfg.Probes,
		log:      cfg.Logger,
	}
}

// Do runs fn if the breaker admits the request. A rejected request returns
// [ErrTripped] without invoking fn; otherwise the outcome of fn is recorded
// and its error returned unchanged.
func (b *Breaker) Do(fn func() error) error {
	if err := b.admit(); err != nil {
		return err
	}
	if err := fn(); err != nil {
		b.noteFailure(err)
		return err
	}
	b.noteSuccess()
	return nil
}

// admit decides whether the next request may proceed, moving a suspension
// whose cooldown has elapsed into probing.
func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.health {
	case Healthy:
		return nil
	case Suspended:
		if time.Since(b.suspendedAt) < b.cooldown {
			return ErrTripped
		}
		b.health = Probing
		b.probesSent = 0
		b.probeWins = 0
		b.log.Info("provider cooldown elapsed, probing",
			"provider", b.provider)
		fallthrough
	case Probing:
		if b.probesSent >= b.probes {
			return ErrTripped
		}
		b.probesSent++
		return nil
	default:
		return nil
	}
}

func (b *Breaker) noteFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.health {
	case Probing:
		// A failed probe means the outage is not over.
		b.suspend("probe failed", err)
	case Healthy:
		b.strikes++
		if b.strikes >= b.trip {
			b.suspend("consecutive failures", err)
		}
	}
}

func (b *Breaker) noteSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.health {
	case Probing:
		b.probeWins++
		if b.probeWins >= b.probes {
			b.health = Healthy
			b.strikes = 0
			b.log.Info("provider recovered", "provider", b.provider)
		}
	case Healthy:
		b.strikes = 0
	}
}

// suspend transitions to Suspended. Caller holds b.mu.
func (b *Breaker) suspend(reason string, err error) {
	b.health = Suspended
	b.suspendedAt = time.Now()
	b.strikes = 0
	b.log.Warn("provider suspended",
		"provider", b.provider,
		"reason", reason,
		"cooldown", b.cooldown,
		"error", err)
}

// Health reports the current state. A suspension whose cooldown has elapsed
// reports Probing, since the next request would be admitted as a probe.
func (b *Breaker) Health() Health {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.health == Suspended && time.Since(b.suspendedAt) >= b.cooldown {
		return Probing
	}
	return b.health
}

// Reset restores the breaker to Healthy and clears all counters. Intended for
// operator intervention and tests.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.health = Healthy
	b.strikes = 0
	b.probesSent = 0
	b.probeWins = 0
}
