package resilience

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrExhausted is returned by [Run] when every provider in the chain either
// failed or was suspended.
var ErrExhausted = errors.New("resilience: every provider failed")

// link pairs a provider with the breaker guarding it.
type link[T any] struct {
	name     string
	provider T
	breaker  *Breaker
}

// Chain is an ordered list of interchangeable providers. Requests go to the
// first provider whose breaker admits them; later entries are standbys that
// only serve while earlier ones are failing or suspended.
//
// Add standbys at construction time. Adding is not synchronised with [Run],
// so the chain must be fully built before it serves requests.
type Chain[T any] struct {
	cfg   BreakerConfig
	log   *slog.Logger
	links []link[T]
}

// NewChain creates a chain with its preferred provider. cfg tunes the breaker
// guarding every entry; cfg.Provider is overridden per entry.
func NewChain[T any](name string, primary T, cfg BreakerConfig) *Chain[T] {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	c := &Chain[T]{cfg: cfg, log: cfg.Logger}
	c.Add(name, primary)
	return c
}

// Add appends a standby provider to the end of the chain.
func (c *Chain[T]) Add(name string, provider T) {
	bc := c.cfg
	bc.Provider = name
	c.links = append(c.links, link[T]{
		name:     name,
		provider: provider,
		breaker:  NewBreaker(bc),
	})
}

// Primary returns the preferred provider, regardless of its health.
func (c *Chain[T]) Primary() T {
	return c.links[0].provider
}

// Run calls fn against each provider in order until one succeeds. Suspended
// providers are skipped without an attempt. When no provider succeeds, the
// returned error wraps [ErrExhausted] together with every attempt's error.
//
// Run is a function rather than a method because methods cannot introduce
// the result type parameter R.
func Run[T, R any](c *Chain[T], fn func(T) (R, error)) (R, error) {
	var attempts []error
	for i, l := range c.links {
		var result R
		err := l.breaker.Do(func() error {
			var callErr error
			result, callErr = fn(l.provider)
			return callErr
		})
		if err == nil {
			if i > 0 {
				c.log.Info("request served by standby provider",
					"provider", l.name, "position", i)
			}
			return result, nil
		}
		if errors.Is(err, ErrTripped) {
			c.log.Debug("skipping suspended provider", "provider", l.name)
		} else {
			c.log.Warn("provider attempt failed, trying next",
				"provider", l.name, "error", err)
		}
		attempts = append(attempts, fmt.Errorf("%s: %w", l.name, err))
	}

	var zero R
	return zero, fmt.Errorf("%w: %w", ErrExhausted, errors.Join(attempts...))
}
