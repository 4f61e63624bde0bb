package resilience

import (
	"errors"
	"testing"
	"time"
)

// voice is a stand-in synthesis backend for chain tests.
type voice struct {
	name  string
	err   error
	calls int
}

func (v *voice) speak() (string, error) {
	v.calls++
	if v.err != nil {
		return "", v.err
	}
	return "audio from " + v.name, nil
}

func speakVia(c *Chain[*voice]) (string, error) {
	return Run(c, func(v *voice) (string, error) { return v.speak() })
}

func TestChain_PreferredProviderServes(t *testing.T) {
	t.Parallel()

	premium := &voice{name: "elevenlabs"}
	standby := &voice{name: "openai"}
	c := NewChain("elevenlabs", premium, BreakerConfig{})
	c.Add("openai", standby)

	got, err := speakVia(c)
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if got != "audio from elevenlabs" {
		t.Errorf("Run() = %q, want the premium provider's audio", got)
	}
	if standby.calls != 0 {
		t.Errorf("standby invoked %d times while premium is healthy", standby.calls)
	}
}

func TestChain_StandbyServesWhenPreferredFails(t *testing.T) {
	t.Parallel()

	premium := &voice{name: "elevenlabs", err: errors.New("quota exceeded")}
	standby := &voice{name: "openai"}
	c := NewChain("elevenlabs", premium, BreakerConfig{Trip: 5})
	c.Add("openai", standby)

	got, err := speakVia(c)
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if got != "audio from openai" {
		t.Errorf("Run() = %q, want the standby's audio", got)
	}
	if premium.calls != 1 {
		t.Errorf("premium invoked %d times, want 1 attempt before failover", premium.calls)
	}
}

func TestChain_SuspendedProviderIsSkipped(t *testing.T) {
	t.Parallel()

	premium := &voice{name: "elevenlabs", err: errors.New("connection refused")}
	standby := &voice{name: "openai"}
	c := NewChain("elevenlabs", premium, BreakerConfig{Trip: 1, Cooldown: time.Hour})
	c.Add("openai", standby)

	// First request trips the premium breaker; the second must not touch the
	// premium provider at all.
	if _, err := speakVia(c); err != nil {
		t.Fatalf("first Run() = %v", err)
	}
	if _, err := speakVia(c); err != nil {
		t.Fatalf("second Run() = %v", err)
	}
	if premium.calls != 1 {
		t.Errorf("premium invoked %d times, want 1 (suspended entries are skipped)", premium.calls)
	}
	if standby.calls != 2 {
		t.Errorf("standby invoked %d times, want 2", standby.calls)
	}
}

func TestChain_ExhaustedWrapsEveryAttempt(t *testing.T) {
	t.Parallel()

	errPremium := errors.New("elevenlabs: 502")
	errStandby := errors.New("openai: timeout")
	c := NewChain("elevenlabs", &voice{name: "elevenlabs", err: errPremium}, BreakerConfig{Trip: 5})
	c.Add("openai", &voice{name: "openai", err: errStandby})

	_, err := speakVia(c)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("Run() = %v, want ErrExhausted", err)
	}
	if !errors.Is(err, errPremium) || !errors.Is(err, errStandby) {
		t.Errorf("Run() error %v does not wrap both attempt errors", err)
	}
}

func TestChain_PreferredRecoversAfterCooldown(t *testing.T) {
	t.Parallel()

	premium := &voice{name: "elevenlabs", err: errors.New("outage")}
	standby := &voice{name: "openai"}
	c := NewChain("elevenlabs", premium, BreakerConfig{
		Trip:     1,
		Cooldown: 20 * time.Millisecond,
		Probes:   1,
	})
	c.Add("openai", standby)

	if _, err := speakVia(c); err != nil {
		t.Fatalf("Run() during outage = %v", err)
	}

	// Outage clears, cooldown elapses: the next request probes the premium
	// provider and comes back on the premium voice.
	premium.err = nil
	time.Sleep(40 * time.Millisecond)

	got, err := speakVia(c)
	if err != nil {
		t.Fatalf("Run() after recovery = %v", err)
	}
	if got != "audio from elevenlabs" {
		t.Errorf("Run() = %q, want the premium provider after recovery", got)
	}
}

func TestChain_Primary(t *testing.T) {
	t.Parallel()

	premium := &voice{name: "elevenlabs"}
	c := NewChain("elevenlabs", premium, BreakerConfig{})
	c.Add("openai", &voice{name: "openai"})

	if got := c.Primary(); got != premium {
		t.Errorf("Primary() = %v, want the first entry", got.name)
	}
}
