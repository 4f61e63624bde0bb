package resilience

import (
	"errors"
	"testing"
	"time"
)

var errSynthDown = errors.New("synthesis backend unavailable")

// failTimes returns a fn that fails the first n invocations and succeeds
// afterwards, counting calls in *calls.
func failTimes(n int, calls *int) func() error {
	return func() error {
		*calls++
		if *calls <= n {
			return errSynthDown
		}
		return nil
	}
}

func TestBreaker_StartsHealthy(t *testing.T) {
	t.Parallel()

	b := NewBreaker(BreakerConfig{Provider: "elevenlabs"})
	if got := b.Health(); got != Healthy {
		t.Errorf("Health() = %v, want healthy", got)
	}

	var calls int
	if err := b.Do(failTimes(0, &calls)); err != nil {
		t.Errorf("Do() on a healthy breaker = %v", err)
	}
	if calls != 1 {
		t.Errorf("fn invoked %d times, want 1", calls)
	}
}

func TestBreaker_SuspendsAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	b := NewBreaker(BreakerConfig{Provider: "elevenlabs", Trip: 3, Cooldown: time.Hour})

	var calls int
	for range 3 {
		if err := b.Do(failTimes(100, &calls)); !errors.Is(err, errSynthDown) {
			t.Fatalf("Do() = %v, want the synthesis error", err)
		}
	}
	if got := b.Health(); got != Suspended {
		t.Fatalf("Health() after %d failures = %v, want suspended", calls, got)
	}

	// A suspended breaker rejects without invoking fn.
	err := b.Do(failTimes(100, &calls))
	if !errors.Is(err, ErrTripped) {
		t.Errorf("Do() while suspended = %v, want ErrTripped", err)
	}
	if calls != 3 {
		t.Errorf("fn invoked %d times, want 3 (rejection must not call it)", calls)
	}
}

func TestBreaker_SuccessClearsStrikes(t *testing.T) {
	t.Parallel()

	b := NewBreaker(BreakerConfig{Provider: "deepgram", Trip: 3, Cooldown: time.Hour})

	fail := func() error { return errSynthDown }
	ok := func() error { return nil }

	// Two strikes, a success, two more strikes: never three in a row.
	_ = b.Do(fail)
	_ = b.Do(fail)
	_ = b.Do(ok)
	_ = b.Do(fail)
	_ = b.Do(fail)

	if got := b.Health(); got != Healthy {
		t.Errorf("Health() = %v, want healthy after non-consecutive failures", got)
	}
}

func TestBreaker_CooldownLeadsToProbing(t *testing.T) {
	t.Parallel()

	b := NewBreaker(BreakerConfig{
		Provider: "elevenlabs",
		Trip:     1,
		Cooldown: 20 * time.Millisecond,
		Probes:   1,
	})

	_ = b.Do(func() error { return errSynthDown })
	if got := b.Health(); got != Suspended {
		t.Fatalf("Health() = %v, want suspended", got)
	}

	time.Sleep(40 * time.Millisecond)
	if got := b.Health(); got != Probing {
		t.Fatalf("Health() after cooldown = %v, want probing", got)
	}

	// The probe is admitted; its success restores the provider.
	var calls int
	if err := b.Do(failTimes(0, &calls)); err != nil {
		t.Fatalf("probe Do() = %v", err)
	}
	if calls != 1 {
		t.Fatalf("probe did not reach the provider")
	}
	if got := b.Health(); got != Healthy {
		t.Errorf("Health() after successful probe = %v, want healthy", got)
	}
}

func TestBreaker_FailedProbeSuspendsAgain(t *testing.T) {
	t.Parallel()

	b := NewBreaker(BreakerConfig{
		Provider: "deepgram",
		Trip:     1,
		Cooldown: 20 * time.Millisecond,
	})

	_ = b.Do(func() error { return errSynthDown })
	time.Sleep(40 * time.Millisecond)

	// The outage is still on: the probe fails and the suspension resumes
	// without further attempts.
	if err := b.Do(func() error { return errSynthDown }); !errors.Is(err, errSynthDown) {
		t.Fatalf("probe Do() = %v, want the provider error", err)
	}
	if got := b.Health(); got != Suspended {
		t.Errorf("Health() after failed probe = %v, want suspended", got)
	}
	if err := b.Do(func() error { return nil }); !errors.Is(err, ErrTripped) {
		t.Errorf("Do() after failed probe = %v, want ErrTripped", err)
	}
}

func TestBreaker_RecoveryNeedsAllProbes(t *testing.T) {
	t.Parallel()

	b := NewBreaker(BreakerConfig{
		Provider: "elevenlabs",
		Trip:     1,
		Cooldown: 10 * time.Millisecond,
		Probes:   2,
	})

	_ = b.Do(func() error { return errSynthDown })
	time.Sleep(20 * time.Millisecond)

	if err := b.Do(func() error { return nil }); err != nil {
		t.Fatalf("first probe = %v", err)
	}
	if got := b.Health(); got != Probing {
		t.Fatalf("Health() after one of two probes = %v, want probing", got)
	}
	if err := b.Do(func() error { return nil }); err != nil {
		t.Fatalf("second probe = %v", err)
	}
	if got := b.Health(); got != Healthy {
		t.Errorf("Health() after both probes = %v, want healthy", got)
	}
}

func TestBreaker_Reset(t *testing.T) {
	t.Parallel()

	b := NewBreaker(BreakerConfig{Provider: "elevenlabs", Trip: 1, Cooldown: time.Hour})
	_ = b.Do(func() error { return errSynthDown })
	if got := b.Health(); got != Suspended {
		t.Fatalf("Health() = %v, want suspended", got)
	}

	b.Reset()
	if got := b.Health(); got != Healthy {
		t.Errorf("Health() after Reset = %v, want healthy", got)
	}
	if err := b.Do(func() error { return nil }); err != nil {
		t.Errorf("Do() after Reset = %v", err)
	}
}

func TestBreaker_Defaults(t *testing.T) {
	t.Parallel()

	// Zero config: five consecutive failures suspend, four do not.
	b := NewBreaker(BreakerConfig{})
	for range 4 {
		_ = b.Do(func() error { return errSynthDown })
	}
	if got := b.Health(); got != Healthy {
		t.Fatalf("Health() after 4 failures = %v, want healthy", got)
	}
	_ = b.Do(func() error { return errSynthDown })
	if got := b.Health(); got != Suspended {
		t.Errorf("Health() after 5 failures = %v, want suspended", got)
	}
}

func TestHealth_String(t *testing.T) {
	t.Parallel()

	cases := []struct {
		health Health
		want   string
	}{
		{Healthy, "healthy"},
		{Suspended, "suspended"},
		{Probing, "probing"},
		{Health(42), "unknown"},
	}
	for _, tc := range cases {
		if got := tc.health.String(); got != tc.want {
			t.Errorf("Health(%d).String() = %q, want %q", tc.health, got, tc.want)
		}
	}
}
