package server

import (
	"testing"
	"time"

	"github.com/towerspire/server/internal/config"
)

func newTestThrottle(t *testing.T, cfg config.RateLimitConfig) *LoginThrottle {
	t.Helper()
	throttle := NewLoginThrottle(cfg)
	t.Cleanup(throttle.Stop)
	return throttle
}

func TestThrottleLocksAfterMaxAttempts(t *testing.T) {
	throttle := newTestThrottle(t, config.RateLimitConfig{MaxAttempts: 3, LockoutSeconds: 60})

	for i := 0; i < 2; i++ {
		if locked, _ := throttle.RecordFailure("10.0.0.1"); locked {
			t.Fatalf("locked after %d failures", i+1)
		}
	}
	locked, wait := throttle.RecordFailure("10.0.0.1")
	if !locked {
		t.Fatal("third failure should lock")
	}
	if wait < 59*time.Second || wait > 61*time.Second {
		t.Errorf("lockout window = %v, want about 60s", wait)
	}

	if locked, _ := throttle.Locked("10.0.0.1"); !locked {
		t.Error("Locked should report the active lockout")
	}
	if locked, _ := throttle.Locked("10.0.0.2"); locked {
		t.Error("other IPs should not be affected")
	}
}

func TestThrottleSuccessClears(t *testing.T) {
	throttle := newTestThrottle(t, config.RateLimitConfig{MaxAttempts: 3, LockoutSeconds: 60})

	throttle.RecordFailure("10.0.0.1")
	throttle.RecordFailure("10.0.0.1")
	throttle.RecordSuccess("10.0.0.1")

	if n := throttle.Failures("10.0.0.1"); n != 0 {
		t.Errorf("failures after success = %d, want 0", n)
	}
	if locked, _ := throttle.RecordFailure("10.0.0.1"); locked {
		t.Error("counter should have restarted from zero")
	}
}

func TestThrottleBackoffDoubles(t *testing.T) {
	throttle := newTestThrottle(t, config.RateLimitConfig{
		MaxAttempts:       1,
		LockoutSeconds:    10,
		MaxLockoutSeconds: 25,
	})

	_, first := throttle.RecordFailure("10.0.0.1")
	if first != 10*time.Second {
		t.Errorf("first lockout = %v, want 10s", first)
	}

	// force the window open again to observe the next lockout
	throttle.mu.Lock()
	throttle.byIP["10.0.0.1"].lockedUntil = time.Now().Add(-time.Second)
	throttle.mu.Unlock()

	_, second := throttle.RecordFailure("10.0.0.1")
	if second != 20*time.Second {
		t.Errorf("second lockout = %v, want 20s", second)
	}

	throttle.mu.Lock()
	throttle.byIP["10.0.0.1"].lockedUntil = time.Now().Add(-time.Second)
	throttle.mu.Unlock()

	_, third := throttle.RecordFailure("10.0.0.1")
	if third != 25*time.Second {
		t.Errorf("third lockout = %v, want the 25s cap", third)
	}
}

func TestThrottleDefaults(t *testing.T) {
	throttle := newTestThrottle(t, config.RateLimitConfig{})
	if throttle.maxAttempts != 5 {
		t.Errorf("default maxAttempts = %d, want 5", throttle.maxAttempts)
	}
	if throttle.baseLockout != 30*time.Second {
		t.Errorf("default baseLockout = %v, want 30s", throttle.baseLockout)
	}
}
