package server

import (
	"sync"
	"time"

	"github.com/towerspire/server/internal/config"
)

// LoginThrottle locks out client IPs after repeated failed logins. It sits
// in front of the per-account lockout the database enforces, so a botnet
// spraying many usernames from one address still gets cut off. Lockouts
// double on each repeat up to a cap.
type LoginThrottle struct {
	mu          sync.Mutex
	byIP        map[string]*throttleEntry
	maxAttempts int
	baseLockout time.Duration
	maxLockout  time.Duration
	stop        chan struct{}
	stopOnce    sync.Once
}

type throttleEntry struct {
	failures    int
	lockedUntil time.Time
	lockouts    int
}

func NewLoginThrottle(cfg config.RateLimitConfig) *LoginThrottle {
	t := &LoginThrottle{
		byIP:        make(map[string]*throttleEntry),
		maxAttempts: cfg.MaxAttempts,
		baseLockout: time.Duration(cfg.LockoutSeconds) * time.Second,
		maxLockout:  time.Duration(cfg.MaxLockoutSeconds) * time.Second,
		stop:        make(chan struct{}),
	}
	if t.maxAttempts == 0 {
		t.maxAttempts = 5
	}
	if t.baseLockout == 0 {
		t.baseLockout = 30 * time.Second
	}
	if t.maxLockout == 0 {
		t.maxLockout = 5 * time.Minute
	}

	go t.sweepLoop()
	return t
}

// Stop ends the background sweep.
func (t *LoginThrottle) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Locked reports whether ip is currently locked out and for how much longer.
func (t *LoginThrottle) Locked(ip string) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.byIP[ip]
	if !ok || !time.Now().Before(entry.lockedUntil) {
		return false, 0
	}
	return true, time.Until(entry.lockedUntil)
}

// RecordFailure counts one failed login from ip. Crossing the attempt
// threshold starts a lockout; each repeat lockout doubles the window.
func (t *LoginThrottle) RecordFailure(ip string) (locked bool, wait time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.byIP[ip]
	if !ok {
		entry = &throttleEntry{}
		t.byIP[ip] = entry
	}
	if time.Now().Before(entry.lockedUntil) {
		return true, time.Until(entry.lockedUntil)
	}

	entry.failures++
	if entry.failures < t.maxAttempts {
		return false, 0
	}

	entry.lockouts++
	window := t.baseLockout
	for i := 1; i < entry.lockouts && window < t.maxLockout; i++ {
		window *= 2
	}
	if window > t.maxLockout {
		window = t.maxLockout
	}
	entry.lockedUntil = time.Now().Add(window)
	entry.failures = 0
	return true, window
}

// RecordSuccess clears the failure history for ip.
func (t *LoginThrottle) RecordSuccess(ip string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.byIP, ip)
}

// Failures returns the live failure count for ip.
func (t *LoginThrottle) Failures(ip string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if entry, ok := t.byIP[ip]; ok {
		return entry.failures
	}
	return 0
}

func (t *LoginThrottle) sweepLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.sweep()
		}
	}
}

// sweep drops entries whose lockout expired long ago and that have no
// fresh failures.
func (t *LoginThrottle) sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, entry := range t.byIP {
		if entry.lockedUntil.Before(cutoff) && entry.failures == 0 {
			delete(t.byIP, ip)
		}
	}
}
