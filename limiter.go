package inkwell

import (
	"sync"
	"time"
)

// LoginLimiter rate-limits failed admin logins per IP address.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewLoginLimiter creates a LoginLimiter that allows max failures per window.
// Call Close to stop its background sweep.
func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	l := &LoginLimiter{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
		stop:     make(chan struct{}),
	}
	go l.sweep()
	return l
}

func (l *LoginLimiter) sweep() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for ip := range l.attempts {
				l.prune(ip, now)
			}
			l.mu.Unlock()
		}
	}
}

// prune drops attempts older than the window. l.mu must be held.
func (l *LoginLimiter) prune(ip string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	hits := l.attempts[ip]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(l.attempts, ip)
		return nil
	}
	l.attempts[ip] = kept
	return kept
}

// Check reports whether ip is still under the limit. It records nothing.
func (l *LoginLimiter) Check(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(ip, time.Now())) < l.max
}

// Record registers a failed login attempt for ip.
func (l *LoginLimiter) Record(ip string) {
	l.mu.Lock()
	l.attempts[ip] = append(l.attempts[ip], time.Now())
	l.mu.Unlock()
}

// Close stops the background sweep. It is safe to call more than once.
func (l *LoginLimiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}
