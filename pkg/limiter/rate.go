package limiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter spaces out requests per hostname.
// Responsibilities:
// - Bookkeep one token bucket per hostname
// - Block a worker until the host's next slot is free
// - Stay out of the way entirely when no delay is configured
type HostLimiter struct {
	mu    sync.Mutex
	delay time.Duration
	hosts map[string]*rate.Limiter
}

// NewHostLimiter creates a limiter that enforces at most one request per
// `delay` per host. A delay <= 0 disables limiting.
func NewHostLimiter(delay time.Duration) *HostLimiter {
	return &HostLimiter{
		delay: delay,
		hosts: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the given host may be fetched again, or until ctx is
// done.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	if l == nil || l.delay <= 0 {
		return nil
	}
	return l.limiterFor(host).Wait(ctx)
}

func (l *HostLimiter) limiterFor(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.hosts[host]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.delay), 1)
		l.hosts[host] = lim
	}
	return lim
}
