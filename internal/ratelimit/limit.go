// Package ratelimit throttles SMTP probing with a global token bucket
// plus lazily-created per-domain buckets, so a bulk run never hammers
// one provider's mail exchangers.
package ratelimit

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter combines a global limit with per-domain limits.
type Limiter struct {
	global  *rate.Limiter
	perRate rate.Limit
	mu      sync.Mutex
	domains map[string]*rate.Limiter
}

// New creates a limiter allowing globalPerSec probes per second overall
// and domainPerSec per recipient domain. A non-positive value disables
// the corresponding limit.
func New(globalPerSec, domainPerSec float64) *Limiter {
	l := &Limiter{
		perRate: rate.Limit(domainPerSec),
		domains: make(map[string]*rate.Limiter),
	}
	if globalPerSec > 0 {
		l.global = rate.NewLimiter(rate.Limit(globalPerSec), burst(globalPerSec))
	}
	return l
}

// Wait blocks until a probe of the given domain may proceed, or the
// context is cancelled.
func (l *Limiter) Wait(ctx context.Context, domain string) error {
	if l == nil {
		return nil
	}
	if l.global != nil {
		if err := l.global.Wait(ctx); err != nil {
			return err
		}
	}
	if l.perRate <= 0 {
		return nil
	}

	domain = strings.ToLower(domain)
	l.mu.Lock()
	dl, ok := l.domains[domain]
	if !ok {
		dl = rate.NewLimiter(l.perRate, burst(float64(l.perRate)))
		l.domains[domain] = dl
	}
	l.mu.Unlock()

	return dl.Wait(ctx)
}

func burst(perSec float64) int {
	b := int(perSec)
	if b < 1 {
		b = 1
	}
	return b
}
