// Package dnscache provides a thread-safe, TTL-based cache of MX host
// lists with singleflight deduplication, so bulk runs with many
// addresses on the same domain issue a single DNS query per domain.
package dnscache

import (
	"context"
	"net"
	"sort"
	"strings"
	"sync"
	"time"
)

// Resolver is the injectable MX lookup backend.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// Cache caches resolved mail-exchanger host lists per domain.
// Concurrent lookups for the same domain are deduplicated: only one
// actual DNS query is performed, and all waiters receive the result.
type Cache struct {
	mu            sync.Mutex
	entries       map[string]*entry
	cacheTTL      time.Duration
	lookupTimeout time.Duration
	resolver      Resolver
}

type entry struct {
	hosts   []string
	err     error
	expires time.Time
	done    chan struct{} // closed when the lookup is complete
}

// New creates a cache backed by the default net.Resolver.
func New(lookupTimeout, cacheTTL time.Duration) *Cache {
	return &Cache{
		entries:       make(map[string]*entry),
		cacheTTL:      cacheTTL,
		lookupTimeout: lookupTimeout,
		resolver:      &net.Resolver{},
	}
}

// NewWithResolver creates a cache with a custom resolver (for testing).
func NewWithResolver(lookupTimeout, cacheTTL time.Duration, r Resolver) *Cache {
	c := New(lookupTimeout, cacheTTL)
	c.resolver = r
	return c
}

// Hosts returns the domain's mail-exchanger hostnames, ordered by MX
// preference (ascending, ties keep resolver order) with any trailing
// root-label dot stripped. The lookup is bounded by the configured
// timeout. A resolution failure is returned as an error; deciding that
// a failure means "no mail exchanger" is the caller's business.
func (c *Cache) Hosts(domain string) ([]string, error) {
	c.mu.Lock()

	if e, ok := c.entries[domain]; ok {
		select {
		case <-e.done:
			if time.Now().Before(e.expires) {
				c.mu.Unlock()
				return copyHosts(e.hosts), e.err
			}
			// Expired, fall through to refresh.
		default:
			// Lookup in progress - wait for it.
			c.mu.Unlock()
			<-e.done
			return copyHosts(e.hosts), e.err
		}
	}

	e := &entry{done: make(chan struct{})}
	c.entries[domain] = e
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.lookupTimeout)
	defer cancel()

	records, err := c.resolver.LookupMX(ctx, domain)
	e.hosts, e.err = hostList(records), err
	e.expires = time.Now().Add(c.cacheTTL)
	close(e.done)

	return copyHosts(e.hosts), e.err
}

// Len returns the number of entries in the cache (for diagnostics).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// hostList converts raw MX records into the ordered hostname list.
func hostList(records []*net.MX) []string {
	if len(records) == 0 {
		return nil
	}
	sorted := make([]*net.MX, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Pref < sorted[j].Pref
	})

	hosts := make([]string, 0, len(sorted))
	for _, r := range sorted {
		h := strings.TrimSuffix(r.Host, ".")
		if h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// copyHosts prevents callers from mutating cached data.
func copyHosts(hosts []string) []string {
	if hosts == nil {
		return nil
	}
	out := make([]string, len(hosts))
	copy(out, hosts)
	return out
}
