package check

import (
	"context"
	"net"
	"sort"
	"strings"
	"time"
)

// HostLookup resolves a domain to its ordered MX hosts. Injectable for
// testability; the bulk path plugs in the dnscache-backed lookup.
type HostLookup func(domain string) ([]string, error)

// MXResolver resolves a domain to an ordered list of mail-exchanger
// hostnames.
type MXResolver struct {
	lookup HostLookup
}

// NewMXResolver creates a resolver that queries DNS directly, bounding
// each lookup by timeout.
func NewMXResolver(timeout time.Duration) *MXResolver {
	r := &net.Resolver{}
	return NewMXResolverWithLookup(func(domain string) ([]string, error) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		records, err := r.LookupMX(ctx, domain)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Pref < records[j].Pref
		})
		hosts := make([]string, 0, len(records))
		for _, rec := range records {
			h := strings.TrimSuffix(rec.Host, ".")
			if h != "" {
				hosts = append(hosts, h)
			}
		}
		return hosts, nil
	})
}

// NewMXResolverWithLookup creates a resolver around an existing lookup,
// such as the shared dnscache or a test stub.
func NewMXResolverWithLookup(fn HostLookup) *MXResolver {
	return &MXResolver{lookup: fn}
}

// Hosts returns the domain's mail exchangers ordered by preference.
// Every resolution failure - NXDOMAIN, timeout, no answer, no
// nameservers, malformed response - collapses to an empty list: "no
// mail exchanger" is a valid outcome here, not an error to propagate.
func (r *MXResolver) Hosts(domain string) []string {
	hosts, err := r.lookup(domain)
	if err != nil {
		return nil
	}
	return hosts
}
