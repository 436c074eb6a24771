package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mailscope/mxprobe/internal/ratelimit"
)

func TestLimiter_NilIsUnlimited(t *testing.T) {
	var l *ratelimit.Limiter
	assert.NoError(t, l.Wait(context.Background(), "example.com"))
}

func TestLimiter_DisabledRates(t *testing.T) {
	l := ratelimit.New(0, 0)
	for i := 0; i < 100; i++ {
		assert.NoError(t, l.Wait(context.Background(), "example.com"))
	}
}

func TestLimiter_PerDomainThrottles(t *testing.T) {
	l := ratelimit.New(0, 10) // 10/sec per domain, burst 10

	start := time.Now()
	for i := 0; i < 12; i++ {
		assert.NoError(t, l.Wait(context.Background(), "Example.COM"))
	}
	// Burst of 10 is free, the remaining 2 cost ~100ms each.
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestLimiter_IndependentDomains(t *testing.T) {
	l := ratelimit.New(0, 1) // 1/sec per domain, burst 1

	start := time.Now()
	assert.NoError(t, l.Wait(context.Background(), "a.com"))
	assert.NoError(t, l.Wait(context.Background(), "b.com"))
	assert.NoError(t, l.Wait(context.Background(), "c.com"))
	// Different domains never wait on each other's bucket.
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestLimiter_CancelledContext(t *testing.T) {
	l := ratelimit.New(0, 1)
	assert.NoError(t, l.Wait(context.Background(), "a.com")) // drain the burst

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, l.Wait(ctx, "a.com"))
}
