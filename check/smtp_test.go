package check_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mailscope/mxprobe/check"
	"github.com/mailscope/mxprobe/types"
)

func TestProber_FirstHostAccepts(t *testing.T) {
	var contacted []string
	p := check.NewProber(func(mxHost, email string) (int, string, error) {
		contacted = append(contacted, mxHost)
		return 250, "Accepted", nil
	}, nil)

	res := p.Probe(context.Background(), "user@example.com", "example.com",
		[]string{"mx1.example.com", "mx2.example.com"})

	assert.Equal(t, types.SMTPValid, res.Status)
	assert.Equal(t, 250, res.Code)
	// Conclusive reply: no further hosts contacted.
	assert.Equal(t, []string{"mx1.example.com"}, contacted)
}

func TestProber_PermanentRejectionIsDecisive(t *testing.T) {
	var contacted []string
	p := check.NewProber(func(mxHost, email string) (int, string, error) {
		contacted = append(contacted, mxHost)
		return 550, "User unknown", nil
	}, nil)

	res := p.Probe(context.Background(), "ghost@example.com", "example.com",
		[]string{"mx1.example.com", "mx2.example.com"})

	assert.Equal(t, types.SMTPInvalid, res.Status)
	assert.Equal(t, 550, res.Code)
	assert.Equal(t, []string{"mx1.example.com"}, contacted)
}

func TestProber_FailsOverToNextHost(t *testing.T) {
	p := check.NewProber(func(mxHost, email string) (int, string, error) {
		if mxHost == "mx1.example.com" {
			return 0, "", fmt.Errorf("connect: connection refused")
		}
		return 250, "OK", nil
	}, nil)

	res := p.Probe(context.Background(), "user@example.com", "example.com",
		[]string{"mx1.example.com", "mx2.example.com"})

	assert.Equal(t, types.SMTPValid, res.Status)
}

func TestProber_TemporaryFailureIsInconclusive(t *testing.T) {
	var contacted []string
	p := check.NewProber(func(mxHost, email string) (int, string, error) {
		contacted = append(contacted, mxHost)
		return 450, "Greylisted, try again later", nil
	}, nil)

	res := p.Probe(context.Background(), "user@example.com", "example.com",
		[]string{"mx1.example.com", "mx2.example.com"})

	assert.Equal(t, types.SMTPUnknown, res.Status)
	assert.Zero(t, res.Code)
	assert.Len(t, contacted, 2) // 4xx never stops the host walk
}

func TestProber_ExhaustionAggregatesReasons(t *testing.T) {
	p := check.NewProber(func(mxHost, email string) (int, string, error) {
		return 0, "", fmt.Errorf("dial tcp: i/o timeout")
	}, nil)

	res := p.Probe(context.Background(), "user@example.com", "example.com",
		[]string{"mx1.example.com", "mx2.example.com"})

	assert.Equal(t, types.SMTPUnknown, res.Status)
	assert.Zero(t, res.Code)
	assert.Contains(t, res.Message, "All MX hosts failed or returned ambiguous responses")
	assert.Contains(t, res.Message, "mx1.example.com: dial tcp: i/o timeout")
	assert.Contains(t, res.Message, "mx2.example.com: dial tcp: i/o timeout")
}

func TestProber_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	p := check.NewProber(func(mxHost, email string) (int, string, error) {
		called = true
		return 250, "OK", nil
	}, nil)

	res := p.Probe(ctx, "user@example.com", "example.com", []string{"mx1.example.com"})

	assert.Equal(t, types.SMTPUnknown, res.Status)
	assert.False(t, called)
}
