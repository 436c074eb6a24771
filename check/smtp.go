package check

import (
	"context"
	"fmt"
	"strings"

	"github.com/mailscope/mxprobe/internal/ratelimit"
	"github.com/mailscope/mxprobe/types"
)

// exhaustedMessage is the generic diagnostic when no host answered
// conclusively; per-host reasons are appended after it.
const exhaustedMessage = "All MX hosts failed or returned ambiguous responses"

// RcptFunc runs one probe transaction against one MX host and returns
// the RCPT TO reply. A non-nil error marks the host inconclusive.
type RcptFunc func(mxHost, email string) (code int, msg string, err error)

// ProbeResult is the explicit outcome of probing one address: the
// pipeline inspects Status, never an error type. Code is 0 unless a
// reply was actually obtained.
type ProbeResult struct {
	Status  types.SMTPStatus
	Code    int
	Message string
}

// Prober drives the SMTP stage: it walks the MX hosts in order until a
// conclusive recipient reply or exhaustion.
type Prober struct {
	rcpt    RcptFunc
	limiter *ratelimit.Limiter
}

// NewProber creates a prober. limiter may be nil for unthrottled runs.
func NewProber(rcpt RcptFunc, limiter *ratelimit.Limiter) *Prober {
	return &Prober{rcpt: rcpt, limiter: limiter}
}

// Probe attempts a minimal SMTP transaction against each host in order.
// A 2xx recipient reply is conclusively valid and a 5xx conclusively
// invalid; both stop immediately, no further hosts are contacted. Any
// other reply, or any connection/protocol/timeout failure, marks that
// host inconclusive and the next one is tried. Exhaustion yields
// unknown with no code and the aggregated per-host reasons.
func (p *Prober) Probe(ctx context.Context, email, domain string, hosts []string) ProbeResult {
	if err := p.limiter.Wait(ctx, domain); err != nil {
		return ProbeResult{
			Status:  types.SMTPUnknown,
			Message: "probe cancelled before dispatch: " + err.Error(),
		}
	}

	var failures []string
	for _, host := range hosts {
		select {
		case <-ctx.Done():
			return ProbeResult{
				Status:  types.SMTPUnknown,
				Message: "probe interrupted: " + ctx.Err().Error(),
			}
		default:
		}

		code, msg, err := p.rcpt(host, email)
		if err != nil {
			failures = append(failures, host+": "+err.Error())
			continue
		}

		switch {
		case code >= 200 && code < 300:
			return ProbeResult{Status: types.SMTPValid, Code: code, Message: msg}
		case code >= 500 && code < 600:
			// A permanent rejection from one authoritative MX is decisive.
			return ProbeResult{Status: types.SMTPInvalid, Code: code, Message: msg}
		default:
			failures = append(failures, fmt.Sprintf("%s: ambiguous reply %d %s", host, code, msg))
		}
	}

	message := exhaustedMessage
	if len(failures) > 0 {
		message += ": " + strings.Join(failures, "; ")
	}
	return ProbeResult{Status: types.SMTPUnknown, Message: message}
}
