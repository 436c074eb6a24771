package mxprobe

import (
	"context"
	"time"

	"github.com/mailscope/mxprobe/check"
	"github.com/mailscope/mxprobe/internal/dnscache"
	"github.com/mailscope/mxprobe/internal/parse"
	"github.com/mailscope/mxprobe/internal/ratelimit"
	"github.com/mailscope/mxprobe/internal/smtpclient"
	"github.com/mailscope/mxprobe/types"
)

// Verifier runs the per-address classification pipeline:
// syntax -> MX lookup -> optional SMTP probe. A Verifier holds no
// mutable per-address state and is safe for concurrent use; the bulk
// orchestrator shares one Verifier across all workers.
type Verifier struct {
	cfg      Config
	resolver *check.MXResolver
	prober   *check.Prober
	cache    *dnscache.Cache
}

// New creates a Verifier. It fails only on unusable SMTP configuration
// (a SOCKS5 proxy address that no dialer can be built from).
func New(cfg Config) (*Verifier, error) {
	cfg = cfg.withDefaults()
	v := &Verifier{cfg: cfg}

	lookup := cfg.LookupMX
	if lookup == nil {
		v.cache = dnscache.New(cfg.Timeout, 5*time.Minute)
		lookup = v.cache.Hosts
	}
	v.resolver = check.NewMXResolverWithLookup(lookup)

	if cfg.EnableSMTP {
		rcpt := cfg.Rcpt
		if rcpt == nil {
			client, err := smtpclient.New(smtpclient.Config{
				HeloDomain:    cfg.SMTP.HeloDomain,
				MailFrom:      cfg.SMTP.MailFrom,
				Port:          cfg.SMTP.Port,
				Timeout:       cfg.Timeout,
				ProxyAddr:     cfg.SMTP.ProxyAddr,
				ProxyUser:     cfg.SMTP.ProxyUser,
				ProxyPassword: cfg.SMTP.ProxyPassword,
			})
			if err != nil {
				return nil, err
			}
			rcpt = client.Rcpt
		}
		var limiter *ratelimit.Limiter
		if cfg.SMTP.GlobalRate > 0 || cfg.SMTP.DomainRate > 0 {
			limiter = ratelimit.New(cfg.SMTP.GlobalRate, cfg.SMTP.DomainRate)
		}
		v.prober = check.NewProber(rcpt, limiter)
	}

	return v, nil
}

// Verify classifies a single address. Exactly one terminal
// classification is produced per call; per-address network failures are
// folded into the classification and never escape as errors. The
// address is normalized (trimmed, lower-cased) once and that form is
// used for every later step and in the returned Result.
func (v *Verifier) Verify(ctx context.Context, raw string) types.Result {
	email := parse.NewEmail(raw)

	if email.Normalized == "" {
		return types.Result{
			Email:         email.Normalized,
			SMTPStatus:    types.SMTPInvalid,
			SMTPMessage:   "Empty email",
			OverallStatus: types.StatusInvalidSyntax,
		}
	}

	if !check.ValidSyntax(email) {
		return types.Result{
			Email:         email.Normalized,
			SMTPStatus:    types.SMTPInvalid,
			SMTPMessage:   "Invalid syntax",
			OverallStatus: types.StatusInvalidSyntax,
		}
	}

	hosts := v.resolver.Hosts(email.Domain)
	if len(hosts) == 0 {
		return types.Result{
			Email:         email.Normalized,
			SyntaxValid:   true,
			SMTPStatus:    types.SMTPUnknown,
			SMTPMessage:   "No MX records found",
			OverallStatus: types.StatusNoMX,
		}
	}

	if !v.cfg.EnableSMTP {
		return types.Result{
			Email:         email.Normalized,
			SyntaxValid:   true,
			HasMXRecord:   true,
			SMTPStatus:    types.SMTPSkipped,
			SMTPMessage:   "SMTP check disabled",
			OverallStatus: types.StatusValidDNSOnly,
		}
	}

	if max := v.cfg.SMTP.MaxMXHosts; max > 0 && max < len(hosts) {
		hosts = hosts[:max]
	}

	probe := v.prober.Probe(ctx, email.Normalized, email.Domain, hosts)
	return types.Result{
		Email:         email.Normalized,
		SyntaxValid:   true,
		HasMXRecord:   true,
		SMTPChecked:   true,
		SMTPStatus:    probe.Status,
		SMTPCode:      probe.Code,
		SMTPMessage:   probe.Message,
		OverallStatus: overallFromProbe(probe.Status),
	}
}

// overallFromProbe maps the SMTP layer outcome to the terminal
// classification.
func overallFromProbe(s types.SMTPStatus) types.OverallStatus {
	switch s {
	case types.SMTPValid:
		return types.StatusValid
	case types.SMTPInvalid:
		return types.StatusInvalidSMTP
	default:
		return types.StatusUnknown
	}
}
