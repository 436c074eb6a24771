package mxprobe

import (
	"time"

	"github.com/mailscope/mxprobe/check"
)

// Config is the engine configuration for one Verifier. The zero value
// plus withDefaults() gives a DNS-only verifier with a 10 second
// network timeout.
type Config struct {
	// EnableSMTP turns on live SMTP probing. Default false: DNS-only
	// mode, addresses with MX records classify as valid_dns_only.
	EnableSMTP bool
	// Timeout bounds the MX lookup and each individual SMTP operation
	// (connect, handshake, every command). Exceeding it aborts only the
	// current step or host, never the whole address. Default: 10s.
	Timeout time.Duration
	// SMTP configures the probe layer; ignored unless EnableSMTP.
	SMTP SMTPOptions

	// LookupMX overrides MX resolution (tests). Default: a process-wide
	// TTL cache with singleflight deduplication.
	LookupMX check.HostLookup
	// Rcpt overrides the per-host SMTP transaction (tests).
	Rcpt check.RcptFunc
}

// SMTPOptions configures the SMTP probe layer.
type SMTPOptions struct {
	// HeloDomain is sent in the EHLO/HELO command. Default: "mxprobe.local".
	HeloDomain string
	// MailFrom is the sender used in MAIL FROM. Always a neutral
	// placeholder, never a real operator address, to avoid backscatter
	// and reputation damage. Default: "validator@example.com".
	MailFrom string
	// Port is the SMTP port. Default: "25".
	Port string
	// MaxMXHosts caps how many MX hosts are tried per address.
	// 0 means all of them.
	MaxMXHosts int
	// ProxyAddr optionally routes probe connections through a SOCKS5
	// proxy (host:port), with ProxyUser/ProxyPassword when both set.
	ProxyAddr     string
	ProxyUser     string
	ProxyPassword string
	// GlobalRate / DomainRate throttle probing in probes per second,
	// overall and per recipient domain. 0 disables the limit.
	GlobalRate float64
	DomainRate float64
}

func defaultSMTPOptions() SMTPOptions {
	return SMTPOptions{
		HeloDomain: "mxprobe.local",
		MailFrom:   "validator@example.com",
		Port:       "25",
	}
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	def := defaultSMTPOptions()
	if c.SMTP.HeloDomain == "" {
		c.SMTP.HeloDomain = def.HeloDomain
	}
	if c.SMTP.MailFrom == "" {
		c.SMTP.MailFrom = def.MailFrom
	}
	if c.SMTP.Port == "" {
		c.SMTP.Port = def.Port
	}
	return c
}
