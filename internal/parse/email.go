package parse

import (
	"net/mail"
	"strings"

	"golang.org/x/net/idna"
)

// Email is the internal representation of a parsed email address.
// The check/ packages receive this as parameter.
type Email struct {
	Normalized    string // trimmed, lower-cased input; the identity used everywhere downstream
	Local         string // the part before @
	Domain        string // the part after @, ASCII/Punycode form (for DNS/SMTP)
	DomainUnicode string // the part after @, Unicode form (for display)
	Valid         bool   // false if the input cannot be parsed
}

// NewEmail normalizes and parses the given address string.
// Normalization (trim + lower-case) happens exactly once here; every
// later step (syntax match, domain extraction, probing, output) reuses
// the Normalized form. If parsing fails, Valid=false but Normalized is
// always populated.
//
// Parsing tolerates display names ("Name" <addr>) via net/mail, with a
// manual fallback for internationalized local parts (RFC 6531) that
// net/mail rejects. Domains go through IDNA2008 so DNS and SMTP always
// see the ASCII/Punycode form.
func NewEmail(raw string) Email {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return Email{Normalized: normalized, Valid: false}
	}

	addr, err := mail.ParseAddress(normalized)
	if err != nil {
		addr, err = mail.ParseAddress("<" + normalized + ">")
		if err != nil {
			return parseManual(normalized)
		}
	}

	parts := strings.SplitN(addr.Address, "@", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Email{Normalized: normalized, Valid: false}
	}

	return buildEmail(normalized, parts[0], parts[1])
}

// parseManual handles addresses that net/mail.ParseAddress rejects,
// such as those with Unicode local parts (RFC 6531 SMTPUTF8).
func parseManual(normalized string) Email {
	atIdx := strings.LastIndex(normalized, "@")
	if atIdx < 1 || atIdx >= len(normalized)-1 {
		return Email{Normalized: normalized, Valid: false}
	}
	return buildEmail(normalized, normalized[:atIdx], normalized[atIdx+1:])
}

// buildEmail constructs an Email with proper IDNA domain handling.
func buildEmail(normalized, local, domain string) Email {
	asciiDomain, unicodeDomain, ok := convertDomain(domain)
	if !ok {
		return Email{Normalized: normalized, Valid: false}
	}

	return Email{
		Normalized:    normalized,
		Local:         local,
		Domain:        asciiDomain,
		DomainUnicode: unicodeDomain,
		Valid:         true,
	}
}

// convertDomain converts a domain to both ASCII/Punycode and Unicode
// forms. ok is false if the domain contains non-ASCII characters that
// fail IDNA2008 validation.
func convertDomain(domain string) (ascii, unicode string, ok bool) {
	hasNonASCII := false
	for _, r := range domain {
		if r > 127 {
			hasNonASCII = true
			break
		}
	}

	if hasNonASCII {
		a, err := idna.Lookup.ToASCII(domain)
		if err != nil {
			return "", "", false
		}
		return a, domain, true
	}

	// Pure ASCII domain: recover the Unicode display form in case the
	// input was already Punycode (xn--mnchen-3ya.de -> münchen.de).
	u, err := idna.Display.ToUnicode(domain)
	if err != nil {
		u = domain
	}
	return domain, u, true
}
