// Package types contains the shared types for mxprobe.
// This package does not import anything from other mxprobe packages
// to avoid circular imports.
package types

// SMTPStatus is the outcome of the SMTP probe layer for one address.
type SMTPStatus = string

const (
	SMTPValid   SMTPStatus = "valid"
	SMTPInvalid SMTPStatus = "invalid"
	SMTPUnknown SMTPStatus = "unknown"
	SMTPSkipped SMTPStatus = "skipped"
)

// OverallStatus is the terminal classification of one address.
type OverallStatus = string

const (
	StatusInvalidSyntax OverallStatus = "invalid_syntax"
	StatusNoMX          OverallStatus = "no_mx"
	StatusValidDNSOnly  OverallStatus = "valid_dns_only"
	StatusValid         OverallStatus = "valid"
	StatusInvalidSMTP   OverallStatus = "invalid_smtp"
	StatusUnknown       OverallStatus = "unknown"
)

// AllStatuses lists every terminal classification in summary display order.
var AllStatuses = []OverallStatus{
	StatusValid,
	StatusValidDNSOnly,
	StatusInvalidSyntax,
	StatusInvalidSMTP,
	StatusNoMX,
	StatusUnknown,
}

// Result is the immutable outcome of validating one address.
// OverallStatus is set exactly once by the pipeline and is a pure
// function of the other fields. SMTPCode is 0 unless a probe actually
// obtained a reply code.
type Result struct {
	Email         string        `json:"email"`
	SyntaxValid   bool          `json:"syntaxValid"`
	HasMXRecord   bool          `json:"hasMxRecord"`
	SMTPChecked   bool          `json:"smtpChecked"`
	SMTPStatus    SMTPStatus    `json:"smtpStatus"`
	SMTPCode      int           `json:"smtpCode,omitempty"`
	SMTPMessage   string        `json:"smtpMessage,omitempty"`
	OverallStatus OverallStatus `json:"overallStatus"`
}

// Conclusive reports whether the address reached a definite accept or
// reject, as opposed to a DNS-only or ambiguous outcome.
func (r Result) Conclusive() bool {
	switch r.OverallStatus {
	case StatusValid, StatusInvalidSMTP, StatusInvalidSyntax, StatusNoMX:
		return true
	}
	return false
}
