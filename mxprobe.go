// Package mxprobe validates email addresses in bulk by combining
// syntax checks, DNS MX resolution and live SMTP probing, producing a
// per-address classification and an aggregate summary.
//
// Single address:
//
//	v, _ := mxprobe.New(mxprobe.Config{})
//	result := v.Verify(ctx, "user@example.com")
//
// Bulk, with SMTP probing:
//
//	v, _ := mxprobe.New(mxprobe.Config{EnableSMTP: true})
//	results, summary, err := v.RunBulk(ctx, "in.csv", "out.csv", mxprobe.BulkOptions{Workers: 16})
//
// SMTP acceptance is advisory: many servers accept-all or rate-limit,
// so a "valid" classification estimates deliverability, it does not
// guarantee it.
package mxprobe

import "github.com/mailscope/mxprobe/types"

// Result is a re-export from the types package so that consumers don't
// need to import the types package directly.
type Result = types.Result

// Status re-exports.
const (
	StatusInvalidSyntax = types.StatusInvalidSyntax
	StatusNoMX          = types.StatusNoMX
	StatusValidDNSOnly  = types.StatusValidDNSOnly
	StatusValid         = types.StatusValid
	StatusInvalidSMTP   = types.StatusInvalidSMTP
	StatusUnknown       = types.StatusUnknown
)
