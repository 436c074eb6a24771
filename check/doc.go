// Package check contains the individual validation stages of the
// mxprobe pipeline: syntax, MX resolution and the SMTP probe. The
// stages can be used directly, but the usual entry point is the
// Verifier in the github.com/mailscope/mxprobe package, which composes
// them into the classification state machine.
package check
