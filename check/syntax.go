package check

import (
	"regexp"

	"github.com/mailscope/mxprobe/internal/parse"
)

// addressPattern is the shape a parsed address must match: a local part
// of non-whitespace/non-@ characters, then @, then a domain containing
// at least one dot. Deliberately looser than full RFC validation; the
// DNS and SMTP stages do the real work.
var addressPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidSyntax reports whether the parsed address is syntactically
// plausible. Pure and total: no I/O, never fails, only returns false.
// Empty or unparseable input is invalid, as is anything not matching
// addressPattern (so a dotless domain fails here, not at DNS time).
func ValidSyntax(email parse.Email) bool {
	if email.Normalized == "" || !email.Valid {
		return false
	}
	return addressPattern.MatchString(email.Local + "@" + email.Domain)
}
