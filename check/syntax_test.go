package check_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mailscope/mxprobe/check"
	"github.com/mailscope/mxprobe/internal/parse"
)

func TestValidSyntax(t *testing.T) {
	tests := []struct {
		name   string
		email  string
		wantOK bool
	}{
		{"valid simple", "user@example.com", true},
		{"valid with plus", "user+tag@example.com", true},
		{"valid with dots", "first.last@example.com", true},
		{"valid subdomain", "user@mail.example.co.uk", true},
		{"valid display name", `"Some Name" <user@example.com>`, true},
		{"valid upper case input", "USER@EXAMPLE.COM", true},
		{"empty", "", false},
		{"blank", "   ", false},
		{"no at sign", "userexample.com", false},
		{"no domain", "user@", false},
		{"no local", "@example.com", false},
		{"domain without dot", "user@localhost", false},
		{"two at signs", "user@foo@example.com", false},

		// Internationalized addresses survive the pattern because the
		// domain is matched in its Punycode form.
		{"valid IDN domain", "user@münchen.de", true},
		{"valid EAI local part", "用户@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := parse.NewEmail(tt.email)
			assert.Equal(t, tt.wantOK, check.ValidSyntax(parsed))
		})
	}
}
