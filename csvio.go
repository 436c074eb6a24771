package mxprobe

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mailscope/mxprobe/types"
)

// ResultHeader is the fixed output column order.
var ResultHeader = []string{
	"email",
	"syntax_valid",
	"has_mx_record",
	"smtp_checked",
	"smtp_status",
	"smtp_code",
	"smtp_message",
	"overall_status",
}

// LoadAddresses reads a delimited table and returns the deduplicated
// address list in first-seen order. The first column is the address
// field regardless of its header name; values are trimmed and blanks
// skipped. ErrNoHeader is returned when the input has no header row or
// no columns - the only fatal input condition.
func LoadAddresses(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil || len(header) == 0 {
		return nil, ErrNoHeader
	}

	seen := make(map[string]struct{})
	var unique []string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read input row: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		value := strings.TrimSpace(record[0])
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		unique = append(unique, value)
	}
	return unique, nil
}

// LoadAddressesFile is LoadAddresses over a file path.
func LoadAddressesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", path, err)
	}
	defer f.Close()
	return LoadAddresses(f)
}

// WriteResults serializes results as UTF-8 CSV with the fixed header.
// Booleans serialize as true/false, an absent SMTP code as an empty
// field.
func WriteResults(w io.Writer, results []types.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ResultHeader); err != nil {
		return err
	}
	for _, r := range results {
		code := ""
		if r.SMTPCode != 0 {
			code = strconv.Itoa(r.SMTPCode)
		}
		row := []string{
			r.Email,
			strconv.FormatBool(r.SyntaxValid),
			strconv.FormatBool(r.HasMXRecord),
			strconv.FormatBool(r.SMTPChecked),
			r.SMTPStatus,
			code,
			r.SMTPMessage,
			r.OverallStatus,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteResultsFile is WriteResults over a file path.
func WriteResultsFile(path string, results []types.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output %s: %w", path, err)
	}
	if err := WriteResults(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
