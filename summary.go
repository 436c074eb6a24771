package mxprobe

import "github.com/mailscope/mxprobe/types"

// Summary maps each terminal classification to its count. Derived by a
// single pass over a final result set; recomputed per run, never stored.
type Summary map[types.OverallStatus]int

// Summarize counts results per overall status.
func Summarize(results []types.Result) Summary {
	s := make(Summary)
	for _, r := range results {
		s[r.OverallStatus]++
	}
	return s
}

// Total returns the number of results the summary was built from.
func (s Summary) Total() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}
