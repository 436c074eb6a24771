package mxprobe

import "errors"

// ErrNoHeader is returned when the input table has no header row or no
// columns at all. It is the only input condition that aborts a bulk run
// before any work starts.
var ErrNoHeader = errors.New("mxprobe: input has no header row or columns")
