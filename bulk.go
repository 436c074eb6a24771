package mxprobe

import (
	"context"
	"sync"

	"github.com/mailscope/mxprobe/internal/metrics"
	"github.com/mailscope/mxprobe/types"
)

// BulkOptions configures one bulk invocation.
type BulkOptions struct {
	// Workers bounds concurrent pipeline executions. Default: 8.
	Workers int
	// ProgressEvery controls how often Progress fires (plus once on the
	// final completion). Default: 50.
	ProgressEvery int
	// Progress receives (completed, total) counts. Optional.
	Progress func(done, total int)
	// Logf receives human-readable progress lines (load count, write
	// count). Optional; an observability side channel, not an API.
	Logf func(format string, args ...any)
}

func (o BulkOptions) withDefaults() BulkOptions {
	if o.Workers <= 0 {
		o.Workers = 8
	}
	if o.ProgressEvery <= 0 {
		o.ProgressEvery = 50
	}
	if o.Logf == nil {
		o.Logf = func(string, ...any) {}
	}
	return o
}

// VerifyBulk runs the pipeline concurrently over the given addresses
// with a bounded worker pool and returns results in completion order.
// The only shared mutable state is the collector's slice and counter,
// both touched exclusively by the single goroutine draining the
// completion channel, so no fine-grained locking is needed.
//
// Cancelling ctx stops dispatching further addresses; whatever results
// have completed are returned, not discarded. Per-address failures are
// terminal classifications, never errors, so one network hiccup cannot
// abort the run.
func (v *Verifier) VerifyBulk(ctx context.Context, emails []string, opts BulkOptions) []types.Result {
	opts = opts.withDefaults()
	total := len(emails)

	jobs := make(chan string)
	completions := make(chan types.Result)

	go func() {
		defer close(jobs)
		for _, e := range emails {
			select {
			case jobs <- e:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range jobs {
				completions <- v.Verify(ctx, e)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(completions)
	}()

	results := make([]types.Result, 0, total)
	completed := 0
	for r := range completions {
		results = append(results, r)
		metrics.ObserveResult(r)
		completed++
		if opts.Progress != nil && (completed%opts.ProgressEvery == 0 || completed == total) {
			opts.Progress(completed, total)
		}
	}
	return results
}

// RunBulk is the whole bulk operation: load and deduplicate the input
// table, verify every unique address, write the full collected result
// set, and compute the classification summary. An interrupted run (ctx
// cancelled) still writes the partial results and returns them; only a
// failure to load the input or write the output is an error.
func (v *Verifier) RunBulk(ctx context.Context, inputPath, outputPath string, opts BulkOptions) ([]types.Result, Summary, error) {
	opts = opts.withDefaults()

	emails, err := LoadAddressesFile(inputPath)
	if err != nil {
		return nil, nil, err
	}
	opts.Logf("Loaded %d unique emails from %s", len(emails), inputPath)

	if opts.Progress == nil {
		logf := opts.Logf
		opts.Progress = func(done, total int) {
			logf("Processed %d/%d emails", done, total)
		}
	}

	results := v.VerifyBulk(ctx, emails, opts)

	if err := WriteResultsFile(outputPath, results); err != nil {
		return nil, nil, err
	}
	opts.Logf("Wrote %d results to %s", len(results), outputPath)

	return results, Summarize(results), nil
}
