package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/jessevdk/go-flags"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/mailscope/mxprobe"
	"github.com/mailscope/mxprobe/internal/metrics"
	"github.com/mailscope/mxprobe/types"
)

// Options holds all CLI configuration.
type Options struct {
	InputFile  string `short:"i" long:"input" description:"Input CSV with a header row; the first column is the address" required:"true"`
	OutputFile string `short:"o" long:"output" description:"Output CSV for per-address results" default:"results.csv"`

	EnableSMTP bool `long:"smtp" description:"Enable live SMTP probing (default: DNS-only mode)"`
	Workers    int  `short:"w" long:"workers" description:"Number of concurrent workers" default:"8"`
	Timeout    int  `short:"t" long:"timeout" description:"Timeout of each network operation (in seconds)" default:"10"`

	HeloDomain string  `long:"helo" description:"Domain sent in EHLO/HELO" default:"mxprobe.local"`
	MailFrom   string  `long:"mail-from" description:"Neutral placeholder sender for MAIL FROM" default:"validator@example.com"`
	Port       string  `long:"port" description:"SMTP port" default:"25"`
	MaxMXHosts int     `long:"max-mx-hosts" description:"MX hosts to try per address (0 = all)"`
	Proxy      string  `long:"proxy" description:"SOCKS5 proxy for probe connections (host:port)"`
	GlobalRate float64 `long:"rate" description:"Global probe rate limit (probes/sec, 0 = unlimited)"`
	DomainRate float64 `long:"domain-rate" description:"Per-domain probe rate limit (probes/sec, 0 = unlimited)"`

	MetricsAddr string `long:"metrics-addr" description:"Serve Prometheus metrics on this address (e.g. :2112)"`
	NoProgress  bool   `long:"no-progress" description:"Plain progress lines instead of a progress bar"`
}

// Validate validates the configuration.
func (o *Options) Validate() error {
	if o.Workers <= 0 {
		return fmt.Errorf("number of workers must be > 0, got %d", o.Workers)
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %d", o.Timeout)
	}
	if o.MaxMXHosts < 0 {
		return fmt.Errorf("max MX hosts must be >= 0, got %d", o.MaxMXHosts)
	}
	return nil
}

func parseFlags() (*Options, error) {
	opts := &Options{}
	parser := flags.NewParser(opts, flags.Default)
	parser.Usage = "[OPTIONS]"
	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	verifier, err := mxprobe.New(mxprobe.Config{
		EnableSMTP: opts.EnableSMTP,
		Timeout:    time.Duration(opts.Timeout) * time.Second,
		SMTP: mxprobe.SMTPOptions{
			HeloDomain: opts.HeloDomain,
			MailFrom:   opts.MailFrom,
			Port:       opts.Port,
			MaxMXHosts: opts.MaxMXHosts,
			ProxyAddr:  opts.Proxy,
			GlobalRate: opts.GlobalRate,
			DomainRate: opts.DomainRate,
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, writing partial results...")
		cancel()
	}()

	if opts.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			if err := http.ListenAndServe(opts.MetricsAddr, mux); err != nil {
				fmt.Fprintf(os.Stderr, "metrics listener: %v\n", err)
			}
		}()
	}

	emails, err := mxprobe.LoadAddressesFile(opts.InputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Loaded %d unique emails from %s\n", len(emails), opts.InputFile)

	bulk := mxprobe.BulkOptions{Workers: opts.Workers}
	var progress *mpb.Progress
	var bar *mpb.Bar
	if opts.NoProgress {
		bulk.Progress = func(done, total int) {
			fmt.Fprintf(os.Stderr, "Processed %d/%d emails\n", done, total)
		}
	} else {
		progress = mpb.New(mpb.WithOutput(os.Stderr))
		bar = progress.AddBar(int64(len(emails)),
			mpb.PrependDecorators(
				decor.Name("validating", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(
				decor.CountersNoUnit("[%d / %d]", decor.WCSyncWidth),
				decor.Percentage(decor.WCSyncSpace),
			),
		)
		bulk.ProgressEvery = 1
		bulk.Progress = func(done, total int) {
			bar.SetCurrent(int64(done))
		}
	}

	results := verifier.VerifyBulk(ctx, emails, bulk)
	if progress != nil {
		// Completes on its own when every address finished; an
		// interrupted run drops the bar instead of blocking.
		bar.Abort(false)
		progress.Wait()
	}

	if err := mxprobe.WriteResultsFile(opts.OutputFile, results); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Wrote %d results to %s\n", len(results), opts.OutputFile)

	printSummary(mxprobe.Summarize(results))
}

func printSummary(summary mxprobe.Summary) {
	fmt.Println("Summary by overall_status:")
	for _, status := range types.AllStatuses {
		count, ok := summary[status]
		if !ok {
			continue
		}
		fmt.Printf("  %s: %d\n", colorize(status), count)
	}
}

func colorize(status types.OverallStatus) string {
	switch status {
	case types.StatusValid, types.StatusValidDNSOnly:
		return color.GreenString(status)
	case types.StatusUnknown:
		return color.YellowString(status)
	default:
		return color.RedString(status)
	}
}
