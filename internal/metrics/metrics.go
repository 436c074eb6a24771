// Package metrics exposes Prometheus counters for bulk validation runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mailscope/mxprobe/types"
)

var (
	resultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mxprobe_results_total",
		Help: "Addresses classified, by terminal overall status.",
	}, []string{"status"})

	smtpProbesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mxprobe_smtp_probes_total",
		Help: "Addresses for which a live SMTP probe was attempted.",
	})
)

// ObserveResult records one completed classification.
func ObserveResult(r types.Result) {
	resultsTotal.WithLabelValues(r.OverallStatus).Inc()
	if r.SMTPChecked {
		smtpProbesTotal.Inc()
	}
}

// Handler returns the exporter endpoint for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
