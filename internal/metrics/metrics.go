// Package metrics provides Prometheus metrics for sambadns.
//
// All collectors live on Registry rather than the global default registry,
// so a one-shot run can write exactly these series to a textfile.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "sambadns"

// Registry holds every sambadns collector.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// BuildInfo is always 1, labeled with the build version.
	BuildInfo = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "build_info",
		Help:      "Build information about sambadns.",
	}, []string{"version", "go_version"})

	// CommandsTotal counts samba-tool invocations that actually ran.
	CommandsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "commands_total",
		Help:      "samba-tool dns commands executed, by action and outcome.",
	}, []string{"action", "outcome"})

	// CommandDuration observes how long each executed command took.
	CommandDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "command_duration_seconds",
		Help:      "Duration of samba-tool dns commands.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"action"})

	// ProbesTotal counts connection probes.
	ProbesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "probes_total",
		Help:      "Connection probes against the DNS backend, by outcome.",
	}, []string{"outcome"})

	// ReconciliationsTotal counts validated requests by verdict.
	ReconciliationsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "reconciliations_total",
		Help:      "Reconciliation requests, by function, desired state and verdict.",
	}, []string{"function", "state", "verdict"})
)

// RegisterRuntimeCollectors adds the Go runtime and process collectors.
// serve calls it; one-shot textfile output leaves them out.
func RegisterRuntimeCollectors() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// SetBuildInfo records the running version.
func SetBuildInfo(version, goVersion string) {
	BuildInfo.WithLabelValues(version, goVersion).Set(1)
}

// ObserveCommand records one executed command.
func ObserveCommand(action, outcome string, elapsed time.Duration) {
	CommandsTotal.WithLabelValues(action, outcome).Inc()
	CommandDuration.WithLabelValues(action).Observe(elapsed.Seconds())
}

// ObserveProbe records one connection probe.
func ObserveProbe(outcome string) {
	ProbesTotal.WithLabelValues(outcome).Inc()
}

// ObserveReconciliation records the verdict of one request.
func ObserveReconciliation(function, state, verdict string) {
	ReconciliationsTotal.WithLabelValues(function, state, verdict).Inc()
}

// Handler serves Registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// WriteTextfile writes Registry to path for the node_exporter textfile
// collector. The file is replaced atomically.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}
	return nil
}
