package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label values shared by callers.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Recorder owns a private Prometheus registry. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	reg *prometheus.Registry

	fetches       *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec
	alerts        *prometheus.CounterVec
	sends         *prometheus.CounterVec
	commands      *prometheus.CounterVec
	watcherFailed *prometheus.GaugeVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		reg: reg,
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ffbot",
			Name:      "espn_fetches_total",
			Help:      "League snapshot fetches by caller and result.",
		}, []string{"caller", "result"}),
		fetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ffbot",
			Name:      "espn_fetch_duration_seconds",
			Help:      "League snapshot fetch latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"caller"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ffbot",
			Name:      "alerts_emitted_total",
			Help:      "Alerts produced by the watchers.",
		}, []string{"kind"}),
		sends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ffbot",
			Name:      "notifier_sends_total",
			Help:      "Chat deliveries by kind and result.",
		}, []string{"kind", "result"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ffbot",
			Name:      "commands_total",
			Help:      "Handled chat commands by name and result.",
		}, []string{"command", "result"}),
		watcherFailed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ffbot",
			Name:      "watcher_consecutive_failures",
			Help:      "Consecutive failed ticks per watcher.",
		}, []string{"watcher"}),
	}
	reg.MustRegister(
		r.fetches, r.fetchLatency, r.alerts, r.sends, r.commands, r.watcherFailed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

func (r *Recorder) RecordFetch(caller string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.fetches.WithLabelValues(caller, result(err)).Inc()
	r.fetchLatency.WithLabelValues(caller).Observe(d.Seconds())
}

func (r *Recorder) RecordAlert(kind string) {
	if r == nil {
		return
	}
	r.alerts.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordSend(kind string, err error) {
	if r == nil {
		return
	}
	r.sends.WithLabelValues(kind, result(err)).Inc()
}

func (r *Recorder) RecordCommand(name string, err error) {
	if r == nil {
		return
	}
	r.commands.WithLabelValues(name, result(err)).Inc()
}

func (r *Recorder) SetWatcherFailures(watcher string, n int) {
	if r == nil {
		return
	}
	r.watcherFailed.WithLabelValues(watcher).Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.reg }
