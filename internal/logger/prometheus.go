package logger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	// counter is the process-wide log statement counter; promauto
	// registration must happen once.
	counter *prometheus.CounterVec //nolint:gochecknoglobals
)

// PrometheusHook counts emitted log statements per level.
type PrometheusHook struct{}

// Run implements zerolog.Hook.
func (h PrometheusHook) Run(_ *zerolog.Event, level zerolog.Level, _ string) {
	if level != zerolog.NoLevel {
		counter.WithLabelValues(level.String()).Inc()
	}
}

// NewPrometheusHook returns a hook counting log statements by level, labeled
// with the service name.
func NewPrometheusHook(service string) PrometheusHook {
	if counter == nil {
		counter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "log_statements_total",
				Help:        "Number of log statements, differentiated by log level.",
				ConstLabels: prometheus.Labels{"service": service},
			},
			[]string{"level"},
		)
	}

	return PrometheusHook{}
}
