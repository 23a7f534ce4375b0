package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchDuration *prometheus.HistogramVec
	fetchErrors   *prometheus.CounterVec
	staleDiscards *prometheus.CounterVec
	windowSize    *prometheus.GaugeVec
	lastClose     *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fetchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chartfeed_fetch_duration_seconds",
				Help:    "Duration of candle fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"granularity"},
		),
		fetchErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartfeed_fetch_errors_total",
				Help: "Total number of failed candle fetches",
			},
			[]string{"type"},
		),
		staleDiscards: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartfeed_stale_results_discarded_total",
				Help: "Fetch results dropped because a newer granularity superseded them",
			},
			[]string{"granularity"},
		),
		windowSize: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "chartfeed_window_points",
				Help: "Number of points in the active chart window",
			},
			[]string{"granularity"},
		),
		lastClose: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "chartfeed_last_close_price",
				Help: "Most recent close price in the active window",
			},
			[]string{"instrument"},
		),
	}
}

// RecordFetchDuration records how long a candle fetch took.
func (r *Recorder) RecordFetchDuration(granularity string, seconds float64) {
	r.fetchDuration.WithLabelValues(granularity).Observe(seconds)
}

// RecordFetchError records a failed fetch by kind.
func (r *Recorder) RecordFetchError(kind string) {
	r.fetchErrors.WithLabelValues(kind).Inc()
}

// RecordStaleDiscard records a fetch result discarded as stale.
func (r *Recorder) RecordStaleDiscard(granularity string) {
	r.staleDiscards.WithLabelValues(granularity).Inc()
}

// RecordWindowSize records the size of the active window.
func (r *Recorder) RecordWindowSize(granularity string, n int) {
	r.windowSize.WithLabelValues(granularity).Set(float64(n))
}

// RecordLastClose records the most recent close price.
func (r *Recorder) RecordLastClose(instrument string, price float64) {
	r.lastClose.WithLabelValues(instrument).Set(price)
}
