package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of a handler. A nil *Metrics
// records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	reloads  *prometheus.CounterVec
	rows     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dtb_draw_requests_total",
			Help: "Draw requests by protocol and status code",
		}, []string{"protocol", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dtb_draw_duration_seconds",
			Help:    "Time to answer a draw request",
			Buckets: prometheus.DefBuckets,
		}, []string{"protocol"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dtb_reloads_total",
			Help: "Row reloads by status",
		}, []string{"status"}),
		rows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dtb_rows",
			Help: "Rows currently held by the table",
		}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.latency, m.reloads, m.rows} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func protocol(legacy bool) string {
	if legacy {
		return "legacy"
	}
	return "modern"
}

func (m *Metrics) observeRequest(legacy bool, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(protocol(legacy), strconv.Itoa(code)).Inc()
	if code == 200 {
		m.latency.WithLabelValues(protocol(legacy)).Observe(d.Seconds())
	}
}

func (m *Metrics) observeReload(rows int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.reloads.WithLabelValues("error").Inc()
		return
	}
	m.reloads.WithLabelValues("ok").Inc()
	m.rows.Set(float64(rows))
}

// SetRows records the row count after the initial load.
func (m *Metrics) SetRows(n int) {
	if m != nil {
		m.rows.Set(float64(n))
	}
}
