package device

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github/chapool/go-coldwallet/internal/errs"
)

const (
	metricsNamespace = "coldwallet"
	metricsSubsystem = "device"
)

// Metrics records invoker activity. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	exchanges *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	queued    prometheus.Gauge
}

// NewMetrics creates the invoker collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		exchanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "exchanges_total",
				Help:      "Device exchanges by method and result.",
			},
			[]string{"method", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "exchange_duration_seconds",
				Help:      "Device exchange duration in seconds, measured after the channel was acquired.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		queued: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "queued_requests",
				Help:      "Requests waiting for the device channel.",
			},
		),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.exchanges, m.duration, m.queued} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "failed to register device metrics")
		}
	}
	return m, nil
}

// ExchangeCounter exposes the per-result counter, mainly for tests.
func (m *Metrics) ExchangeCounter() *prometheus.CounterVec {
	return m.exchanges
}

// QueueGauge exposes the queue depth gauge, mainly for tests.
func (m *Metrics) QueueGauge() prometheus.Gauge {
	return m.queued
}

func (m *Metrics) enqueue() {
	if m != nil {
		m.queued.Inc()
	}
}

func (m *Metrics) dequeue() {
	if m != nil {
		m.queued.Dec()
	}
}

func (m *Metrics) observe(method uint16, d time.Duration, err error) {
	if m == nil {
		return
	}
	label := MethodLabel(method)
	m.exchanges.WithLabelValues(label, ResultLabel(err)).Inc()
	m.duration.WithLabelValues(label).Observe(d.Seconds())
}

// MethodLabel renders a method code as a metric label.
func MethodLabel(method uint16) string {
	return fmt.Sprintf("0x%04x", method)
}

// ResultLabel renders an exchange outcome as a metric label: "ok" or the
// error kind.
func ResultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return errs.KindOf(err).String()
}
