package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PromMetricsRecorder records per-operation durations and outcomes in
// Prometheus collectors.
type PromMetricsRecorder struct {
	durations *prometheus.HistogramVec
	results   *prometheus.CounterVec
}

// NewPromMetricsRecorder constructs a recorder and registers its collectors
// with reg.
func NewPromMetricsRecorder(reg prometheus.Registerer) (*PromMetricsRecorder, error) {
	r := &PromMetricsRecorder{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fabtrack",
			Name:      "operation_duration_seconds",
			Help:      "Duration of progress service operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fabtrack",
			Name:      "operation_results_total",
			Help:      "Progress service operation outcomes by status.",
		}, []string{"operation", "status"}),
	}
	for _, c := range []prometheus.Collector{r.durations, r.results} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Observe implements MetricsRecorder.
func (r *PromMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
	r.results.WithLabelValues(operation, status).Inc()
}

// KPICollector exposes the active snapshot's global KPIs as gauges so scrape
// targets can chart fabrication progress without calling the HTTP API.
type KPICollector struct {
	service *Service

	totalMass     *prometheus.Desc
	completedMass *prometheus.Desc
	progressPct   *prometheus.Desc
	snapshotRows  *prometheus.Desc
}

// NewKPICollector constructs a collector reading from the given service.
func NewKPICollector(service *Service) *KPICollector {
	return &KPICollector{
		service:       service,
		totalMass:     prometheus.NewDesc("fabtrack_total_mass_kg", "Total mass of all line items in the active snapshot.", nil, nil),
		completedMass: prometheus.NewDesc("fabtrack_completed_mass_kg", "Step-weighted completed mass of the active snapshot.", nil, nil),
		progressPct:   prometheus.NewDesc("fabtrack_progress_pct", "Global weighted completion percentage.", nil, nil),
		snapshotRows:  prometheus.NewDesc("fabtrack_snapshot_rows", "Number of line items in the active snapshot.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *KPICollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalMass
	ch <- c.completedMass
	ch <- c.progressPct
	ch <- c.snapshotRows
}

// Collect implements prometheus.Collector.
func (c *KPICollector) Collect(ch chan<- prometheus.Metric) {
	summary := c.service.Summary(context.Background())
	rows := c.service.Snapshot().Rows()
	ch <- prometheus.MustNewConstMetric(c.totalMass, prometheus.GaugeValue, summary.TotalMassKg)
	ch <- prometheus.MustNewConstMetric(c.completedMass, prometheus.GaugeValue, summary.CompletedMassKg)
	ch <- prometheus.MustNewConstMetric(c.progressPct, prometheus.GaugeValue, summary.Pct)
	ch <- prometheus.MustNewConstMetric(c.snapshotRows, prometheus.GaugeValue, float64(rows))
}
