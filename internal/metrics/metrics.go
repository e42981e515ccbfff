// Package metrics counts what an audit run did and exports the counters in
// the Prometheus text format for node_exporter's textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
)

// Metrics provides observability for one audit run. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Topics evaluated, by region
	TopicsAudited *prometheus.CounterVec

	// Findings by rule, status and severity label
	Findings *prometheus.CounterVec

	// Checks that could not be evaluated, by rule
	CheckErrors *prometheus.CounterVec

	// Regions whose topic listing failed
	RegionFailures *prometheus.CounterVec

	// Wall time of the whole run
	AuditDuration prometheus.Histogram
}

// New creates a Metrics instance on its own registry so repeated runs in one
// process never collide on registration.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,

		TopicsAudited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dp_sns_topics_audited_total",
			Help: "SNS topics evaluated by the audit, by region",
		}, []string{"region"}),

		Findings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dp_sns_findings_total",
			Help: "Findings emitted by the audit, by rule, status and severity",
		}, []string{"rule", "status", "severity"}),

		CheckErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dp_sns_check_errors_total",
			Help: "Checks that could not be evaluated for a topic, by rule",
		}, []string{"rule"}),

		RegionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dp_sns_region_failures_total",
			Help: "Regions whose topics could not be listed",
		}, []string{"region"}),

		AuditDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dp_sns_audit_duration_seconds",
			Help:    "Histogram of audit run durations.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// IncTopic records one evaluated topic.
func (m *Metrics) IncTopic(region string) {
	if m != nil {
		m.TopicsAudited.WithLabelValues(region).Inc()
	}
}

// IncFinding records one emitted finding.
func (m *Metrics) IncFinding(f models.Finding) {
	if m != nil {
		m.Findings.WithLabelValues(f.RuleID, string(f.Status), string(f.Severity)).Inc()
	}
}

// IncCheckError records one check that could not be evaluated.
func (m *Metrics) IncCheckError(ruleID string) {
	if m != nil {
		m.CheckErrors.WithLabelValues(ruleID).Inc()
	}
}

// IncRegionFailure records a region whose topic listing failed.
func (m *Metrics) IncRegionFailure(region string) {
	if m != nil {
		m.RegionFailures.WithLabelValues(region).Inc()
	}
}

// ObserveDuration records the total run duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m != nil {
		m.AuditDuration.Observe(d.Seconds())
	}
}

// WriteTextfile writes all metrics to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
