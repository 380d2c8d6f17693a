// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/apexstudio/scenedoctor/pkg/rules"
)

// Metrics exposes scan and fix instrumentation.
type Metrics struct {
	scansTotal   prometheus.Counter
	scanDuration prometheus.Histogram
	findings     *prometheus.GaugeVec
	fixesTotal   *prometheus.CounterVec
	fixDuration  prometheus.Histogram
}

// NewMetrics registers the engine collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		scansTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "scenedoctor",
			Name:      "scans_total",
			Help:      "Validation scans run.",
		}),
		scanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scenedoctor",
			Name:      "scan_duration_seconds",
			Help:      "Wall time of validation scans.",
			Buckets:   prometheus.DefBuckets,
		}),
		findings: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "scenedoctor",
			Name:      "findings",
			Help:      "Findings reported by the most recent scan.",
		}, []string{"severity"}),
		fixesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scenedoctor",
			Name:      "fixes_total",
			Help:      "Repairs applied, by category.",
		}, []string{"category"}),
		fixDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scenedoctor",
			Name:      "fix_duration_seconds",
			Help:      "Wall time of auto-fix runs.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// ObserveScan records one completed scan.
func (m *Metrics) ObserveScan(d time.Duration, findings []rules.Finding) {
	m.scansTotal.Inc()
	m.scanDuration.Observe(d.Seconds())
	errors, warnings := CountBySeverity(findings)
	m.findings.WithLabelValues(string(rules.SeverityError)).Set(float64(errors))
	m.findings.WithLabelValues(string(rules.SeverityWarning)).Set(float64(warnings))
}

// ObserveFix records one completed auto-fix run.
func (m *Metrics) ObserveFix(d time.Duration, counts map[string]int) {
	m.fixDuration.Observe(d.Seconds())
	for category, n := range counts {
		if n > 0 {
			m.fixesTotal.WithLabelValues(category).Add(float64(n))
		}
	}
}
