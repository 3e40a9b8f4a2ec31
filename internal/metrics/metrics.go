// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics counts batch outcomes in a per-run Prometheus registry
// that can be written as a node-exporter textfile.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/datasheet-engine/pkg/types"
)

// Batch holds the collectors of one batch run. A nil *Batch ignores every
// observation.
type Batch struct {
	reg      *prometheus.Registry
	jobs     *prometheus.CounterVec
	duration prometheus.Histogram
	warnings *prometheus.CounterVec
}

// NewBatch registers the batch collectors in a fresh registry.
func NewBatch() (*Batch, error) {
	b := &Batch{
		reg: prometheus.NewRegistry(),
		jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "datasheet",
				Name:      "jobs_total",
				Help:      "Batch jobs by final status.",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "datasheet",
			Name:      "job_duration_seconds",
			Help:      "Time spent processing one source document.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		warnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "datasheet",
				Name:      "warnings_total",
				Help:      "Extraction warnings by kind.",
			},
			[]string{"kind"},
		),
	}
	for _, c := range []prometheus.Collector{b.jobs, b.duration, b.warnings} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}
	return b, nil
}

// Registry exposes the underlying registry.
func (b *Batch) Registry() *prometheus.Registry {
	if b == nil {
		return nil
	}
	return b.reg
}

// ObserveJob counts a finished job and its duration.
func (b *Batch) ObserveJob(status types.JobStatus, d time.Duration) {
	if b == nil {
		return
	}
	b.jobs.WithLabelValues(string(status)).Inc()
	if status != types.JobSkipped {
		b.duration.Observe(d.Seconds())
	}
}

// ObserveWarnings counts extraction warnings by kind.
func (b *Batch) ObserveWarnings(ws []types.Warning) {
	if b == nil {
		return
	}
	for _, w := range ws {
		b.warnings.WithLabelValues(string(w.Kind)).Inc()
	}
}

// WriteTextfile writes the registry in the text exposition format,
// creating the parent directory when needed.
func (b *Batch) WriteTextfile(path string) error {
	if b == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, b.reg); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
