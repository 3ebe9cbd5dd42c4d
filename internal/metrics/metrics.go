// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package metrics keeps Prometheus metrics of benchmark runs and writes
// them as text snapshots.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/irifrance/hwbench/aggregate"
)

const namespace = "hwbench"

// Type Metrics holds the collectors of one process on a private
// registry.
type Metrics struct {
	Registry *prometheus.Registry

	jobs        *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	solved      *prometheus.GaugeVec
	uniqueWins  *prometheus.GaugeVec
	totalTime   *prometheus.GaugeVec
	instances   prometheus.Gauge
	noSolvers   prometheus.Gauge
}

// New creates metrics registered on a new registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "jobs_total",
			Help:      "Jobs by deployment and state (done locally or submitted)."},
			[]string{"deployment", "state"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "job_duration_seconds",
			Help:      "Wall time of local jobs.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 10)},
			[]string{"deployment"}),
		solved: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "recap",
			Name:      "solved",
			Help:      "Solved instances by deployment and result."},
			[]string{"deployment", "result"}),
		uniqueWins: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "recap",
			Name:      "unique_wins",
			Help:      "Instances solved by this deployment only."},
			[]string{"deployment"}),
		totalTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "recap",
			Name:      "total_time_seconds",
			Help:      "Sum of clamped runtimes."},
			[]string{"deployment"}),
		instances: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "recap",
			Name:      "instances",
			Help:      "Instances shared by all deployments."}),
		noSolvers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "recap",
			Name:      "unsolved_instances",
			Help:      "Instances no deployment solved."}),
	}
	m.Registry.MustRegister(m.jobs, m.jobDuration, m.solved, m.uniqueWins,
		m.totalTime, m.instances, m.noSolvers)
	return m
}

// JobDone records a local job of deployment which ran for d.
func (m *Metrics) JobDone(deployment string, d time.Duration) {
	m.jobs.WithLabelValues(deployment, "done").Inc()
	m.jobDuration.WithLabelValues(deployment).Observe(d.Seconds())
}

// JobSubmitted records a job of deployment handed to the scheduler.
func (m *Metrics) JobSubmitted(deployment string) {
	m.jobs.WithLabelValues(deployment, "submitted").Inc()
}

// Observe sets the recap gauges from rc.
func (m *Metrics) Observe(rc *aggregate.Recap) {
	m.instances.Set(float64(rc.Instances))
	m.noSolvers.Set(float64(len(rc.NoSolvers)))
	for _, run := range rc.Runs {
		m.solved.WithLabelValues(run.Name, "all").Set(float64(len(run.Solved)))
		m.solved.WithLabelValues(run.Name, "sat").Set(float64(len(run.Sat)))
		m.solved.WithLabelValues(run.Name, "unsat").Set(float64(len(run.Unsat)))
		m.uniqueWins.WithLabelValues(run.Name).Set(float64(len(run.UniqueWins)))
		m.totalTime.WithLabelValues(run.Name).Set(run.TotalTime)
	}
}

// WriteFile writes a text format snapshot of m to path.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
