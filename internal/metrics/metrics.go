// Package metrics provides Prometheus metrics for DraftStore
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for DraftStore
type Metrics struct {
	// Engine operation metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Version metrics
	VersionsCreatedTotal *prometheus.CounterVec
	AutosavesSkippedTotal prometheus.Counter
	VersionsTotal         prometheus.Gauge

	// Branch metrics
	BranchesTotal       prometheus.Gauge
	BranchSwitchesTotal prometheus.Counter

	// Merge metrics
	ConflictsDetectedTotal prometheus.Counter
	MergesCompletedTotal   prometheus.Counter
	OpenMergeRequests      prometheus.Gauge

	// Persistence metrics
	SnapshotSavesTotal       prometheus.Counter
	PersistenceFailuresTotal prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics against reg.
// Pass a private registry in tests to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	m := &Metrics{}

	m.OperationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draftstore_operations_total",
			Help: "Total number of engine operations",
		},
		[]string{"operation", "status"},
	)

	m.OperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "draftstore_operation_duration_seconds",
			Help:    "Duration of engine operations in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	m.VersionsCreatedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draftstore_versions_created_total",
			Help: "Total number of versions created",
		},
		[]string{"kind"}, // manual, autosave, merge, revert
	)

	m.AutosavesSkippedTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "draftstore_autosaves_skipped_total",
			Help: "Autosaves skipped because content similarity exceeded the threshold",
		},
	)

	m.VersionsTotal = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "draftstore_versions_total",
			Help: "Total number of stored versions",
		},
	)

	m.BranchesTotal = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "draftstore_branches_total",
			Help: "Total number of branches",
		},
	)

	m.BranchSwitchesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "draftstore_branch_switches_total",
			Help: "Total number of branch switches",
		},
	)

	m.ConflictsDetectedTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "draftstore_conflicts_detected_total",
			Help: "Total number of merge conflicts detected",
		},
	)

	m.MergesCompletedTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "draftstore_merges_completed_total",
			Help: "Total number of completed branch merges",
		},
	)

	m.OpenMergeRequests = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "draftstore_open_merge_requests",
			Help: "Number of merge requests currently open",
		},
	)

	m.SnapshotSavesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "draftstore_snapshot_saves_total",
			Help: "Total number of snapshot save attempts",
		},
	)

	m.PersistenceFailuresTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "draftstore_persistence_failures_total",
			Help: "Total number of snapshot save failures (non-fatal)",
		},
	)

	return m
}

// RecordOperation records an engine operation with its status
func (m *Metrics) RecordOperation(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.OperationsTotal.WithLabelValues(operation, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordVersionCreated records a created version by kind
func (m *Metrics) RecordVersionCreated(kind string) {
	if m == nil {
		return
	}
	m.VersionsCreatedTotal.WithLabelValues(kind).Inc()
}

// RecordAutosaveSkipped records an autosave short-circuit
func (m *Metrics) RecordAutosaveSkipped() {
	if m == nil {
		return
	}
	m.AutosavesSkippedTotal.Inc()
}

// RecordConflicts records detected merge conflicts
func (m *Metrics) RecordConflicts(count int) {
	if m == nil {
		return
	}
	m.ConflictsDetectedTotal.Add(float64(count))
}

// RecordMergeCompleted records a completed merge
func (m *Metrics) RecordMergeCompleted() {
	if m == nil {
		return
	}
	m.MergesCompletedTotal.Inc()
}

// RecordBranchSwitch records a branch switch
func (m *Metrics) RecordBranchSwitch() {
	if m == nil {
		return
	}
	m.BranchSwitchesTotal.Inc()
}

// RecordSnapshotSave records a snapshot save attempt
func (m *Metrics) RecordSnapshotSave(err error) {
	if m == nil {
		return
	}
	m.SnapshotSavesTotal.Inc()
	if err != nil {
		m.PersistenceFailuresTotal.Inc()
	}
}

// UpdateStoreStats updates store size gauges
func (m *Metrics) UpdateStoreStats(versionCount, branchCount, openMergeRequests int) {
	if m == nil {
		return
	}
	m.VersionsTotal.Set(float64(versionCount))
	m.BranchesTotal.Set(float64(branchCount))
	m.OpenMergeRequests.Set(float64(openMergeRequests))
}
