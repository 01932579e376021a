package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metric collectors / Contient tous les collecteurs de métriques Prometheus
type Metrics struct {
	// Archival metrics
	ArchiveOperations *prometheus.CounterVec // Archival operations by entity and status (success/partial/failure)
	SweepRuns         prometheus.Counter     // Retention sweep executions
	SweepPurgedRows   prometheus.Counter     // Archive rows permanently removed by the sweep

	// Authentication metrics
	LoginAttempts *prometheus.CounterVec // Login attempts by status (success/failure/throttled)

	// System metrics
	DatabaseConnections prometheus.Gauge     // Current database connection pool size
	BackgroundTasks     *prometheus.GaugeVec // Status of background tasks (running/stopped)
}

// NewMetrics initializes Metrics instance / Initialise une instance Metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	m := &Metrics{
		ArchiveOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "carehome_archive_operations_total",
				Help: "Total number of archival operations by entity and status (success, partial, failure)",
			},
			[]string{"entity", "status"},
		),

		SweepRuns: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "carehome_retention_sweep_runs_total",
				Help: "Total number of retention sweep executions",
			},
		),

		SweepPurgedRows: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "carehome_retention_sweep_purged_rows_total",
				Help: "Total number of expired archive rows permanently removed",
			},
		),

		LoginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "carehome_login_attempts_total",
				Help: "Total number of login attempts by status (success, failure, throttled)",
			},
			[]string{"status"},
		),

		DatabaseConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "carehome_database_connections",
				Help: "Current number of open database connections",
			},
		),

		BackgroundTasks: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "carehome_background_tasks",
				Help: "Status of background tasks (1 = running, 0 = stopped)",
			},
			[]string{"task"},
		),
	}

	return m
}

// RecordArchival increments the archival counter / Incrémente le compteur d'archivage
func (m *Metrics) RecordArchival(entity, status string) {
	m.ArchiveOperations.WithLabelValues(entity, status).Inc()
}

// RecordSweep records one sweep run and its purged row count / Enregistre une purge et son nombre de lignes
func (m *Metrics) RecordSweep(purged int64) {
	m.SweepRuns.Inc()
	m.SweepPurgedRows.Add(float64(purged))
}

// RecordLoginAttempt increments the login counter / Incrémente le compteur de connexions
func (m *Metrics) RecordLoginAttempt(status string) {
	m.LoginAttempts.WithLabelValues(status).Inc()
}

// UpdateDatabaseConnections updates the connection gauge / Met à jour la jauge de connexions
func (m *Metrics) UpdateDatabaseConnections(count int) {
	m.DatabaseConnections.Set(float64(count))
}

// SetBackgroundTaskStatus flags a background task as running or stopped / Indique l'état d'une tâche de fond
func (m *Metrics) SetBackgroundTaskStatus(task string, running bool) {
	value := 0.0
	if running {
		value = 1.0
	}
	m.BackgroundTasks.WithLabelValues(task).Set(value)
}
