// Package metrics provides the Prometheus metrics registry for the insights engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RefreshesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zed_insights",
		Name:      "refreshes_total",
		Help:      "Total number of dataset refreshes by outcome",
	}, []string{"status"})
	SourceFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zed_insights",
		Name:      "source_fetches_total",
		Help:      "Record table reads by outcome (cache_hit, fetched, fallback, error)",
	}, []string{"outcome"})
	CacheInvalidationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "zed_insights",
		Name:      "cache_invalidations_total",
		Help:      "Total number of snapshot cache invalidations",
	})
)

// Gauge metrics
var (
	DatasetHorses = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "zed_insights",
		Name:      "dataset_horses",
		Help:      "Horse profiles in the published dataset",
	})
	DatasetRaces = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "zed_insights",
		Name:      "dataset_races",
		Help:      "Races in the published dataset",
	})
	DatasetEquipmentSets = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "zed_insights",
		Name:      "dataset_equipment_sets",
		Help:      "Distinct equipment sets in the published dataset",
	})
	DroppedRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "zed_insights",
		Name:      "dropped_records",
		Help:      "Records without race_id or horse_id in the last refresh",
	})
	LastRefreshTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "zed_insights",
		Name:      "last_refresh_timestamp_seconds",
		Help:      "Unix time of the last successful refresh",
	})
)

// Histogram metrics
var (
	RefreshDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "zed_insights",
		Name:      "refresh_duration_seconds",
		Help:      "Duration of dataset refreshes in seconds",
		Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(RefreshesTotal)
		registry.MustRegister(SourceFetchesTotal)
		registry.MustRegister(CacheInvalidationsTotal)

		registry.MustRegister(DatasetHorses)
		registry.MustRegister(DatasetRaces)
		registry.MustRegister(DatasetEquipmentSets)
		registry.MustRegister(DroppedRecords)
		registry.MustRegister(LastRefreshTimestamp)

		registry.MustRegister(RefreshDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordRefresh records a refresh outcome and its duration.
func RecordRefresh(status string, durationSeconds float64) {
	RefreshesTotal.WithLabelValues(status).Inc()
	RefreshDuration.Observe(durationSeconds)
}

// RecordSourceFetch records how a record table read was served.
func RecordSourceFetch(outcome string) {
	SourceFetchesTotal.WithLabelValues(outcome).Inc()
}

// RecordCacheInvalidation records a snapshot cache clear.
func RecordCacheInvalidation() {
	CacheInvalidationsTotal.Inc()
}

// UpdateDataset updates the published dataset gauges.
func UpdateDataset(horses, races, sets, dropped int, refreshedAtUnix float64) {
	DatasetHorses.Set(float64(horses))
	DatasetRaces.Set(float64(races))
	DatasetEquipmentSets.Set(float64(sets))
	DroppedRecords.Set(float64(dropped))
	LastRefreshTimestamp.Set(refreshedAtUnix)
}
