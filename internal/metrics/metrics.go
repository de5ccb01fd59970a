package metrics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"farmshops/internal/db"
)

var (
	photosByStatusDesc = prometheus.NewDesc(
		"farmshops_photos_total",
		"Photo count by moderation status",
		[]string{"status"},
		nil,
	)

	moderationDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farmshops_moderation_decisions_total",
			Help: "Moderation transitions by outcome",
		},
		[]string{"outcome"}, // approved, rejected, evicted
	)
)

// PhotoCollector is a custom Prometheus collector that reads photo status
// counts from the database on each scrape. The pending count is the
// moderation queue depth.
type PhotoCollector struct {
	db *db.DB
}

// Describe sends the metric descriptor to the channel.
func (c *PhotoCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- photosByStatusDesc
}

// Collect queries the database for photo counts and emits them as gauges.
func (c *PhotoCollector) Collect(ch chan<- prometheus.Metric) {
	counts, err := c.db.CountPhotosByStatus(context.Background())
	if err != nil {
		slog.Error("failed to collect photo status metrics", "error", err)
		return
	}
	for status, count := range counts {
		ch <- prometheus.MustNewConstMetric(
			photosByStatusDesc,
			prometheus.GaugeValue,
			float64(count),
			status,
		)
	}
}

var initOnce sync.Once

// Init registers the collectors. Must be called once at startup.
func Init(database *db.DB) {
	initOnce.Do(func() {
		prometheus.MustRegister(&PhotoCollector{db: database})
		prometheus.MustRegister(moderationDecisions)
	})
}

// RecordDecision counts a moderation outcome.
func RecordDecision(outcome string) {
	moderationDecisions.WithLabelValues(outcome).Inc()
}
