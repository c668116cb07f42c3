package pricing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	quotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_quotes_total",
		Help: "Fare quotes by vehicle category and pricing source",
	}, []string{"vehicle_category", "source"})

	quoteFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_quote_failures_total",
		Help: "Fare quotes that could not be produced, by reason",
	}, []string{"reason"})

	peakAppliedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricing_peak_applied_total",
		Help: "Quotes that carried a peak multiplier above 1",
	})

	quoteTotalAmount = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricing_quote_total_amount",
		Help:    "Distribution of quoted totals in the configured currency",
		Buckets: []float64{5, 10, 20, 35, 50, 75, 100, 150, 250, 500},
	}, []string{"vehicle_category"})

	configWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_config_writes_total",
		Help: "Configuration writes by section and outcome",
	}, []string{"section", "outcome"})

	snapshotVersion = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pricing_snapshot_version",
		Help: "Version of the configuration snapshot currently served",
	})
)
