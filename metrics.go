// Prometheus collectors, registered with the default registry.
package shelf

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loadFilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shelf_load_files_total",
		Help: "Record files processed by loads, by outcome",
	}, []string{"outcome"})

	loadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shelf_load_duration_seconds",
		Help:    "Time to scan and load a record directory",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shelf_mutations_total",
		Help: "Store mutations by operation and status",
	}, []string{"op", "status"})
)
