package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	PassDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nameres_pass_seconds",
		Help:    "Time spent in a resolution pass.",
		Buckets: prometheus.DefBuckets,
	}, []string{"pass"})

	TreeModules = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nameres_tree_modules_total",
		Help: "Total number of modules in the current module tree.",
	})

	Declarations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nameres_declarations_total",
		Help: "Total number of collected declarations.",
	})

	ImportBindings = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nameres_import_bindings_total",
		Help: "Total number of bound imports after the fixed-point pass.",
	})

	ImportRounds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nameres_import_rounds",
		Help:    "Fixed-point rounds taken by the import pass.",
		Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16},
	})

	DiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nameres_diagnostics_total",
		Help: "Total number of diagnostics emitted, by kind.",
	}, []string{"kind"})

	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nameres_resolutions_total",
		Help: "Total number of reference resolutions, by outcome.",
	}, []string{"outcome"})

	MemoHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nameres_memo_hits_total",
		Help: "Total number of resolutions answered from the memo cache.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nameres_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	StoreSyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nameres_store_sync_seconds",
		Help:    "Latency for persisting a resolution batch.",
		Buckets: prometheus.DefBuckets,
	})
)
