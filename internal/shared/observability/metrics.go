package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	BuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csslint_builds_total",
		Help: "Total number of build passes by trigger kind and outcome.",
	}, []string{"kind", "outcome"})

	BuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "csslint_build_seconds",
		Help:    "Time spent on a single build pass.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	FilesAnalyzedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "csslint_files_analyzed_total",
		Help: "Total number of style sheets handed to the analysis engine.",
	})

	FilesSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csslint_files_skipped_total",
		Help: "Total number of candidate files skipped, by reason.",
	}, []string{"reason"})

	MarkersWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "csslint_markers_written_total",
		Help: "Total number of markers created from analysis results.",
	})

	MarkerErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csslint_marker_errors_total",
		Help: "Total number of failed marker store operations.",
	}, []string{"operation"})

	EngineConstructionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "csslint_engine_constructions_total",
		Help: "Total number of analysis engine instances built.",
	})

	EngineInvalidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "csslint_engine_invalidations_total",
		Help: "Total number of engine invalidations caused by preference changes.",
	})

	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "csslint_analysis_seconds",
		Help:    "Time spent inside the analysis engine for one file.",
		Buckets: prometheus.DefBuckets,
	})

	DroppedRecordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "csslint_dropped_records_total",
		Help: "Total number of engine records dropped for missing line, column or message.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "csslint_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	ThrottledBuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "csslint_throttled_builds_total",
		Help: "Total number of watcher-triggered builds that waited on the rate limiter.",
	})
)
