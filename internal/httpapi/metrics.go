package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "langid_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "langid_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	detectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "langid_detections_total",
			Help: "Total number of detections by method and detected language",
		},
		[]string{"method", "language"},
	)

	detectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "langid_detection_duration_seconds",
			Help:    "Time spent inside the detector",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"method"},
	)

	detectionWords = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "langid_detection_words",
			Help:    "Word count of texts submitted for detection",
			Buckets: []float64{10, 25, 50, 100, 250, 1000, 5000, 25000},
		},
	)

	rejectedDetections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "langid_rejected_detections_total",
			Help: "Detection requests rejected before detection",
		},
		[]string{"reason"}, // reason: no_text, too_short, invalid_method, invalid_body, too_large, unsupported_file, unreadable_file
	)

	profilesLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "langid_profiles_loaded",
			Help: "Number of language profiles in the active set",
		},
	)

	profileReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "langid_profile_reloads_total",
			Help: "Profile set reloads",
		},
		[]string{"status"},
	)
)
