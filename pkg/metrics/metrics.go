package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job metrics
var (
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_stream_jobs_total",
			Help: "Total number of transcode jobs by terminal status",
		},
		[]string{"status"},
	)

	JobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_stream_job_duration_seconds",
			Help:    "Transcode job duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 2400},
		},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_stream_job_stage_duration_seconds",
			Help:    "Transcode job stage duration in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
		[]string{"stage"},
	)

	RenditionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_stream_renditions_total",
			Help: "Total number of rendition encodes by resolution and status",
		},
		[]string{"resolution", "status"},
	)

	JobsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_stream_jobs_in_flight",
			Help: "Number of transcode jobs currently being processed",
		},
	)
)

// Intake and delivery metrics
var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_stream_uploads_total",
			Help: "Total number of uploads by result code",
		},
		[]string{"code"},
	)

	MediaRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_stream_media_requests_total",
			Help: "Total number of media delivery requests by artifact kind and status",
		},
		[]string{"kind", "status"},
	)
)
