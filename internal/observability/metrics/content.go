package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PostsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "posts_created_total",
			Help: "Total number of posts created",
		},
	)

	PostImagesAttached = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "post_images_attached",
			Help:    "Number of images attached per created post",
			Buckets: []float64{0, 1, 2, 3, 4},
		},
	)

	ProfileUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_updates_total",
			Help: "Total number of profile updates by result",
		},
		[]string{"result"},
	)

	MediaUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_uploads_total",
			Help: "Total number of media uploads by backend and result",
		},
		[]string{"backend", "result"},
	)

	MediaUploadBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_upload_bytes",
			Help:    "Size of uploaded media objects in bytes",
			Buckets: prometheus.ExponentialBuckets(16*1024, 2, 10),
		},
		[]string{"backend"},
	)

	MediaUploadDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_upload_duration_seconds",
			Help:    "Duration of media uploads in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend"},
	)

	MediaRollbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_rollbacks_total",
			Help: "Total number of uploaded objects deleted after a failed request, by result",
		},
		[]string{"result"},
	)
)
