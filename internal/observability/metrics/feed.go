package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FeedWebSocketConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_websocket_connections_active",
			Help: "Number of active feed WebSocket connections",
		},
	)

	FeedWebSocketDisconnections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_websocket_disconnections_total",
			Help: "Total number of feed WebSocket disconnections",
		},
		[]string{"reason"},
	)

	FeedWebSocketErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_websocket_errors_total",
			Help: "Total number of feed WebSocket errors by type",
		},
		[]string{"error_type"},
	)

	FeedEventsBroadcast = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_events_broadcast_total",
			Help: "Total number of feed events broadcast to subscribers",
		},
	)

	FeedDroppedMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_dropped_messages_total",
			Help: "Total number of feed messages dropped due to slow clients",
		},
	)

	FeedPageRenders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_page_renders_total",
			Help: "Total number of server-rendered pages by page",
		},
		[]string{"page"},
	)
)
