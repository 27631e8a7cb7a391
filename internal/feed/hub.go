package feed

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/AlibekovAA/snapfeed/internal/common/constants"
	"github.com/AlibekovAA/snapfeed/internal/common/logger"
	"github.com/AlibekovAA/snapfeed/internal/observability/metrics"
	"github.com/AlibekovAA/snapfeed/internal/post/domain"
	"github.com/AlibekovAA/snapfeed/internal/post/dto"
)

const (
	TypePostCreated = "post_created"
	TypeShutdown    = "shutdown"
)

type Event struct {
	Type string    `json:"type"`
	Post *dto.Post `json:"post,omitempty"`
}

// Hub fans newly created posts out to every connected feed client. A user
// may hold several connections at once, one per open tab.
type Hub struct {
	clients     map[*Client]struct{}
	register    chan *Client
	unregister  chan *Client
	broadcast   chan []byte
	clientCount atomic.Int64
	log         *logger.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	done        chan struct{}
}

func NewHub(log *logger.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, constants.FeedSendBufSize),
		log:        log,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Register hands client to the hub. It reports false once the hub stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) ClientCount() int64 {
	return h.clientCount.Load()
}

// Publish never blocks the caller; events are dropped when the hub is
// saturated or stopped.
func (h *Hub) Publish(item domain.FeedItem) {
	post := dto.FromFeedItem(item)
	payload, err := json.Marshal(Event{Type: TypePostCreated, Post: &post})
	if err != nil {
		metrics.FeedWebSocketErrors.WithLabelValues("marshal").Inc()
		h.log.WithFields(h.ctx, logger.Fields{
			"post_id": item.ID,
			"action":  "feed_marshal_failed",
		}).Errorf("feed event marshal failed: %v", err)
		return
	}

	select {
	case <-h.ctx.Done():
		return
	default:
	}

	select {
	case h.broadcast <- payload:
	default:
		metrics.FeedDroppedMessages.Inc()
		h.log.WithFields(h.ctx, logger.Fields{
			"post_id": item.ID,
			"action":  "feed_broadcast_dropped",
		}).Warn("feed broadcast queue full")
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.cancel()
			h.shutdown()
			return

		case <-h.ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			total := h.clientCount.Add(1)
			metrics.FeedWebSocketConnectionsActive.Inc()
			h.log.WithFields(h.ctx, logger.Fields{
				"user_id":  client.userID,
				"username": client.username,
				"total":    total,
				"action":   "feed_ws_register",
			}).Info("feed client registered")

		case client := <-h.unregister:
			h.remove(client, "client_closed")

		case payload := <-h.broadcast:
			h.fanOut(payload)
		}
	}
}

func (h *Hub) fanOut(payload []byte) {
	metrics.FeedEventsBroadcast.Inc()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			metrics.FeedDroppedMessages.Inc()
			h.log.WithFields(h.ctx, logger.Fields{
				"user_id": client.userID,
				"action":  "feed_ws_slow_client",
			}).Warn("feed client too slow, disconnecting")
			h.remove(client, "slow_client")
		}
	}
}

func (h *Hub) remove(client *Client, reason string) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	total := h.clientCount.Add(-1)
	metrics.FeedWebSocketConnectionsActive.Dec()
	metrics.FeedWebSocketDisconnections.WithLabelValues(reason).Inc()
	h.log.WithFields(h.ctx, logger.Fields{
		"user_id": client.userID,
		"total":   total,
		"reason":  reason,
		"action":  "feed_ws_unregister",
	}).Info("feed client unregistered")
}

func (h *Hub) shutdown() {
	shutdownMsg, err := json.Marshal(Event{Type: TypeShutdown})
	if err != nil {
		shutdownMsg = nil
	}

	count := len(h.clients)
	for client := range h.clients {
		if shutdownMsg != nil {
			select {
			case client.send <- shutdownMsg:
			default:
			}
		}
		h.remove(client, "shutdown")
	}

	h.log.WithFields(context.Background(), logger.Fields{
		"clients": count,
		"action":  "feed_hub_shutdown",
	}).Info("feed hub shutdown completed")
}

// Stop ends Run and waits for connected clients to be released.
func (h *Hub) Stop() {
	h.cancel()
	select {
	case <-h.done:
	case <-time.After(constants.DrainTimeout):
		h.log.Warn("feed hub did not stop in time")
	}
}
