package feed

import (
	"time"

	gorillaWS "github.com/gorilla/websocket"

	"github.com/AlibekovAA/snapfeed/internal/common/constants"
	"github.com/AlibekovAA/snapfeed/internal/common/logger"
	"github.com/AlibekovAA/snapfeed/internal/observability/metrics"
)

// Client is one feed subscriber. The connection is write-mostly: inbound
// frames are read only to process control messages and detect closure.
type Client struct {
	hub      *Hub
	conn     *gorillaWS.Conn
	userID   string
	username string
	send     chan []byte
	log      *logger.Logger
}

func NewClient(hub *Hub, conn *gorillaWS.Conn, userID, username string, log *logger.Logger) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		userID:   userID,
		username: username,
		send:     make(chan []byte, constants.FeedSendBufSize),
		log:      log,
	}
}

func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(constants.FeedMaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(constants.FeedPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(constants.FeedPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if gorillaWS.IsUnexpectedCloseError(err, gorillaWS.CloseGoingAway, gorillaWS.CloseAbnormalClosure) {
				metrics.FeedWebSocketErrors.WithLabelValues("read").Inc()
				c.log.Warnf("feed websocket read error user_id=%s username=%s: %v", c.userID, c.username, err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(constants.FeedPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(constants.FeedWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(gorillaWS.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(gorillaWS.TextMessage, message); err != nil {
				metrics.FeedWebSocketErrors.WithLabelValues("write").Inc()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(constants.FeedWriteWait))
			if err := c.conn.WriteMessage(gorillaWS.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
