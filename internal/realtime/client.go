package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Ping cadence and how long a socket may stay silent before it is
	// considered dead.
	pingInterval = 25 * time.Second
	pongWait     = 60 * time.Second

	writeWait      = 10 * time.Second
	maxMessageSize = 512
	sendBuffer     = 8
)

// Client is one websocket connection. userID is empty for anonymous
// (read-only) sockets.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan Event
	logger *logrus.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, userID string, logger *logrus.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan Event, sendBuffer),
		logger: logger,
	}
}

// readPump drains inbound frames. The server is broadcast-only: the client
// event allow-list is empty, so every data frame is discarded after logging.
// Reading is still required to process pongs and close frames.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && c.logger != nil {
				c.logger.WithError(err).Debug("websocket closed")
			}
			return
		}
		if c.logger != nil {
			c.logger.WithFields(logrus.Fields{
				"user_id": c.userID,
				"size":    len(msg),
			}).Warn("ignoring unexpected client message")
		}
	}
}

// writePump pushes broadcast events and keepalive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			payload, _ := json.Marshal(map[string]string{"event": string(ev)})
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
