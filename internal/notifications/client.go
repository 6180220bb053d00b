package notifications

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"warden/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// Feeds are server-to-client; inbound frames are only control traffic.
	maxInboundFrame = 1024

	sendBuffer = 256
)

// Conn is the part of a websocket connection a Client drives.
// *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client is one feed subscriber. Messages are queued on Send and written by
// Serve; when the queue is full they are counted and the subscriber is told
// how many it missed on the next successful write.
type Client struct {
	Hub    *Hub
	Conn   Conn
	UserID uint
	Send   chan []byte

	dropped   atomic.Int64
	closeOnce sync.Once
}

func NewClient(hub *Hub, conn Conn, userID uint) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, sendBuffer),
	}
}

// Serve runs the connection until the peer leaves or the hub shuts down,
// then unregisters the client.
func (c *Client) Serve() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writeLoop()
	}()
	c.readLoop()
	c.Hub.UnregisterClient(c)
	c.closeSend()
	<-done
}

// readLoop discards data frames; it exists to process pongs and notice a
// closed connection.
func (c *Client) readLoop() {
	c.Conn.SetReadLimit(maxInboundFrame)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("feed read ended", "hub", c.Hub.Name(), "user_id", c.UserID, "err", err)
			}
			return
		}
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := c.write(message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(message []byte) error {
	if n := c.dropped.Swap(0); n > 0 {
		notice := fmt.Sprintf(`{"type":"messages_dropped","payload":{"count":%d}}`, n)
		if err := c.Conn.WriteMessage(websocket.TextMessage, []byte(notice)); err != nil {
			return err
		}
	}
	return c.Conn.WriteMessage(websocket.TextMessage, message)
}

// TrySend queues message without blocking.
func (c *Client) TrySend(message []byte) {
	defer func() {
		// Send was closed by Shutdown.
		if recover() != nil {
			observability.WebSocketBackpressureDrops.WithLabelValues(c.Hub.Name(), "closed").Inc()
		}
	}()

	select {
	case c.Send <- message:
	default:
		c.dropped.Add(1)
		observability.WebSocketBackpressureDrops.WithLabelValues(c.Hub.Name(), "full").Inc()
	}
}

// Dropped returns how many messages are waiting to be reported as missed.
func (c *Client) Dropped() int64 {
	return c.dropped.Load()
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.Send) })
}
