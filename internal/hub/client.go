package hub

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Outbound queue depth per connection
	sendBufferSize = 256
)

// Client is one live websocket connection. It implements Sender: the
// outbound queue is buffered and sends never block — a peer that stops
// draining is dropped rather than allowed to stall dispatch.
type Client struct {
	id     string
	userID uint
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte

	closed int32

	onClose func(userID uint)
	logger  *slog.Logger
}

// ServeWS registers an authenticated connection with the hub and starts
// its read and write pumps. onClose runs once, after the hub unwind,
// when the connection is torn down.
func ServeWS(h *Hub, conn *websocket.Conn, userID uint, onClose func(userID uint)) (*Client, error) {
	c := &Client{
		id:      uuid.New().String(),
		userID:  userID,
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		onClose: onClose,
		logger:  h.logger,
	}

	if err := h.Connect(c, userID); err != nil {
		conn.Close()
		return nil, err
	}

	go c.writePump()
	go c.readPump()

	return c, nil
}

func (c *Client) ID() string { return c.id }

func (c *Client) UserID() uint { return c.userID }

// Send queues data for delivery. It never blocks: when the buffer is
// full the client is considered dead and torn down.
func (c *Client) Send(data []byte) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return ErrClientDisconnected
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Closing the transport ends both pumps; the read pump then
		// unwinds the registration. The queue itself is never closed,
		// so concurrent senders cannot race a close.
		c.logger.Warn("send buffer full, dropping client", "connID", c.id, "userID", c.userID)
		c.close()
		c.conn.Close()
		return ErrClientDisconnected
	}
}

func (c *Client) close() {
	atomic.CompareAndSwapInt32(&c.closed, 0, 1)
}

// readPump consumes requests from the peer and hands them to the hub in
// arrival order. Transport closure ends the loop, which triggers the
// unwind of everything this connection owned.
func (c *Client) readPump() {
	defer func() {
		c.close()
		c.hub.Disconnect(c.id)
		c.conn.Close()
		if c.onClose != nil {
			c.onClose(c.userID)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket read error", "connID", c.id, "userID", c.userID, "error", err)
			} else {
				c.logger.Debug("websocket closed", "connID", c.id, "userID", c.userID)
			}
			return
		}

		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			c.logger.Debug("invalid request", "connID", c.id, "error", err)
			c.hub.notify(c, Notice{Op: OpError, Reason: "invalid request"})
			continue
		}

		c.hub.HandleRequest(c, req)
	}
}

// writePump drains the outbound queue and keeps the connection alive
// with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("websocket write error", "connID", c.id, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
