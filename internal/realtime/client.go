package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lumenfleet/lumen-core/internal/device"
	"github.com/lumenfleet/lumen-core/internal/infrastructure/config"
)

// sendBufferSize is the per-session outbound message buffer size.
const sendBufferSize = 256

// Client represents one device connection. A connection starts
// unauthenticated (deviceID empty); a successful auth frame binds it to a
// device and registers it in the session table.
type Client struct {
	handler *Handler
	conn    *websocket.Conn
	send    chan []byte

	closeOnce sync.Once

	mu       sync.RWMutex
	deviceID string
}

// DeviceID returns the device this connection is bound to, or "" while
// unauthenticated.
func (c *Client) DeviceID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.deviceID
}

func (c *Client) setDeviceID(id string) {
	c.mu.Lock()
	c.deviceID = id
	c.mu.Unlock()
}

// shutdown closes the send channel exactly once. writePump drains any
// buffered frames (an error frame queued just before shutdown still reaches
// the device), sends a close message, and closes the connection.
func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// trySend attempts to queue data for the write pump.
// It silently handles closed channels (session superseded or shutting down)
// and full buffers (slow device).
func (c *Client) trySend(data []byte) {
	defer func() {
		recover() //nolint:errcheck // Absorb send-on-closed-channel panic
	}()

	select {
	case c.send <- data:
	default:
		// Device buffer full, skip
	}
}

func (c *Client) sendStatus(snap device.Snapshot) {
	c.trySend(encodeStatus(snap))
}

func (c *Client) sendError(message string) {
	c.trySend(encodeError(message))
}

// readPump reads frames from the connection and dispatches them to the
// protocol handler. It owns connection teardown: on exit the session is
// deregistered and the send channel closed.
func (c *Client) readPump(cfg config.WebSocketConfig) {
	defer func() {
		c.handler.handleClose(c)
		c.shutdown()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	pingInterval := time.Duration(cfg.PingInterval) * time.Second
	pongWait := time.Duration(cfg.PongTimeout) * time.Second
	//nolint:errcheck // Best-effort deadline on connection setup
	c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.handler.logger.Warn("websocket read error", "device_id", c.DeviceID(), "error", err)
			} else {
				c.handler.logger.Debug("websocket closed", "device_id", c.DeviceID(), "error", err)
			}
			return
		}
		// Any frame resets the read deadline; heartbeats keep the connection
		// alive even if the device firmware ignores protocol-level pings.
		//nolint:errcheck // Best-effort deadline reset
		c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
		c.handler.handleMessage(c, message)
	}
}

// writePump writes queued frames to the connection and sends periodic pings.
func (c *Client) writePump(cfg config.WebSocketConfig) {
	pingInterval := time.Duration(cfg.PingInterval) * time.Second
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	pongWait := time.Duration(cfg.PongTimeout) * time.Second

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// Session superseded or table shutting down
				//nolint:errcheck // Best-effort close message
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			//nolint:errcheck // Best-effort deadline; write error caught below
			c.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // Best-effort deadline; ping error caught below
			c.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
