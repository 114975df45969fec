package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lumenfleet/lumen-core/internal/device"
	"github.com/lumenfleet/lumen-core/internal/infrastructure/config"
)

// Logger defines the logging interface used by the Handler.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// StatePublisher receives device state changes for fan-out beyond the
// device's own connection, such as the MQTT state bus.
type StatePublisher interface {
	PublishState(deviceID string, snap device.Snapshot)
}

// Handler implements the device-facing realtime protocol.
//
// Each connection moves through three states: unauthenticated on upgrade,
// authenticated after a valid auth frame, closed on teardown. Heartbeat and
// device-status frames are only honoured while authenticated; before auth
// they are logged and dropped without side effects.
type Handler struct {
	store    *device.Store
	sessions *Table
	cfg      config.WebSocketConfig
	logger   Logger
	statePub StatePublisher

	now func() time.Time
}

// NewHandler creates a protocol handler bound to the registry and session
// table.
func NewHandler(store *device.Store, sessions *Table, cfg config.WebSocketConfig) *Handler {
	return &Handler{
		store:    store,
		sessions: sessions,
		cfg:      cfg,
		logger:   noopLogger{},
		now:      time.Now,
	}
}

// SetLogger sets the logger for the handler.
func (h *Handler) SetLogger(logger Logger) {
	h.logger = logger
}

// SetStatePublisher wires an optional state bus. Device-asserted status
// changes are mirrored onto it.
func (h *Handler) SetStatePublisher(p StatePublisher) {
	h.statePub = p
}

// HandleConnection takes ownership of an upgraded connection and starts its
// read and write pumps. The connection is unauthenticated until the device
// sends a valid auth frame.
func (h *Handler) HandleConnection(conn *websocket.Conn) {
	c := &Client{
		handler: h,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
	}
	go c.writePump(h.cfg)
	go c.readPump(h.cfg)
}

// handleMessage dispatches one inbound frame. Malformed frames and unknown
// types are logged and dropped; they never terminate the connection or
// produce an error frame.
func (h *Handler) handleMessage(c *Client, data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.logger.Debug("dropping malformed frame", "device_id", c.DeviceID(), "error", err)
		return
	}

	switch msg.Type {
	case TypeAuth:
		h.handleAuth(c, msg)
	case TypeHeartbeat:
		h.handleHeartbeat(c)
	case TypeDeviceStatus:
		h.handleDeviceStatus(c, msg)
	default:
		h.logger.Debug("dropping frame with unknown type", "type", msg.Type, "device_id", c.DeviceID())
	}
}

// handleAuth validates the presented credentials. On success the connection
// is bound to the device, any existing session for that device is superseded
// and closed, last-seen is refreshed, and a full snapshot is pushed. On
// failure an error frame is sent and the connection is closed; registry
// state is untouched.
func (h *Handler) handleAuth(c *Client, msg inboundMessage) {
	if !h.store.CheckCredentials(msg.ID, msg.Key) {
		h.logger.Warn("realtime auth failed", "device_id", msg.ID)
		c.sendError("invalid device credentials")
		c.shutdown()
		return
	}

	now := h.now()
	after, err := h.store.Mutate(msg.ID, func(d *device.Device) {
		d.LastSeen = &now
	})
	if err != nil {
		// Credentials checked above, so the device exists; unreachable
		// short of a registry bug.
		h.logger.Error("auth mutate failed", "device_id", msg.ID, "error", err)
		c.sendError("internal error")
		c.shutdown()
		return
	}

	// A connection re-authenticating as a different device gives up its
	// previous binding first.
	if old := c.DeviceID(); old != "" && old != msg.ID {
		h.sessions.RemoveIf(old, c)
	}
	c.setDeviceID(msg.ID)

	if prev := h.sessions.Replace(msg.ID, c); prev != nil && prev != c {
		h.logger.Info("session superseded", "device_id", msg.ID)
		prev.shutdown()
	}

	c.sendStatus(device.SnapshotOf(after))
	h.logger.Info("device authenticated", "device_id", msg.ID, "sessions", h.sessions.Count())
}

// handleHeartbeat refreshes last-seen for an authenticated connection.
func (h *Handler) handleHeartbeat(c *Client) {
	id := c.DeviceID()
	if id == "" {
		h.logger.Debug("heartbeat before auth ignored")
		return
	}

	now := h.now()
	if _, err := h.store.Mutate(id, func(d *device.Device) {
		d.LastSeen = &now
	}); err != nil {
		h.logger.Error("heartbeat mutate failed", "device_id", id, "error", err)
	}
}

// handleDeviceStatus applies a device-asserted power state. The device is
// the authority on its confirmed physical state, so the report overwrites
// the registry's power flag unconditionally.
func (h *Handler) handleDeviceStatus(c *Client, msg inboundMessage) {
	id := c.DeviceID()
	if id == "" {
		h.logger.Debug("device-status before auth ignored")
		return
	}
	if msg.IsOn == nil {
		h.logger.Debug("dropping device-status without isOn", "device_id", id)
		return
	}

	now := h.now()
	after, err := h.store.Mutate(id, func(d *device.Device) {
		d.On = *msg.IsOn
		d.LastSeen = &now
	})
	if err != nil {
		h.logger.Error("device-status mutate failed", "device_id", id, "error", err)
		return
	}

	h.logger.Debug("device status applied", "device_id", id, "is_on", *msg.IsOn)
	if h.statePub != nil {
		h.statePub.PublishState(id, device.SnapshotOf(after))
	}
}

// handleClose deregisters the session on connection teardown. A superseded
// connection closing late must not evict its replacement, hence RemoveIf.
func (h *Handler) handleClose(c *Client) {
	id := c.DeviceID()
	if id == "" {
		return
	}
	if h.sessions.RemoveIf(id, c) {
		h.logger.Info("device disconnected", "device_id", id, "sessions", h.sessions.Count())
	}
}
