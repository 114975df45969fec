package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/lumenfleet/lumen-core/internal/device"
	"github.com/lumenfleet/lumen-core/internal/infrastructure/config"
)

func testHandler() (*Handler, *device.Store, *Table) {
	store := device.NewStore([]device.Device{
		{ID: "bulb-a", SharedSecret: "secret-a", EnergyBalance: 500, ConsumptionRate: 5},
		{ID: "bulb-b", SharedSecret: "secret-b", On: true, EnergyBalance: 100, ConsumptionRate: 2},
	})
	table := NewTable()
	h := NewHandler(store, table, config.WebSocketConfig{MaxMessageSize: 4096, PingInterval: 30, PongTimeout: 60})
	return h, store, table
}

// testClient builds a client without a network connection; frames queued for
// the device are read straight from the send buffer.
func testClient(h *Handler) *Client {
	return &Client{
		handler: h,
		send:    make(chan []byte, 16),
	}
}

func recvFrame(t *testing.T, c *Client) map[string]any {
	t.Helper()
	select {
	case data, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed, expected a frame")
		}
		var frame map[string]any
		if err := json.Unmarshal(data, &frame); err != nil {
			t.Fatalf("unmarshal frame: %v", err)
		}
		return frame
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return nil
	}
}

// recvClosed drains remaining frames and asserts the channel was closed.
func recvClosed(t *testing.T, c *Client) {
	t.Helper()
	for {
		select {
		case _, ok := <-c.send:
			if !ok {
				return
			}
		case <-time.After(time.Second):
			t.Fatal("send channel not closed")
		}
	}
}

func authFrame(id, key string) []byte {
	data, _ := json.Marshal(map[string]string{"type": TypeAuth, "id": id, "key": key})
	return data
}

func TestAuth_Success(t *testing.T) {
	h, store, table := testHandler()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	c := testClient(h)
	h.handleMessage(c, authFrame("bulb-a", "secret-a"))

	if c.DeviceID() != "bulb-a" {
		t.Errorf("DeviceID = %q, want bulb-a", c.DeviceID())
	}
	if got, ok := table.Get("bulb-a"); !ok || got != c {
		t.Error("session not registered in table")
	}

	frame := recvFrame(t, c)
	if frame["type"] != TypeStatus {
		t.Errorf("type = %v, want status", frame["type"])
	}
	if frame["isOn"] != false || frame["energy"] != 500.0 {
		t.Errorf("snapshot = isOn:%v energy:%v, want isOn:false energy:500", frame["isOn"], frame["energy"])
	}

	d, _ := store.Get("bulb-a")
	if d.LastSeen == nil || !d.LastSeen.Equal(fixed) {
		t.Errorf("LastSeen = %v, want %v", d.LastSeen, fixed)
	}
}

func TestAuth_WrongKey(t *testing.T) {
	h, store, table := testHandler()

	c := testClient(h)
	h.handleMessage(c, authFrame("bulb-a", "wrong"))

	frame := recvFrame(t, c)
	if frame["type"] != TypeError {
		t.Errorf("type = %v, want error", frame["type"])
	}
	if frame["message"] == "" {
		t.Error("error frame missing message")
	}
	recvClosed(t, c)

	if c.DeviceID() != "" {
		t.Error("failed auth must not bind the connection")
	}
	if table.Count() != 0 {
		t.Error("failed auth must not register a session")
	}
	d, _ := store.Get("bulb-a")
	if d.LastSeen != nil {
		t.Error("failed auth must not touch last-seen")
	}
}

func TestAuth_UnknownDevice(t *testing.T) {
	h, _, table := testHandler()

	c := testClient(h)
	h.handleMessage(c, authFrame("ghost", "secret-a"))

	if frame := recvFrame(t, c); frame["type"] != TypeError {
		t.Errorf("type = %v, want error", frame["type"])
	}
	recvClosed(t, c)
	if table.Count() != 0 {
		t.Error("unknown device must not register a session")
	}
}

func TestAuth_SupersedesExistingSession(t *testing.T) {
	h, _, table := testHandler()

	first := testClient(h)
	h.handleMessage(first, authFrame("bulb-a", "secret-a"))
	recvFrame(t, first) // snapshot

	second := testClient(h)
	h.handleMessage(second, authFrame("bulb-a", "secret-a"))
	recvFrame(t, second) // snapshot

	if got, _ := table.Get("bulb-a"); got != second {
		t.Error("newest connection must win the session")
	}
	recvClosed(t, first)

	// The superseded connection's late teardown must not evict the winner.
	h.handleClose(first)
	if got, ok := table.Get("bulb-a"); !ok || got != second {
		t.Error("superseded teardown evicted the current session")
	}

	// Pushes reach only the current session.
	if !table.PushEnergy("bulb-a", 42) {
		t.Fatal("push to connected device failed")
	}
	if frame := recvFrame(t, second); frame["energy"] != 42.0 {
		t.Errorf("energy = %v, want 42", frame["energy"])
	}
}

func TestHeartbeat(t *testing.T) {
	h, store, _ := testHandler()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return base }

	c := testClient(h)

	// Before auth: ignored, no state change.
	h.handleMessage(c, []byte(`{"type":"heartbeat"}`))
	d, _ := store.Get("bulb-a")
	if d.LastSeen != nil {
		t.Fatal("pre-auth heartbeat refreshed last-seen")
	}

	h.handleMessage(c, authFrame("bulb-a", "secret-a"))
	recvFrame(t, c)

	later := base.Add(30 * time.Second)
	h.now = func() time.Time { return later }
	h.handleMessage(c, []byte(`{"type":"heartbeat"}`))

	d, _ = store.Get("bulb-a")
	if d.LastSeen == nil || !d.LastSeen.Equal(later) {
		t.Errorf("LastSeen = %v, want %v", d.LastSeen, later)
	}
}

func TestDeviceStatus(t *testing.T) {
	h, store, _ := testHandler()

	c := testClient(h)
	h.handleMessage(c, authFrame("bulb-a", "secret-a"))
	recvFrame(t, c)

	h.handleMessage(c, []byte(`{"type":"device-status","isOn":true}`))

	d, _ := store.Get("bulb-a")
	if !d.On {
		t.Error("device-status did not apply power state")
	}

	h.handleMessage(c, []byte(`{"type":"device-status","isOn":false}`))
	d, _ = store.Get("bulb-a")
	if d.On {
		t.Error("device-status did not clear power state")
	}
}

func TestDeviceStatus_MissingIsOnIgnored(t *testing.T) {
	h, store, _ := testHandler()

	c := testClient(h)
	h.handleMessage(c, authFrame("bulb-b", "secret-b"))
	recvFrame(t, c)

	h.handleMessage(c, []byte(`{"type":"device-status"}`))

	d, _ := store.Get("bulb-b")
	if !d.On {
		t.Error("device-status without isOn must not change state")
	}
}

type capturePublisher struct {
	deviceID string
	snap     device.Snapshot
	calls    int
}

func (p *capturePublisher) PublishState(deviceID string, snap device.Snapshot) {
	p.deviceID = deviceID
	p.snap = snap
	p.calls++
}

func TestDeviceStatus_PublishesToStateBus(t *testing.T) {
	h, _, _ := testHandler()
	pub := &capturePublisher{}
	h.SetStatePublisher(pub)

	c := testClient(h)
	h.handleMessage(c, authFrame("bulb-a", "secret-a"))
	recvFrame(t, c)

	h.handleMessage(c, []byte(`{"type":"device-status","isOn":true}`))

	if pub.calls != 1 {
		t.Fatalf("publish calls = %d, want 1", pub.calls)
	}
	if pub.deviceID != "bulb-a" || !pub.snap.IsOn || pub.snap.Energy != 500 {
		t.Errorf("published %q %+v", pub.deviceID, pub.snap)
	}
}

func TestMalformedFramesIgnored(t *testing.T) {
	h, _, table := testHandler()

	c := testClient(h)
	h.handleMessage(c, []byte(`{not json`))
	h.handleMessage(c, []byte(`{"type":"warp-drive"}`))

	select {
	case data, ok := <-c.send:
		if ok {
			t.Fatalf("unexpected frame %s for malformed input", data)
		}
		t.Fatal("connection closed for malformed input")
	default:
	}

	// Connection still usable afterwards.
	h.handleMessage(c, authFrame("bulb-a", "secret-a"))
	if frame := recvFrame(t, c); frame["type"] != TypeStatus {
		t.Errorf("type = %v, want status after recovery", frame["type"])
	}
	if table.Count() != 1 {
		t.Errorf("sessions = %d, want 1", table.Count())
	}
}

func TestHandleClose_RemovesCurrentSession(t *testing.T) {
	h, _, table := testHandler()

	c := testClient(h)
	h.handleMessage(c, authFrame("bulb-a", "secret-a"))
	recvFrame(t, c)

	h.handleClose(c)
	if table.Count() != 0 {
		t.Error("teardown did not remove the session")
	}
	if table.PushStatus("bulb-a", device.Snapshot{}) {
		t.Error("push delivered after teardown")
	}
}
