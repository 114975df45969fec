package realtime

import (
	"sync"

	"github.com/lumenfleet/lumen-core/internal/device"
)

// Table tracks which connection, if any, currently speaks for each device.
// At most one session exists per device: a new authenticated connection for
// a device that already has one supersedes it, and the superseded connection
// is closed so it can never receive further pushes.
type Table struct {
	mu       sync.RWMutex
	sessions map[string]*Client
}

// NewTable creates an empty session table.
func NewTable() *Table {
	return &Table{
		sessions: make(map[string]*Client),
	}
}

// Replace installs c as the session for deviceID and returns the session it
// superseded, or nil if the device had none. The caller is responsible for
// closing the returned session.
func (t *Table) Replace(deviceID string, c *Client) *Client {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.sessions[deviceID]
	t.sessions[deviceID] = c
	return prev
}

// RemoveIf removes the session for deviceID only if c is still the current
// one. A superseded connection tearing down after its replacement has
// registered must not evict the replacement.
func (t *Table) RemoveIf(deviceID string, c *Client) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sessions[deviceID] != c {
		return false
	}
	delete(t.sessions, deviceID)
	return true
}

// Get returns the current session for deviceID, if any.
func (t *Table) Get(deviceID string) (*Client, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	c, ok := t.sessions[deviceID]
	return c, ok
}

// Count returns the number of active sessions.
func (t *Table) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

// PushStatus sends a full state snapshot to the device's session.
// Reports false if the device has no session; disconnected devices simply
// miss the push and resynchronise from the snapshot sent on their next auth.
func (t *Table) PushStatus(deviceID string, snap device.Snapshot) bool {
	c, ok := t.Get(deviceID)
	if !ok {
		return false
	}
	c.trySend(encodeStatus(snap))
	return true
}

// PushEnergy sends a balance-only update to the device's session.
func (t *Table) PushEnergy(deviceID string, energy float64) bool {
	c, ok := t.Get(deviceID)
	if !ok {
		return false
	}
	c.trySend(encodeEnergyUpdate(energy))
	return true
}

// Close shuts down every session. Called during server shutdown so pump
// goroutines exit cleanly.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, c := range t.sessions {
		c.shutdown()
		delete(t.sessions, id)
	}
}
