package device

import "time"

// Device represents one provisioned bulb unit tracked by the registry.
//
// Identity and credentials are fixed at provisioning; power state, energy
// balance, and last-seen mutate over the process lifetime. The record itself
// is never destroyed while the process runs.
type Device struct {
	// Identity
	ID   string `json:"id"`
	Name string `json:"name"`

	// SharedSecret is the pre-provisioned credential presented by the device
	// over the realtime channel and the control surface. Never serialised.
	SharedSecret string `json:"-"`

	// Power state. May be set by server command (power on/off, transfer
	// wake, decay shutdown) or asserted by the device itself via a
	// device-status report — the device is the authority on its confirmed
	// physical state.
	On bool `json:"is_on"`

	// EnergyBalance is the current energy quantity. Invariant: never
	// observed negative — clamped to exactly zero on depletion.
	EnergyBalance float64 `json:"energy_balance"`

	// ConsumptionRate is the energy debited per decay tick while On.
	// Constant per device, configured at provisioning.
	ConsumptionRate float64 `json:"consumption_rate"`

	// LastSeen is the time of the most recent inbound realtime message
	// from this device. Nil until the device first authenticates.
	// Control-surface calls do not refresh it; presence is driven only
	// by the realtime channel.
	LastSeen *time.Time `json:"last_seen,omitempty"`
}

// Clone returns an independent copy of the Device.
// The LastSeen pointer is duplicated so mutations to the copy never
// reach the registry's canonical record.
func (d *Device) Clone() *Device {
	if d == nil {
		return nil
	}
	cpy := *d
	if d.LastSeen != nil {
		ts := *d.LastSeen
		cpy.LastSeen = &ts
	}
	return &cpy
}

// Snapshot is the wire representation of a device's pushed state.
// It is what a session receives on authentication, transfer credit,
// and decay shutdown.
type Snapshot struct {
	IsOn   bool    `json:"isOn"`
	Energy float64 `json:"energy"`
}

// SnapshotOf builds a Snapshot from a device record.
func SnapshotOf(d *Device) Snapshot {
	return Snapshot{IsOn: d.On, Energy: d.EnergyBalance}
}
