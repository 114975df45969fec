package realtime

import (
	"encoding/json"

	"github.com/lumenfleet/lumen-core/internal/device"
)

// Inbound message types (device -> server).
const (
	TypeAuth         = "auth"
	TypeHeartbeat    = "heartbeat"
	TypeDeviceStatus = "device-status"
)

// Outbound message types (server -> device).
const (
	TypeStatus       = "status"
	TypeEnergyUpdate = "energy-update"
	TypeError        = "error"
)

// inboundMessage is the envelope for frames received from a device.
// Fields beyond Type are populated per message type.
type inboundMessage struct {
	Type string `json:"type"`

	// auth
	ID  string `json:"id,omitempty"`
	Key string `json:"key,omitempty"`

	// device-status. Pointer distinguishes "absent" from "false".
	IsOn *bool `json:"isOn,omitempty"`
}

// statusMessage is a full state snapshot push.
type statusMessage struct {
	Type   string  `json:"type"`
	IsOn   bool    `json:"isOn"`
	Energy float64 `json:"energy"`
}

// energyUpdateMessage is a balance-only push.
type energyUpdateMessage struct {
	Type   string  `json:"type"`
	Energy float64 `json:"energy"`
}

// errorMessage precedes connection termination on auth failure.
type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func encodeStatus(snap device.Snapshot) []byte {
	data, _ := json.Marshal(statusMessage{Type: TypeStatus, IsOn: snap.IsOn, Energy: snap.Energy}) //nolint:errcheck // fixed struct cannot fail
	return data
}

func encodeEnergyUpdate(energy float64) []byte {
	data, _ := json.Marshal(energyUpdateMessage{Type: TypeEnergyUpdate, Energy: energy}) //nolint:errcheck // fixed struct cannot fail
	return data
}

func encodeError(msg string) []byte {
	data, _ := json.Marshal(errorMessage{Type: TypeError, Message: msg}) //nolint:errcheck // fixed struct cannot fail
	return data
}
