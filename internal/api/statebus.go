package api

import (
	"encoding/json"
	"time"

	"github.com/lumenfleet/lumen-core/internal/device"
	"github.com/lumenfleet/lumen-core/internal/infrastructure/logging"
	"github.com/lumenfleet/lumen-core/internal/infrastructure/mqtt"
)

// StateBus mirrors device state changes onto the MQTT state bus.
//
// It satisfies the StatePublisher interfaces of the realtime and energy
// packages, keeping the generic MQTT client free of any device knowledge.
// Publishes are retained, so dashboards joining late immediately see the
// current state of every bulb.
type StateBus struct {
	client *mqtt.Client
	logger *logging.Logger
}

// NewStateBus creates a state bus over a connected MQTT client.
func NewStateBus(client *mqtt.Client, logger *logging.Logger) *StateBus {
	return &StateBus{
		client: client,
		logger: logger,
	}
}

// statePayload is the JSON body published to lumen/state/{device_id}.
type statePayload struct {
	DeviceID  string  `json:"device_id"`
	IsOn      bool    `json:"isOn"`
	Energy    float64 `json:"energy"`
	Timestamp string  `json:"timestamp"`
}

// PublishState publishes one device's state, retained. Failures are logged
// and dropped; the bus is observational and never blocks a state change.
func (b *StateBus) PublishState(deviceID string, snap device.Snapshot) {
	payload, err := json.Marshal(statePayload{
		DeviceID:  deviceID,
		IsOn:      snap.IsOn,
		Energy:    snap.Energy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	topic := mqtt.Topics{}.DeviceState(deviceID)
	if err := b.client.PublishRetained(topic, payload); err != nil {
		b.logger.Warn("state bus publish failed", "topic", topic, "error", err)
	}
}
