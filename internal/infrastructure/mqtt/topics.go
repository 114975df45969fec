package mqtt

import "fmt"

// Topic prefixes for the Lumen state bus.
//
// Device state uses the flat scheme: lumen/state/{device_id}
const (
	// TopicPrefix is the base for all Lumen topics.
	TopicPrefix = "lumen"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "lumen/system"
)

// Topics provides builders for Lumen MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.DeviceState("bulb-porch")
//	// Returns: "lumen/state/bulb-porch"
type Topics struct{}

// DeviceState returns the topic for a device's canonical state.
// Published retained so new subscribers immediately see current state.
//
// Example: lumen/state/bulb-porch
func (Topics) DeviceState(deviceID string) string {
	return fmt.Sprintf("%s/state/%s", TopicPrefix, deviceID)
}

// SystemStatus returns the service status topic (online/offline/LWT).
//
// Example: lumen/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllDeviceStates returns a pattern matching every device state topic.
//
// Pattern: lumen/state/+
func (Topics) AllDeviceStates() string {
	return fmt.Sprintf("%s/state/+", TopicPrefix)
}
