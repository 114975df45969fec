// Package mqtt provides the MQTT client for the Lumen state bus.
//
// The bus is optional: when enabled, every confirmed device state change
// (power commands, device-asserted status, transfer wakes, depletion
// shutdowns) is published retained to lumen/state/{device_id}, so external
// consumers see current fleet state the moment they subscribe.
//
// The client wraps paho.mqtt.golang with:
//   - Connection management and automatic reconnection with backoff
//   - Last Will and Testament on lumen/system/status for crash detection
//   - Payload size validation and publish timeouts
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.DeviceState("bulb-porch")
//	client.PublishRetained(topic, payload)
package mqtt
