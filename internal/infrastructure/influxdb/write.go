package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// RecordBalance writes a device's current energy balance.
//
// Called after every decay tick and transfer commit, so the series tracks
// the full drain/top-up curve of each device. The write is non-blocking;
// data is batched and sent asynchronously.
func (c *Client) RecordBalance(deviceID string, balance float64, on bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"energy_balance",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"balance": balance,
			"is_on":   on,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// RecordTransfer writes one committed energy transfer.
//
// Tags carry both endpoints so flow between any device pair can be
// aggregated; the amount is the field.
func (c *Client) RecordTransfer(from, to string, amount float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"energy_transfer",
		map[string]string{
			"from_device": from,
			"to_device":   to,
		},
		map[string]interface{}{
			"amount": amount,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
