package influxdb

import (
	"errors"
	"testing"

	"github.com/lumenfleet/lumen-core/internal/infrastructure/config"
)

func TestConnect_Disabled(t *testing.T) {
	cfg := config.InfluxDBConfig{Enabled: false}

	if _, err := Connect(cfg); !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect(disabled) error = %v, want ErrDisabled", err)
	}
}

func TestConnect_InvalidURL(t *testing.T) {
	cfg := config.InfluxDBConfig{
		Enabled: true,
		URL:     "http://127.0.0.1:1", // nothing listens here
		Token:   "test-token",
		Org:     "lumen",
		Bucket:  "energy",
	}

	if _, err := Connect(cfg); !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect(unreachable) error = %v, want ErrConnectionFailed", err)
	}
}

func TestClose_Nil(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on zero-value client error = %v", err)
	}
}

func TestIsConnected_InitialState(t *testing.T) {
	c := &Client{}
	if c.IsConnected() {
		t.Error("zero-value client reports connected")
	}
}

func TestRecordBalance_DisconnectedNoop(t *testing.T) {
	// Disconnected clients drop writes instead of panicking on a nil API.
	c := &Client{}
	c.RecordBalance("bulb-a", 42, true)
	c.RecordTransfer("bulb-a", "bulb-b", 10)
	c.WritePoint("energy_balance", nil, map[string]interface{}{"balance": 1.0})
}

func TestFlush_DisconnectedNoop(t *testing.T) {
	c := &Client{}
	c.Flush()
}
