package mqtt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lumenfleet/lumen-core/internal/infrastructure/config"
)

func testConfig() config.MQTTConfig {
	cfg := config.MQTTConfig{}
	cfg.Broker.Host = "localhost"
	cfg.Broker.Port = 1883
	cfg.Broker.ClientID = "lumen-core-test"
	cfg.QoS = 1
	cfg.Reconnect.InitialDelay = 1
	cfg.Reconnect.MaxDelay = 10
	return cfg
}

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"device state", topics.DeviceState("bulb-porch"), "lumen/state/bulb-porch"},
		{"system status", topics.SystemStatus(), "lumen/system/status"},
		{"all device states", topics.AllDeviceStates(), "lumen/state/+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestStatusPayloads(t *testing.T) {
	online := buildOnlinePayload("lumen-core")
	if !strings.Contains(online, `"status":"online"`) || !strings.Contains(online, `"client_id":"lumen-core"`) {
		t.Errorf("online payload = %s", online)
	}

	offline := buildOfflinePayload("lumen-core")
	if !strings.Contains(offline, `"status":"offline"`) || !strings.Contains(offline, `"reason":"graceful_shutdown"`) {
		t.Errorf("offline payload = %s", offline)
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "lumen"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://localhost:1883" {
		t.Errorf("broker URL = %v, want tcp://localhost:1883", opts.Servers)
	}
	if opts.ClientID != "lumen-core-test" {
		t.Errorf("client id = %q", opts.ClientID)
	}
	if opts.Username != "lumen" || opts.Password != "secret" {
		t.Error("credentials not applied")
	}
	if !opts.AutoReconnect {
		t.Error("auto-reconnect disabled")
	}
}

func TestBuildClientOptions_TLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true

	opts := buildClientOptions(cfg)
	if len(opts.Servers) != 1 || opts.Servers[0].Scheme != "ssl" {
		t.Errorf("TLS broker scheme = %v, want ssl", opts.Servers)
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLS config missing or weak minimum version")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, "lumen-core-test")

	if !opts.WillEnabled {
		t.Fatal("LWT not enabled")
	}
	if opts.WillTopic != "lumen/system/status" {
		t.Errorf("will topic = %q", opts.WillTopic)
	}
	if !strings.Contains(string(opts.WillPayload), `"reason":"unexpected_disconnect"`) {
		t.Errorf("will payload = %s", opts.WillPayload)
	}
	if !opts.WillRetained {
		t.Error("will not retained")
	}
}

func TestPublishValidation(t *testing.T) {
	c := &Client{cfg: testConfig()}

	if err := c.Publish("", []byte("x"), 1, false); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := c.Publish("lumen/state/x", []byte("x"), 3, false); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("bad qos error = %v, want ErrInvalidQoS", err)
	}
	if err := c.Publish("lumen/state/x", []byte("x"), 1, false); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected error = %v, want ErrNotConnected", err)
	}

	huge := make([]byte, maxPayloadSize+1)
	if err := c.Publish("lumen/state/x", huge, 1, false); !errors.Is(err, ErrPublishFailed) {
		t.Errorf("oversize error = %v, want ErrPublishFailed", err)
	}
}

func TestCloseNil(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on unconnected client error = %v", err)
	}
}

func TestHealthCheckDisconnected(t *testing.T) {
	c := &Client{cfg: testConfig()}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestHealthCheckCancelled(t *testing.T) {
	c := &Client{cfg: testConfig()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestIsConnected_InitialState(t *testing.T) {
	c := &Client{}
	if c.IsConnected() {
		t.Error("zero-value client reports connected")
	}
}
