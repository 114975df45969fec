package config

import (
	"os"
	"path/filepath"
	"testing"
)

// validJWTSecret meets the 32-character minimum requirement.
const validJWTSecret = "test-secret-key-at-least-32-chars!"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
site:
  id: "test-site"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
devices:
  path: "/tmp/devices.yaml"
api:
  host: "0.0.0.0"
  port: 8080
energy:
  decay_interval: 1
presence:
  online_threshold: 30
security:
  jwt:
    secret: "` + validJWTSecret + `"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-site" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-site")
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.Energy.DecayInterval != 1 {
		t.Errorf("Energy.DecayInterval = %d, want 1", cfg.Energy.DecayInterval)
	}
	if cfg.Presence.OnlineThreshold != 30 {
		t.Errorf("Presence.OnlineThreshold = %d, want 30", cfg.Presence.OnlineThreshold)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	content := `
security:
  jwt:
    secret: "` + validJWTSecret + `"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("API.Port default = %d, want 8080", cfg.API.Port)
	}
	if cfg.Energy.DecayInterval != 60 {
		t.Errorf("Energy.DecayInterval default = %d, want 60", cfg.Energy.DecayInterval)
	}
	if cfg.Presence.OnlineThreshold != 90 {
		t.Errorf("Presence.OnlineThreshold default = %d, want 90", cfg.Presence.OnlineThreshold)
	}
	if cfg.WebSocket.Path != "/ws" {
		t.Errorf("WebSocket.Path default = %q, want /ws", cfg.WebSocket.Path)
	}
	if cfg.MQTT.Enabled {
		t.Error("MQTT.Enabled default = true, want false")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
security:
  jwt:
    secret: "` + validJWTSecret + `"
`
	t.Setenv("LUMEN_DATABASE_PATH", "/tmp/override.db")
	t.Setenv("LUMEN_API_PORT", "9090")

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Security.JWT.Secret = validJWTSecret
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"empty site id", func(c *Config) { c.Site.ID = "" }, true},
		{"empty database path", func(c *Config) { c.Database.Path = "" }, true},
		{"empty devices path", func(c *Config) { c.Devices.Path = "" }, true},
		{"port zero", func(c *Config) { c.API.Port = 0 }, true},
		{"port too large", func(c *Config) { c.API.Port = 70000 }, true},
		{"zero decay interval", func(c *Config) { c.Energy.DecayInterval = 0 }, true},
		{"negative decay interval", func(c *Config) { c.Energy.DecayInterval = -5 }, true},
		{"zero online threshold", func(c *Config) { c.Presence.OnlineThreshold = 0 }, true},
		{"missing jwt secret", func(c *Config) { c.Security.JWT.Secret = "" }, true},
		{"short jwt secret", func(c *Config) { c.Security.JWT.Secret = "short" }, true},
		{"zero token ttl", func(c *Config) { c.Security.JWT.AccessTokenTTL = 0 }, true},
		{"mqtt enabled without host", func(c *Config) {
			c.MQTT.Enabled = true
			c.MQTT.Broker.Host = ""
		}, true},
		{"mqtt invalid qos", func(c *Config) {
			c.MQTT.Enabled = true
			c.MQTT.QoS = 3
		}, true},
		{"influxdb enabled without url", func(c *Config) {
			c.InfluxDB.Enabled = true
			c.InfluxDB.Token = "tok"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
