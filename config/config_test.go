package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `fleet:
  size: 5
  seed: 42
selector:
  distance_max: 40
tracker:
  dispatch_delay: "500ms"
  speed_kmh: 60
places:
  endpoint: "https://maps.example.com/place/nearbysearch"
  api_key: "places-key"
  radius_m: 8000
directions:
  endpoint: "https://maps.example.com/directions"
  api_key: "dir-key"
weather:
  api_key: "owm-key"
ai:
  enabled: true
  endpoint: "https://llm.example.com/v1/chat/completions"
  api_key: "llm-key"
  model: "gemini-2.0-flash"
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  client_id: "tracker"
  topic_prefix: "ambulance"
  use_tls: false
metrics:
  prometheus_enabled: true
  prometheus_port: ":2112"
history:
  backend: "memory"
api:
  addr: ":8080"
  token: "secret"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"fleet.size", cfg.Fleet.Size, 5},
		{"fleet.seed", cfg.Fleet.Seed, int64(42)},
		{"selector.distance_max", cfg.Selector.DistanceMax, 40.0},
		{"selector.equipment_max default", cfg.Selector.EquipmentMax, 35.0},
		{"tracker.dispatch_delay", cfg.Tracker.DispatchDelay, 500 * time.Millisecond},
		{"tracker.speed_kmh", cfg.Tracker.SpeedKMH, 60.0},
		{"tracker.route_refresh default", cfg.Tracker.RouteRefreshTicks, 30},
		{"places.endpoint", cfg.Places.Endpoint, "https://maps.example.com/place/nearbysearch"},
		{"places.radius_m", cfg.Places.RadiusM, 8000},
		{"directions.api_key", cfg.Directions.APIKey, "dir-key"},
		{"weather.endpoint default", cfg.Weather.Endpoint, "https://api.openweathermap.org/data/2.5/weather"},
		{"ai.enabled", cfg.AI.Enabled, true},
		{"ai.model", cfg.AI.Model, "gemini-2.0-flash"},
		{"mqtt.broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt.client_id", cfg.MQTT.ClientID, "tracker"},
		{"metrics.prometheus_port", cfg.Metrics.PrometheusPort, ":2112"},
		{"history.backend", cfg.History.Backend, "memory"},
		{"api.addr", cfg.API.Addr, ":8080"},
		{"api.token", cfg.API.Token, "secret"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := `{"mqtt": {"broker": "tcp://file:1883"}, "history": {"backend": "memory"}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SR_MQTT__BROKER", "tcp://env:1883")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.MQTT.Broker != "tcp://env:1883" {
		t.Errorf("env override ignored: %s", cfg.MQTT.Broker)
	}
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	if _, err := Load("config.toml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLoadRejectsBadHistoryBackend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("history:\n  backend: \"redis\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
