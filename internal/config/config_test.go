package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadPartyConfig(t *testing.T) {
	path := writeTempConfig(t, `
party:
  id: 1
peers:
  - id: 0
    listen: false
    address: "10.0.0.1:9000"
    seed: "`+strings.Repeat("aa", 32)+`"
  - id: 2
    listen: true
    address: "0.0.0.0:9001"
    seed: "`+strings.Repeat("bb", 32)+`"
logging:
  level: info
`)

	cfg, err := LoadPartyConfig(path)
	if err != nil {
		t.Fatalf("LoadPartyConfig: %v", err)
	}
	if cfg.Party.ID != 1 {
		t.Fatalf("expected party id 1, got %d", cfg.Party.ID)
	}
	peers := cfg.PeerAddrs()
	if len(peers) != 2 || peers[0].ID != 0 || peers[1].Listen != true {
		t.Fatalf("unexpected peer list: %+v", peers)
	}

	seed, err := cfg.SeedFor(0)
	if err != nil {
		t.Fatalf("SeedFor(0): %v", err)
	}
	if seed[0] != 0xaa {
		t.Fatalf("unexpected seed for peer 0: %x", seed)
	}
	if _, err := cfg.SeedFor(99); err == nil {
		t.Fatal("expected error for unknown peer id")
	}
}

func TestLoadPartyConfigRejectsBadID(t *testing.T) {
	path := writeTempConfig(t, `
party:
  id: 7
peers:
  - id: 0
    address: "a"
  - id: 1
    address: "b"
`)
	if _, err := LoadPartyConfig(path); err == nil {
		t.Fatal("expected error for out-of-range party id")
	}
}

func TestLoadPartyConfigRequiresTwoPeers(t *testing.T) {
	path := writeTempConfig(t, `
party:
  id: 0
peers:
  - id: 1
    address: "a"
`)
	if _, err := LoadPartyConfig(path); err == nil {
		t.Fatal("expected error for wrong peer count")
	}
}

func TestLoadDeviceConfig(t *testing.T) {
	path := writeTempConfig(t, `
device:
  user_id: "user-123"
  state_db_path: "/var/lib/mozaik/device.db"
telemetry:
  enabled: true
  pub_endpoint: "tcp://127.0.0.1:5556"
`)

	cfg, err := LoadDeviceConfig(path)
	if err != nil {
		t.Fatalf("LoadDeviceConfig: %v", err)
	}
	if cfg.Device.UserID != "user-123" {
		t.Fatalf("unexpected user id: %q", cfg.Device.UserID)
	}
	if !cfg.Telemetry.Enabled || cfg.Telemetry.PubEndpoint != "tcp://127.0.0.1:5556" {
		t.Fatalf("unexpected telemetry config: %+v", cfg.Telemetry)
	}
}

func TestLoadDeviceConfigMintsUserIDWhenMissing(t *testing.T) {
	path := writeTempConfig(t, `
device:
  state_db_path: "/tmp/x.db"
`)
	cfg, err := LoadDeviceConfig(path)
	if err != nil {
		t.Fatalf("LoadDeviceConfig: %v", err)
	}
	if cfg.Device.UserID == "" {
		t.Fatal("expected a generated user_id")
	}
}

func TestLoadDeviceConfigRequiresStateDBPath(t *testing.T) {
	path := writeTempConfig(t, `
device:
  user_id: "user-1"
`)
	if _, err := LoadDeviceConfig(path); err == nil {
		t.Fatal("expected error for missing state_db_path")
	}
}
