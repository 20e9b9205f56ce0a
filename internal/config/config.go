// Package config loads the YAML configuration files for the
// mozaik-party and mozaik-device command-line entry points.
package config

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/mozaik-sbo/libmozaik-go/internal/transport"
)

// PartyConfig is the configuration file structure for mozaik-party.
type PartyConfig struct {
	Party struct {
		ID int `yaml:"id"`
	} `yaml:"party"`

	Peers []struct {
		ID      int    `yaml:"id"`
		Listen  bool   `yaml:"listen"`
		Address string `yaml:"address"`
		// Seed is the 256-bit correlated-randomness seed shared with
		// this peer, hex-encoded. Provisioning it out of band is the
		// operator's responsibility.
		Seed string `yaml:"seed"`
	} `yaml:"peers"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// DeviceConfig is the configuration file structure for mozaik-device.
type DeviceConfig struct {
	Device struct {
		UserID      string `yaml:"user_id"`
		StateDBPath string `yaml:"state_db_path"`
	} `yaml:"device"`

	Telemetry struct {
		Enabled     bool   `yaml:"enabled"`
		PubEndpoint string `yaml:"pub_endpoint"`
	} `yaml:"telemetry"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadPartyConfig reads and parses a mozaik-party YAML configuration file.
func LoadPartyConfig(path string) (*PartyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read party config: %w", err)
	}
	var cfg PartyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse party config: %w", err)
	}
	if cfg.Party.ID < 0 || cfg.Party.ID > 2 {
		return nil, fmt.Errorf("config: party.id must be 0, 1, or 2, got %d", cfg.Party.ID)
	}
	if len(cfg.Peers) != 2 {
		return nil, fmt.Errorf("config: expected exactly 2 peer entries, got %d", len(cfg.Peers))
	}
	return &cfg, nil
}

// PeerAddrs converts the configured peer list into transport.PeerAddr values.
func (c *PartyConfig) PeerAddrs() []transport.PeerAddr {
	peers := make([]transport.PeerAddr, 0, len(c.Peers))
	for _, p := range c.Peers {
		peers = append(peers, transport.PeerAddr{ID: p.ID, Listen: p.Listen, Address: p.Address})
	}
	return peers
}

// SeedFor decodes the correlated-randomness seed configured for the
// peer with the given id.
func (c *PartyConfig) SeedFor(peerID int) ([32]byte, error) {
	var seed [32]byte
	for _, p := range c.Peers {
		if p.ID != peerID {
			continue
		}
		decoded, err := hex.DecodeString(p.Seed)
		if err != nil {
			return seed, fmt.Errorf("config: peer %d seed is not valid hex: %w", peerID, err)
		}
		if len(decoded) != 32 {
			return seed, fmt.Errorf("config: peer %d seed must be 32 bytes, got %d", peerID, len(decoded))
		}
		copy(seed[:], decoded)
		return seed, nil
	}
	return seed, fmt.Errorf("config: no peer entry for id %d", peerID)
}

// LoadDeviceConfig reads and parses a mozaik-device YAML configuration file.
func LoadDeviceConfig(path string) (*DeviceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read device config: %w", err)
	}
	var cfg DeviceConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse device config: %w", err)
	}
	if cfg.Device.UserID == "" {
		// No user id configured: mint one so the device can still
		// establish a stable identity for state persistence and
		// telemetry across a single run.
		cfg.Device.UserID = uuid.NewString()
	}
	if cfg.Device.StateDBPath == "" {
		return nil, fmt.Errorf("config: device.state_db_path is required")
	}
	return &cfg, nil
}
