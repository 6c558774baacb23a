// Package config loads and persists the appliance configuration: built-in
// defaults overlaid by an optional defaults file, overlaid by the user
// file. Changes made through the web UI are written back to the user file.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default file names, resolved relative to the working directory.
const (
	UserFile    = "config.yml"
	DefaultFile = "default_config.yml"
)

// Config holds every tunable of the appliance.
type Config struct {
	DisplayMode         string `yaml:"display_mode"`                  // "black" or "white" theme
	FullRefreshInterval int    `yaml:"display_full_refresh_interval"` // Partial refreshes between full ones
	NetworkMode         string `yaml:"network_mode"`                  // Preferred mode at boot (AP or CLIENT)
	APSSID              string `yaml:"ap_ssid"`
	APPass              string `yaml:"ap_pass"`
	APIP                string `yaml:"ap_ip"`
	APInterface         string `yaml:"ap_interface"`
	APMonitor           bool   `yaml:"ap_monitor"` // Sniff AP clients while in AP mode
	BleedingPath        string `yaml:"bleeding_path"`
	ToolExtraArgs       string `yaml:"tool_extra_args"` // Extra argv for the tool, shell-style quoting
	AttackTimeout       int    `yaml:"attack_timeout"`  // Seconds
	ScanTimeout         int    `yaml:"scan_timeout"`    // Seconds
	ScanInterval        int    `yaml:"scan_interval"`   // Seconds between auto-scans, 0 disables
	ListenAddr          string `yaml:"listen_addr"`
	DebugMode           bool   `yaml:"debug_mode"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		DisplayMode:         "black",
		FullRefreshInterval: 30,
		NetworkMode:         "CLIENT",
		APSSID:              "VampGotchi-AP",
		APPass:              "vampgotchi123",
		APIP:                "192.168.4.1",
		APInterface:         "wlan0",
		APMonitor:           false,
		BleedingPath:        "/root/BLEeding",
		AttackTimeout:       10,
		ScanTimeout:         20,
		ScanInterval:        60,
		ListenAddr:          ":80",
		DebugMode:           false,
	}
}

// Load builds the effective configuration: defaults, then the optional
// defaults file, then the optional user file. A missing file is not an
// error; an unreadable one is.
func Load() (Config, error) {
	return LoadFrom(DefaultFile, UserFile)
}

// LoadFrom is Load with explicit paths, for tests.
func LoadFrom(defaultsPath, userPath string) (Config, error) {
	cfg := DefaultConfig()
	for _, path := range []string{defaultsPath, userPath} {
		if path == "" {
			continue
		}
		if err := overlay(&cfg, path); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func overlay(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Save writes cfg to the user file.
func Save(cfg Config) error {
	return SaveTo(UserFile, cfg)
}

// SaveTo is Save with an explicit path, for tests.
func SaveTo(path string, cfg Config) error {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// ScanTimeoutDuration returns the scan timeout with a sane floor.
func (c Config) ScanTimeoutDuration() time.Duration {
	if c.ScanTimeout <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.ScanTimeout) * time.Second
}

// AttackTimeoutDuration returns the attack duration with a sane floor.
func (c Config) AttackTimeoutDuration() time.Duration {
	if c.AttackTimeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.AttackTimeout) * time.Second
}
