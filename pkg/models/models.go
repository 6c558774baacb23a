package models

import (
	"time"
)

// NameLimit is the maximum number of characters kept from a parsed device name.
const NameLimit = 20

// Target represents a BLE device observed by a scan.
type Target struct {
	MAC      string    `json:"mac"`       // Canonical MAC (uppercase, colon-separated)
	Name     string    `json:"name"`      // Advertised name, truncated to NameLimit
	RSSI     int       `json:"rssi"`      // Signal strength in dBm, 0 if unknown
	LastSeen time.Time `json:"last_seen"` // Last time a scan observed this MAC
}

// ScanStatus describes the state of the BLE scan subsystem.
type ScanStatus string

const (
	ScanIdle    ScanStatus = "Idle"
	ScanRunning ScanStatus = "Scanning..."
	ScanDone    ScanStatus = "Done"
	ScanError   ScanStatus = "Error"
)

// Mood is the pet's emotional state, derived from scan/attack outcomes
// and elapsed idle time.
type Mood string

const (
	MoodBored   Mood = "bored"
	MoodHappy   Mood = "happy"
	MoodExcited Mood = "excited"
	MoodSad     Mood = "sad"
	MoodAngry   Mood = "angry"
)

// NetworkMode is the Wi-Fi role of the appliance.
type NetworkMode string

const (
	ModeAP      NetworkMode = "AP"
	ModeClient  NetworkMode = "CLIENT"
	ModeUnknown NetworkMode = "UNKNOWN"
)

// CoffinStatus mirrors whether the pet is busy or resting.
type CoffinStatus string

const (
	CoffinSleeping CoffinStatus = "SLEEPING"
	CoffinAwake    CoffinStatus = "AWAKE"
)

// Stats holds the rolling appliance counters.
type Stats struct {
	TotalScans   int    `json:"total_scans"`   // Completed scan attempts
	TotalAttacks int    `json:"total_attacks"` // Started attacks
	TotalTargets int    `json:"total_targets"` // Unique MACs ever seen
	Mood         Mood   `json:"mood"`
	Uptime       string `json:"uptime"`
}

// GotchiStats is the pet's game-like stat block.
type GotchiStats struct {
	Hunger      int          `json:"hunger"`       // 0-1000
	Blood       int          `json:"blood"`        // 0-100
	Level       int          `json:"level"`
	Exp         int          `json:"exp"`
	ExpToNext   int          `json:"exp_to_next"`
	Money       int          `json:"money"`
	PlayerLevel int          `json:"player_level"`
	Coffin      CoffinStatus `json:"coffin"`
	Activity    []string     `json:"activity"` // Recent activity log lines
}

// TruncateName clamps a device name to NameLimit characters. Names can
// come straight from BLE advertisements, so the cut is rune-based to
// keep the result valid UTF-8.
func TruncateName(name string) string {
	runes := []rune(name)
	if len(runes) > NameLimit {
		return string(runes[:NameLimit])
	}
	return name
}
