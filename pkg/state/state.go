// Package state owns every piece of runtime state shared between the web
// surface, the scan/attack tasks and the display loop. All access goes
// through snapshot reads and mutation methods guarded by one mutex.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"vampgotchi/pkg/models"
)

const (
	activityLimit  = 5
	idleBoredAfter = 30 * time.Second
)

// State is the single owner of shared appliance state.
type State struct {
	mu     sync.RWMutex
	logger *logrus.Logger

	startTime time.Time

	// Targets found by the most recent scan, in discovery order. Always a
	// subset of the registry keys.
	targets  []string
	registry map[string]models.Target

	selected   string
	attacking  bool
	scanStatus models.ScanStatus
	mood       models.Mood

	netMode models.NetworkMode
	ip      string

	lastScanOutput string

	totalScans   int
	totalAttacks int

	gotchi       gotchiStats
	lastActivity time.Time
	lastAutoMsg  time.Time
}

// Snapshot is a consistent copy of the shared state for readers.
type Snapshot struct {
	Targets        []models.Target
	Selected       string
	Attacking      bool
	ScanStatus     models.ScanStatus
	Mood           models.Mood
	NetworkMode    models.NetworkMode
	IP             string
	LastScanOutput string
	Stats          models.Stats
	Gotchi         models.GotchiStats
}

// New returns a State with the pet's starting stats.
func New(logger *logrus.Logger) *State {
	if logger == nil {
		logger = logrus.New()
	}
	now := time.Now()
	return &State{
		logger:       logger,
		startTime:    now,
		registry:     make(map[string]models.Target),
		scanStatus:   models.ScanIdle,
		mood:         models.MoodBored,
		netMode:      models.ModeUnknown,
		ip:           "127.0.0.1",
		gotchi:       newGotchiStats(),
		lastActivity: now,
		lastAutoMsg:  now,
	}
}

// Snapshot returns a copy of everything a reader needs.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	targets := make([]models.Target, 0, len(s.targets))
	for _, mac := range s.targets {
		targets = append(targets, s.registry[mac])
	}

	return Snapshot{
		Targets:        targets,
		Selected:       s.selected,
		Attacking:      s.attacking,
		ScanStatus:     s.scanStatus,
		Mood:           s.mood,
		NetworkMode:    s.netMode,
		IP:             s.ip,
		LastScanOutput: s.lastScanOutput,
		Stats: models.Stats{
			TotalScans:   s.totalScans,
			TotalAttacks: s.totalAttacks,
			TotalTargets: len(s.registry),
			Mood:         s.mood,
			Uptime:       s.uptimeLocked(),
		},
		Gotchi: s.gotchi.export(s.coffinLocked()),
	}
}

// BeginScan marks a scan as running and excites the pet.
func (s *State) BeginScan() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scanStatus = models.ScanRunning
	s.mood = models.MoodExcited
	s.gotchi.spendHunger(10)
	s.pushActivityLocked("> Scanning...")
	s.lastActivity = time.Now()
}

// FinishScan records a completed scan: the target list is replaced with the
// found set and each record is upserted into the historical registry. An
// empty result is still a successful scan, but it makes the pet sad.
func (s *State) FinishScan(found []models.Target, rawOutput string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.targets = s.targets[:0]
	for _, t := range found {
		t.Name = models.TruncateName(t.Name)
		t.LastSeen = now
		s.registry[t.MAC] = t
		s.targets = append(s.targets, t.MAC)
	}

	s.totalScans++
	s.lastScanOutput = rawOutput
	s.scanStatus = models.ScanDone
	s.lastActivity = now

	if len(found) > 0 {
		s.mood = models.MoodHappy
		s.gotchi.rewardScan(len(found), s.pushActivityLocked)
		s.pushActivityLocked("> Found devices!")
	} else {
		s.mood = models.MoodSad
		s.pushActivityLocked("> No devices found")
	}
}

// FailScan records an errored scan attempt. Failed attempts do not count
// toward the scan total and leave the target list untouched.
func (s *State) FailScan(rawOutput string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastScanOutput = rawOutput
	s.scanStatus = models.ScanError
	s.mood = models.MoodSad
	s.lastActivity = time.Now()
	if err != nil {
		s.logger.Errorf("Scan error: %v", err)
	}
}

// BeginAttack marks an attack on mac as in progress.
func (s *State) BeginAttack(mac string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = mac
	s.attacking = true
	s.mood = models.MoodAngry
	s.totalAttacks++
	s.gotchi.rewardAttack(s.pushActivityLocked)
	s.pushActivityLocked("> Attacking target!")
	s.lastActivity = time.Now()
}

// EndAttack clears the attack flag. Mood settles on happy when the last scan
// still has targets, bored otherwise.
func (s *State) EndAttack() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attacking = false
	if len(s.targets) > 0 {
		s.mood = models.MoodHappy
	} else {
		s.mood = models.MoodBored
	}
	s.pushActivityLocked("> Attack completed!")
	s.lastActivity = time.Now()
}

// FailAttack clears the attack flag after the tool errored out. Unlike a
// clean EndAttack the pet takes it badly.
func (s *State) FailAttack(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attacking = false
	s.mood = models.MoodSad
	s.pushActivityLocked("> Attack failed!")
	s.lastActivity = time.Now()
	if err != nil {
		s.logger.Errorf("Attack error: %v", err)
	}
}

// SelectTarget remembers the operator's chosen MAC.
func (s *State) SelectTarget(mac string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = mac
}

// SetNetwork records the detected network mode and address.
func (s *State) SetNetwork(mode models.NetworkMode, ip string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.netMode = mode
	s.ip = ip
}

// Tick advances time-driven behavior: idle mood decay, hunger drain and
// the occasional flavor message. The display loop calls this on its
// refresh interval.
func (s *State) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	busy := s.attacking || s.scanStatus == models.ScanRunning
	if busy {
		if s.attacking {
			s.gotchi.drainWhileAttacking()
		} else {
			s.gotchi.spendHunger(2)
		}
		s.lastActivity = now
		return
	}

	// Mood goes bored between 30s and 60s of idling; at 60s the hunger
	// drain resets the idle clock, so the order of these checks matters.
	if now.Sub(s.lastActivity) > idleBoredAfter &&
		s.mood != models.MoodSad && s.mood != models.MoodAngry {
		s.mood = models.MoodBored
	}

	if now.Sub(s.lastActivity) > time.Minute {
		s.gotchi.spendHunger(1)
		s.lastActivity = now
	}

	if now.Sub(s.lastAutoMsg) > 2*time.Minute {
		s.pushActivityLocked(randomFlavorMessage())
		s.lastAutoMsg = now
	}
}

// Uptime returns the formatted process uptime ("Xd HHh MMm").
func (s *State) Uptime() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uptimeLocked()
}

func (s *State) uptimeLocked() string {
	delta := time.Since(s.startTime)
	days := int(delta.Hours()) / 24
	hours := int(delta.Hours()) % 24
	minutes := int(delta.Minutes()) % 60
	return fmt.Sprintf("%dd %02dh %02dm", days, hours, minutes)
}

func (s *State) coffinLocked() models.CoffinStatus {
	if s.attacking || s.scanStatus == models.ScanRunning {
		return models.CoffinAwake
	}
	return models.CoffinSleeping
}

func (s *State) pushActivityLocked(msg string) {
	s.gotchi.activity = append(s.gotchi.activity, msg)
	if len(s.gotchi.activity) > activityLimit {
		s.gotchi.activity = s.gotchi.activity[len(s.gotchi.activity)-activityLimit:]
	}
}
