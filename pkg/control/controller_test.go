package control

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"vampgotchi/pkg/bleeding"
	"vampgotchi/pkg/bleparse"
	"vampgotchi/pkg/models"
	"vampgotchi/pkg/netmode"
	"vampgotchi/pkg/state"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(&bytes.Buffer{})
	return l
}

// fakeTool scripts scan/attack outcomes and records kill calls.
type fakeTool struct {
	mu       sync.Mutex
	scanRes  bleeding.ScanResult
	scanErr  error
	kills    int
	attacked []string
}

func (f *fakeTool) Scan(ctx context.Context, timeout time.Duration) (bleeding.ScanResult, error) {
	return f.scanRes, f.scanErr
}

func (f *fakeTool) Deauth(ctx context.Context, mac string, timeout time.Duration) error {
	f.mu.Lock()
	f.attacked = append(f.attacked, mac)
	f.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeTool) KillAll() {
	f.mu.Lock()
	f.kills++
	f.mu.Unlock()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached")
}

func TestScanSuccessFeedsState(t *testing.T) {
	st := state.New(quietLogger())
	tool := &fakeTool{scanRes: bleeding.ScanResult{
		Reports: []bleparse.DeviceReport{
			{MAC: "AA:BB:CC:DD:EE:FF", Name: "ring-01", RSSI: -42},
		},
		Raw: "Device: ring-01",
	}}
	c := New(quietLogger(), st, tool, nil, time.Second, time.Second)

	if err := c.StartScan(); err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	waitFor(t, func() bool { return st.Snapshot().ScanStatus == models.ScanDone })

	snap := st.Snapshot()
	if len(snap.Targets) != 1 || snap.Targets[0].MAC != "AA:BB:CC:DD:EE:FF" {
		t.Fatalf("targets = %+v", snap.Targets)
	}
	if snap.Mood != models.MoodHappy {
		t.Errorf("mood = %s, want happy", snap.Mood)
	}
	if snap.LastScanOutput != "Device: ring-01" {
		t.Errorf("raw output not recorded: %q", snap.LastScanOutput)
	}
}

func TestScanFailureMarksError(t *testing.T) {
	st := state.New(quietLogger())
	tool := &fakeTool{scanErr: errors.New("adapter unavailable")}
	c := New(quietLogger(), st, tool, nil, time.Second, time.Second)

	if err := c.StartScan(); err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	waitFor(t, func() bool { return st.Snapshot().ScanStatus == models.ScanError })

	if got := st.Snapshot().Mood; got != models.MoodSad {
		t.Errorf("mood = %s, want sad", got)
	}
	if st.Snapshot().Stats.TotalScans != 0 {
		t.Error("failed scan must not count towards totals")
	}
}

func TestSecondScanRejected(t *testing.T) {
	st := state.New(quietLogger())
	block := make(chan struct{})
	tool := &blockingTool{unblock: block}
	c := New(quietLogger(), st, tool, nil, time.Second, time.Second)

	if err := c.StartScan(); err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	if err := c.StartScan(); err == nil {
		t.Error("expected second scan to be rejected")
	}
	close(block)
	waitFor(t, func() bool { return !c.Busy() })
}

// blockingTool holds a scan open until unblocked.
type blockingTool struct {
	fakeTool
	unblock chan struct{}
}

func (b *blockingTool) Scan(ctx context.Context, timeout time.Duration) (bleeding.ScanResult, error) {
	<-b.unblock
	return bleeding.ScanResult{}, nil
}

func TestNewAttackDisplacesOld(t *testing.T) {
	st := state.New(quietLogger())
	tool := &fakeTool{}
	c := New(quietLogger(), st, tool, nil, time.Second, time.Second)

	c.StartAttack("AA:AA:AA:AA:AA:AA")
	waitFor(t, func() bool {
		tool.mu.Lock()
		defer tool.mu.Unlock()
		return len(tool.attacked) == 1
	})

	c.StartAttack("BB:BB:BB:BB:BB:BB")
	waitFor(t, func() bool {
		tool.mu.Lock()
		defer tool.mu.Unlock()
		return len(tool.attacked) == 2
	})

	snap := st.Snapshot()
	if !snap.Attacking || snap.Selected != "BB:BB:BB:BB:BB:BB" {
		t.Fatalf("state = attacking=%v selected=%s", snap.Attacking, snap.Selected)
	}
	tool.mu.Lock()
	kills := tool.kills
	tool.mu.Unlock()
	if kills != 1 {
		t.Errorf("kills = %d, want 1 (displacement)", kills)
	}

	c.StopAttack()
	waitFor(t, func() bool { return !st.Snapshot().Attacking })
	if st.Snapshot().Stats.TotalAttacks != 2 {
		t.Errorf("TotalAttacks = %d, want 2", st.Snapshot().Stats.TotalAttacks)
	}
}

// failingTool errors out of every attack.
type failingTool struct {
	fakeTool
}

func (f *failingTool) Deauth(ctx context.Context, mac string, timeout time.Duration) error {
	return errors.New("tool exited 1")
}

func TestAttackFailureSaddensPet(t *testing.T) {
	st := state.New(quietLogger())
	c := New(quietLogger(), st, &failingTool{}, nil, time.Second, time.Second)

	c.StartAttack("AA:BB:CC:DD:EE:FF")
	waitFor(t, func() bool { return !st.Snapshot().Attacking })

	if got := st.Snapshot().Mood; got != models.MoodSad {
		t.Errorf("mood = %s, want sad", got)
	}
}

// fakeSwitcher records mode switches without touching the host.
type fakeSwitcher struct {
	mu       sync.Mutex
	toAP     int
	toClient int
}

func (f *fakeSwitcher) SwitchToAP(ap netmode.APSettings) {
	f.mu.Lock()
	f.toAP++
	f.mu.Unlock()
}

func (f *fakeSwitcher) SwitchToClient(ssid, password string) {
	f.mu.Lock()
	f.toClient++
	f.mu.Unlock()
}

// fakeMonitor counts start/stop calls.
type fakeMonitor struct {
	mu     sync.Mutex
	starts int
	stops  int
}

func (f *fakeMonitor) Start() error {
	f.mu.Lock()
	f.starts++
	f.mu.Unlock()
	return nil
}

func (f *fakeMonitor) Stop() {
	f.mu.Lock()
	f.stops++
	f.mu.Unlock()
}

func (f *fakeMonitor) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts, f.stops
}

func TestModeSwitchTogglesClientMonitor(t *testing.T) {
	st := state.New(quietLogger())
	sw := &fakeSwitcher{}
	mon := &fakeMonitor{}
	c := New(quietLogger(), st, &fakeTool{}, sw, time.Second, time.Second)
	c.SetClientMonitor(mon)

	c.SwitchToAP(netmode.APSettings{SSID: "vampgotchi", Pass: "bloodbank", IP: "10.0.0.1", Interface: "wlan0"})
	waitFor(t, func() bool { starts, _ := mon.counts(); return starts == 1 })

	c.SwitchToClient("home-wifi", "hunter2", "10.0.0.1")
	waitFor(t, func() bool { _, stops := mon.counts(); return stops == 1 })

	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.toAP != 1 || sw.toClient != 1 {
		t.Errorf("switches = ap=%d client=%d, want 1/1", sw.toAP, sw.toClient)
	}
}

func TestSwitchWithoutMonitorConfigured(t *testing.T) {
	st := state.New(quietLogger())
	c := New(quietLogger(), st, &fakeTool{}, &fakeSwitcher{}, time.Second, time.Second)

	// No monitor registered; both transitions must still complete.
	c.SwitchToAP(netmode.APSettings{SSID: "vampgotchi", Pass: "bloodbank", IP: "10.0.0.1", Interface: "wlan0"})
	c.SwitchToClient("home-wifi", "hunter2", "10.0.0.1")
	waitFor(t, func() bool { return st.Snapshot().NetworkMode != "" })
}

func TestStopAttackWithoutAttack(t *testing.T) {
	st := state.New(quietLogger())
	c := New(quietLogger(), st, &fakeTool{}, nil, time.Second, time.Second)
	c.StopAttack() // must not panic or block
}
