// Package control supervises the appliance's background work: BLE scans,
// deauth attacks, scheduled auto-scans and network mode switches. All
// outcomes are reported into the shared state; nothing here blocks an
// HTTP handler.
package control

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"vampgotchi/pkg/bleeding"
	"vampgotchi/pkg/models"
	"vampgotchi/pkg/netmode"
	"vampgotchi/pkg/state"
)

// ScanTool is the slice of the BLEeding runner the controller drives.
type ScanTool interface {
	Scan(ctx context.Context, timeout time.Duration) (bleeding.ScanResult, error)
	Deauth(ctx context.Context, mac string, timeout time.Duration) error
	KillAll()
}

// NetSwitcher reconfigures the Wi-Fi stack.
type NetSwitcher interface {
	SwitchToAP(ap netmode.APSettings)
	SwitchToClient(ssid, password string)
}

// ClientMonitor is the slice of the AP client monitor the controller
// toggles as the network role changes.
type ClientMonitor interface {
	Start() error
	Stop()
}

// attackHandle tracks one running attack so the next one can displace it.
type attackHandle struct {
	mac    string
	cancel context.CancelFunc
	done   chan struct{}
}

// Controller owns the scan/attack lifecycles. Scans run to completion
// (they are bounded by their timeout); attacks are cancellable, and at
// most one runs at a time.
type Controller struct {
	logger   *logrus.Logger
	state    *state.State
	tool     ScanTool
	switcher NetSwitcher

	mu            sync.Mutex
	scanning      bool
	attack        *attackHandle
	monitor       ClientMonitor
	scanTimeout   time.Duration
	attackTimeout time.Duration

	cron *cron.Cron
}

// New wires a Controller. switcher may be nil on hosts without the
// Wi-Fi stack (development machines).
func New(logger *logrus.Logger, st *state.State, tool ScanTool, switcher NetSwitcher, scanTimeout, attackTimeout time.Duration) *Controller {
	return &Controller{
		logger:        logger,
		state:         st,
		tool:          tool,
		switcher:      switcher,
		scanTimeout:   scanTimeout,
		attackTimeout: attackTimeout,
	}
}

// SetClientMonitor hands the controller the AP client monitor so mode
// switches can start and stop the capture.
func (c *Controller) SetClientMonitor(m ClientMonitor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.monitor = m
}

func (c *Controller) clientMonitor() ClientMonitor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.monitor
}

// SetTimeouts swaps the scan/attack deadlines; called on config reload.
// Running tasks keep the deadline they started with.
func (c *Controller) SetTimeouts(scan, attack time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scanTimeout = scan
	c.attackTimeout = attack
}

// Busy reports whether a scan or attack is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scanning || c.attack != nil
}

// StartScan kicks off a background scan. A scan already in flight is
// left alone and an error returned; scans cannot be cancelled.
func (c *Controller) StartScan() error {
	c.mu.Lock()
	if c.scanning {
		c.mu.Unlock()
		return fmt.Errorf("scan already running")
	}
	c.scanning = true
	timeout := c.scanTimeout
	c.mu.Unlock()

	c.state.BeginScan()
	go c.runScan(timeout)
	return nil
}

func (c *Controller) runScan(timeout time.Duration) {
	defer func() {
		c.mu.Lock()
		c.scanning = false
		c.mu.Unlock()
	}()

	result, err := c.tool.Scan(context.Background(), timeout)
	if err != nil {
		c.logger.WithError(err).Error("BLE scan failed")
		c.state.FailScan(result.Raw, err)
		return
	}

	now := time.Now()
	targets := make([]models.Target, 0, len(result.Reports))
	for _, rep := range result.Reports {
		targets = append(targets, models.Target{
			MAC:      rep.MAC,
			Name:     rep.Name,
			RSSI:     rep.RSSI,
			LastSeen: now,
		})
	}
	c.state.FinishScan(targets, result.Raw)
}

// StartAttack launches a deauth attack on mac, displacing any attack
// already running.
func (c *Controller) StartAttack(mac string) {
	c.mu.Lock()
	prev := c.attack
	ctx, cancel := context.WithCancel(context.Background())
	handle := &attackHandle{mac: mac, cancel: cancel, done: make(chan struct{})}
	c.attack = handle
	timeout := c.attackTimeout
	c.mu.Unlock()

	if prev != nil {
		c.logger.Infof("Displacing attack on %s", prev.mac)
		prev.cancel()
		c.tool.KillAll()
		<-prev.done
	}

	c.state.BeginAttack(mac)
	go c.runAttack(ctx, handle, timeout)
}

func (c *Controller) runAttack(ctx context.Context, handle *attackHandle, timeout time.Duration) {
	defer close(handle.done)

	err := c.tool.Deauth(ctx, handle.mac, timeout)
	failed := err != nil && ctx.Err() == nil
	if failed {
		c.logger.WithError(err).Errorf("Attack on %s failed", handle.mac)
	}

	c.mu.Lock()
	current := c.attack == handle
	if current {
		c.attack = nil
	}
	c.mu.Unlock()

	// A displaced attack must not overwrite its successor's state.
	if !current {
		return
	}
	if failed {
		c.state.FailAttack(err)
		return
	}
	c.state.EndAttack()
}

// StopAttack cancels the running attack, if any, and waits for it to
// report its end into state.
func (c *Controller) StopAttack() {
	c.mu.Lock()
	handle := c.attack
	c.mu.Unlock()
	if handle == nil {
		return
	}
	handle.cancel()
	c.tool.KillAll()
	<-handle.done
}

// SwitchToAP reconfigures to access-point mode in the background.
func (c *Controller) SwitchToAP(ap netmode.APSettings) {
	if c.switcher == nil {
		c.logger.Warn("Network switching unavailable on this host")
		return
	}
	go func() {
		c.switcher.SwitchToAP(ap)
		c.state.SetNetwork(netmode.Detect(ap.IP))
		if m := c.clientMonitor(); m != nil {
			if err := m.Start(); err != nil {
				c.logger.Warnf("AP client monitor disabled: %v", err)
			}
		}
	}()
}

// SwitchToClient joins the given Wi-Fi network in the background. apIP
// is only used afterwards to re-detect which mode the host ended up in.
func (c *Controller) SwitchToClient(ssid, password, apIP string) {
	if c.switcher == nil {
		c.logger.Warn("Network switching unavailable on this host")
		return
	}
	go func() {
		if m := c.clientMonitor(); m != nil {
			m.Stop()
		}
		c.switcher.SwitchToClient(ssid, password)
		c.state.SetNetwork(netmode.Detect(apIP))
	}()
}

// StartAutoScan schedules a recurring scan every interval. Ticks that
// land while a scan or attack is running are skipped. A zero or negative
// interval disables the scheduler.
func (c *Controller) StartAutoScan(interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	c.cron = cron.New()
	schedule := fmt.Sprintf("@every %s", interval)
	if _, err := c.cron.AddFunc(schedule, func() {
		if c.Busy() {
			c.logger.Debug("Auto-scan skipped, appliance busy")
			return
		}
		if err := c.StartScan(); err != nil {
			c.logger.WithError(err).Debug("Auto-scan not started")
		}
	}); err != nil {
		return fmt.Errorf("scheduling auto-scan: %w", err)
	}
	c.cron.Start()
	c.logger.Infof("Auto-scan every %s", interval)
	return nil
}

// Stop shuts the scheduler down, cancels a running attack and closes
// the client monitor.
func (c *Controller) Stop() {
	if c.cron != nil {
		c.cron.Stop()
	}
	c.StopAttack()
	if m := c.clientMonitor(); m != nil {
		m.Stop()
	}
}
