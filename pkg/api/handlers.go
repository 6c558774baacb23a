package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vampgotchi/pkg/apmon"
	"vampgotchi/pkg/config"
	"vampgotchi/pkg/models"
	"vampgotchi/pkg/sysinfo"
)

func (s *Server) handleIndex(c *gin.Context) {
	snap := s.state.Snapshot()
	cfg := s.config()
	c.HTML(http.StatusOK, "dashboard", gin.H{
		"NetworkMode": snap.NetworkMode,
		"NetworkIP":   snap.IP,
		"APSSID":      cfg.APSSID,
		"DisplayMode": cfg.DisplayMode,
	})
}

// targetInfo is one row of the dashboard's target list.
type targetInfo struct {
	MAC  string `json:"mac"`
	Name string `json:"name"`
	RSSI int    `json:"rssi"`
}

func (s *Server) handleStatus(c *gin.Context) {
	snap := s.state.Snapshot()

	statusText, statusClass := "Idle", "idle"
	switch {
	case snap.Attacking:
		statusText, statusClass = "Attacking "+snap.Selected, "attacking"
	case snap.ScanStatus == models.ScanRunning:
		statusText, statusClass = string(models.ScanRunning), "scanning"
	}

	macs := make([]string, 0, len(snap.Targets))
	infos := make([]targetInfo, 0, len(snap.Targets))
	for _, t := range snap.Targets {
		macs = append(macs, t.MAC)
		infos = append(infos, targetInfo{MAC: t.MAC, Name: t.Name, RSSI: t.RSSI})
	}

	host := sysinfo.Host()
	c.JSON(http.StatusOK, gin.H{
		"targets":         macs,
		"targets_info":    infos,
		"attacking":       snap.Attacking,
		"scanning":        snap.ScanStatus == models.ScanRunning,
		"selected_target": snap.Selected,
		"status_text":     statusText,
		"status_class":    statusClass,
		"count":           len(snap.Targets),
		"stats": gin.H{
			"total_scans":   snap.Stats.TotalScans,
			"total_attacks": snap.Stats.TotalAttacks,
			"total_targets": snap.Stats.TotalTargets,
			"mood":          snap.Mood,
			"uptime":        s.state.Uptime(),
		},
		"gotchi": snap.Gotchi,
		"host": gin.H{
			"uptime_seconds":   host.UptimeSeconds,
			"load1":            host.Load1,
			"mem_used_percent": host.MemUsedPercent,
		},
	})
}

func (s *Server) handleGetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.config())
}

// handlePostConfig takes the dashboard's display settings form,
// persists the change and re-renders the page.
func (s *Server) handlePostConfig(c *gin.Context) {
	cfg := s.config()
	changed := false

	if mode := c.PostForm("display_mode"); mode != "" {
		cfg.DisplayMode = mode
		changed = true
	}
	if raw := c.PostForm("full_refresh_interval"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.String(http.StatusBadRequest, "full_refresh_interval must be a positive number")
			return
		}
		cfg.FullRefreshInterval = n
		changed = true
	}

	if changed {
		s.SetConfig(cfg)
		if err := config.Save(cfg); err != nil {
			s.logger.WithError(err).Error("Saving config failed")
		}
	}
	s.handleIndex(c)
}

func (s *Server) handleScan(c *gin.Context) {
	if err := s.ctrl.StartScan(); err != nil {
		s.logger.WithError(err).Debug("Scan request ignored")
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleAttack(c *gin.Context) {
	mac := c.PostForm("mac")
	if mac == "" {
		c.String(http.StatusBadRequest, "mac is required")
		return
	}
	s.state.SelectTarget(mac)
	s.ctrl.StartAttack(mac)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleStop(c *gin.Context) {
	s.ctrl.StopAttack()
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleSetAP(c *gin.Context) {
	s.ctrl.SwitchToAP(s.apSettings())
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleSetClient(c *gin.Context) {
	ssid := c.PostForm("ssid")
	password := c.PostForm("password")
	if ssid == "" || password == "" {
		c.String(http.StatusBadRequest, "ssid and password are required")
		return
	}
	s.ctrl.SwitchToClient(ssid, password, s.config().APIP)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleClients(c *gin.Context) {
	if s.monitor == nil || !s.monitor.Running() {
		c.JSON(http.StatusOK, gin.H{"enabled": false, "clients": []apmon.Client{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": true, "clients": s.monitor.Clients()})
}

func (s *Server) handleDebugScan(c *gin.Context) {
	out := s.state.Snapshot().LastScanOutput
	if out == "" {
		c.String(http.StatusOK, "No scan output available")
		return
	}
	c.String(http.StatusOK, out)
}

func (s *Server) handleDebugBluetooth(c *gin.Context) {
	out, err := sysinfo.BluetoothStatus(c.Request.Context())
	if err != nil {
		c.String(http.StatusOK, "Error: %v\n%s", err, out)
		return
	}
	c.String(http.StatusOK, out)
}

func (s *Server) handleDebugDisplay(c *gin.Context) {
	if s.loop == nil {
		c.String(http.StatusNotFound, "display disabled")
		return
	}
	var buf bytes.Buffer
	ok, err := s.loop.WritePNG(&buf)
	if err != nil {
		s.logger.WithError(err).Error("Encoding display frame failed")
		c.Status(http.StatusInternalServerError)
		return
	}
	if !ok {
		c.String(http.StatusNotFound, "no frame rendered yet")
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
