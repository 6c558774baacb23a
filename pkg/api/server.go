// Package api is the appliance's web face: the dashboard page, the JSON
// status feed the page polls, and the command endpoints that kick off
// scans, attacks and network mode switches. Commands hand the work to
// the controller and return immediately.
package api

import (
	"html/template"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"vampgotchi/pkg/apmon"
	"vampgotchi/pkg/config"
	"vampgotchi/pkg/control"
	"vampgotchi/pkg/display"
	"vampgotchi/pkg/netmode"
	"vampgotchi/pkg/state"
)

// Server wires the HTTP surface. Display loop and AP monitor may be nil
// on hosts without the corresponding hardware.
type Server struct {
	router  *gin.Engine
	logger  *logrus.Logger
	state   *state.State
	ctrl    *control.Controller
	loop    *display.Loop
	monitor *apmon.Monitor

	mu  sync.RWMutex
	cfg config.Config
}

// NewServer builds the router. cfg is the active configuration; it can
// be swapped later via SetConfig when the file watcher fires.
func NewServer(logger *logrus.Logger, st *state.State, ctrl *control.Controller, loop *display.Loop, monitor *apmon.Monitor, cfg config.Config) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router:  router,
		logger:  logger,
		state:   st,
		ctrl:    ctrl,
		loop:    loop,
		monitor: monitor,
		cfg:     cfg,
	}

	router.SetHTMLTemplate(template.Must(template.New("dashboard").Parse(dashboardHTML)))
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)

	s.router.GET("/scan", s.handleScan)
	s.router.POST("/attack", s.handleAttack)
	s.router.POST("/stop", s.handleStop)
	s.router.POST("/set_ap", s.handleSetAP)
	s.router.POST("/set_client", s.handleSetClient)

	api := s.router.Group("/api")
	{
		api.GET("/status", s.handleStatus)
		api.GET("/config", s.handleGetConfig)
		api.POST("/config", s.handlePostConfig)
		api.GET("/clients", s.handleClients)

		debug := api.Group("/debug")
		{
			debug.GET("/scan", s.handleDebugScan)
			debug.GET("/bluetooth", s.handleDebugBluetooth)
			debug.GET("/display.png", s.handleDebugDisplay)
		}
	}
}

// Run serves on the configured listen address, blocking.
func (s *Server) Run() error {
	s.mu.RLock()
	addr := s.cfg.ListenAddr
	s.mu.RUnlock()
	s.logger.Infof("Dashboard listening on %s", addr)
	return s.router.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SetConfig swaps the active configuration (config file watcher).
func (s *Server) SetConfig(cfg config.Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	s.ctrl.SetTimeouts(cfg.ScanTimeoutDuration(), cfg.AttackTimeoutDuration())
	if s.loop != nil {
		s.loop.SetTheme(cfg.DisplayMode)
	}
}

func (s *Server) config() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Server) apSettings() netmode.APSettings {
	cfg := s.config()
	return netmode.APSettings{
		SSID:      cfg.APSSID,
		Pass:      cfg.APPass,
		IP:        cfg.APIP,
		Interface: cfg.APInterface,
	}
}
