package display

import (
	"context"
	"image"
	"image/png"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"vampgotchi/pkg/state"
)

const tickInterval = 3 * time.Second

// Loop owns the panel: it wakes up every few seconds, advances the pet
// clock, renders a frame and pushes it out. Partial refresh is used
// between periodic full refreshes; a failed partial falls back to full.
type Loop struct {
	logger   *logrus.Logger
	driver   Driver
	state    *state.State
	renderer Renderer

	fullInterval int

	mu        sync.Mutex
	theme     string
	updates   int
	lastFrame *image.Gray
}

// NewLoop wires a refresh loop. driver may be nil, in which case the
// loop still ticks the pet clock and keeps a frame for debugging but
// never touches hardware.
func NewLoop(logger *logrus.Logger, driver Driver, st *state.State, theme string, fullInterval int) *Loop {
	if fullInterval < 1 {
		fullInterval = 10
	}
	return &Loop{
		logger:       logger,
		driver:       driver,
		state:        st,
		theme:        theme,
		fullInterval: fullInterval,
	}
}

// Run blocks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	if l.driver != nil {
		if err := l.driver.Init(); err != nil {
			l.logger.WithError(err).Warn("Display init failed, running headless")
			l.driver = nil
		}
	}
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.state.Tick(now)
			l.Refresh(now)
		}
	}
}

// SetTheme swaps the panel theme; the next refresh draws with it.
func (l *Loop) SetTheme(theme string) {
	l.mu.Lock()
	l.theme = theme
	l.mu.Unlock()
}

// Refresh renders the current state and pushes it to the panel.
func (l *Loop) Refresh(now time.Time) {
	l.mu.Lock()
	theme := l.theme
	l.mu.Unlock()
	frame := l.renderer.Render(l.state.Snapshot(), theme, now)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastFrame = frame

	if l.driver == nil {
		return
	}

	full := l.updates == 0 || l.updates%l.fullInterval == 0
	l.updates++

	if full {
		if err := l.driver.Display(frame); err != nil {
			l.logger.WithError(err).Warn("Full refresh failed")
		}
		return
	}
	if err := l.driver.DisplayPartial(frame); err != nil {
		l.logger.WithError(err).Debug("Partial refresh failed, falling back to full")
		if err := l.driver.Display(frame); err != nil {
			l.logger.WithError(err).Warn("Full refresh failed")
		}
	}
}

// WritePNG encodes the most recently rendered frame. Returns false if
// nothing has been rendered yet.
func (l *Loop) WritePNG(w io.Writer) (bool, error) {
	l.mu.Lock()
	frame := l.lastFrame
	l.mu.Unlock()
	if frame == nil {
		return false, nil
	}
	return true, png.Encode(w, frame)
}
