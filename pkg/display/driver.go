// Package display renders the pet face and appliance status onto a
// 250x122 1-bit frame and pushes it to an e-paper panel, throttling
// expensive full refreshes against cheap partial ones.
package display

import (
	"errors"
	"image"
	"sync"
)

// Panel dimensions of the 2.13" e-paper module, landscape.
const (
	Width  = 250
	Height = 122
)

// ErrNoDisplay is returned by Probe when no panel is attached.
var ErrNoDisplay = errors.New("e-paper display not present")

// ErrPartialUnsupported marks a driver without a partial-refresh mode;
// the loop falls back to full refreshes.
var ErrPartialUnsupported = errors.New("partial refresh not supported")

// Driver is the boundary to the e-paper hardware. The vendor panel
// driver implements it; tests use MemoryDriver.
type Driver interface {
	Init() error
	Clear() error
	Display(img image.Image) error
	DisplayPartial(img image.Image) error
	Bounds() image.Rectangle
}

// Probe locates the attached panel. The vendor SPI driver is wired in
// here on appliance builds; without one the display subsystem stays
// disabled and the rest of the appliance runs normally.
func Probe() (Driver, error) {
	return nil, ErrNoDisplay
}

// MemoryDriver is an in-memory Driver for tests and for serving the
// current frame over HTTP.
type MemoryDriver struct {
	mu             sync.Mutex
	frame          image.Image
	FullCount      int
	PartialCount   int
	FailPartial    bool // Simulate a panel without partial refresh
	FailPartialErr error
}

// NewMemoryDriver returns an empty MemoryDriver.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{}
}

func (m *MemoryDriver) Init() error  { return nil }
func (m *MemoryDriver) Clear() error { return nil }

func (m *MemoryDriver) Display(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frame = img
	m.FullCount++
	return nil
}

func (m *MemoryDriver) DisplayPartial(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPartial {
		if m.FailPartialErr != nil {
			return m.FailPartialErr
		}
		return ErrPartialUnsupported
	}
	m.frame = img
	m.PartialCount++
	return nil
}

func (m *MemoryDriver) Bounds() image.Rectangle {
	return image.Rect(0, 0, Width, Height)
}

// Frame returns the most recently pushed frame, nil before the first.
func (m *MemoryDriver) Frame() image.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frame
}
