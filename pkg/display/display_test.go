package display

import (
	"bytes"
	"image"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"vampgotchi/pkg/state"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(&bytes.Buffer{})
	return l
}

func TestRefreshPolicy(t *testing.T) {
	drv := NewMemoryDriver()
	st := state.New(quietLogger())
	loop := NewLoop(quietLogger(), drv, st, "black", 3)

	now := time.Now()
	for i := 0; i < 7; i++ {
		loop.Refresh(now)
	}

	// First push and every third after it are full refreshes.
	if drv.FullCount != 3 {
		t.Errorf("FullCount = %d, want 3", drv.FullCount)
	}
	if drv.PartialCount != 4 {
		t.Errorf("PartialCount = %d, want 4", drv.PartialCount)
	}
}

func TestRefreshPartialFallback(t *testing.T) {
	drv := NewMemoryDriver()
	drv.FailPartial = true
	st := state.New(quietLogger())
	loop := NewLoop(quietLogger(), drv, st, "black", 10)

	now := time.Now()
	for i := 0; i < 4; i++ {
		loop.Refresh(now)
	}

	// Every failed partial falls back to a full refresh.
	if drv.FullCount != 4 {
		t.Errorf("FullCount = %d, want 4", drv.FullCount)
	}
	if drv.PartialCount != 0 {
		t.Errorf("PartialCount = %d, want 0", drv.PartialCount)
	}
}

func TestRefreshWithoutDriver(t *testing.T) {
	st := state.New(quietLogger())
	loop := NewLoop(quietLogger(), nil, st, "black", 10)
	loop.Refresh(time.Now())

	var buf bytes.Buffer
	ok, err := loop.WritePNG(&buf)
	if err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	if !ok || buf.Len() == 0 {
		t.Error("expected a rendered frame even without a driver")
	}
}

func TestRenderFrame(t *testing.T) {
	st := state.New(quietLogger())
	var r Renderer
	frame := r.Render(st.Snapshot(), "black", time.Now())

	if got, want := frame.Bounds(), image.Rect(0, 0, Width, Height); got != want {
		t.Fatalf("bounds = %v, want %v", got, want)
	}

	// The black theme draws dark ink on a light background.
	if frame.GrayAt(0, Height-1).Y != 0xFF {
		t.Error("black theme background should be light")
	}
	ink := 0
	for i := range frame.Pix {
		if frame.Pix[i] == 0x00 {
			ink++
		}
	}
	if ink == 0 {
		t.Error("rendered frame has no ink")
	}
}

func TestRenderThemeInversion(t *testing.T) {
	st := state.New(quietLogger())
	var r Renderer
	now := time.Now()
	white := r.Render(st.Snapshot(), "white", now)

	if white.GrayAt(0, Height-1).Y != 0x00 {
		t.Error("white theme background should be dark")
	}
}

func TestProbeWithoutPanel(t *testing.T) {
	if _, err := Probe(); err != ErrNoDisplay {
		t.Errorf("Probe() error = %v, want ErrNoDisplay", err)
	}
}
