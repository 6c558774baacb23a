package bleeding

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"vampgotchi/pkg/bleparse"
	"vampgotchi/pkg/models"
)

// nativeScanner scans through the host BLE adapter. Enabling the adapter
// is attempted once per process; if it fails every scan falls back to the
// subprocess path.
type nativeScanner struct {
	enableOnce sync.Once
	enableErr  error
}

func (n *nativeScanner) scan(ctx context.Context, timeout time.Duration) ([]bleparse.DeviceReport, error) {
	adapter := bluetooth.DefaultAdapter

	n.enableOnce.Do(func() {
		n.enableErr = adapter.Enable()
	})
	if n.enableErr != nil {
		return nil, fmt.Errorf("enabling BLE adapter: %w", n.enableErr)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		seen    = make(map[string]bool)
		reports []bleparse.DeviceReport
	)

	// Scan blocks until StopScan; the watcher ends it on timeout.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			adapter.StopScan()
		case <-done:
		}
	}()

	err := adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		mac := strings.ToUpper(result.Address.String())
		mu.Lock()
		defer mu.Unlock()
		if seen[mac] {
			return
		}
		seen[mac] = true

		name := strings.TrimSpace(result.LocalName())
		if name == "" {
			name = "Unknown"
		}
		reports = append(reports, bleparse.DeviceReport{
			MAC:  mac,
			Name: models.TruncateName(name),
			RSSI: int(result.RSSI),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("BLE scan: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	return reports, nil
}
