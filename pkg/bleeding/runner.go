// Package bleeding drives the external BLEeding tool: BLE scans and timed
// deauthentication attacks. Scans prefer the host's BLE adapter directly
// and fall back to invoking the tool and scraping its text output.
package bleeding

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/google/shlex"
	"github.com/sirupsen/logrus"

	"vampgotchi/pkg/bleparse"
)

// ScanResult carries the devices a scan found plus the raw tool output
// (empty for native scans) kept for the debug endpoint.
type ScanResult struct {
	Reports []bleparse.DeviceReport
	Raw     string
}

// Runner invokes BLEeding with an explicit working directory. It never
// changes the process working directory.
type Runner struct {
	dir       string
	extraArgs []string
	parser    bleparse.Parser
	native    nativeScanner
	logger    *logrus.Logger
}

// NewRunner builds a Runner rooted at the BLEeding checkout. extraArgs is
// a shell-style string of additional tool arguments from the config file.
func NewRunner(dir, extraArgs string, logger *logrus.Logger) (*Runner, error) {
	if logger == nil {
		logger = logrus.New()
	}
	args, err := shlex.Split(extraArgs)
	if err != nil {
		return nil, fmt.Errorf("parsing tool_extra_args: %w", err)
	}
	return &Runner{
		dir:       dir,
		extraArgs: args,
		parser:    bleparse.New(),
		logger:    logger,
	}, nil
}

// Scan discovers BLE devices, blocking up to timeout. The native adapter
// path is tried first; if the adapter cannot be used the tool is invoked
// as a subprocess and its output scraped.
func (r *Runner) Scan(ctx context.Context, timeout time.Duration) (ScanResult, error) {
	reports, err := r.native.scan(ctx, timeout)
	if err == nil {
		r.logger.Debugf("Native BLE scan found %d devices", len(reports))
		return ScanResult{Reports: reports}, nil
	}
	r.logger.Warnf("Native BLE scan unavailable (%v), falling back to subprocess", err)

	return r.subprocessScan(ctx, timeout)
}

func (r *Runner) subprocessScan(ctx context.Context, timeout time.Duration) (ScanResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append([]string{"bleeding.py", "scan", "--ble", "--headless"}, r.extraArgs...)
	cmd := exec.CommandContext(ctx, "python3", args...)
	cmd.Dir = r.dir

	out, err := cmd.CombinedOutput()
	raw := string(out)
	if err != nil {
		return ScanResult{Raw: raw}, fmt.Errorf("bleeding scan: %w", err)
	}
	return ScanResult{Reports: r.parser.Parse(raw), Raw: raw}, nil
}

// Deauth runs a timed deauthentication attack against mac. It blocks until
// the tool exits or ctx is cancelled.
func (r *Runner) Deauth(ctx context.Context, mac string, timeout time.Duration) error {
	args := append([]string{
		"bleeding.py", "deauth", mac,
		"--ble", "--timeout", strconv.Itoa(int(timeout.Seconds())),
	}, r.extraArgs...)
	cmd := exec.CommandContext(ctx, "python3", args...)
	cmd.Dir = r.dir

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("bleeding deauth %s: %w (output: %s)", mac, err, string(out))
	}
	return nil
}

// KillAll force-kills every running tool instance. Blunt, but it is the
// only stop the tool supports.
func (r *Runner) KillAll() {
	if err := exec.Command("pkill", "-f", "bleeding.py").Run(); err != nil {
		r.logger.Debugf("pkill bleeding.py: %v", err)
	}
}
