// Package sysinfo collects host facts for the status API and the display:
// the outbound IP address, host resource usage and Bluetooth adapter state.
package sysinfo

import (
	"context"
	"net"
	"os/exec"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostSnapshot is a best-effort view of host resource usage. Fields stay
// zero when the underlying probe fails.
type HostSnapshot struct {
	UptimeSeconds  uint64  `json:"uptime_seconds"`
	Load1          float64 `json:"load1"`
	MemUsedPercent float64 `json:"mem_used_percent"`
}

// LocalIP returns the address the host would use to reach the internet.
// No packet is sent; the dial only resolves the local endpoint.
func LocalIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()

	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return "127.0.0.1"
}

// Host gathers a resource snapshot. Probe failures leave fields zeroed.
func Host() HostSnapshot {
	var snap HostSnapshot
	if uptime, err := host.Uptime(); err == nil {
		snap.UptimeSeconds = uptime
	}
	if avg, err := load.Avg(); err == nil {
		snap.Load1 = avg.Load1
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		snap.MemUsedPercent = vm.UsedPercent
	}
	return snap
}

// BluetoothStatus returns the raw hciconfig output for the debug endpoint.
func BluetoothStatus(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "hciconfig").CombinedOutput()
	if err != nil {
		return string(out), err
	}
	return string(out), nil
}
