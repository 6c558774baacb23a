// Package bleparse extracts BLE device reports from the text output of the
// BLEeding tool. The tool has no defined output grammar, so this is
// best-effort line scraping: anything that looks like a MAC address is a
// device, and name/signal are guessed from patterns on the same line.
package bleparse

import (
	"regexp"
	"strconv"
	"strings"

	"vampgotchi/pkg/models"
)

// DeviceReport is one device extracted from scan output.
type DeviceReport struct {
	MAC  string // Canonical form: uppercase, colon-separated
	Name string // Truncated to models.NameLimit, "Unknown" if not matched
	RSSI int    // 0 if not matched
}

// Parser turns raw scan output into device reports.
type Parser interface {
	Parse(output string) []DeviceReport
}

var (
	macPattern = regexp.MustCompile(`([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})`)

	// Name patterns are tried in order against the line the MAC was found
	// on; the first match wins. The second pattern is built per MAC since
	// it anchors on the address itself.
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)name[:\s]+([^\n,]+)`),
		nil, // placeholder for the per-MAC pattern
		regexp.MustCompile(`(?i)device[:\s]+([^\n,]+)`),
	}

	rssiPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)rssi[:\s]+(-?\d+)`),
		regexp.MustCompile(`(?i)(-?\d+)\s*dBm`),
		regexp.MustCompile(`(?i)signal[:\s]+(-?\d+)`),
	}
)

// LineParser is the default Parser implementation.
type LineParser struct{}

// New returns the default line-oriented parser.
func New() *LineParser {
	return &LineParser{}
}

// NormalizeMAC converts a matched MAC substring to canonical form.
func NormalizeMAC(mac string) string {
	return strings.ToUpper(strings.ReplaceAll(mac, "-", ":"))
}

// Parse scans output line by line. Each MAC-shaped substring yields at most
// one report per call, keyed on its canonical form; repeats across lines are
// ignored. Name and signal are extracted from the first line the MAC
// appeared on.
func (p *LineParser) Parse(output string) []DeviceReport {
	var reports []DeviceReport
	seen := make(map[string]bool)

	for _, line := range strings.Split(output, "\n") {
		match := macPattern.FindString(line)
		if match == "" {
			continue
		}

		mac := NormalizeMAC(match)
		if seen[mac] {
			continue
		}
		seen[mac] = true

		reports = append(reports, DeviceReport{
			MAC:  mac,
			Name: models.TruncateName(extractName(line, mac)),
			RSSI: extractRSSI(line),
		})
	}

	return reports
}

func extractName(line, mac string) string {
	for _, pattern := range namePatterns {
		if pattern == nil {
			// "<name> <mac>" form, anchored on the canonical MAC but case
			// insensitive. Lines carrying the address in hyphenated form
			// will not match this one.
			pattern = regexp.MustCompile(`(?i)([A-Za-z0-9\s\-_]+)\s+` + regexp.QuoteMeta(mac))
		}
		if m := pattern.FindStringSubmatch(line); m != nil {
			if name := strings.TrimSpace(m[1]); name != "" {
				return name
			}
		}
	}
	return "Unknown"
}

func extractRSSI(line string) int {
	for _, pattern := range rssiPatterns {
		if m := pattern.FindStringSubmatch(line); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				return v
			}
		}
	}
	return 0
}
