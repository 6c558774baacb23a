package bleparse

import (
	"strings"
	"testing"
)

func TestParse_NormalizesMACForms(t *testing.T) {
	p := New()

	tests := []struct {
		name string
		line string
		want string
	}{
		{"colon uppercase", "found AA:BB:CC:DD:EE:FF nearby", "AA:BB:CC:DD:EE:FF"},
		{"colon lowercase", "found aa:bb:cc:dd:ee:ff nearby", "AA:BB:CC:DD:EE:FF"},
		{"hyphen delimited", "found aa-bb-cc-dd-ee-ff nearby", "AA:BB:CC:DD:EE:FF"},
		{"mixed case", "found Aa:bB:cC:Dd:Ee:fF nearby", "AA:BB:CC:DD:EE:FF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reports := p.Parse(tt.line)
			if len(reports) != 1 {
				t.Fatalf("expected 1 report, got %d", len(reports))
			}
			if reports[0].MAC != tt.want {
				t.Errorf("expected MAC %s, got %s", tt.want, reports[0].MAC)
			}
		})
	}
}

func TestParse_DeduplicatesAcrossLines(t *testing.T) {
	output := strings.Join([]string{
		"AA:BB:CC:DD:EE:FF RSSI: -40",
		"aa:bb:cc:dd:ee:ff RSSI: -45",
		"AA-BB-CC-DD-EE-FF RSSI: -50",
		"11:22:33:44:55:66",
	}, "\n")

	reports := New().Parse(output)
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].MAC != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("expected first report AA:BB:CC:DD:EE:FF, got %s", reports[0].MAC)
	}
	if reports[1].MAC != "11:22:33:44:55:66" {
		t.Errorf("expected second report 11:22:33:44:55:66, got %s", reports[1].MAC)
	}
	// First line wins for attributes
	if reports[0].RSSI != -40 {
		t.Errorf("expected RSSI -40 from first occurrence, got %d", reports[0].RSSI)
	}
}

func TestParse_NoMACYieldsNothing(t *testing.T) {
	output := strings.Join([]string{
		"Scanning for devices...",
		"no hex pairs here",
		"almost a mac AA:BB:CC:DD:EE",
		"",
	}, "\n")

	if reports := New().Parse(output); len(reports) != 0 {
		t.Fatalf("expected no reports, got %d", len(reports))
	}
}

func TestParse_NamePatterns(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"name keyword", "name: Kitchen Speaker AA:BB:CC:DD:EE:FF", "Kitchen Speaker AA:B"},
		{"name before mac", "ring-01 AA:BB:CC:DD:EE:FF RSSI: -42", "ring-01"},
		{"name before lowercase mac", "ring-01 aa:bb:cc:dd:ee:ff RSSI: -42", "ring-01"},
		{"device keyword", "Device: ring-01 AA:BB:CC:DD:EE:FF RSSI: -42", "ring-01"},
		{"no pattern", "?? AA:BB:CC:DD:EE:FF ??", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reports := New().Parse(tt.line)
			if len(reports) != 1 {
				t.Fatalf("expected 1 report, got %d", len(reports))
			}
			if reports[0].Name != tt.want {
				t.Errorf("expected name %q, got %q", tt.want, reports[0].Name)
			}
		})
	}
}

func TestParse_NameTruncatedToLimit(t *testing.T) {
	line := "name: AbsurdlyLongDeviceNameThatKeepsGoing AA:BB:CC:DD:EE:FF"
	reports := New().Parse(line)
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	if len(reports[0].Name) != 20 {
		t.Errorf("expected name truncated to 20 chars, got %d (%q)", len(reports[0].Name), reports[0].Name)
	}
}

func TestParse_RSSIPatterns(t *testing.T) {
	tests := []struct {
		name string
		line string
		want int
	}{
		{"rssi keyword", "AA:BB:CC:DD:EE:FF RSSI: -42", -42},
		{"dbm suffix", "AA:BB:CC:DD:EE:FF at -67 dBm", -67},
		{"signal keyword", "AA:BB:CC:DD:EE:FF signal: -80", -80},
		{"no pattern", "AA:BB:CC:DD:EE:FF", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reports := New().Parse(tt.line)
			if len(reports) != 1 {
				t.Fatalf("expected 1 report, got %d", len(reports))
			}
			if reports[0].RSSI != tt.want {
				t.Errorf("expected RSSI %d, got %d", tt.want, reports[0].RSSI)
			}
		})
	}
}

func TestParse_TypicalDeviceLine(t *testing.T) {
	reports := New().Parse("Device: ring-01 AA:BB:CC:DD:EE:FF RSSI: -42")
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	r := reports[0]
	if r.MAC != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("unexpected MAC %s", r.MAC)
	}
	if r.RSSI != -42 {
		t.Errorf("unexpected RSSI %d", r.RSSI)
	}
	if r.Name == "Unknown" || r.Name == "" {
		t.Errorf("expected a name derived from the line, got %q", r.Name)
	}
}
