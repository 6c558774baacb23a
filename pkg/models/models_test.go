package models

import (
	"testing"
	"unicode/utf8"
)

func TestTruncateName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short untouched", "ring-01", "ring-01"},
		{"exactly at limit", "12345678901234567890", "12345678901234567890"},
		{"over limit", "123456789012345678901", "12345678901234567890"},
		{"multibyte runes kept whole", "Lämpömittari makuuhuone", "Lämpömittari makuuhu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateName(tt.in)
			if got != tt.want {
				t.Errorf("TruncateName(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("TruncateName(%q) produced invalid UTF-8", tt.in)
			}
		})
	}
}
