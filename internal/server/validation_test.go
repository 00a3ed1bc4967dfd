package server

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name", "photo.jpg", "photo.jpg"},
		{"unix path stripped", "/etc/passwd", "passwd"},
		{"relative path stripped", "../../secret.txt", "secret.txt"},
		{"windows path stripped", `C:\Users\me\doc.pdf`, "doc.pdf"},
		{"null bytes removed", "a\x00b.txt", "ab.txt"},
		{"leading dots trimmed", "..hidden", "hidden"},
		{"trailing spaces trimmed", "report.csv  ", "report.csv"},
		{"empty becomes unnamed", "", "unnamed"},
		{"only dots becomes unnamed", "...", "unnamed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeFilename(tt.in); got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename_LongNameKeepsExtension(t *testing.T) {
	long := strings.Repeat("a", 300) + ".png"
	got := sanitizeFilename(long)

	if len(got) > 255 {
		t.Errorf("expected length <= 255, got %d", len(got))
	}
	if !strings.HasSuffix(got, ".png") {
		t.Errorf("expected extension preserved, got %q", got)
	}
}
