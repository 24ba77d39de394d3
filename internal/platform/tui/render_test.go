package tui

import (
	"testing"

	"github.com/vovakirdan/beatrate/internal/scheduler"
)

func TestFormatScore(t *testing.T) {
	tests := []struct {
		score float32
		want  string
	}{
		{scheduler.Sentinel, "n/a"},
		{0, "0.00"},
		{3.14159, "3.14"},
		{12.5, "12.50"},
	}
	for _, tt := range tests {
		if got := FormatScore(tt.score); got != tt.want {
			t.Errorf("FormatScore(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate kept %q, want short", got)
	}
	if got := truncate("a long chart name", 6); got != "a lon." {
		t.Errorf("truncate = %q, want %q", got, "a lon.")
	}
	if got := truncate("ナイトオブナイツ", 4); got != "ナイト." {
		t.Errorf("truncate counts runes, got %q", got)
	}
}

func TestCenterText(t *testing.T) {
	if got := centerText("ab", 6); got != "  ab" {
		t.Errorf("centerText = %q, want %q", got, "  ab")
	}
	if got := centerText("abcdef", 4); got != "abcdef" {
		t.Errorf("centerText should not cut wide text, got %q", got)
	}
}
