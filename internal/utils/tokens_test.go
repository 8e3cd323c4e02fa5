package utils_test

import (
	"strings"
	"testing"

	"github.com/KaramelBytes/tabsight/internal/utils"
)

func TestCountTokens(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"short", "ab", 1},
		{"simple", "hello world", 2},
		{"runes", strings.Repeat("é", 8), 2},
		{"long", strings.Repeat("a", 4000), 1000},
	}
	for _, c := range cases {
		if got := utils.CountTokens(c.in); got != c.want {
			t.Errorf("%s: got %d want %d", c.name, got, c.want)
		}
	}
}

func TestTokenBreakdown(t *testing.T) {
	got := utils.TokenBreakdown(map[string]string{"system": "12345678", "user": ""})
	if got["system"] != 2 || got["user"] != 0 {
		t.Fatalf("unexpected breakdown: %v", got)
	}
}

func TestExceedsWindow(t *testing.T) {
	if utils.ExceedsWindow(100, 50, 0) {
		t.Fatalf("unknown window should not overflow")
	}
	if !utils.ExceedsWindow(100, 50, 120) {
		t.Fatalf("expected overflow")
	}
	if utils.ExceedsWindow(100, 20, 120) {
		t.Fatalf("exact fit should not overflow")
	}
}
