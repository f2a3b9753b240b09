package ui

import (
	"strings"
	"testing"

	"traffic-ca/internal/road"
)

func TestStatsTextRoad(t *testing.T) {
	cfg, ok := road.Preset("Road1")
	if !ok {
		t.Fatal("missing Road1 preset")
	}
	r := road.NewRoad(cfg, 8)
	r.Reset(7)
	r.Step()

	text := StatsText(r)
	for _, want := range []string{"Road1", "tick 1", "cars 40", "mean speed", "flow", "[Traffic]", "limit=6"} {
		if !strings.Contains(text, want) {
			t.Fatalf("overlay text missing %q:\n%s", want, text)
		}
	}
}

func TestStatsTextBeforeReset(t *testing.T) {
	r := road.NewRoad(road.DefaultConfig(), 8)
	text := StatsText(r)
	if strings.Contains(text, "tick") {
		t.Fatalf("unexpected stats before reset:\n%s", text)
	}
	if !strings.Contains(text, "[Road]") {
		t.Fatalf("expected parameters in text:\n%s", text)
	}
}
