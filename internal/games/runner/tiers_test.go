package runner

import (
	"testing"

	"github.com/vovakirdan/candle-run/internal/config"
	"github.com/vovakirdan/candle-run/internal/core"
)

func TestTierLookup(t *testing.T) {
	worlds := NewTierTable(config.DefaultRunnerConfig().Worlds)

	tests := []struct {
		score    int
		expected string
	}{
		{0, "Genesis"},
		{999, "Genesis"},
		{1000, "Bull Run"},
		{2499, "Bull Run"},
		{2500, "To The Moon"},
		{5000, "Galaxy"},
		{1 << 30, "Galaxy"},
	}

	for _, tc := range tests {
		if got := worlds.At(tc.score).Label; got != tc.expected {
			t.Errorf("At(%d) = %q, expected %q", tc.score, got, tc.expected)
		}
	}
}

func TestTierColorsResolved(t *testing.T) {
	worlds := NewTierTable(config.DefaultRunnerConfig().Worlds)
	if worlds[0].Color != core.ColorGreen {
		t.Errorf("first world color = %v, expected green", worlds[0].Color)
	}
}

func TestEmptyTierTable(t *testing.T) {
	table := NewTierTable(nil)
	tier := table.At(12345)
	if tier.Multiplier != 1 || tier.Threshold != 0 {
		t.Errorf("empty table should yield a neutral tier, got %+v", tier)
	}
}

func TestSpeedTierRaisesTarget(t *testing.T) {
	e := quietEngine(t)
	e.score = 6000
	for i := 0; i < 240; i++ {
		e.Step(Input{})
	}

	want := e.cfg.Physics.BaseSpeed * e.speeds.At(e.score).Multiplier
	if diff := e.speed - want; diff > 1 || diff < -1 {
		t.Errorf("speed = %f, expected about %f", e.speed, want)
	}
	if e.SpeedTier().Label != "Ludicrous" {
		t.Errorf("speed tier = %q, expected Ludicrous", e.SpeedTier().Label)
	}
}
