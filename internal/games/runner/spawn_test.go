package runner

import (
	"reflect"
	"testing"

	"github.com/vovakirdan/candle-run/internal/config"
)

func TestStartingComplexityIsSingles(t *testing.T) {
	cfg := config.DefaultRunnerConfig()
	curve := config.NewCurve(cfg.Difficulty)

	tier := curve.Complexity(0, 0)
	if tier != 0 {
		t.Fatalf("Complexity(0, 0) = %d, expected 0", tier)
	}
	for i, p := range Patterns(tier) {
		if len(p) != 1 {
			t.Errorf("tier 0 pattern %d has %d candles, expected 1", i, len(p))
		}
	}
}

func TestPatternsClearable(t *testing.T) {
	base := config.DefaultRunnerConfig().Candles.Width

	for tier := 0; tier <= config.MaxComplexity; tier++ {
		patterns := Patterns(tier)
		if len(patterns) == 0 {
			t.Errorf("tier %d has no patterns", tier)
		}
		for i, p := range patterns {
			if len(p) == 0 {
				t.Errorf("tier %d pattern %d is empty", tier, i)
			}
			for _, s := range p {
				if s.SizeMult <= 0 || s.SizeMult > MaxClearableSize {
					t.Errorf("tier %d pattern %d: size %.2f outside (0, %.2f]", tier, i, s.SizeMult, MaxClearableSize)
				}
				if s.Offset < 0 {
					t.Errorf("tier %d pattern %d: negative offset %.1f", tier, i, s.Offset)
				}
			}
			if span := p.HazardSpan(base); span > MaxHazardSpan {
				t.Errorf("tier %d pattern %d: hazard span %.1f exceeds %.1f", tier, i, span, MaxHazardSpan)
			}
		}
	}
}

// clearsWithOneJump reports whether some jump timing carries the player over
// every hazard of p. Hazards are held at the top of their bob for the whole
// approach, and the world scrolls at the speed tier reached at score.
func clearsWithOneJump(t *testing.T, p Pattern, score int) bool {
	t.Helper()
	for jumpAt := 0; jumpAt < 60; jumpAt++ {
		e := quietEngine(t)
		e.score = score
		e.speed = e.cfg.Physics.BaseSpeed * e.speeds.At(score).Multiplier
		for _, s := range p {
			if s.Kind != Hazard {
				continue
			}
			c := NewCandle(e.nextCandleID, Hazard, 400+s.Offset, s.SizeMult, e.cfg.Candles, e.cfg.Field.GroundLevel)
			c.Lift = e.cfg.Candles.MoveAmplitude
			e.nextCandleID++
			e.candles = append(e.candles, c)
		}

		for step := 0; step < 400 && e.Alive(); step++ {
			e.Step(Input{Jump: step == jumpAt})
			cleared := true
			for _, c := range e.candles {
				cleared = cleared && c.Passed
			}
			if cleared {
				break
			}
		}
		if e.Alive() {
			return true
		}
	}
	return false
}

func TestMovingPatternsJumpable(t *testing.T) {
	speeds := config.DefaultRunnerConfig().Speeds
	tests := []struct {
		name  string
		score int
	}{
		{"base speed", 0},
		{"top speed", speeds[len(speeds)-1].Threshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for tier := 0; tier <= config.MaxComplexity; tier++ {
				for i, p := range Patterns(tier) {
					if !clearsWithOneJump(t, p, tt.score) {
						t.Errorf("tier %d pattern %d cannot be cleared with fully lifted hazards", tier, i)
					}
				}
			}
		})
	}
}

func TestPatternsClampTier(t *testing.T) {
	if !reflect.DeepEqual(Patterns(-1), Patterns(0)) {
		t.Error("negative tier should clamp to 0")
	}
	if !reflect.DeepEqual(Patterns(99), Patterns(config.MaxComplexity)) {
		t.Error("large tier should clamp to the last tier")
	}
}

func TestPatternExtent(t *testing.T) {
	p := Pattern{hz(0, 1.0), rw(90, 0.5)}
	if got := p.Extent(24); got != 102 {
		t.Errorf("Extent = %f, expected 102", got)
	}
	if got := p.HazardSpan(24); got != 24 {
		t.Errorf("HazardSpan = %f, expected 24", got)
	}
	if got := (Pattern{rw(0, 1)}).HazardSpan(24); got != 0 {
		t.Errorf("HazardSpan without hazards = %f, expected 0", got)
	}
}

func TestGapBounds(t *testing.T) {
	cfg := config.DefaultRunnerConfig()
	lo := cfg.Spawn.MinGap * 0.9
	hi := cfg.Spawn.BaseGap * 1.15

	curves := map[string]config.Curve{
		"default": config.NewCurve(cfg.Difficulty),
		"fixed":   config.NewCurve(config.DifficultyConfig{Enabled: false, FixedLevel: 0.9}),
		"steep":   config.NewCurve(config.DifficultyConfig{Enabled: true, K: 1, WarmupMin: 1}),
	}
	scores := []int{0, 10, 500, 2500, 10000, 1 << 30}
	elapsed := []float64{0, 2, 8, 600}
	draws := []float64{0, 0.25, 0.5, 0.75, 0.999999}

	for name, curve := range curves {
		t.Run(name, func(t *testing.T) {
			for _, s := range scores {
				for _, el := range elapsed {
					for _, r := range draws {
						g := Gap(cfg.Spawn, curve, s, el, r)
						if g < lo || g > hi {
							t.Errorf("Gap(score=%d, elapsed=%.0f, r=%.2f) = %.2f outside [%.1f, %.1f]", s, el, r, g, lo, hi)
						}
					}
				}
			}
		})
	}
}

func TestGapNarrowsWithScore(t *testing.T) {
	cfg := config.DefaultRunnerConfig()
	curve := config.NewCurve(cfg.Difficulty)

	early := Gap(cfg.Spawn, curve, 0, 60, 0.5)
	late := Gap(cfg.Spawn, curve, 20000, 60, 0.5)
	if late >= early {
		t.Errorf("gap at high score %.1f should be below gap at start %.1f", late, early)
	}
}

func TestMoveChance(t *testing.T) {
	spawn := config.DefaultRunnerConfig().Spawn

	tests := []struct {
		name     string
		score    int
		expected float64
	}{
		{"below threshold", spawn.MoveScore - 1, 0},
		{"at threshold", spawn.MoveScore, 0},
		{"ramping", spawn.MoveScore + int(spawn.MoveRamp/10), 0.1},
		{"capped", 1 << 30, spawn.MoveMax},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MoveChance(spawn, tc.score)
			if diff := got - tc.expected; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("MoveChance(%d) = %f, expected %f", tc.score, got, tc.expected)
			}
		})
	}
}

func TestSpawnSchedulesNextPattern(t *testing.T) {
	e := quietEngine(t)
	e.nextSpawn = 0

	e.Step(Input{})

	if len(e.candles) == 0 {
		t.Fatal("expected a pattern to spawn")
	}
	if e.nextCandleID != len(e.candles) {
		t.Errorf("nextCandleID = %d, expected %d", e.nextCandleID, len(e.candles))
	}
	ahead := e.nextSpawn - e.distance
	if ahead < e.cfg.Spawn.MinGap*0.9 {
		t.Errorf("next spawn only %.1f ahead", ahead)
	}
	for _, c := range e.candles {
		if c.X < e.cfg.Field.Width {
			t.Errorf("candle %d spawned on screen at x=%.1f", c.ID, c.X)
		}
	}
}

func TestSpawnVariants(t *testing.T) {
	t.Run("all variants roll in", func(t *testing.T) {
		e := quietEngine(t)
		e.rng = &seqSource{vals: []float64{0}}
		e.score = 100000

		e.spawnPattern(Pattern{hz(0, 1), rw(60, 1)}, 900)

		hazard, reward := e.candles[0], e.candles[1]
		if !hazard.Moving || !reward.Moving {
			t.Error("expected both candles to move")
		}
		if hazard.Lift != 0 {
			t.Error("hazards must never be airborne")
		}
		if reward.Lift != e.cfg.Candles.AirLift {
			t.Errorf("reward lift = %f, expected %f", reward.Lift, e.cfg.Candles.AirLift)
		}
		if len(e.powerUps) != 1 || e.powerUps[0].Kind != PowerUpShield {
			t.Errorf("expected one shield power-up, got %+v", e.powerUps)
		}
	})

	t.Run("no variants at start", func(t *testing.T) {
		e := quietEngine(t)
		e.rng = &seqSource{vals: []float64{0}}

		e.spawnPattern(Pattern{hz(0, 1), rw(60, 1)}, 900)

		for _, c := range e.candles {
			if c.Moving || c.Lift != 0 {
				t.Errorf("candle %d has variants before their score thresholds", c.ID)
			}
		}
		if len(e.powerUps) != 0 {
			t.Error("no power-ups before their score threshold")
		}
	})

	t.Run("unlucky draws", func(t *testing.T) {
		e := quietEngine(t)
		e.rng = &seqSource{vals: []float64{0.99}}
		e.score = 100000

		e.spawnPattern(Pattern{hz(0, 1), rw(60, 1)}, 900)

		for _, c := range e.candles {
			if c.Moving || c.Lift != 0 {
				t.Errorf("candle %d rolled a variant on a 0.99 draw", c.ID)
			}
		}
		if len(e.powerUps) != 0 {
			t.Error("no power-up on a 0.99 draw")
		}
	})
}

func TestSpawnTruncatesAtCapacity(t *testing.T) {
	e := quietEngine(t)
	for len(e.candles) < e.cfg.Spawn.MaxCandles-1 {
		e.candles = append(e.candles, NewCandle(e.nextCandleID, Hazard, 2000, 1, e.cfg.Candles, e.cfg.Field.GroundLevel))
		e.nextCandleID++
	}

	e.spawnPattern(Patterns(config.MaxComplexity)[0], 900)

	if len(e.candles) != e.cfg.Spawn.MaxCandles {
		t.Errorf("len(candles) = %d, expected %d", len(e.candles), e.cfg.Spawn.MaxCandles)
	}
}

func TestDeterministicRuns(t *testing.T) {
	cfg := config.DefaultRunnerConfig()
	a := NewEngine(cfg, testDT, NewSource(7), NewSource(7^fxSeedSalt))
	b := NewEngine(cfg, testDT, NewSource(7), NewSource(7^fxSeedSalt))

	for i := 0; i < 1200; i++ {
		in := Input{Jump: i%40 == 0}
		a.Step(in)
		b.Step(in)
	}

	if !reflect.DeepEqual(a.Snapshot(), b.Snapshot()) {
		t.Error("same seed and inputs should produce identical snapshots")
	}
}

func TestParticlesDoNotAffectGameplay(t *testing.T) {
	cfg := config.DefaultRunnerConfig()
	a := NewEngine(cfg, testDT, NewSource(7), NewSource(1))
	b := NewEngine(cfg, testDT, NewSource(7), NewSource(99))

	for i := 0; i < 1200; i++ {
		in := Input{Jump: i%40 == 0}
		a.Step(in)
		b.Step(in)
	}

	if a.score != b.score || a.distance != b.distance || a.alive != b.alive {
		t.Errorf("runs diverged: score %d/%d alive %v/%v", a.score, b.score, a.alive, b.alive)
	}
	if !reflect.DeepEqual(a.candles, b.candles) {
		t.Error("candle streams diverged with different cosmetic seeds")
	}
}
