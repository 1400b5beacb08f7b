package runner

import (
	"github.com/vovakirdan/candle-run/internal/config"
	"github.com/vovakirdan/candle-run/internal/core"
)

// Gap returns the spacing after a pattern. It narrows from BaseGap toward
// MinGap as difficulty rises, with a jitter factor drawn from r in [0, 1).
// The result always lies in [MinGap*0.9, BaseGap*1.15].
func Gap(spawn config.SpawnConfig, curve config.Curve, score int, elapsed, r float64) float64 {
	level := curve.Effective(score, elapsed)
	gap := core.Lerp(spawn.BaseGap, spawn.MinGap, level) * (0.9 + 0.25*r)
	return core.ClampF(gap, spawn.MinGap*0.9, spawn.BaseGap*1.15)
}

// MoveChance returns the probability that a freshly spawned candle bobs.
func MoveChance(spawn config.SpawnConfig, score int) float64 {
	if score < spawn.MoveScore {
		return 0
	}
	if spawn.MoveRamp <= 0 {
		return spawn.MoveMax
	}
	return min(spawn.MoveMax, float64(score-spawn.MoveScore)/spawn.MoveRamp)
}

// maybeSpawn places the next pattern once the run has covered nextSpawn.
func (e *Engine) maybeSpawn() {
	if e.distance < e.nextSpawn {
		return
	}

	tier := e.curve.Complexity(e.score, e.elapsed)
	choices := Patterns(tier)
	pattern := choices[Pick(e.rng.Next(), len(choices))]

	e.spawnPattern(pattern, e.cfg.Field.Width)

	extent := pattern.Extent(e.cfg.Candles.Width)
	gap := Gap(e.cfg.Spawn, e.curve, e.score, e.elapsed, e.rng.Next())
	e.nextSpawn = e.distance + extent + gap
}

// spawnPattern appends the pattern's candles starting at x. Candles beyond
// capacity are dropped, as is the power-up if its list is full.
func (e *Engine) spawnPattern(p Pattern, x float64) {
	spawn := e.cfg.Spawn
	ground := e.cfg.Field.GroundLevel
	moveChance := MoveChance(spawn, e.score)

	for _, s := range p {
		if len(e.candles) >= spawn.MaxCandles {
			break
		}
		c := NewCandle(e.nextCandleID, s.Kind, x+s.Offset, s.SizeMult, e.cfg.Candles, ground)
		e.nextCandleID++

		if moveChance > 0 && e.rng.Next() < moveChance {
			c.Moving = true
			c.Amplitude = e.cfg.Candles.MoveAmplitude
			c.Frequency = e.cfg.Candles.MoveFrequency
		}
		// Lifted hazards would leave no way past them, so only rewards fly.
		if s.Kind == Reward && e.score >= spawn.AirScore && e.rng.Next() < spawn.AirChance {
			c.Lift = e.cfg.Candles.AirLift
		}
		e.candles = append(e.candles, c)
	}

	if e.score < spawn.PowerUpScore || e.rng.Next() >= spawn.PowerUpChance {
		return
	}
	if len(e.powerUps) >= spawn.MaxPowerUps {
		return
	}
	kind := PowerUpKind(Pick(e.rng.Next(), int(powerUpKindCount)))
	mid := x + p.Extent(e.cfg.Candles.Width)/2 - e.cfg.PowerUps.Size/2
	e.powerUps = append(e.powerUps, NewPowerUp(e.nextPowerUpID, kind, mid, e.cfg.PowerUps, ground))
	e.nextPowerUpID++
}
