package runner

import "github.com/vovakirdan/candle-run/internal/config"

// ScoreView is the throttled projection handed to score observers.
type ScoreView struct {
	Score int
	Combo int
	World string
	Speed string
}

// Snapshot is a read-only copy of the engine state for one frame.
// Slices are copies; mutating them does not affect the engine.
type Snapshot struct {
	Field     config.FieldConfig
	Player    Player
	Candles   []Candle
	PowerUps  []PowerUp
	Particles []Particle

	Score      int
	Combo      int
	MaxCombo   int
	Multiplier int

	MultiplierTime float64
	SlowTime       float64
	ShieldFlash    float64
	ShakeX, ShakeY float64

	Speed     float64
	Distance  float64
	Elapsed   float64
	World     Tier
	SpeedTier Tier

	Alive     bool
	Dodged    int
	Collected int
}

// Snapshot copies the current state.
func (e *Engine) Snapshot() Snapshot {
	candles := make([]Candle, len(e.candles))
	copy(candles, e.candles)
	powerUps := make([]PowerUp, len(e.powerUps))
	copy(powerUps, e.powerUps)

	return Snapshot{
		Field:          e.cfg.Field,
		Player:         e.player,
		Candles:        candles,
		PowerUps:       powerUps,
		Particles:      e.particles.Snapshot(),
		Score:          e.score,
		Combo:          e.combo,
		MaxCombo:       e.maxCombo,
		Multiplier:     e.multiplier,
		MultiplierTime: e.multiplierTimer,
		SlowTime:       e.slow,
		ShieldFlash:    e.shieldFlash,
		ShakeX:         e.shakeX,
		ShakeY:         e.shakeY,
		Speed:          e.speed,
		Distance:       e.distance,
		Elapsed:        e.elapsed,
		World:          e.World(),
		SpeedTier:      e.SpeedTier(),
		Alive:          e.alive,
		Dodged:         e.dodged,
		Collected:      e.collected,
	}
}

// View returns the observer projection of the snapshot.
func (s Snapshot) View() ScoreView {
	return ScoreView{
		Score: s.Score,
		Combo: s.Combo,
		World: s.World.Label,
		Speed: s.SpeedTier.Label,
	}
}
