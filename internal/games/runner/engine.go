// Package runner implements the candle runner simulation: a fixed-step
// physics, collision and spawn engine plus its terminal renderer.
package runner

import (
	"github.com/vovakirdan/candle-run/internal/config"
	"github.com/vovakirdan/candle-run/internal/core"
)

// Input is the per-step intent from the host.
type Input struct {
	Jump bool
}

// TerminalStats summarizes a finished run.
type TerminalStats struct {
	Score           int
	SurvivalTime    float64 // Seconds
	ObstaclesDodged int
	Collected       int
	MaxCombo        int
	World           string
	Speed           string
	Distance        float64
}

// Engine owns the state of one run. It has a single writer: all mutation goes
// through Step. Readers use Snapshot.
type Engine struct {
	cfg    config.RunnerConfig
	curve  config.Curve
	worlds TierTable
	speeds TierTable
	rng    Source  // Gameplay draws (spawns, variants, power-ups)
	fx     Source  // Cosmetic draws only
	dt     float64 // Fixed step in seconds

	player    Player
	candles   []Candle
	powerUps  []PowerUp
	particles *Pool

	speed    float64 // Current scroll speed, world units per second
	distance float64
	score    int
	combo    int
	maxCombo int

	slow            float64 // Remaining slow-motion seconds
	multiplier      int
	multiplierTimer float64
	shieldFlash     float64
	shake           float64
	shakeX, shakeY  float64

	nextSpawn     float64 // Distance at which the next pattern spawns
	nextCandleID  int
	nextPowerUpID int

	world     int // Index into worlds
	speedTier int // Index into speeds
	elapsed   float64
	alive     bool

	dodged     int
	collected  int
	trailTimer float64
	stats      TerminalStats
}

// NewEngine builds a fresh run. cfg should already be validated.
// rng drives gameplay; fx drives particles and must be a distinct source.
func NewEngine(cfg config.RunnerConfig, dt float64, rng, fx Source) *Engine {
	if dt <= 0 {
		dt = 1.0 / 60.0
	}
	e := &Engine{
		cfg:        cfg,
		curve:      config.NewCurve(cfg.Difficulty),
		worlds:     NewTierTable(cfg.Worlds),
		speeds:     NewTierTable(cfg.Speeds),
		rng:        rng,
		fx:         fx,
		dt:         dt,
		player:     NewPlayer(cfg),
		candles:    make([]Candle, 0, max(cfg.Spawn.MaxCandles, 1)),
		powerUps:   make([]PowerUp, 0, max(cfg.Spawn.MaxPowerUps, 1)),
		particles:  NewPool(cfg.Particles.Max),
		speed:      cfg.Physics.BaseSpeed,
		multiplier: 1,
		nextSpawn:  cfg.Spawn.FirstSpawn,
		alive:      true,
	}
	return e
}

// Alive reports whether the run is still going.
func (e *Engine) Alive() bool {
	return e.alive
}

// Score returns the current score.
func (e *Engine) Score() int {
	return e.score
}

// Elapsed returns simulated seconds since the run started.
func (e *Engine) Elapsed() float64 {
	return e.elapsed
}

// Stats returns the terminal statistics. ok is false while the run is alive.
func (e *Engine) Stats() (TerminalStats, bool) {
	if e.alive {
		return TerminalStats{}, false
	}
	return e.stats, true
}

// World returns the active world tier.
func (e *Engine) World() Tier {
	return e.worlds[e.world]
}

// SpeedTier returns the active speed tier.
func (e *Engine) SpeedTier() Tier {
	return e.speeds[e.speedTier]
}

// View returns the score projection for observers.
func (e *Engine) View() ScoreView {
	return ScoreView{
		Score: e.score,
		Combo: e.combo,
		World: e.World().Label,
		Speed: e.SpeedTier().Label,
	}
}

// State adapts the engine to the platform's game state.
func (e *Engine) State() core.GameState {
	return core.GameState{
		Score: e.score,
		Alive: e.alive,
		Combo: e.combo,
		World: e.World().Label,
		Speed: e.SpeedTier().Label,
	}
}

func (e *Engine) die() {
	e.alive = false
	e.shake = e.cfg.Effects.ShakeTime
	e.emitBurst(e.player.X+e.player.Size/2, e.player.Y+e.player.Size/2, core.ColorRed)
	e.stats = TerminalStats{
		Score:           e.score,
		SurvivalTime:    e.elapsed,
		ObstaclesDodged: e.dodged,
		Collected:       e.collected,
		MaxCombo:        e.maxCombo,
		World:           e.World().Label,
		Speed:           e.SpeedTier().Label,
		Distance:        e.distance,
	}
}
