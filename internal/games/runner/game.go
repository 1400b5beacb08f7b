package runner

import (
	"github.com/vovakirdan/candle-run/internal/config"
	"github.com/vovakirdan/candle-run/internal/core"
	"github.com/vovakirdan/candle-run/internal/registry"
)

// GameID is the registry key and score table key of the runner.
const GameID = "candles"

// Game adapts an Engine to the registry.Game contract. Each Reset builds a
// new Engine from the current config.
type Game struct {
	cfg     config.RunnerConfig
	engine  *Engine
	runtime core.RuntimeConfig
}

// New creates a runner with the built-in config.
func New() *Game {
	return NewWithConfig(config.DefaultRunnerConfig())
}

// NewWithConfig creates a runner with the given config.
func NewWithConfig(cfg config.RunnerConfig) *Game {
	return &Game{cfg: cfg, runtime: core.DefaultConfig()}
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return GameID
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Candle Run"
}

// SetConfig replaces the config. It takes effect on the next Reset.
func (g *Game) SetConfig(cfg config.RunnerConfig) {
	g.cfg = cfg
}

// Config returns the config the next Reset will use.
func (g *Game) Config() config.RunnerConfig {
	return g.cfg
}

// Reset starts a new run. Gameplay and particles draw from separate
// streams derived from the same seed.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime
	g.engine = NewEngine(g.cfg, runtime.StepSeconds(),
		NewSource(runtime.Seed), NewSource(runtime.Seed^fxSeedSalt))
}

// Step advances the run by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.engine == nil {
		g.Reset(g.runtime)
	}
	wasAlive := g.engine.Alive()
	g.engine.Step(Input{Jump: in.Has(core.ActionJump)})
	return core.StepResult{
		State: g.engine.State(),
		Died:  wasAlive && !g.engine.Alive(),
	}
}

// Render draws the current frame.
func (g *Game) Render(dst *core.Screen) {
	if g.engine == nil {
		dst.Clear()
		return
	}
	Render(g.engine.Snapshot(), dst)
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	if g.engine == nil {
		return core.GameState{Alive: true}
	}
	return g.engine.State()
}

// Engine exposes the running engine, or nil before the first Reset.
func (g *Game) Engine() *Engine {
	return g.engine
}

func init() {
	registry.Register(GameID, func() registry.Game {
		return New()
	})
}
