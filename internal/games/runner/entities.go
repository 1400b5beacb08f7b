package runner

import (
	"math"

	"github.com/vovakirdan/candle-run/internal/config"
	"github.com/vovakirdan/candle-run/internal/core"
)

// Player is the runner avatar. X is fixed; Y is the top edge in world units.
type Player struct {
	X, Y       float64
	Size       float64
	VY         float64 // Vertical velocity, positive = down
	OnGround   bool
	Coyote     float64 // Seconds a ground jump is still allowed after leaving the ground
	JumpBuffer float64 // Seconds an early jump request stays queued
	JumpCount  int
	MaxJumps   int
	Invincible float64
	HasShield  bool

	// Cosmetic only.
	Rotation float64
	Squash   float64
	Tilt     float64
}

// NewPlayer places the player on the ground.
func NewPlayer(cfg config.RunnerConfig) Player {
	return Player{
		X:        cfg.Player.X,
		Y:        cfg.Field.GroundLevel - cfg.Player.Size,
		Size:     cfg.Player.Size,
		OnGround: true,
		Coyote:   cfg.Player.CoyoteTime,
		MaxJumps: 1,
	}
}

// Box returns the full player rectangle.
func (p Player) Box() core.Box {
	return core.NewBox(p.X, p.Y, p.Size, p.Size)
}

// Hitbox returns the collision rectangle, inset so grazes do not kill.
func (p Player) Hitbox(inset float64) core.Box {
	return p.Box().Inset(inset)
}

// CandleKind distinguishes obstacles from collectibles.
type CandleKind int

const (
	Hazard CandleKind = iota // Red candle, ends the run on contact
	Reward                   // Green candle, collected on contact
)

// String returns the name of the candle kind.
func (k CandleKind) String() string {
	switch k {
	case Hazard:
		return "hazard"
	case Reward:
		return "reward"
	default:
		return "unknown"
	}
}

// Candle is a spawned obstacle or collectible. Geometry is local to X and is
// derived once in NewCandle.
type Candle struct {
	ID       int
	Kind     CandleKind
	X        float64
	SizeMult float64

	body      core.Box
	upperWick core.Box
	lowerWick core.Box

	Lift      float64 // Constant upward offset of the airborne variant
	Moving    bool
	Amplitude float64
	Phase     float64
	Frequency float64

	Passed      bool
	Collected   bool    // Reward picked up
	Hit         bool    // Hazard absorbed by a shield
	CollectAnim float64 // 0..1
}

// NewCandle builds a candle standing on ground with its geometry scaled by sizeMult.
func NewCandle(id int, kind CandleKind, x, sizeMult float64, cfg config.CandleConfig, ground float64) Candle {
	w := cfg.Width * sizeMult
	bodyH := cfg.BodyHeight * sizeMult
	upper := bodyH * cfg.UpperWickRatio
	lower := bodyH * cfg.LowerWickRatio
	wickW := math.Min(cfg.WickWidth, w)
	wickX := (w - wickW) / 2

	bodyTop := ground - lower - bodyH
	return Candle{
		ID:        id,
		Kind:      kind,
		X:         x,
		SizeMult:  sizeMult,
		body:      core.NewBox(0, bodyTop, w, bodyH),
		upperWick: core.NewBox(wickX, bodyTop-upper, wickW, upper),
		lowerWick: core.NewBox(wickX, ground-lower, wickW, lower),
	}
}

// Width returns the body width.
func (c Candle) Width() float64 {
	return c.body.W
}

// Right returns the world x of the right edge.
func (c Candle) Right() float64 {
	return c.X + c.body.W
}

// YOffset is the current vertical displacement (negative = up).
// Moving candles bob between their rest height and Amplitude above it.
func (c Candle) YOffset() float64 {
	off := -c.Lift
	if c.Moving {
		off -= c.Amplitude * (0.5 - 0.5*math.Cos(c.Phase))
	}
	return off
}

// Body returns the body rectangle in world space.
func (c Candle) Body() core.Box {
	return c.body.Offset(c.X, c.YOffset())
}

// UpperWick returns the upper wick rectangle in world space.
func (c Candle) UpperWick() core.Box {
	return c.upperWick.Offset(c.X, c.YOffset())
}

// LowerWick returns the lower wick rectangle in world space.
func (c Candle) LowerWick() core.Box {
	return c.lowerWick.Offset(c.X, c.YOffset())
}

// Overlaps reports whether box touches the body or either wick.
func (c Candle) Overlaps(box core.Box) bool {
	return box.Intersects(c.Body()) || box.Intersects(c.UpperWick()) || box.Intersects(c.LowerWick())
}

// Height returns the full height from the upper wick tip to the lower wick end.
func (c Candle) Height() float64 {
	return c.upperWick.H + c.body.H + c.lowerWick.H
}

// PowerUpKind is the closed set of pickups.
type PowerUpKind int

const (
	PowerUpShield     PowerUpKind = iota // Absorbs one hazard hit
	PowerUpMultiplier                    // Timed score multiplier
	PowerUpSlow                          // Extends the scroll slow timer
	powerUpKindCount
)

// String returns the name of the power-up kind.
func (k PowerUpKind) String() string {
	switch k {
	case PowerUpShield:
		return "Shield"
	case PowerUpMultiplier:
		return "Multiplier"
	case PowerUpSlow:
		return "Slow"
	default:
		return "?"
	}
}

// Glyph returns the display character for a power-up kind.
func (k PowerUpKind) Glyph() rune {
	switch k {
	case PowerUpShield:
		return '◈'
	case PowerUpMultiplier:
		return '✕'
	case PowerUpSlow:
		return '⧗'
	default:
		return '?'
	}
}

// PowerUp is a floating pickup.
type PowerUp struct {
	ID          int
	Kind        PowerUpKind
	X           float64
	BaseY       float64
	Size        float64
	Amplitude   float64
	Phase       float64
	Collected   bool
	CollectAnim float64 // 0..1
}

// NewPowerUp creates a pickup hovering lift units above ground.
func NewPowerUp(id int, kind PowerUpKind, x float64, cfg config.PowerUpConfig, ground float64) PowerUp {
	return PowerUp{
		ID:        id,
		Kind:      kind,
		X:         x,
		BaseY:     ground - cfg.Lift - cfg.Size,
		Size:      cfg.Size,
		Amplitude: cfg.BobAmplitude,
	}
}

// Y returns the current top edge including the bob.
func (p PowerUp) Y() float64 {
	return p.BaseY + p.Amplitude*math.Sin(p.Phase)
}

// Box returns the pickup rectangle in world space.
func (p PowerUp) Box() core.Box {
	return core.NewBox(p.X, p.Y(), p.Size, p.Size)
}

// ParticleType is a render hint for particles.
type ParticleType int

const (
	ParticleDust ParticleType = iota
	ParticleSparkle
	ParticleBurst
	ParticleRing
	ParticleTrail
)

// Particle is a purely cosmetic, self-expiring effect.
type Particle struct {
	X, Y     float64
	VX, VY   float64
	Life     float64
	MaxLife  float64
	Size     float64
	Color    core.Color
	Gravity  float64
	Friction float64
	Type     ParticleType
}

// Alive reports whether the particle still has life left.
func (p Particle) Alive() bool {
	return p.Life > 0
}

// Fade returns remaining life as a fraction in [0, 1].
func (p Particle) Fade() float64 {
	if p.MaxLife <= 0 {
		return 0
	}
	return core.ClampF(p.Life/p.MaxLife, 0, 1)
}
