package runner

import (
	"fmt"
	"math"

	"github.com/vovakirdan/candle-run/internal/core"
)

// Visual characters for rendering
const (
	GroundChar    = '▔'
	BodyChar      = '█'
	WickChar      = '│'
	PlayerChar    = '▓'
	PlayerShield  = '▒'
	DustChar      = '·'
	SparkleChar   = '*'
	BurstChar     = '•'
	RingChar      = '°'
	TrailChar     = '˙'
	CollectedChar = '░'
)

// hudRows is the number of screen rows reserved above the field.
const hudRows = 1

// viewport maps world units to screen cells.
type viewport struct {
	sx, sy float64 // Cells per world unit
	ox, oy float64 // Shake offset in world units
	top    int
}

func newViewport(snap Snapshot, dst *core.Screen) viewport {
	fieldW := math.Max(snap.Field.Width, 1)
	fieldH := math.Max(snap.Field.Height, 1)
	return viewport{
		sx:  float64(dst.Width()) / fieldW,
		sy:  float64(max(dst.Height()-hudRows, 1)) / fieldH,
		ox:  snap.ShakeX,
		oy:  snap.ShakeY,
		top: hudRows,
	}
}

func (v viewport) col(x float64) int {
	return int(math.Floor((x + v.ox) * v.sx))
}

func (v viewport) row(y float64) int {
	return v.top + int(math.Floor((y+v.oy)*v.sy))
}

// rect converts a box to cells. Anything with area covers at least one cell.
func (v viewport) rect(b core.Box) core.Rect {
	x0, y0 := v.col(b.X), v.row(b.Y)
	x1, y1 := v.col(b.Right()), v.row(b.Bottom())
	return core.NewRect(x0, y0, max(x1-x0, 1), max(y1-y0, 1))
}

// Render draws a frame into dst. It reads the snapshot only.
func Render(snap Snapshot, dst *core.Screen) {
	dst.Clear()
	v := newViewport(snap, dst)

	ground := v.row(snap.Field.GroundLevel)
	dst.DrawHLine(0, ground, dst.Width(), GroundChar, snap.World.Color)

	for _, p := range snap.Particles {
		drawParticle(dst, v, p)
	}
	for _, c := range snap.Candles {
		drawCandle(dst, v, c)
	}
	for _, pu := range snap.PowerUps {
		drawPowerUp(dst, v, pu)
	}
	drawPlayer(dst, v, snap)
	drawHUD(dst, snap)
}

func drawCandle(dst *core.Screen, v viewport, c Candle) {
	color := core.ColorRed
	if c.Kind == Reward {
		color = core.ColorGreen
	}
	body := BodyChar
	if c.Collected {
		// Fade out over the collect animation.
		if c.CollectAnim > 0.5 {
			return
		}
		body = CollectedChar
		color = core.ColorBrightGreen
	}

	for _, wick := range []core.Box{c.UpperWick(), c.LowerWick()} {
		if wick.Empty() {
			continue
		}
		r := v.rect(wick)
		mid := r.X + r.W/2
		for y := r.Y; y < r.Bottom(); y++ {
			dst.SetColored(mid, y, WickChar, color)
		}
	}
	dst.DrawRect(v.rect(c.Body()), body, color)
}

func drawPowerUp(dst *core.Screen, v viewport, pu PowerUp) {
	if pu.Collected {
		return
	}
	b := pu.Box()
	color := core.ColorBrightCyan
	switch pu.Kind {
	case PowerUpMultiplier:
		color = core.ColorGold
	case PowerUpSlow:
		color = core.ColorBrightBlue
	}
	dst.SetColored(v.col(b.X+b.W/2), v.row(b.Y+b.H/2), pu.Kind.Glyph(), color)
}

func drawPlayer(dst *core.Screen, v viewport, snap Snapshot) {
	p := snap.Player
	// Blink while invincible.
	if p.Invincible > 0 && int(snap.Elapsed*12)%2 == 1 {
		return
	}

	// Squash widens and flattens the sprite; negative values stretch it.
	h := p.Size * (1 - p.Squash*0.5)
	w := p.Size * (1 + p.Squash*0.5)
	box := core.NewBox(p.X+(p.Size-w)/2, p.Y+p.Size-h, w, h)

	char := PlayerChar
	color := core.ColorYellow
	if p.HasShield {
		char = PlayerShield
		color = core.ColorBrightCyan
	}
	if snap.ShieldFlash > 0 {
		color = core.ColorBrightWhite
	}
	if !snap.Alive {
		color = core.ColorRed
	}
	dst.DrawRect(v.rect(box), char, color)
}

func drawParticle(dst *core.Screen, v viewport, p Particle) {
	var char rune
	switch p.Type {
	case ParticleDust:
		char = DustChar
	case ParticleSparkle:
		char = SparkleChar
	case ParticleBurst:
		char = BurstChar
	case ParticleRing:
		char = RingChar
	default:
		char = TrailChar
	}
	color := p.Color
	if p.Fade() < 0.3 {
		color = core.ColorGray
	}
	dst.SetColored(v.col(p.X), v.row(p.Y), char, color)
}

func drawHUD(dst *core.Screen, snap Snapshot) {
	left := fmt.Sprintf(" Score: %d  Combo: %d ", snap.Score, snap.Combo)
	dst.DrawTextColored(0, 0, left, core.ColorBrightWhite)

	x := len([]rune(left))
	if snap.Multiplier > 1 {
		mult := fmt.Sprintf("x%d %.1fs ", snap.Multiplier, snap.MultiplierTime)
		dst.DrawTextColored(x, 0, mult, core.ColorGold)
		x += len([]rune(mult))
	}
	if snap.SlowTime > 0 {
		slow := fmt.Sprintf("%c %.1fs ", PowerUpSlow.Glyph(), snap.SlowTime)
		dst.DrawTextColored(x, 0, slow, core.ColorBrightBlue)
		x += len([]rune(slow))
	}
	if snap.Player.HasShield {
		dst.SetColored(x, 0, PowerUpShield.Glyph(), core.ColorBrightCyan)
	}

	world := fmt.Sprintf(" %s ", snap.World.Label)
	speed := fmt.Sprintf(" %s ", snap.SpeedTier.Label)
	right := dst.Width() - len([]rune(world)) - len([]rune(speed))
	dst.DrawTextColored(right, 0, world, snap.World.Color)
	dst.DrawTextColored(right+len([]rune(world)), 0, speed, snap.SpeedTier.Color)
}
