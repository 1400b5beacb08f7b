package runner

import (
	"math"

	"github.com/vovakirdan/candle-run/internal/core"
)

// Pool is a fixed-capacity ring of particles. Pushing into a full pool
// overwrites the oldest particle.
type Pool struct {
	buf   []Particle
	start int // Index of the oldest particle
	n     int
}

// NewPool creates a pool holding at most capacity particles (minimum 1).
func NewPool(capacity int) *Pool {
	return &Pool{buf: make([]Particle, max(capacity, 1))}
}

// Len returns the number of live particles.
func (p *Pool) Len() int {
	return p.n
}

// Cap returns the pool capacity.
func (p *Pool) Cap() int {
	return len(p.buf)
}

// Push adds a particle, evicting the oldest when full.
func (p *Pool) Push(pt Particle) {
	size := len(p.buf)
	if p.n < size {
		p.buf[(p.start+p.n)%size] = pt
		p.n++
		return
	}
	p.buf[p.start] = pt
	p.start = (p.start + 1) % size
}

// Step integrates every particle and drops the expired ones, keeping order.
func (p *Pool) Step(dt float64) {
	size := len(p.buf)
	kept := 0
	for i := 0; i < p.n; i++ {
		pt := p.buf[(p.start+i)%size]

		pt.VY += pt.Gravity * dt
		damp := math.Max(0, 1-pt.Friction*dt)
		pt.VX *= damp
		pt.VY *= damp
		pt.X += pt.VX * dt
		pt.Y += pt.VY * dt
		pt.Life -= dt

		if !pt.Alive() {
			continue
		}
		p.buf[(p.start+kept)%size] = pt
		kept++
	}
	p.n = kept
}

// Snapshot copies the live particles, oldest first.
func (p *Pool) Snapshot() []Particle {
	out := make([]Particle, p.n)
	for i := range out {
		out[i] = p.buf[(p.start+i)%len(p.buf)]
	}
	return out
}

// spray pushes count particles fanning out from (x, y).
// Angles span [angle-spread/2, angle+spread/2], speeds [minV, maxV].
func (e *Engine) spray(x, y float64, count int, kind ParticleType, color core.Color, angle, spread, minV, maxV, life float64) {
	pc := e.cfg.Particles
	gravity := pc.Gravity
	if kind == ParticleSparkle || kind == ParticleRing {
		gravity *= 0.2
	}
	for i := 0; i < count; i++ {
		a := angle + (e.fx.Next()-0.5)*spread
		v := minV + (maxV-minV)*e.fx.Next()
		l := life * (0.6 + 0.4*e.fx.Next())
		e.particles.Push(Particle{
			X:        x,
			Y:        y,
			VX:       math.Cos(a) * v,
			VY:       math.Sin(a) * v,
			Life:     l,
			MaxLife:  l,
			Size:     1 + e.fx.Next()*2,
			Color:    color,
			Gravity:  gravity,
			Friction: pc.Friction,
			Type:     kind,
		})
	}
}

// emitDust kicks up ground dust, on jumps and landings.
func (e *Engine) emitDust(x, y float64, count int) {
	e.spray(x, y, count, ParticleDust, core.ColorGray, -math.Pi/2, math.Pi, 40, 140, 0.4)
}

// emitSparkle marks a reward pickup.
func (e *Engine) emitSparkle(x, y float64) {
	e.spray(x, y, e.cfg.Particles.SparkleCount, ParticleSparkle, core.ColorBrightGreen, -math.Pi/2, 2*math.Pi, 60, 220, 0.6)
}

// emitBurst is used on death and on a shield absorbing a hit.
func (e *Engine) emitBurst(x, y float64, color core.Color) {
	e.spray(x, y, e.cfg.Particles.BurstCount, ParticleBurst, color, 0, 2*math.Pi, 120, 380, 0.8)
}

// emitRing spreads an even circle for power-up pickups.
func (e *Engine) emitRing(x, y float64, color core.Color) {
	n := e.cfg.Particles.RingCount
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		e.spray(x, y, 1, ParticleRing, color, a, 0, 160, 160, 0.5)
	}
}

// emitTrail leaves a faint trail behind the player at a fixed interval.
func (e *Engine) emitTrail(dt float64) {
	interval := e.cfg.Particles.TrailInterval
	if interval <= 0 {
		return
	}
	e.trailTimer += dt
	for e.trailTimer >= interval {
		e.trailTimer -= interval
		p := e.player
		color := e.World().Color
		if p.HasShield {
			color = core.ColorBrightCyan
		}
		e.spray(p.X, p.Y+p.Size/2, 1, ParticleTrail, color, math.Pi, 0.6, 20, 60, 0.35)
	}
}
