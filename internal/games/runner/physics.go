package runner

import (
	"math"

	"github.com/vovakirdan/candle-run/internal/core"
)

// powerUpEffects applies a collected power-up. Keyed by kind so the
// collision pass stays kind-agnostic.
var powerUpEffects = map[PowerUpKind]func(e *Engine){
	PowerUpShield: func(e *Engine) {
		e.player.HasShield = true
		e.shieldFlash = e.cfg.PowerUps.ShieldFlash
	},
	PowerUpMultiplier: func(e *Engine) {
		e.multiplier = max(1, e.cfg.PowerUps.Multiplier)
		e.multiplierTimer = e.cfg.PowerUps.MultiplierTime
	},
	PowerUpSlow: func(e *Engine) {
		e.slow = min(e.slow+e.cfg.PowerUps.SlowTime, e.cfg.PowerUps.SlowCap)
	},
}

// Step advances the run by one fixed tick. A finished run ignores further calls.
func (e *Engine) Step(in Input) {
	if !e.alive {
		return
	}
	dt := e.dt

	e.elapsed += dt
	e.updateSpeed(dt)
	e.updatePlayer(dt)
	e.handleJump(in)
	e.scroll(dt)
	e.maybeSpawn()

	if e.collide() {
		return
	}

	e.tickTimers(dt)
	e.emitTrail(dt)
	e.particles.Step(dt)
}

// updateSpeed eases the scroll speed toward the tier target.
func (e *Engine) updateSpeed(dt float64) {
	target := e.cfg.Physics.BaseSpeed * e.speeds.At(e.score).Multiplier
	if e.slow > 0 {
		target *= e.cfg.Physics.SlowMultiplier
	}
	blend := 1 - math.Exp(-e.cfg.Physics.SpeedEase*dt)
	e.speed += (target - e.speed) * blend
}

// updatePlayer integrates gravity and resolves ground and ceiling contact.
func (e *Engine) updatePlayer(dt float64) {
	p := &e.player
	phys := e.cfg.Physics
	floor := e.cfg.Field.GroundLevel - p.Size

	p.VY = min(p.VY+phys.Gravity*dt, phys.MaxFallSpeed)
	p.Y += p.VY * dt

	if p.Y < 0 {
		p.Y = 0
		p.VY = max(p.VY, 0)
	}

	if p.Y >= floor {
		p.Y = floor
		p.VY = 0
		if !p.OnGround {
			p.OnGround = true
			p.JumpCount = 0
			p.Squash = 0.35
			p.Rotation = 0
			e.emitDust(p.X+p.Size/2, e.cfg.Field.GroundLevel, e.cfg.Particles.DustCount)
		}
		p.Coyote = e.cfg.Player.CoyoteTime
	} else {
		p.OnGround = false
		p.Rotation += 8 * dt
	}

	p.Squash *= math.Exp(-10 * dt)
	p.Tilt = core.ClampF(p.VY/phys.MaxFallSpeed, -1, 1) * 0.3
}

// handleJump buffers the request and executes it when allowed.
func (e *Engine) handleJump(in Input) {
	p := &e.player
	if in.Jump {
		p.JumpBuffer = e.cfg.Player.JumpBuffer
	}
	if p.JumpBuffer <= 0 {
		return
	}

	switch {
	case (p.OnGround || p.Coyote > 0) && p.JumpCount == 0:
		e.jump(e.cfg.Physics.JumpVelocity)
	case p.JumpCount > 0 && p.JumpCount < p.MaxJumps:
		e.jump(e.cfg.Physics.DoubleJumpVelocity)
	}
}

func (e *Engine) jump(velocity float64) {
	p := &e.player
	p.VY = -velocity
	p.OnGround = false
	p.Coyote = 0
	p.JumpBuffer = 0
	p.JumpCount++
	p.Squash = -0.25
	e.emitDust(p.X+p.Size/2, p.Y+p.Size, e.cfg.Particles.DustCount/2)
}

// scroll moves the world left, awards hazard passes and culls spent entities.
func (e *Engine) scroll(dt float64) {
	dx := e.speed * dt
	e.distance += dx
	px := e.player.X
	cull := -e.cfg.Field.CullMargin

	kept := e.candles[:0]
	for _, c := range e.candles {
		c.X -= dx
		if c.Moving {
			c.Phase += c.Frequency * dt
		}
		if !c.Passed && c.Right() < px {
			c.Passed = true
			if c.Kind == Hazard && !c.Hit {
				e.passHazard()
			}
		}
		if c.Right() < cull || (c.Collected && c.CollectAnim >= 1) {
			continue
		}
		kept = append(kept, c)
	}
	e.candles = kept

	keptPU := e.powerUps[:0]
	for _, pu := range e.powerUps {
		pu.X -= dx
		pu.Phase += e.cfg.PowerUps.BobFrequency * dt
		if pu.X+pu.Size < cull || (pu.Collected && pu.CollectAnim >= 1) {
			continue
		}
		keptPU = append(keptPU, pu)
	}
	e.powerUps = keptPU
}

func (e *Engine) passHazard() {
	e.score += e.cfg.Scoring.PassScore * e.multiplier
	e.dodged++
	e.combo = max(0, e.combo-1)
}

// inWindow limits collision tests to candles near the player.
func (e *Engine) inWindow(c Candle) bool {
	px := e.player.X
	w := e.cfg.Field.CollisionWindow
	return c.X <= px+e.player.Size+w && c.Right() >= px-w
}

// collide resolves contacts. Hazards go first so a frame touching both a
// hazard and a reward ends the run without collecting. It reports death.
func (e *Engine) collide() bool {
	hitbox := e.player.Hitbox(e.cfg.Player.HitboxInset)

	for i := range e.candles {
		c := &e.candles[i]
		if c.Kind != Hazard || c.Hit || !e.inWindow(*c) || !c.Overlaps(hitbox) {
			continue
		}
		if e.hitHazard(c) {
			return true
		}
	}

	for i := range e.candles {
		c := &e.candles[i]
		if c.Kind != Reward || c.Collected || !e.inWindow(*c) || !c.Overlaps(hitbox) {
			continue
		}
		e.collectReward(c)
	}

	for i := range e.powerUps {
		pu := &e.powerUps[i]
		if pu.Collected || !hitbox.Intersects(pu.Box()) {
			continue
		}
		pu.Collected = true
		if apply, ok := powerUpEffects[pu.Kind]; ok {
			apply(e)
		}
		e.emitRing(pu.X+pu.Size/2, pu.Y()+pu.Size/2, core.ColorBrightCyan)
	}
	return false
}

// hitHazard reports whether the contact ended the run.
func (e *Engine) hitHazard(c *Candle) bool {
	p := &e.player
	if p.Invincible > 0 {
		return false
	}
	if p.HasShield {
		p.HasShield = false
		p.Invincible = e.cfg.Player.InvincibleTime
		c.Hit = true
		e.shieldFlash = e.cfg.PowerUps.ShieldFlash
		e.shake = e.cfg.Effects.ShakeTime
		e.emitBurst(c.X+c.Width()/2, c.Body().Y, core.ColorBrightCyan)
		return false
	}
	e.die()
	return true
}

func (e *Engine) collectReward(c *Candle) {
	sc := e.cfg.Scoring
	c.Collected = true

	bonus := 1 + float64(e.combo)*sc.ComboBonus
	award := int(math.Round(float64(sc.RewardScore*e.multiplier) * bonus))
	e.score += max(award, 0)

	e.combo = min(e.combo+1, max(sc.MaxCombo, 1))
	e.maxCombo = max(e.maxCombo, e.combo)
	e.collected++
	e.slow = max(e.slow, sc.RewardSlowTime)

	body := c.Body()
	e.emitSparkle(body.X+body.W/2, body.Y+body.H/2)
}

// tickTimers counts every timer down by dt and refreshes score-driven state.
func (e *Engine) tickTimers(dt float64) {
	p := &e.player

	e.slow = core.Countdown(e.slow, dt)
	e.shieldFlash = core.Countdown(e.shieldFlash, dt)
	if e.multiplierTimer > 0 {
		e.multiplierTimer = core.Countdown(e.multiplierTimer, dt)
		if e.multiplierTimer == 0 {
			e.multiplier = 1
		}
	}
	p.Invincible = core.Countdown(p.Invincible, dt)
	p.JumpBuffer = core.Countdown(p.JumpBuffer, dt)
	if !p.OnGround {
		p.Coyote = core.Countdown(p.Coyote, dt)
	}

	e.shake = core.Countdown(e.shake, dt)
	e.updateShake()

	candleStep := animStep(dt, e.cfg.Candles.CollectDuration)
	for i := range e.candles {
		if e.candles[i].Collected {
			e.candles[i].CollectAnim = min(1, e.candles[i].CollectAnim+candleStep)
		}
	}
	puStep := animStep(dt, e.cfg.PowerUps.CollectDuration)
	for i := range e.powerUps {
		if e.powerUps[i].Collected {
			e.powerUps[i].CollectAnim = min(1, e.powerUps[i].CollectAnim+puStep)
		}
	}

	if e.score >= e.cfg.Player.DoubleJumpScore {
		p.MaxJumps = 2
	}
	e.world = e.worlds.Index(e.score)
	e.speedTier = e.speeds.Index(e.score)
}

func (e *Engine) updateShake() {
	if e.shake <= 0 || e.cfg.Effects.ShakeTime <= 0 {
		e.shakeX, e.shakeY = 0, 0
		return
	}
	amp := e.cfg.Effects.ShakeIntensity * e.shake / e.cfg.Effects.ShakeTime
	e.shakeX = amp * math.Sin(e.elapsed*83)
	e.shakeY = amp * math.Cos(e.elapsed*61)
}

// animStep converts dt into progress over a duration; zero durations finish at once.
func animStep(dt, duration float64) float64 {
	if duration <= 0 {
		return 1
	}
	return dt / duration
}
