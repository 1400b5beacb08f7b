package config

import "math"

// DifficultyConfig defines the saturating difficulty curve.
type DifficultyConfig struct {
	Enabled    bool    `yaml:"enabled"`     // False pins difficulty at FixedLevel
	K          float64 `yaml:"k"`           // Score scale of 1 - e^(-score/k)
	WarmupMin  float64 `yaml:"warmup_min"`  // Warm-up multiplier at t=0
	WarmupSecs float64 `yaml:"warmup_secs"` // Seconds until warm-up reaches 1.0
	FixedLevel float64 `yaml:"fixed_level"`
}

// MaxComplexity is the highest pattern tier.
const MaxComplexity = 3

// complexityScale maps the effective difficulty onto pattern tiers.
const complexityScale = 4.0

// Curve evaluates difficulty for a score and elapsed run time.
type Curve struct {
	cfg DifficultyConfig
}

// NewCurve creates a curve. Non-positive parameters are replaced with safe values.
func NewCurve(cfg DifficultyConfig) Curve {
	if cfg.K <= 0 {
		cfg.K = 1
	}
	if cfg.WarmupSecs < 0 {
		cfg.WarmupSecs = 0
	}
	cfg.WarmupMin = clampF(cfg.WarmupMin, 0, 1)
	cfg.FixedLevel = clampF(cfg.FixedLevel, 0, 0.999)
	return Curve{cfg: cfg}
}

// Factor returns the score difficulty in [0, 1). It never decreases as score grows.
func (c Curve) Factor(score int) float64 {
	if !c.cfg.Enabled {
		return c.cfg.FixedLevel
	}
	if score <= 0 {
		return 0
	}
	return 1 - math.Exp(-float64(score)/c.cfg.K)
}

// Warmup ramps linearly from WarmupMin to 1.0 over the first WarmupSecs of a run.
func (c Curve) Warmup(elapsed float64) float64 {
	if c.cfg.WarmupSecs == 0 || elapsed >= c.cfg.WarmupSecs {
		return 1
	}
	if elapsed <= 0 {
		return c.cfg.WarmupMin
	}
	return c.cfg.WarmupMin + (1-c.cfg.WarmupMin)*(elapsed/c.cfg.WarmupSecs)
}

// Effective combines score difficulty and warm-up.
func (c Curve) Effective(score int, elapsed float64) float64 {
	return c.Factor(score) * c.Warmup(elapsed)
}

// Complexity returns the pattern tier (0..MaxComplexity) for the current state.
func (c Curve) Complexity(score int, elapsed float64) int {
	level := int(math.Floor(c.Effective(score, elapsed) * complexityScale))
	return max(0, min(level, MaxComplexity))
}

// clampF restricts a float64 to [min, max].
func clampF(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, val))
}
