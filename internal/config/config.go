// Package config provides YAML-based runner configuration loading,
// difficulty curves and tier tables.
package config

// RunnerConfig contains all tunables of the candle runner.
type RunnerConfig struct {
	Field      FieldConfig      `yaml:"field"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Player     PlayerConfig     `yaml:"player"`
	Candles    CandleConfig     `yaml:"candles"`
	Spawn      SpawnConfig      `yaml:"spawn"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	PowerUps   PowerUpConfig    `yaml:"powerups"`
	Particles  ParticleConfig   `yaml:"particles"`
	Effects    EffectsConfig    `yaml:"effects"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
	Worlds     []Tier           `yaml:"worlds"`
	Speeds     []Tier           `yaml:"speeds"`
	Session    SessionConfig    `yaml:"session"`
}

// FieldConfig defines the virtual play field in world units.
type FieldConfig struct {
	Width           float64 `yaml:"width"`
	Height          float64 `yaml:"height"`
	GroundLevel     float64 `yaml:"ground_level"`
	CullMargin      float64 `yaml:"cull_margin"`      // How far left of x=0 an entity must be before removal
	CollisionWindow float64 `yaml:"collision_window"` // Horizontal distance around the player that is collision tested
}

// PhysicsConfig defines motion parameters. Units are world units and seconds.
type PhysicsConfig struct {
	Gravity            float64 `yaml:"gravity"`
	JumpVelocity       float64 `yaml:"jump_velocity"`
	DoubleJumpVelocity float64 `yaml:"double_jump_velocity"`
	MaxFallSpeed       float64 `yaml:"max_fall_speed"`
	BaseSpeed          float64 `yaml:"base_speed"`
	SpeedEase          float64 `yaml:"speed_ease"` // Exponential easing rate toward target speed
	SlowMultiplier     float64 `yaml:"slow_multiplier"`
}

// PlayerConfig defines the avatar.
type PlayerConfig struct {
	X               float64 `yaml:"x"`
	Size            float64 `yaml:"size"`
	HitboxInset     float64 `yaml:"hitbox_inset"`
	CoyoteTime      float64 `yaml:"coyote_time"`
	JumpBuffer      float64 `yaml:"jump_buffer"`
	DoubleJumpScore int     `yaml:"double_jump_score"`
	InvincibleTime  float64 `yaml:"invincible_time"`
}

// CandleConfig defines obstacle geometry.
type CandleConfig struct {
	Width           float64 `yaml:"width"`
	BodyHeight      float64 `yaml:"body_height"`
	WickWidth       float64 `yaml:"wick_width"`
	UpperWickRatio  float64 `yaml:"upper_wick_ratio"`
	LowerWickRatio  float64 `yaml:"lower_wick_ratio"`
	AirLift         float64 `yaml:"air_lift"`
	MoveAmplitude   float64 `yaml:"move_amplitude"`
	MoveFrequency   float64 `yaml:"move_frequency"`
	CollectDuration float64 `yaml:"collect_duration"`
}

// SpawnConfig defines pattern spacing and variant probabilities.
type SpawnConfig struct {
	FirstSpawn    float64 `yaml:"first_spawn"`
	BaseGap       float64 `yaml:"base_gap"`
	MinGap        float64 `yaml:"min_gap"`
	MoveScore     int     `yaml:"move_score"`
	MoveRamp      float64 `yaml:"move_ramp"`
	MoveMax       float64 `yaml:"move_max"`
	AirScore      int     `yaml:"air_score"`
	AirChance     float64 `yaml:"air_chance"`
	PowerUpScore  int     `yaml:"powerup_score"`
	PowerUpChance float64 `yaml:"powerup_chance"`
	MaxCandles    int     `yaml:"max_candles"`
	MaxPowerUps   int     `yaml:"max_powerups"`
}

// ScoringConfig defines how points and combos are awarded.
type ScoringConfig struct {
	PassScore      int     `yaml:"pass_score"`
	RewardScore    int     `yaml:"reward_score"`
	ComboBonus     float64 `yaml:"combo_bonus"`
	MaxCombo       int     `yaml:"max_combo"`
	RewardSlowTime float64 `yaml:"reward_slow_time"`
}

// PowerUpConfig defines power-up geometry and effect strength.
type PowerUpConfig struct {
	Size            float64 `yaml:"size"`
	Lift            float64 `yaml:"lift"`
	BobAmplitude    float64 `yaml:"bob_amplitude"`
	BobFrequency    float64 `yaml:"bob_frequency"`
	ShieldFlash     float64 `yaml:"shield_flash"`
	Multiplier      int     `yaml:"multiplier"`
	MultiplierTime  float64 `yaml:"multiplier_time"`
	SlowTime        float64 `yaml:"slow_time"`
	SlowCap         float64 `yaml:"slow_cap"`
	CollectDuration float64 `yaml:"collect_duration"`
}

// ParticleConfig defines the cosmetic particle pool.
type ParticleConfig struct {
	Max           int     `yaml:"max"`
	Gravity       float64 `yaml:"gravity"`
	Friction      float64 `yaml:"friction"`
	DustCount     int     `yaml:"dust_count"`
	SparkleCount  int     `yaml:"sparkle_count"`
	BurstCount    int     `yaml:"burst_count"`
	RingCount     int     `yaml:"ring_count"`
	TrailInterval float64 `yaml:"trail_interval"`
}

// EffectsConfig defines screen feedback.
type EffectsConfig struct {
	ShakeTime      float64 `yaml:"shake_time"`
	ShakeIntensity float64 `yaml:"shake_intensity"`
}

// Tier is one row of a world or speed table.
// The active tier for a score is the last one whose Threshold <= score.
type Tier struct {
	Threshold  int     `yaml:"threshold"`
	Multiplier float64 `yaml:"multiplier"`
	Label      string  `yaml:"label"`
	Color      string  `yaml:"color"`
}

// SessionConfig defines host-side timings.
type SessionConfig struct {
	ObserverInterval   float64 `yaml:"observer_interval"`    // Seconds between score observer callbacks
	MaxFrameDelta      float64 `yaml:"max_frame_delta"`      // Catch-up clamp per frame callback, seconds
	SideChannelTimeout float64 `yaml:"side_channel_timeout"` // Seconds allowed for persistence/reward calls
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset converts a CLI string to a preset. Unknown strings yield "".
func ParsePreset(s string) DifficultyPreset {
	switch DifficultyPreset(s) {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return DifficultyPreset(s)
	default:
		return ""
	}
}
