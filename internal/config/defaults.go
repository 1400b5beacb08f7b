package config

import (
	_ "embed"
)

//go:embed defaults/runner.yaml
var defaultRunnerYAML []byte

// DefaultRunnerConfig returns the built-in configuration.
// It mirrors defaults/runner.yaml and is used when the embedded file cannot be parsed.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Field: FieldConfig{
			Width:           800,
			Height:          400,
			GroundLevel:     340,
			CullMargin:      60,
			CollisionWindow: 120,
		},
		Physics: PhysicsConfig{
			Gravity:            2400,
			JumpVelocity:       820,
			DoubleJumpVelocity: 680,
			MaxFallSpeed:       1400,
			BaseSpeed:          360,
			SpeedEase:          4.0,
			SlowMultiplier:     0.6,
		},
		Player: PlayerConfig{
			X:               100,
			Size:            40,
			HitboxInset:     6,
			CoyoteTime:      0.1,
			JumpBuffer:      0.12,
			DoubleJumpScore: 300,
			InvincibleTime:  1.0,
		},
		Candles: CandleConfig{
			Width:           24,
			BodyHeight:      50,
			WickWidth:       4,
			UpperWickRatio:  0.3,
			LowerWickRatio:  0.15,
			AirLift:         95,
			MoveAmplitude:   22,
			MoveFrequency:   3.0,
			CollectDuration: 0.3,
		},
		Spawn: SpawnConfig{
			FirstSpawn:    700,
			BaseGap:       560,
			MinGap:        260,
			MoveScore:     800,
			MoveRamp:      4000,
			MoveMax:       0.35,
			AirScore:      1500,
			AirChance:     0.2,
			PowerUpScore:  300,
			PowerUpChance: 0.08,
			MaxCandles:    48,
			MaxPowerUps:   6,
		},
		Scoring: ScoringConfig{
			PassScore:      10,
			RewardScore:    50,
			ComboBonus:     0.1,
			MaxCombo:       25,
			RewardSlowTime: 0.35,
		},
		PowerUps: PowerUpConfig{
			Size:            28,
			Lift:            110,
			BobAmplitude:    8,
			BobFrequency:    4,
			ShieldFlash:     0.4,
			Multiplier:      2,
			MultiplierTime:  8,
			SlowTime:        3,
			SlowCap:         6,
			CollectDuration: 0.25,
		},
		Particles: ParticleConfig{
			Max:           256,
			Gravity:       600,
			Friction:      1.5,
			DustCount:     6,
			SparkleCount:  10,
			BurstCount:    24,
			RingCount:     12,
			TrailInterval: 0.05,
		},
		Effects: EffectsConfig{
			ShakeTime:      0.35,
			ShakeIntensity: 8,
		},
		Difficulty: DifficultyConfig{
			Enabled:    true,
			K:          2500,
			WarmupMin:  0.35,
			WarmupSecs: 8,
			FixedLevel: 0.3,
		},
		Worlds: []Tier{
			{Threshold: 0, Multiplier: 1.0, Label: "Genesis", Color: "green"},
			{Threshold: 1000, Multiplier: 1.1, Label: "Bull Run", Color: "bright_green"},
			{Threshold: 2500, Multiplier: 1.2, Label: "To The Moon", Color: "bright_cyan"},
			{Threshold: 5000, Multiplier: 1.3, Label: "Galaxy", Color: "bright_magenta"},
		},
		Speeds: []Tier{
			{Threshold: 0, Multiplier: 1.0, Label: "Calm"},
			{Threshold: 500, Multiplier: 1.15, Label: "Brisk"},
			{Threshold: 1500, Multiplier: 1.3, Label: "Fast"},
			{Threshold: 3000, Multiplier: 1.45, Label: "Blazing"},
			{Threshold: 6000, Multiplier: 1.6, Label: "Ludicrous"},
		},
		Session: SessionConfig{
			ObserverInterval:   0.1,
			MaxFrameDelta:      0.25,
			SideChannelTimeout: 5,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultRunnerYAML
}
