package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrInvalidTiers is returned when a tier table is empty, unsorted or lacks a zero threshold.
var ErrInvalidTiers = errors.New("config: invalid tier table")

// LoadRunner loads the runner configuration.
// Search order: customPath -> ~/.candlerun/configs/runner.yaml -> ./configs/runner.yaml -> embedded default.
// Only a broken customPath is reported as an error; other sources are skipped when unreadable or invalid.
func LoadRunner(customPath string) (RunnerConfig, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return RunnerConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := Parse(data)
		if err != nil {
			return RunnerConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	if userCfgPath := userConfigPath("runner.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := Parse(data); err == nil {
				return cfg, nil
			}
		}
	}

	if data, err := os.ReadFile(filepath.Join("configs", "runner.yaml")); err == nil {
		if cfg, err := Parse(data); err == nil {
			return cfg, nil
		}
	}

	if cfg, err := Parse(defaultRunnerYAML); err == nil {
		return cfg, nil
	}
	return DefaultRunnerConfig(), nil // Fallback to hardcoded if embed fails
}

// Parse decodes YAML on top of the built-in defaults and validates the result,
// so partial files only need to list the values they change.
func Parse(data []byte) (RunnerConfig, error) {
	cfg := DefaultRunnerConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RunnerConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return RunnerConfig{}, err
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".candlerun", "configs", filename)
}

// Validate checks the invariants the simulation relies on.
func (c RunnerConfig) Validate() error {
	if err := ValidateTiers(c.Worlds); err != nil {
		return fmt.Errorf("worlds: %w", err)
	}
	if err := ValidateTiers(c.Speeds); err != nil {
		return fmt.Errorf("speeds: %w", err)
	}

	switch {
	case c.Field.Width <= 0 || c.Field.Height <= 0:
		return errors.New("config: field dimensions must be positive")
	case c.Player.Size <= 0 || c.Field.GroundLevel <= c.Player.Size:
		return errors.New("config: ground_level must exceed player size")
	case c.Physics.Gravity <= 0 || c.Physics.MaxFallSpeed <= 0:
		return errors.New("config: gravity and max_fall_speed must be positive")
	case c.Physics.JumpVelocity <= 0 || c.Physics.DoubleJumpVelocity <= 0:
		return errors.New("config: jump velocities must be positive")
	case c.Physics.DoubleJumpVelocity > c.Physics.JumpVelocity:
		return errors.New("config: double_jump_velocity must not exceed jump_velocity")
	case c.Physics.BaseSpeed <= 0:
		return errors.New("config: base_speed must be positive")
	case c.Spawn.MinGap <= 0 || c.Spawn.BaseGap < c.Spawn.MinGap:
		return errors.New("config: gaps must satisfy 0 < min_gap <= base_gap")
	case c.Spawn.MaxCandles <= 0 || c.Spawn.MaxPowerUps <= 0 || c.Particles.Max <= 0:
		return errors.New("config: pool capacities must be positive")
	case c.Candles.Width <= 0 || c.Candles.BodyHeight <= 0:
		return errors.New("config: candle dimensions must be positive")
	case c.Scoring.MaxCombo <= 0:
		return errors.New("config: max_combo must be positive")
	case c.Scoring.PassScore < 0 || c.Scoring.RewardScore < 0:
		return errors.New("config: scores must not be negative")
	case c.Session.ObserverInterval <= 0 || c.Session.MaxFrameDelta <= 0 || c.Session.SideChannelTimeout <= 0:
		return errors.New("config: session durations must be positive")
	}
	return nil
}

// ValidateTiers checks that a tier table starts at threshold 0 and is strictly increasing.
func ValidateTiers(tiers []Tier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidTiers)
	}
	if tiers[0].Threshold != 0 {
		return fmt.Errorf("%w: first threshold is %d, want 0", ErrInvalidTiers, tiers[0].Threshold)
	}
	for i, t := range tiers {
		if t.Multiplier <= 0 {
			return fmt.Errorf("%w: tier %d multiplier %.2f", ErrInvalidTiers, i, t.Multiplier)
		}
		if i > 0 && t.Threshold <= tiers[i-1].Threshold {
			return fmt.Errorf("%w: threshold %d at index %d is not above %d",
				ErrInvalidTiers, t.Threshold, i, tiers[i-1].Threshold)
		}
	}
	return nil
}

// ApplyPreset modifies the config based on a difficulty preset.
func ApplyPreset(cfg *RunnerConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyFixed:
		cfg.Difficulty.Enabled = false
	case DifficultyEasy:
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.K *= 1.5
		cfg.Difficulty.WarmupSecs *= 1.5
		cfg.Spawn.MinGap *= 1.15
		cfg.Spawn.BaseGap = max(cfg.Spawn.BaseGap, cfg.Spawn.MinGap)
	case DifficultyNormal:
		cfg.Difficulty.Enabled = true
	case DifficultyHard:
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.K *= 0.6
		cfg.Difficulty.WarmupMin = max(cfg.Difficulty.WarmupMin, 0.6)
		cfg.Spawn.PowerUpChance *= 0.5
	}
}
