package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/candle-run/internal/config"
	"github.com/vovakirdan/candle-run/internal/core"
	"github.com/vovakirdan/candle-run/internal/platform/tui"
	"github.com/vovakirdan/candle-run/internal/rewards"
	"github.com/vovakirdan/candle-run/internal/session"
	"github.com/vovakirdan/candle-run/internal/storage"
)

var (
	flagConfig     string
	flagDifficulty string
	flagWatch      bool
	flagRewardKey  string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a run",
	Long: `Start a run in this terminal.

Controls:
  Enter      - Start
  Space/Up   - Jump (double jump unlocks as your score grows)
  P/Esc      - Pause
  R          - Restart (after game over)
  Ctrl+S     - Save a screenshot
  Q/Ctrl+C   - Quit

Difficulty options:
  easy   - Slower ramp and wider gaps
  normal - The configured curve
  hard   - Faster ramp, fewer power-ups
  fixed  - No progression

Examples:
  candlerun play
  candlerun play --difficulty hard
  candlerun play --config ./runner.yaml --watch
  candlerun play --seed 42`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	addRunnerFlags(playCmd)
}

// addRunnerFlags registers the flags shared by play and serve.
func addRunnerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom runner config YAML")
	cmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	cmd.Flags().BoolVar(&flagWatch, "watch", false, "Reload --config on change (applies from the next run)")
	cmd.Flags().StringVar(&flagRewardKey, "reward-key", os.Getenv("CANDLERUN_REWARD_KEY"), "Key for signing reward claims (empty disables rewards)")
}

// loadRunnerConfig loads the config and applies the difficulty preset.
func loadRunnerConfig() (config.RunnerConfig, error) {
	cfg, err := config.LoadRunner(flagConfig)
	if err != nil {
		return config.RunnerConfig{}, err
	}
	if flagDifficulty != "" {
		preset := config.ParsePreset(flagDifficulty)
		if preset == "" {
			return config.RunnerConfig{}, fmt.Errorf("unknown difficulty %q", flagDifficulty)
		}
		config.ApplyPreset(&cfg, preset)
	}
	return cfg, nil
}

// watchConfig forwards reloads of --config with the preset applied.
// The returned stop function closes the watcher.
func watchConfig(logger *log.Logger) (<-chan config.RunnerConfig, func(), error) {
	if !flagWatch {
		return nil, func() {}, nil
	}
	if flagConfig == "" {
		return nil, nil, fmt.Errorf("--watch requires --config")
	}

	w, err := config.Watch(flagConfig)
	if err != nil {
		return nil, nil, err
	}
	preset := config.ParsePreset(flagDifficulty)
	out := make(chan config.RunnerConfig, 1)

	go func() {
		defer close(out)
		for {
			select {
			case cfg, ok := <-w.Updates:
				if !ok {
					return
				}
				if preset != "" {
					config.ApplyPreset(&cfg, preset)
				}
				logger.Info("config changed", "path", flagConfig)
				select {
				case <-out:
				default:
				}
				out <- cfg
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("config reload failed", "err", err)
			}
		}
	}()

	return out, func() { w.Close() }, nil
}

// newRewardClient returns nil when rewards are disabled.
func newRewardClient(store *storage.Store, logger *log.Logger) (*rewards.Client, error) {
	if flagRewardKey == "" || store == nil {
		return nil, nil
	}
	signer, err := rewards.NewSigner([]byte(flagRewardKey))
	if err != nil {
		return nil, err
	}
	return rewards.NewClient(signer, store, logger), nil
}

func openLogFile() (*os.File, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(home, ".candlerun")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "candlerun.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

func runPlay(cmd *cobra.Command, args []string) error {
	logger, closeLog := newLogger(true)
	defer closeLog()

	cfg, err := loadRunnerConfig()
	if err != nil {
		return err
	}

	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width, height = w, h
	}
	rt := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}

	opts := session.Options{
		Config:  cfg,
		Runtime: rt,
		Player:  flagPlayer,
		Logger:  logger,
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		logger.Warn("scores database unavailable", "path", flagDBPath, "err", err)
		store = nil
	} else {
		defer store.Close()
		opts.Best = store
		opts.Runs = store
	}

	client, err := newRewardClient(store, logger)
	if err != nil {
		return err
	}
	if client != nil {
		opts.Rewards = client
	}

	reloads, stopWatch, err := watchConfig(logger)
	if err != nil {
		return err
	}
	defer stopWatch()

	sess := session.New(opts)
	defer sess.Close()

	return tui.Run(sess, rt, reloads)
}
