// candlerun is an endless runner for the terminal: jump the red candles,
// collect the green ones, and survive as the market speeds up.
//
// Usage:
//
//	candlerun play            - Play locally
//	candlerun serve           - Start SSH server for remote play
//	candlerun scores          - Show high scores and your recent runs
//	candlerun list            - List registered games
//
// Global flags:
//
//	--fps <rate>          - Set tick rate (default: 60)
//	--seed <value>        - Set RNG seed for reproducible runs
//	--db <path>           - Set database path (default: ~/.candlerun/scores.db)
//	--player <name>       - Player identity for best scores (default: $USER)
//	--log-level <level>   - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	// Register the runner
	_ "github.com/vovakirdan/candle-run/internal/games/runner"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagPlayer   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "candlerun",
	Short: "Candle Run - an endless runner in your terminal",
	Long: `Candle Run is a terminal endless runner. Red candles end the run,
green candles score and build your combo, and power-ups shield you,
multiply your score or slow the market down.

Available commands:
  play     - Play a run locally
  serve    - Start SSH server for remote play
  scores   - View high scores
  list     - Show registered games

Examples:
  candlerun play
  candlerun play --difficulty hard
  candlerun serve --ssh :2222
  candlerun scores --player alice`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (simulation steps per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.candlerun/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", defaultPlayer(), "Player identity for best scores")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
}

func defaultPlayer() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "player"
}

// newLogger builds the process logger. While a local run owns the terminal,
// logs go to ~/.candlerun/candlerun.log instead of stderr.
func newLogger(toFile bool) (*log.Logger, func()) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		level = log.WarnLevel
	}

	out := os.Stderr
	closeFn := func() {}
	if toFile {
		if f, ferr := openLogFile(); ferr == nil {
			out = f
			closeFn = func() { f.Close() }
		} else {
			level = log.FatalLevel
		}
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
	return logger, closeFn
}
