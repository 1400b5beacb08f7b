package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/candle-run/internal/games/runner"
	"github.com/vovakirdan/candle-run/internal/platform/tui"
	"github.com/vovakirdan/candle-run/internal/storage"
)

var (
	flagScoresLimit int
	flagInteractive bool
	flagReset       bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show high scores",
	Long: `Display the top scores and the player's best score.

Examples:
  candlerun scores
  candlerun scores --player alice --limit 20
  candlerun scores -i          # Interactive table with your recent runs
  candlerun scores --reset     # Delete the player's runs and best score`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of scores to show")
	scoresCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse scores and runs in a table")
	scoresCmd.Flags().BoolVar(&flagReset, "reset", false, "Delete the player's run history and best score")
}

func runScores(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening scores database: %w", err)
	}
	defer store.Close()

	if flagReset {
		removed, err := store.ResetPlayer(context.Background(), flagPlayer)
		if err != nil {
			return fmt.Errorf("resetting %s: %w", flagPlayer, err)
		}
		fmt.Printf("Removed %d runs for %s.\n", removed, flagPlayer)
		return nil
	}

	if flagInteractive {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width, height = w, h
		}
		return tui.RunScoreboard(store, flagPlayer, width, height)
	}

	scores, err := store.TopScores(runner.GameID, flagScoresLimit)
	if err != nil {
		return fmt.Errorf("retrieving scores: %w", err)
	}

	fmt.Println("High Scores - Candle Run")
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'candlerun play' to set the first high score!")
		return nil
	}

	fmt.Printf("  %-4s  %-16s  %-10s  %s\n", "Rank", "Player", "Score", "Date")
	fmt.Printf("  %-4s  %-16s  %-10s  %s\n", "----", "------", "-----", "----")
	for i, entry := range scores {
		fmt.Printf("  %-4d  %-16s  %-10d  %s\n", i+1, entry.Player, entry.Score, entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Println()
	ctx := context.Background()
	if best, err := store.BestScore(ctx, flagPlayer); err == nil {
		fmt.Printf("Best for %s: %d\n", flagPlayer, best)
	}
	if summary, err := store.PlayerSummary(ctx, flagPlayer); err == nil && summary.Runs > 0 {
		fmt.Printf("Runs: %d  Avg: %.0f  Longest: %.1fs  Dodged: %d  Last played: %s\n",
			summary.Runs, summary.AvgScore, summary.Longest, summary.Dodged,
			summary.LastPlayed.Format("2006-01-02 15:04"))
	}
	return nil
}
