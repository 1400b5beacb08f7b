// Package storage provides SQLite-based persistence for scores, best scores,
// run history and reward claims.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/candle-run/internal/games/runner"
	"github.com/vovakirdan/candle-run/internal/rewards"
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// ScoreEntry represents a single high score record.
type ScoreEntry struct {
	ID        int64
	GameID    string
	Player    string
	Score     int
	CreatedAt time.Time
}

// RunEntry is a finished run with its terminal statistics.
type RunEntry struct {
	ID        int64
	Player    string
	Stats     runner.TerminalStats
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// Side-channel writers run in goroutines; one connection serializes them.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			player TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(game_id, score DESC);

		CREATE TABLE IF NOT EXISTS best_scores (
			player TEXT PRIMARY KEY,
			score INTEGER NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player TEXT NOT NULL,
			score INTEGER NOT NULL,
			survival_secs REAL NOT NULL,
			distance REAL NOT NULL,
			dodged INTEGER NOT NULL,
			collected INTEGER NOT NULL,
			max_combo INTEGER NOT NULL,
			world TEXT NOT NULL,
			speed TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_player ON runs(player, created_at DESC);

		CREATE TABLE IF NOT EXISTS reward_claims (
			nonce TEXT PRIMARY KEY,
			player TEXT NOT NULL,
			score INTEGER NOT NULL,
			issued_at INTEGER NOT NULL,
			signature TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_reward_claims_player ON reward_claims(player);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// TopScores retrieves the top N scores for the given game.
// Results are ordered by score descending.
func (s *Store) TopScores(gameID string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, game_id, player, score, created_at
		 FROM scores
		 WHERE game_id = ?
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		gameID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.GameID, &e.Player, &e.Score, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// BestScore returns the player's best score, or 0 if none is stored.
func (s *Store) BestScore(ctx context.Context, player string) (int, error) {
	var score int
	err := s.db.QueryRowContext(ctx,
		"SELECT score FROM best_scores WHERE player = ?",
		player,
	).Scan(&score)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query best score: %w", err)
	}
	return score, nil
}

// SetBestIfGreater stores score as the player's best if it beats the stored one.
// It reports whether the best changed.
func (s *Store) SetBestIfGreater(ctx context.Context, player string, score int) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO best_scores (player, score) VALUES (?, ?)
		 ON CONFLICT(player) DO UPDATE
		 SET score = excluded.score, updated_at = CURRENT_TIMESTAMP
		 WHERE excluded.score > best_scores.score`,
		player, score,
	)
	if err != nil {
		return false, fmt.Errorf("storage: cannot set best score: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage: cannot read affected rows: %w", err)
	}
	return n > 0, nil
}

// RecordRun stores a finished run and its score in one transaction.
func (s *Store) RecordRun(ctx context.Context, player string, stats runner.TerminalStats) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: cannot begin run transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs
		 (player, score, survival_secs, distance, dodged, collected, max_combo, world, speed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		player, stats.Score, stats.SurvivalTime, stats.Distance,
		stats.ObstaclesDodged, stats.Collected, stats.MaxCombo, stats.World, stats.Speed,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save run: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO scores (game_id, player, score) VALUES (?, ?, ?)",
		runner.GameID, player, stats.Score,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save score: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit run: %w", err)
	}
	return nil
}

// RecentRuns returns the player's latest runs, newest first.
func (s *Store) RecentRuns(player string, limit int) ([]RunEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, player, score, survival_secs, distance, dodged, collected, max_combo, world, speed, created_at
		 FROM runs
		 WHERE player = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		player, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunEntry
	for rows.Next() {
		var r RunEntry
		var createdAt any
		if err := rows.Scan(
			&r.ID,
			&r.Player,
			&r.Stats.Score,
			&r.Stats.SurvivalTime,
			&r.Stats.Distance,
			&r.Stats.ObstaclesDodged,
			&r.Stats.Collected,
			&r.Stats.MaxCombo,
			&r.Stats.World,
			&r.Stats.Speed,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// RecordClaim implements rewards.Ledger. A nonce can be recorded once.
func (s *Store) RecordClaim(ctx context.Context, a rewards.Authorization) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO reward_claims (nonce, player, score, issued_at, signature)
		 VALUES (?, ?, ?, ?, ?)`,
		a.Nonce, a.Player, a.Score, a.IssuedAt.Unix(), a.Signature,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record claim: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot read affected rows: %w", err)
	}
	if n == 0 {
		return rewards.ErrReplayed
	}
	return nil
}

// Claims returns the player's recorded authorizations, oldest first.
func (s *Store) Claims(player string) ([]rewards.Authorization, error) {
	rows, err := s.db.Query(
		`SELECT nonce, player, score, issued_at, signature
		 FROM reward_claims
		 WHERE player = ?
		 ORDER BY issued_at ASC, nonce ASC`,
		player,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query claims: %w", err)
	}
	defer rows.Close()

	var claims []rewards.Authorization
	for rows.Next() {
		var a rewards.Authorization
		var issued int64
		if err := rows.Scan(&a.Nonce, &a.Player, &a.Score, &issued, &a.Signature); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		a.IssuedAt = time.Unix(issued, 0).UTC()
		claims = append(claims, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return claims, nil
}

// PlayerStats summarizes a player's stored runs.
type PlayerStats struct {
	Player     string
	Runs       int
	BestScore  int
	AvgScore   float64
	Longest    float64 // Longest survival, seconds
	Dodged     int
	LastPlayed time.Time
}

// PlayerSummary aggregates the player's run history. A player with no runs
// yields zero stats.
func (s *Store) PlayerSummary(ctx context.Context, player string) (*PlayerStats, error) {
	stats := &PlayerStats{Player: player}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0),
		        COALESCE(MAX(survival_secs), 0), COALESCE(SUM(dodged), 0)
		 FROM runs WHERE player = ?`,
		player,
	).Scan(&stats.Runs, &stats.BestScore, &stats.AvgScore, &stats.Longest, &stats.Dodged)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot summarize runs: %w", err)
	}

	var lastPlayed any
	err = s.db.QueryRowContext(ctx,
		`SELECT created_at FROM runs WHERE player = ? ORDER BY id DESC LIMIT 1`,
		player,
	).Scan(&lastPlayed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = parseTime(lastPlayed)
	}

	return stats, nil
}

// ResetPlayer deletes the player's runs, scoreboard entries and best score.
// Reward claims are kept so spent nonces stay spent. It returns the number
// of runs removed.
func (s *Store) ResetPlayer(ctx context.Context, player string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin reset transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	res, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE player = ?", player)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot read affected rows: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM scores WHERE game_id = ? AND player = ?", runner.GameID, player,
	); err != nil {
		return 0, fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM best_scores WHERE player = ?", player); err != nil {
		return 0, fmt.Errorf("storage: cannot clear best score: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit reset: %w", err)
	}
	return removed, nil
}

// parseTime handles DATETIME values returned either as time.Time or as text.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
