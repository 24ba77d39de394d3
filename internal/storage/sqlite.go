// Package storage provides SQLite-based persistence for difficulty ratings.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/beatrate/internal/combo"
	"github.com/vovakirdan/beatrate/internal/scheduler"
)

// nomodSignature keys the reference rating shown in summaries.
var nomodSignature = combo.Combination{Speed: 100}.Signature()

// Store manages the SQLite database connection for rating persistence.
// database/sql serializes concurrent writers, so one Store can be shared by
// every scheduler of a scan.
type Store struct {
	db *sql.DB
}

// Rating is a single stored difficulty record.
type Rating struct {
	scheduler.Result
	ComputedAt time.Time
}

// ChartSummary aggregates the ratings of one chart in one mode.
type ChartSummary struct {
	ChartHash    string
	Mode         string
	Count        int
	Nomod        float32 // rating at 1.00x without modifiers, Sentinel if unrated
	Max          float32
	LastComputed time.Time
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
	// A single connection keeps writers from tripping over SQLITE_BUSY.
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
		CREATE TABLE IF NOT EXISTS difficulties (
			chart_hash TEXT NOT NULL,
			mode TEXT NOT NULL,
			signature TEXT NOT NULL,
			score REAL NOT NULL,
			computed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (chart_hash, mode, signature)
		);
		CREATE INDEX IF NOT EXISTS idx_difficulties_mode ON difficulties(mode, signature);
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

// StoreResults implements scheduler.Sink. The batch is written in one
// transaction; an existing rating for the same key is replaced.
func (s *Store) StoreResults(results []scheduler.Result) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO difficulties (chart_hash, mode, signature, score, computed_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (chart_hash, mode, signature)
		 DO UPDATE SET score = excluded.score, computed_at = excluded.computed_at`,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.Exec(r.ChartHash, r.Mode, r.Signature, float64(r.Score)); err != nil {
			return fmt.Errorf("storage: cannot store %s/%s/%s: %w", r.ChartHash, r.Mode, r.Signature, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit results: %w", err)
	}
	return nil
}

// LoadResults returns every stored rating keyed by entry.
func (s *Store) LoadResults() (map[scheduler.Entry]float32, error) {
	rows, err := s.db.Query(`SELECT chart_hash, mode, signature, score FROM difficulties`)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query results: %w", err)
	}
	defer rows.Close()

	results := make(map[scheduler.Entry]float32)
	for rows.Next() {
		var e scheduler.Entry
		var score float64
		if err := rows.Scan(&e.ChartHash, &e.Mode, &e.Signature, &score); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		results[e] = float32(score)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return results, nil
}

// Ensure Store implements the scheduler's sink
var _ scheduler.Sink = (*Store)(nil)

// ChartResults retrieves every rating of one chart, ordered by mode and
// then by score.
func (s *Store) ChartResults(chartHash string) ([]Rating, error) {
	rows, err := s.db.Query(
		`SELECT chart_hash, mode, signature, score, computed_at
		 FROM difficulties
		 WHERE chart_hash = ?
		 ORDER BY mode, score, signature`,
		chartHash,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query chart results: %w", err)
	}
	defer rows.Close()

	var ratings []Rating
	for rows.Next() {
		var r Rating
		var score float64
		var computedAt any
		if err := rows.Scan(&r.ChartHash, &r.Mode, &r.Signature, &score, &computedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.Score = float32(score)
		r.ComputedAt = parseTimestamp(computedAt)
		ratings = append(ratings, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return ratings, nil
}

// Lookup returns one stored rating, or false if it has not been computed.
func (s *Store) Lookup(e scheduler.Entry) (float32, bool, error) {
	var score float64
	err := s.db.QueryRow(
		`SELECT score FROM difficulties WHERE chart_hash = ? AND mode = ? AND signature = ?`,
		e.ChartHash, e.Mode, e.Signature,
	).Scan(&score)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("storage: cannot query rating: %w", err)
	}
	return float32(score), true, nil
}

// Charts summarizes the stored ratings per chart and mode.
func (s *Store) Charts() ([]ChartSummary, error) {
	rows, err := s.db.Query(
		`SELECT chart_hash, mode, COUNT(*), MAX(score),
		        COALESCE(MAX(CASE WHEN signature = ? THEN score END), ?),
		        MAX(computed_at)
		 FROM difficulties
		 GROUP BY chart_hash, mode
		 ORDER BY chart_hash, mode`,
		nomodSignature, float64(scheduler.Sentinel),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query chart summaries: %w", err)
	}
	defer rows.Close()

	var summaries []ChartSummary
	for rows.Next() {
		var cs ChartSummary
		var maxScore, nomod float64
		var lastComputed any
		if err := rows.Scan(&cs.ChartHash, &cs.Mode, &cs.Count, &maxScore, &nomod, &lastComputed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan summary row: %w", err)
		}
		cs.Max = float32(maxScore)
		cs.Nomod = float32(nomod)
		cs.LastComputed = parseTimestamp(lastComputed)
		summaries = append(summaries, cs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return summaries, nil
}

// ClearChart deletes every rating of the given chart so it is rated again
// on the next scan. Returns the number of deleted ratings.
func (s *Store) ClearChart(chartHash string) (int64, error) {
	res, err := s.db.Exec("DELETE FROM difficulties WHERE chart_hash = ?", chartHash)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot clear chart: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot count cleared rows: %w", err)
	}
	return n, nil
}

// parseTimestamp handles both time.Time and the string form SQLite
// returns for DATETIME columns.
func parseTimestamp(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
