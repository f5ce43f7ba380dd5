// Package history persists smoke-run outcomes to SQLite.
//
// Recording is opt-in (the --record flag); the harness itself owns no
// state unless asked to. The store is append-only from the harness's
// point of view: runs are written once and queried later.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/platewire/sizzle/internal/probe"
	"github.com/platewire/sizzle/internal/report"
)

//go:embed schema.sql
var schemaSQL string

// Store provides durable storage for run history.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// RunSummary is one row of `sizzle history` output.
type RunSummary struct {
	ID        string    `json:"id"`
	Suite     string    `json:"suite"`
	BaseURL   string    `json:"base_url"`
	Pass      bool      `json:"pass"`
	Passed    int       `json:"passed"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
	StartedAt time.Time `json:"started_at"`
}

// NewRunID generates a time-sortable UUIDv7 run identifier.
//
// Panics if UUID generation fails (should never happen in practice).
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically; safe to call on
// an existing database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// RecordRun writes a run and its per-step outcomes in one transaction.
// The full result is additionally stored as canonical JSON so reports
// remain byte-comparable across reads.
func (s *Store) RecordRun(ctx context.Context, runID string, startedAt time.Time, result *probe.Result) error {
	reportJSON, err := report.Marshal(result)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, suite, base_url, pass, passed, failed, skipped, report, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		runID,
		result.Suite,
		result.BaseURL,
		boolToInt(result.Pass),
		result.Passed,
		result.Failed,
		result.Skipped,
		string(reportJSON),
		startedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	for ord, step := range result.Steps {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_steps (run_id, ord, name, method, path, pass, skipped, status, detail)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			runID,
			ord,
			step.Name,
			step.Method,
			step.Path,
			boolToInt(step.Pass),
			boolToInt(step.Skipped),
			step.Status,
			step.Detail,
		)
		if err != nil {
			return fmt.Errorf("record run step %d: %w", ord, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	return nil
}

// ListRuns returns recorded runs, newest first. An empty suite name
// matches every suite; limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, suiteName string, limit int) ([]RunSummary, error) {
	query := `
		SELECT id, suite, base_url, pass, passed, failed, skipped, started_at
		FROM runs
	`
	var args []any
	if suiteName != "" {
		query += " WHERE suite = ?"
		args = append(args, suiteName)
	}
	query += " ORDER BY started_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var pass int
		var startedAt string
		if err := rows.Scan(&run.ID, &run.Suite, &run.BaseURL, &pass,
			&run.Passed, &run.Failed, &run.Skipped, &startedAt); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		run.Pass = pass != 0
		run.StartedAt, err = time.Parse(time.RFC3339, startedAt)
		if err != nil {
			return nil, fmt.Errorf("list runs: bad started_at for %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	return runs, nil
}

// GetReport returns the stored canonical report JSON for a run.
func (s *Store) GetReport(ctx context.Context, runID string) ([]byte, error) {
	var reportJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT report FROM runs WHERE id = ?", runID,
	).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return []byte(reportJSON), nil
}

// StepOutcome is one per-step row of a recorded run.
type StepOutcome struct {
	Ord     int    `json:"ord"`
	Name    string `json:"name"`
	Method  string `json:"method"`
	Path    string `json:"path"`
	Pass    bool   `json:"pass"`
	Skipped bool   `json:"skipped"`
	Status  int    `json:"status"`
	Detail  string `json:"detail,omitempty"`
}

// GetSteps returns the per-step outcomes of a recorded run in order.
func (s *Store) GetSteps(ctx context.Context, runID string) ([]StepOutcome, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ord, name, method, path, pass, skipped, status, detail
		FROM run_steps
		WHERE run_id = ?
		ORDER BY ord
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("get steps: %w", err)
	}
	defer rows.Close()

	var steps []StepOutcome
	for rows.Next() {
		var step StepOutcome
		var pass, skipped int
		if err := rows.Scan(&step.Ord, &step.Name, &step.Method, &step.Path,
			&pass, &skipped, &step.Status, &step.Detail); err != nil {
			return nil, fmt.Errorf("get steps: %w", err)
		}
		step.Pass = pass != 0
		step.Skipped = skipped != 0
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get steps: %w", err)
	}

	return steps, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
