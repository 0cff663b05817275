// Package store archives finished comparison runs in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bifacial-compare/internal/analysis"
	"bifacial-compare/internal/model"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// createdLayout is fixed width so created_at sorts lexically.
const createdLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL DEFAULT '',
	mode         TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	total        INTEGER NOT NULL,
	ok           INTEGER NOT NULL,
	failed       INTEGER NOT NULL,
	mean_diff_ac REAL NOT NULL,
	mean_diff_dc REAL NOT NULL,
	best         TEXT,
	best_diff_ac REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	run_id       TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position     INTEGER NOT NULL,
	label        TEXT NOT NULL,
	scenario     TEXT NOT NULL,
	bif_peak_ac  REAL,
	mono_peak_ac REAL,
	diff_ac      REAL,
	bif_peak_dc  REAL,
	mono_peak_dc REAL,
	diff_dc      REAL,
	status       TEXT NOT NULL,
	error        TEXT,
	PRIMARY KEY (run_id, position)
);
`

// Run is one archived comparison.
type Run struct {
	ID        string            `json:"id"`
	Name      string            `json:"name,omitempty"`
	Mode      model.Mode        `json:"mode"`
	CreatedAt time.Time         `json:"created_at"`
	Summary   analysis.Summary  `json:"summary"`
	Results   []model.RunResult `json:"results,omitempty"`
}

// NewRun wraps a finished table with a fresh id and timestamp.
func NewRun(name string, t *analysis.Table) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Name:      name,
		Mode:      t.Mode,
		CreatedAt: time.Now().UTC(),
		Summary:   t.Summary(),
		Results:   t.Rows,
	}
}

// Store is a SQLite-backed run archive.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open creates or opens the archive at dbPath and applies the schema.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// one writer; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db, dbPath: dbPath}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun inserts a run and its result rows in one transaction.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sum := run.Summary
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, name, mode, created_at, total, ok, failed,
		                  mean_diff_ac, mean_diff_dc, best, best_diff_ac)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name, string(run.Mode), run.CreatedAt.UTC().Format(createdLayout),
		sum.Total, sum.OK, sum.Failed, sum.MeanPercentDiffAC, sum.MeanPercentDiffDC,
		nullString(sum.Best), sum.BestPercentDiffAC,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results (run_id, position, label, scenario,
		                     bif_peak_ac, mono_peak_ac, diff_ac,
		                     bif_peak_dc, mono_peak_dc, diff_dc, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare result insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range run.Results {
		vals := []interface{}{run.ID, r.Position, r.Label, r.Scenario}
		for _, v := range []float64{r.BifacialPeakAC, r.MonofacialPeakAC, r.PercentDiffAC, r.BifacialPeakDC, r.MonofacialPeakDC, r.PercentDiffDC} {
			if r.Computed() {
				vals = append(vals, v)
			} else {
				vals = append(vals, nil)
			}
		}
		vals = append(vals, string(r.Status), nullString(r.Error))
		if _, err := stmt.ExecContext(ctx, vals...); err != nil {
			return fmt.Errorf("failed to insert result %d: %w", r.Position, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns run headers, newest first. limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, name, mode, created_at, total, ok, failed,
		       mean_diff_ac, mean_diff_dc, best, best_diff_ac
		FROM runs
		ORDER BY created_at DESC, id`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun loads a run with all of its result rows.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, mode, created_at, total, ok, failed,
		       mean_diff_ac, mean_diff_dc, best, best_diff_ac
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT position, label, scenario, bif_peak_ac, mono_peak_ac, diff_ac,
		       bif_peak_dc, mono_peak_dc, diff_dc, status, error
		FROM results WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r model.RunResult
		var status string
		var errText sql.NullString
		var nums [6]sql.NullFloat64
		if err := rows.Scan(&r.Position, &r.Label, &r.Scenario,
			&nums[0], &nums[1], &nums[2], &nums[3], &nums[4], &nums[5],
			&status, &errText); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		r.BifacialPeakAC = nums[0].Float64
		r.MonofacialPeakAC = nums[1].Float64
		r.PercentDiffAC = nums[2].Float64
		r.BifacialPeakDC = nums[3].Float64
		r.MonofacialPeakDC = nums[4].Float64
		r.PercentDiffDC = nums[5].Float64
		r.Status = model.Status(status)
		if errText.Valid {
			r.Error = errText.String
		}
		run.Results = append(run.Results, r)
	}
	return run, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (*Run, error) {
	var run Run
	var mode, created string
	var best sql.NullString
	err := sc.Scan(&run.ID, &run.Name, &mode, &created,
		&run.Summary.Total, &run.Summary.OK, &run.Summary.Failed,
		&run.Summary.MeanPercentDiffAC, &run.Summary.MeanPercentDiffDC,
		&best, &run.Summary.BestPercentDiffAC)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run row: %w", err)
	}
	run.Mode = model.Mode(mode)
	if best.Valid {
		run.Summary.Best = best.String
	}
	if run.CreatedAt, err = time.Parse(createdLayout, created); err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", created, err)
	}
	return &run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
