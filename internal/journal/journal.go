package journal

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ukuts/arshin/internal/enrich"
	"github.com/ukuts/arshin/internal/table"
)

//go:embed schema.sql
var schemaSQL string

// Open opens the journal database at path, creating the schema if needed.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return db, nil
}

// Run is the journal handle for one fill run. It only ever appends; the
// journal is never consulted to decide a row's outcome.
type Run struct {
	db *sql.DB
	id string
}

// Begin inserts the run header and returns the handle used for per-row
// records.
func Begin(db *sql.DB, inputPath, outputPath string) (*Run, error) {
	id := uuid.New().String()
	_, err := db.Exec(`
		INSERT INTO runs (id, started_at, input_path, output_path)
		VALUES (?, ?, ?, ?)
	`, id, time.Now().Unix(), inputPath, outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	return &Run{db: db, id: id}, nil
}

// ID returns the run identifier.
func (r *Run) ID() string { return r.id }

// RecordRow appends one row outcome to the audit trail.
func (r *Run) RecordRow(index int, deviceNumber string, res enrich.Result, row table.Row) error {
	_, err := r.db.Exec(`
		INSERT INTO run_rows (run_id, row_index, device_number, outcome, vri_id, query_url)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.id, index, deviceNumber, res.Outcome.String(), row["vri_id"], res.QueryURL)
	if err != nil {
		return fmt.Errorf("failed to record row: %w", err)
	}
	return nil
}

// Finish stamps the run with its final counters.
func (r *Run) Finish(stats enrich.Stats) error {
	_, err := r.db.Exec(`
		UPDATE runs
		SET finished_at = ?, total = ?, already_filled = ?, found = ?, not_found = ?, skipped = ?
		WHERE id = ?
	`, time.Now().Unix(), stats.Total, stats.AlreadyFilled, stats.Found, stats.NotFound, stats.Skipped, r.id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// RunInfo summarizes one journaled run.
type RunInfo struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	InputPath  string
	OutputPath string
	Stats      enrich.Stats
}

// List returns journaled runs, newest first.
func List(db *sql.DB) ([]RunInfo, error) {
	rows, err := db.Query(`
		SELECT id, started_at, finished_at, input_path, output_path,
		       total, already_filled, found, not_found, skipped
		FROM runs
		ORDER BY started_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var infos []RunInfo
	for rows.Next() {
		var info RunInfo
		var startedAt int64
		var finishedAt sql.NullInt64

		if err := rows.Scan(
			&info.ID, &startedAt, &finishedAt, &info.InputPath, &info.OutputPath,
			&info.Stats.Total, &info.Stats.AlreadyFilled, &info.Stats.Found,
			&info.Stats.NotFound, &info.Stats.Skipped,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		info.StartedAt = time.Unix(startedAt, 0)
		if finishedAt.Valid {
			t := time.Unix(finishedAt.Int64, 0)
			info.FinishedAt = &t
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
