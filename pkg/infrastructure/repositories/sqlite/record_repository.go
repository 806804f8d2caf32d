// Package sqlite persists simulation records in a SQLite database, one JSON
// payload per simulated day.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vsinha/cropsim/pkg/domain/entities"
	"github.com/vsinha/cropsim/pkg/domain/repositories"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// RecordRepository stores daily records in SQLite
type RecordRepository struct {
	db   *sql.DB
	path string
}

// Verify interface compliance
var _ repositories.RecordRepository = (*RecordRepository)(nil)

// NewRecordRepository opens (creating if needed) the database at path
func NewRecordRepository(path string) (*RecordRepository, error) {
	if path == "" {
		path = "cropsim.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS daily_records (
		run_id TEXT NOT NULL,
		day INTEGER NOT NULL,
		date TEXT NOT NULL,
		payload BLOB NOT NULL,
		PRIMARY KEY (run_id, day)
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create daily_records table: %w", err)
	}
	return &RecordRepository{db: db, path: path}, nil
}

// SaveRecords replaces every stored record of the run in one transaction
func (r *RecordRepository) SaveRecords(ctx context.Context, runID string, records []*entities.DailyRecord) (retErr error) {
	if runID == "" {
		return fmt.Errorf("run id cannot be empty")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM daily_records WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("clear run %s: %w", runID, err)
	}
	for _, record := range records {
		payload, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("encode day %d: %w", record.Day, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO daily_records(run_id, day, date, payload) VALUES(?,?,?,?)`,
			runID, record.Day, record.Date.Format("2006-01-02"), payload,
		); err != nil {
			return fmt.Errorf("insert day %d: %w", record.Day, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetRecords returns the records of a run in day order
func (r *RecordRepository) GetRecords(ctx context.Context, runID string) ([]*entities.DailyRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT payload FROM daily_records WHERE run_id = ? ORDER BY day`, runID)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*entities.DailyRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		record := &entities.DailyRecord{}
		if err := json.Unmarshal(payload, record); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return records, nil
}

// ListRuns returns the stored run ids in sorted order
func (r *RecordRepository) ListRuns(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT run_id FROM daily_records ORDER BY run_id`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []string
	for rows.Next() {
		var runID string
		if err := rows.Scan(&runID); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		runs = append(runs, runID)
	}
	return runs, rows.Err()
}

// Close releases the database handle
func (r *RecordRepository) Close() error { return r.db.Close() }

// Path returns the configured database path.
func (r *RecordRepository) Path() string { return r.path }
