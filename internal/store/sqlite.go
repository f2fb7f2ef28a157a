package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nrjais/docqa/internal/report"
	"github.com/nrjais/docqa/internal/validator"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db (%s): %w", dbPath, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys on %s: %w", dbPath, err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() {
	_ = s.db.Close()
}

// SaveRun implements Store
func (s *SQLiteStore) SaveRun(ctx context.Context, r report.RunReport) (int64, error) {
	run := runRecord(r)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        INSERT INTO validation_runs (started_at_ms, execution_ms, total_collections, passed, failed, error_count)
        VALUES (?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UnixMilli(), run.ExecutionTime.Milliseconds(), run.TotalCollections,
		run.PassedCount, run.FailedCount, run.ErrorCount)
	if err != nil {
		return 0, fmt.Errorf("failed to insert validation run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read validation run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO collection_results
            (run_id, position, collection, status, error_count, sample_size, total_documents, duration_ms, fatal_error, errors)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare collection result insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range collectionRecords(r) {
		errs, err := encodeErrors(rec.Errors)
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, id, i, rec.Collection, string(rec.Status), rec.ErrorCount,
			rec.SampleSize, rec.TotalDocuments, rec.Duration.Milliseconds(), rec.Err, string(errs)); err != nil {
			return 0, fmt.Errorf("failed to insert collection result %s for run %d: %w", rec.Collection, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit validation run: %w", err)
	}
	return id, nil
}

// ListRuns implements Store
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, started_at_ms, execution_ms, total_collections, passed, failed, error_count
        FROM validation_runs
        ORDER BY started_at_ms DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query validation runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunRecord, 0)
	for rows.Next() {
		var run RunRecord
		var startedMs, execMs int64
		if err := rows.Scan(&run.ID, &startedMs, &execMs, &run.TotalCollections,
			&run.PassedCount, &run.FailedCount, &run.ErrorCount); err != nil {
			return nil, fmt.Errorf("failed to scan validation run row: %w", err)
		}
		run.StartedAt = time.UnixMilli(startedMs).UTC()
		run.ExecutionTime = time.Duration(execMs) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating validation run rows: %w", err)
	}
	return runs, nil
}

// RunResults implements Store
func (s *SQLiteStore) RunResults(ctx context.Context, runID int64) ([]CollectionRecord, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM validation_runs WHERE id = ?`, runID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up validation run %d: %w", runID, err)
	}

	rows, err := s.db.QueryContext(ctx, `
        SELECT collection, status, error_count, sample_size, total_documents, duration_ms, fatal_error, errors
        FROM collection_results
        WHERE run_id = ?
        ORDER BY position ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection results for run %d: %w", runID, err)
	}
	defer rows.Close()

	records := make([]CollectionRecord, 0)
	for rows.Next() {
		var rec CollectionRecord
		var status, rawErrors string
		var durationMs int64
		if err := rows.Scan(&rec.Collection, &status, &rec.ErrorCount, &rec.SampleSize,
			&rec.TotalDocuments, &durationMs, &rec.Err, &rawErrors); err != nil {
			return nil, fmt.Errorf("failed to scan collection result row: %w", err)
		}
		rec.Status = validator.Status(status)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		if rec.Errors, err = decodeErrors([]byte(rawErrors)); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection result rows: %w", err)
	}
	return records, nil
}
