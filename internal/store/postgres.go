package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nrjais/docqa/internal/report"
	"github.com/nrjais/docqa/internal/validator"
)

func ConnectPostgres(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	slog.Info("Database connection established", "db", "PostgreSQL")
	return pool, nil
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := ConnectPostgres(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// SaveRun implements Store
func (s *PostgresStore) SaveRun(ctx context.Context, r report.RunReport) (int64, error) {
	run := runRecord(r)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	sql := `
        INSERT INTO validation_runs (started_at, execution_ms, total_collections, passed, failed, error_count)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id`
	var id int64
	err = tx.QueryRow(ctx, sql,
		run.StartedAt, run.ExecutionTime.Milliseconds(), run.TotalCollections,
		run.PassedCount, run.FailedCount, run.ErrorCount,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert validation run: %w", err)
	}

	batch := &pgx.Batch{}
	for i, rec := range collectionRecords(r) {
		errs, err := encodeErrors(rec.Errors)
		if err != nil {
			return 0, err
		}
		batch.Queue(`
            INSERT INTO collection_results
                (run_id, position, collection, status, error_count, sample_size, total_documents, duration_ms, fatal_error, errors)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			id, i, rec.Collection, string(rec.Status), rec.ErrorCount, rec.SampleSize,
			rec.TotalDocuments, rec.Duration.Milliseconds(), rec.Err, errs)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("failed to insert collection results for run %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit validation run: %w", err)
	}
	return id, nil
}

// ListRuns implements Store
func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	sql := `
        SELECT id, started_at, execution_ms, total_collections, passed, failed, error_count
        FROM validation_runs
        ORDER BY started_at DESC, id DESC
        LIMIT $1`
	rows, err := s.pool.Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query validation runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunRecord, 0)
	for rows.Next() {
		var run RunRecord
		var execMs int64
		if err := rows.Scan(&run.ID, &run.StartedAt, &execMs, &run.TotalCollections,
			&run.PassedCount, &run.FailedCount, &run.ErrorCount); err != nil {
			return nil, fmt.Errorf("failed to scan validation run row: %w", err)
		}
		run.ExecutionTime = time.Duration(execMs) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating validation run rows: %w", err)
	}
	return runs, nil
}

// RunResults implements Store
func (s *PostgresStore) RunResults(ctx context.Context, runID int64) ([]CollectionRecord, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM validation_runs WHERE id = $1)`, runID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up validation run %d: %w", runID, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, runID)
	}

	sql := `
        SELECT collection, status, error_count, sample_size, total_documents, duration_ms, fatal_error, errors
        FROM collection_results
        WHERE run_id = $1
        ORDER BY position ASC`
	rows, err := s.pool.Query(ctx, sql, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection results for run %d: %w", runID, err)
	}
	defer rows.Close()

	records := make([]CollectionRecord, 0)
	for rows.Next() {
		var rec CollectionRecord
		var status string
		var durationMs int64
		var rawErrors []byte
		if err := rows.Scan(&rec.Collection, &status, &rec.ErrorCount, &rec.SampleSize,
			&rec.TotalDocuments, &durationMs, &rec.Err, &rawErrors); err != nil {
			return nil, fmt.Errorf("failed to scan collection result row: %w", err)
		}
		rec.Status = validator.Status(status)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		if rec.Errors, err = decodeErrors(rawErrors); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection result rows: %w", err)
	}
	return records, nil
}
