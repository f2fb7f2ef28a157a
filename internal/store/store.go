package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/nrjais/docqa/internal/check"
	"github.com/nrjais/docqa/internal/report"
	"github.com/nrjais/docqa/internal/validator"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var (
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrRunNotFound   = errors.New("validation run not found")
)

// RunRecord is one stored validation run.
type RunRecord struct {
	ID               int64
	StartedAt        time.Time
	ExecutionTime    time.Duration
	TotalCollections int
	PassedCount      int
	FailedCount      int
	ErrorCount       int
}

// CollectionRecord is one stored collection result of a run.
type CollectionRecord struct {
	Collection     string
	Status         validator.Status
	ErrorCount     int
	SampleSize     int64
	TotalDocuments int64
	Duration       time.Duration
	Err            string
	Errors         []string
}

func (r RunRecord) Passed() bool {
	return r.FailedCount == 0
}

// Open connects to the store for driver and applies pending migrations.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case DriverPostgres:
		if err := RunMigrations(driver, dsn); err != nil {
			return nil, err
		}
		return NewPostgresStore(ctx, dsn)
	case DriverSQLite:
		if err := RunMigrations(driver, dsn); err != nil {
			return nil, err
		}
		return NewSQLiteStore(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func runRecord(r report.RunReport) RunRecord {
	return RunRecord{
		StartedAt:        r.StartedAt,
		ExecutionTime:    r.ExecutionTime,
		TotalCollections: r.TotalCollections,
		PassedCount:      r.PassedCount,
		FailedCount:      r.FailedCount,
		ErrorCount:       len(r.Errors()),
	}
}

func collectionRecords(r report.RunReport) []CollectionRecord {
	return lo.Map(r.Results, func(res validator.CollectionResult, _ int) CollectionRecord {
		return CollectionRecord{
			Collection:     res.Collection,
			Status:         res.Status,
			ErrorCount:     len(res.Errors),
			SampleSize:     res.SampleSize,
			TotalDocuments: res.TotalDocuments,
			Duration:       res.Duration,
			Err:            res.Err,
			Errors:         lo.Map(res.Errors, func(e check.ValidationError, _ int) string { return e.Message }),
		}
	})
}

func encodeErrors(messages []string) ([]byte, error) {
	if messages == nil {
		messages = []string{}
	}
	data, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("failed to encode collection errors: %w", err)
	}
	return data, nil
}

func decodeErrors(data []byte) ([]string, error) {
	var messages []string
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode collection errors: %w", err)
	}
	return messages, nil
}
