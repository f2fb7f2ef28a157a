package store

import (
	"context"

	"github.com/nrjais/docqa/internal/report"
)

// Store keeps the history of validation runs.
type Store interface {
	SaveRun(ctx context.Context, r report.RunReport) (int64, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	RunResults(ctx context.Context, runID int64) ([]CollectionRecord, error)
	Close()
}
