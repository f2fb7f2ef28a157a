package report

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/nrjais/docqa/internal/check"
	"github.com/nrjais/docqa/internal/rules"
	"github.com/nrjais/docqa/internal/validator"
)

var ErrRunFailed = errors.New("validation failed")

const DefaultWorkers = 4

type RunReport struct {
	StartedAt        time.Time                    `json:"started_at"`
	ExecutionTime    time.Duration                `json:"execution_time_ns"`
	TotalCollections int                          `json:"total_collections"`
	PassedCount      int                          `json:"passed"`
	FailedCount      int                          `json:"failed"`
	Results          []validator.CollectionResult `json:"results"`
}

func Build(startedAt time.Time, elapsed time.Duration, results []validator.CollectionResult) RunReport {
	passed := lo.CountBy(results, func(r validator.CollectionResult) bool {
		return r.Passed()
	})
	return RunReport{
		StartedAt:        startedAt,
		ExecutionTime:    elapsed,
		TotalCollections: len(results),
		PassedCount:      passed,
		FailedCount:      len(results) - passed,
		Results:          results,
	}
}

func (r RunReport) Passed() bool {
	return r.FailedCount == 0
}

// Errors lists every validation error of the run in report order.
func (r RunReport) Errors() []check.ValidationError {
	return lo.FlatMap(r.Results, func(res validator.CollectionResult, _ int) []check.ValidationError {
		return res.Errors
	})
}

type Runner struct {
	validator CollectionValidator
	workers   int
}

func NewRunner(v CollectionValidator, workers int) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Runner{validator: v, workers: workers}
}

// Run validates every collection of the rule set. Collections are processed
// by a bounded pool but results keep declaration order. A data source
// failure fails only the affected collection.
func (r *Runner) Run(ctx context.Context, set *rules.RuleSet) RunReport {
	startedAt := time.Now()
	results := make([]validator.CollectionResult, set.Collections.Len())

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, entry := range set.Collections {
		i, entry := i, entry
		g.Go(func() error {
			collStart := time.Now()
			result, err := r.validator.Validate(ctx, entry.Key, entry.Value)
			if err != nil {
				slog.Error("Collection validation aborted",
					"collection", entry.Key,
					"error", err)
				result = validator.Errored(entry.Key, err, time.Since(collStart))
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	rep := Build(startedAt, time.Since(startedAt), results)
	slog.Info("Validation run finished",
		"collections", rep.TotalCollections,
		"passed", rep.PassedCount,
		"failed", rep.FailedCount,
		"duration", rep.ExecutionTime)
	return rep
}
