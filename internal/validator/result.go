package validator

import (
	"time"

	"github.com/samber/lo"

	"github.com/nrjais/docqa/internal/check"
)

type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

// CheckOutcome summarizes one rule kind for a collection.
type CheckOutcome struct {
	Rule   check.RuleKind `json:"rule"`
	Passed bool           `json:"passed"`
	Errors int            `json:"errors"`
}

type CollectionResult struct {
	Collection     string                  `json:"collection"`
	Status         Status                  `json:"status"`
	Errors         []check.ValidationError `json:"errors"`
	Checks         []CheckOutcome          `json:"checks"`
	SampleSize     int64                   `json:"sample_size"`
	TotalDocuments int64                   `json:"total_documents"`
	Duration       time.Duration           `json:"duration_ns"`
	Err            string                  `json:"fatal_error,omitempty"`
}

func (r CollectionResult) Passed() bool {
	return r.Status == StatusPassed
}

// Errored builds the failed result of a pass that aborted on a data source
// failure.
func Errored(collection string, err error, elapsed time.Duration) CollectionResult {
	return CollectionResult{
		Collection: collection,
		Status:     StatusFailed,
		Errors: []check.ValidationError{{
			Rule:    check.RuleDataSource,
			Message: "Collection '" + collection + "': validation aborted: " + err.Error(),
		}},
		Checks:   []CheckOutcome{{Rule: check.RuleDataSource, Passed: false, Errors: 1}},
		Duration: elapsed,
		Err:      err.Error(),
	}
}

func outcomes(kinds []check.RuleKind, errs []check.ValidationError) []CheckOutcome {
	counts := lo.CountValuesBy(errs, func(e check.ValidationError) check.RuleKind {
		return e.Rule
	})
	return lo.Map(kinds, func(kind check.RuleKind, _ int) CheckOutcome {
		return CheckOutcome{Rule: kind, Passed: counts[kind] == 0, Errors: counts[kind]}
	})
}
