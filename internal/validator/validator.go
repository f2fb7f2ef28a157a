package validator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/lo"
	lop "github.com/samber/lo/parallel"

	"github.com/nrjais/docqa/internal/check"
	"github.com/nrjais/docqa/internal/db"
	"github.com/nrjais/docqa/internal/document"
	"github.com/nrjais/docqa/internal/rules"
)

var ErrDataSource = errors.New("data source failure")

const (
	MaxSampleSize    = 1000
	DefaultChunkSize = 100
)

type Options struct {
	// SampleLimit caps the sample per collection. Values outside
	// 1..MaxSampleSize are replaced by MaxSampleSize.
	SampleLimit int64
	ChunkSize   int
	// Timeout bounds one collection pass. Zero means no deadline.
	Timeout time.Duration
}

type Validator struct {
	source db.DataSource
	opts   Options
}

func New(source db.DataSource, opts Options) *Validator {
	if opts.SampleLimit <= 0 || opts.SampleLimit > MaxSampleSize {
		opts.SampleLimit = MaxSampleSize
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	return &Validator{source: source, opts: opts}
}

// Validate runs one collection pass: existence, count, sampling and the
// per-document rules. A returned error is always a data source failure;
// failed rule checks are reported in the result.
func (v *Validator) Validate(ctx context.Context, collection string, rule rules.CollectionRule) (CollectionResult, error) {
	start := time.Now()
	if v.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.opts.Timeout)
		defer cancel()
	}

	names, err := v.source.ListCollectionNames(ctx)
	if err != nil {
		return CollectionResult{}, fmt.Errorf("%w: %w", ErrDataSource, err)
	}
	if !slices.Contains(names, collection) {
		slog.Warn("Collection does not exist", "collection", collection)
		existence := check.ValidationError{
			Rule:    check.RuleExistence,
			Message: fmt.Sprintf("Collection '%s' does not exist in the database.", collection),
		}
		return CollectionResult{
			Collection: collection,
			Status:     StatusFailed,
			Errors:     []check.ValidationError{existence},
			Checks:     []CheckOutcome{{Rule: check.RuleExistence, Passed: false, Errors: 1}},
			Duration:   time.Since(start),
		}, nil
	}

	total, err := v.source.CountDocuments(ctx, collection)
	if err != nil {
		return CollectionResult{}, fmt.Errorf("%w: %w", ErrDataSource, err)
	}

	errs := make([]check.ValidationError, 0)
	kinds := []check.RuleKind{check.RuleExistence}
	if rule.ExpectedCount != nil {
		kinds = append(kinds, check.RuleExpectedCount)
		if total < *rule.ExpectedCount {
			errs = append(errs, check.ValidationError{
				Rule: check.RuleExpectedCount,
				Message: fmt.Sprintf("Collection '%s': Expected at least %d documents, but found %d.",
					collection, *rule.ExpectedCount, total),
			})
		}
	}

	kinds = append(kinds, check.ConfiguredKinds(rule)...)

	sampleSize := min(v.opts.SampleLimit, total)
	if sampleSize > 0 {
		docs, err := v.source.FetchDocuments(ctx, collection, sampleSize)
		if err != nil {
			return CollectionResult{}, fmt.Errorf("%w: %w", ErrDataSource, err)
		}
		if int64(len(docs)) > sampleSize {
			docs = docs[:sampleSize]
		}
		// The collection may have shrunk between count and fetch.
		sampleSize = int64(len(docs))
		errs = append(errs, v.validateDocuments(docs, rule)...)
	}

	result := CollectionResult{
		Collection:     collection,
		Status:         lo.Ternary(len(errs) == 0, StatusPassed, StatusFailed),
		Errors:         errs,
		Checks:         outcomes(kinds, errs),
		SampleSize:     sampleSize,
		TotalDocuments: total,
		Duration:       time.Since(start),
	}

	slog.Info("Collection validated",
		"collection", collection,
		"status", result.Status,
		"errors", len(errs),
		"sample_size", sampleSize,
		"total_documents", total,
		"duration", result.Duration)
	return result, nil
}

// validateDocuments splits the sample in chunks validated in parallel. Chunk
// results are concatenated in chunk order, which keeps the error sequence
// identical to a sequential pass.
func (v *Validator) validateDocuments(docs []document.Document, rule rules.CollectionRule) []check.ValidationError {
	if len(docs) == 0 {
		return nil
	}
	chunks := lo.Chunk(docs, v.opts.ChunkSize)
	perChunk := lop.Map(chunks, func(chunk []document.Document, _ int) []check.ValidationError {
		var errs check.List
		for _, doc := range chunk {
			check.Document(doc, rule, &errs)
		}
		return errs
	})
	return lo.Flatten(perChunk)
}
