package validator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/nrjais/docqa/internal/check"
	dbmocks "github.com/nrjais/docqa/internal/db/mocks"
	"github.com/nrjais/docqa/internal/document"
	"github.com/nrjais/docqa/internal/rules"
)

func ptr[T any](v T) *T {
	return &v
}

func TestNew_NormalizesOptions(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		sample int64
		chunk  int
	}{
		{"defaults", Options{}, MaxSampleSize, DefaultChunkSize},
		{"over limit", Options{SampleLimit: 5000, ChunkSize: 10}, MaxSampleSize, 10},
		{"within limit", Options{SampleLimit: 50, ChunkSize: -1}, 50, DefaultChunkSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(nil, tt.opts)
			assert.Equal(t, tt.sample, v.opts.SampleLimit)
			assert.Equal(t, tt.chunk, v.opts.ChunkSize)
		})
	}
}

func TestValidate_MissingCollection(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := dbmocks.NewMockDataSource(ctrl)
	source.EXPECT().ListCollectionNames(gomock.Any()).Return([]string{"orders"}, nil)

	v := New(source, Options{})
	result, err := v.Validate(context.Background(), "users", rules.CollectionRule{
		ExpectedCount:  ptr(int64(1)),
		RequiredFields: []string{"name"},
	})

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, result.Status)
	assert.False(t, result.Passed())
	assert.Zero(t, result.SampleSize)
	assert.Zero(t, result.TotalDocuments)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, check.RuleExistence, result.Errors[0].Rule)
	assert.Equal(t, "Collection 'users' does not exist in the database.", result.Errors[0].Message)
	assert.Equal(t, []CheckOutcome{{Rule: check.RuleExistence, Passed: false, Errors: 1}}, result.Checks)
}

func TestValidate_CountMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := dbmocks.NewMockDataSource(ctrl)
	source.EXPECT().ListCollectionNames(gomock.Any()).Return([]string{"users"}, nil)
	source.EXPECT().CountDocuments(gomock.Any(), "users").Return(int64(5), nil)
	source.EXPECT().FetchDocuments(gomock.Any(), "users", int64(5)).Return([]document.Document{
		{"_id": "1"}, {"_id": "2"}, {"_id": "3"}, {"_id": "4"}, {"_id": "5"},
	}, nil)

	v := New(source, Options{})
	result, err := v.Validate(context.Background(), "users", rules.CollectionRule{ExpectedCount: ptr(int64(10))})

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, result.Status)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, check.RuleExpectedCount, result.Errors[0].Rule)
	assert.Equal(t, "Collection 'users': Expected at least 10 documents, but found 5.", result.Errors[0].Message)
	assert.Equal(t, int64(5), result.TotalDocuments)
	assert.Equal(t, int64(5), result.SampleSize)
	assert.Equal(t, []CheckOutcome{
		{Rule: check.RuleExistence, Passed: true},
		{Rule: check.RuleExpectedCount, Passed: false, Errors: 1},
	}, result.Checks)
}

func TestValidate_CountMismatchDoesNotSkipDocumentChecks(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := dbmocks.NewMockDataSource(ctrl)
	source.EXPECT().ListCollectionNames(gomock.Any()).Return([]string{"users"}, nil)
	source.EXPECT().CountDocuments(gomock.Any(), "users").Return(int64(1), nil)
	source.EXPECT().FetchDocuments(gomock.Any(), "users", int64(1)).Return([]document.Document{{"_id": "a"}}, nil)

	v := New(source, Options{})
	result, err := v.Validate(context.Background(), "users", rules.CollectionRule{
		ExpectedCount:  ptr(int64(3)),
		RequiredFields: []string{"name"},
	})

	require.NoError(t, err)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, check.RuleExpectedCount, result.Errors[0].Rule)
	assert.Equal(t, "Document a: Missing required field 'name'.", result.Errors[1].Message)
}

func TestValidate_Passed(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := dbmocks.NewMockDataSource(ctrl)
	source.EXPECT().ListCollectionNames(gomock.Any()).Return([]string{"users"}, nil)
	source.EXPECT().CountDocuments(gomock.Any(), "users").Return(int64(2), nil)
	source.EXPECT().FetchDocuments(gomock.Any(), "users", int64(2)).Return([]document.Document{
		{"_id": "a", "name": "Ada", "age": int32(36)},
		{"_id": "b", "name": "Bob", "age": int32(41)},
	}, nil)

	v := New(source, Options{})
	result, err := v.Validate(context.Background(), "users", rules.CollectionRule{
		ExpectedCount:  ptr(int64(2)),
		RequiredFields: []string{"name"},
		NumericRanges:  rules.OrderedMap[rules.Range]{{Key: "age", Value: rules.Range{Min: ptr(0.0), Max: ptr(120.0)}}},
	})

	require.NoError(t, err)
	assert.True(t, result.Passed())
	assert.Empty(t, result.Errors)
	assert.Equal(t, []CheckOutcome{
		{Rule: check.RuleExistence, Passed: true},
		{Rule: check.RuleExpectedCount, Passed: true},
		{Rule: check.RuleRequiredFields, Passed: true},
		{Rule: check.RuleNumericRanges, Passed: true},
	}, result.Checks)
}

func TestValidate_EmptyCollectionSkipsFetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := dbmocks.NewMockDataSource(ctrl)
	source.EXPECT().ListCollectionNames(gomock.Any()).Return([]string{"users"}, nil)
	source.EXPECT().CountDocuments(gomock.Any(), "users").Return(int64(0), nil)

	v := New(source, Options{})
	result, err := v.Validate(context.Background(), "users", rules.CollectionRule{RequiredFields: []string{"name"}})

	require.NoError(t, err)
	assert.True(t, result.Passed())
	assert.Zero(t, result.SampleSize)
}

func TestValidate_SampleBound(t *testing.T) {
	tests := []struct {
		name     string
		limit    int64
		total    int64
		expected int64
	}{
		{"small collection", 0, 7, 7},
		{"large collection", 0, 250000, MaxSampleSize},
		{"configured limit", 20, 100, 20},
		{"configured limit above total", 20, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			source := dbmocks.NewMockDataSource(ctrl)
			source.EXPECT().ListCollectionNames(gomock.Any()).Return([]string{"c"}, nil)
			source.EXPECT().CountDocuments(gomock.Any(), "c").Return(tt.total, nil)
			source.EXPECT().FetchDocuments(gomock.Any(), "c", tt.expected).DoAndReturn(
				func(_ context.Context, _ string, limit int64) ([]document.Document, error) {
					docs := make([]document.Document, limit)
					for i := range docs {
						docs[i] = document.Document{"_id": fmt.Sprint(i)}
					}
					return docs, nil
				})

			v := New(source, Options{SampleLimit: tt.limit})
			result, err := v.Validate(context.Background(), "c", rules.CollectionRule{})

			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.SampleSize)
			assert.LessOrEqual(t, result.SampleSize, min(int64(MaxSampleSize), tt.total))
		})
	}
}

func TestValidate_SourceReturnsMoreThanRequested(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := dbmocks.NewMockDataSource(ctrl)
	source.EXPECT().ListCollectionNames(gomock.Any()).Return([]string{"c"}, nil)
	source.EXPECT().CountDocuments(gomock.Any(), "c").Return(int64(2), nil)
	source.EXPECT().FetchDocuments(gomock.Any(), "c", int64(2)).Return([]document.Document{
		{"_id": "1"}, {"_id": "2"}, {"_id": "3"},
	}, nil)

	v := New(source, Options{})
	result, err := v.Validate(context.Background(), "c", rules.CollectionRule{RequiredFields: []string{"x"}})

	require.NoError(t, err)
	assert.Equal(t, int64(2), result.SampleSize)
	assert.Len(t, result.Errors, 2)
}

func TestValidate_ErrorOrderAcrossChunks(t *testing.T) {
	docs := make([]document.Document, 0, 57)
	expected := make([]string, 0, 57*2)
	for i := 0; i < 57; i++ {
		id := fmt.Sprintf("d%02d", i)
		docs = append(docs, document.Document{"_id": id, "age": "n/a"})
		expected = append(expected,
			fmt.Sprintf("Document %s: Missing required field 'name'.", id),
			fmt.Sprintf("Document %s: Field 'age' is not numeric.", id))
	}

	ctrl := gomock.NewController(t)
	source := dbmocks.NewMockDataSource(ctrl)
	source.EXPECT().ListCollectionNames(gomock.Any()).Return([]string{"c"}, nil)
	source.EXPECT().CountDocuments(gomock.Any(), "c").Return(int64(len(docs)), nil)
	source.EXPECT().FetchDocuments(gomock.Any(), "c", int64(len(docs))).Return(docs, nil)

	v := New(source, Options{ChunkSize: 5})
	result, err := v.Validate(context.Background(), "c", rules.CollectionRule{
		RequiredFields: []string{"name"},
		NumericRanges:  rules.OrderedMap[rules.Range]{{Key: "age", Value: rules.Range{Max: ptr(1.0)}}},
	})

	require.NoError(t, err)
	got := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		got = append(got, e.Message)
	}
	assert.Equal(t, expected, got)
}

func TestValidate_Idempotent(t *testing.T) {
	docs := []document.Document{
		{"_id": "x1", "age": 150, "bio": "expert in machine learning"},
		{"_id": "x2", "tags": []any{"red", "blue"}},
	}
	rule := rules.CollectionRule{
		ExpectedCount: ptr(int64(10)),
		Categories:    rules.OrderedMap[[]any]{{Key: "color", Value: []any{"red", "blue", "green"}}},
		NumericRanges: rules.OrderedMap[rules.Range]{{Key: "age", Value: rules.Range{Max: ptr(120.0)}}},
		Keywords:      rules.OrderedMap[[]string]{{Key: "bio", Value: []string{"machine", "deep"}}},
	}

	ctrl := gomock.NewController(t)
	source := dbmocks.NewMockDataSource(ctrl)
	source.EXPECT().ListCollectionNames(gomock.Any()).Return([]string{"c"}, nil).Times(2)
	source.EXPECT().CountDocuments(gomock.Any(), "c").Return(int64(2), nil).Times(2)
	source.EXPECT().FetchDocuments(gomock.Any(), "c", int64(2)).Return(docs, nil).Times(2)

	v := New(source, Options{})
	first, err := v.Validate(context.Background(), "c", rule)
	require.NoError(t, err)
	second, err := v.Validate(context.Background(), "c", rule)
	require.NoError(t, err)

	first.Duration, second.Duration = 0, 0
	assert.Equal(t, first, second)
	assert.Len(t, first.Errors, 3)
}

func TestValidate_DataSourceErrors(t *testing.T) {
	boom := errors.New("connection reset")

	t.Run("list collections", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		source := dbmocks.NewMockDataSource(ctrl)
		source.EXPECT().ListCollectionNames(gomock.Any()).Return(nil, boom)

		_, err := New(source, Options{}).Validate(context.Background(), "c", rules.CollectionRule{})
		assert.ErrorIs(t, err, ErrDataSource)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("count", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		source := dbmocks.NewMockDataSource(ctrl)
		source.EXPECT().ListCollectionNames(gomock.Any()).Return([]string{"c"}, nil)
		source.EXPECT().CountDocuments(gomock.Any(), "c").Return(int64(0), boom)

		_, err := New(source, Options{}).Validate(context.Background(), "c", rules.CollectionRule{})
		assert.ErrorIs(t, err, ErrDataSource)
	})

	t.Run("fetch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		source := dbmocks.NewMockDataSource(ctrl)
		source.EXPECT().ListCollectionNames(gomock.Any()).Return([]string{"c"}, nil)
		source.EXPECT().CountDocuments(gomock.Any(), "c").Return(int64(3), nil)
		source.EXPECT().FetchDocuments(gomock.Any(), "c", int64(3)).Return(nil, boom)

		_, err := New(source, Options{}).Validate(context.Background(), "c", rules.CollectionRule{})
		assert.ErrorIs(t, err, ErrDataSource)
		assert.ErrorIs(t, err, boom)
	})
}

func TestValidate_AppliesTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := dbmocks.NewMockDataSource(ctrl)
	source.EXPECT().ListCollectionNames(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]string, error) {
		deadline, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
		return []string{}, nil
	})

	v := New(source, Options{Timeout: time.Minute})
	result, err := v.Validate(context.Background(), "c", rules.CollectionRule{})
	require.NoError(t, err)
	assert.False(t, result.Passed())
}

func TestErrored(t *testing.T) {
	result := Errored("users", fmt.Errorf("%w: timeout", ErrDataSource), time.Second)

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, "data source failure: timeout", result.Err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, check.RuleDataSource, result.Errors[0].Rule)
	assert.Contains(t, result.Errors[0].Message, "Collection 'users'")
}
