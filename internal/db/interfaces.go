package db

import (
	"context"

	"github.com/nrjais/docqa/internal/document"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// DataSource is the read-only view of a document database used by validation.
type DataSource interface {
	ListCollectionNames(ctx context.Context) ([]string, error)
	CountDocuments(ctx context.Context, collection string) (int64, error)
	// FetchDocuments returns up to limit documents in the store's natural order.
	FetchDocuments(ctx context.Context, collection string, limit int64) ([]document.Document, error)
}
