package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/nrjais/docqa/internal/document"
)

var ErrNoDatabase = errors.New("no database name configured")

func ConnectMongo(ctx context.Context, mongoURL string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(mongoURL)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer disconnectCancel()
		if disconnectErr := client.Disconnect(disconnectCtx); disconnectErr != nil {
			slog.Error("Failed to disconnect from MongoDB after ping failure", "error", disconnectErr)
		}
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	slog.Info("Database connection established", "db", "MongoDB")
	return client, nil
}

// DatabaseName picks the explicit name when set and otherwise falls back to
// the database path of the connection URI.
func DatabaseName(mongoURL, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	cs, err := connstring.Parse(mongoURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse Mongo URL: %w", err)
	}
	if cs.Database == "" {
		return "", ErrNoDatabase
	}
	return cs.Database, nil
}

type MongoSource struct {
	db        *mongo.Database
	batchSize int32
}

func NewMongoSource(client *mongo.Client, dbName string) *MongoSource {
	return &MongoSource{
		db:        client.Database(dbName),
		batchSize: 500,
	}
}

func (s *MongoSource) ListCollectionNames(ctx context.Context) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections in %s: %w", s.db.Name(), err)
	}
	return names, nil
}

func (s *MongoSource) CountDocuments(ctx context.Context, collection string) (int64, error) {
	count, err := s.db.Collection(collection).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count documents in %s: %w", collection, err)
	}
	return count, nil
}

func (s *MongoSource) FetchDocuments(ctx context.Context, collection string, limit int64) ([]document.Document, error) {
	// A zero limit means "no limit" to the server.
	if limit <= 0 {
		return nil, nil
	}

	findOpts := options.Find().SetLimit(limit).SetBatchSize(min(s.batchSize, int32(limit)))
	cursor, err := s.db.Collection(collection).Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start Find cursor for %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	docs := make([]document.Document, 0, limit)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode document from %s: %w", collection, err)
		}
		docs = append(docs, document.Document(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error while sampling %s: %w", collection, err)
	}

	slog.Debug("Fetched sample", "collection", collection, "count", len(docs))
	return docs, nil
}
