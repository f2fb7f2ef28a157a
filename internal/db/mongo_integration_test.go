//go:build integration

package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMongoSource_Integration(t *testing.T) {
	mongoURL := os.Getenv("DOCQA_TEST_MONGO_URL")
	if mongoURL == "" {
		mongoURL = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := ConnectMongo(ctx, mongoURL)
	require.NoError(t, err)
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	dbName := "docqa_integration"
	database := client.Database(dbName)
	require.NoError(t, database.Drop(ctx))
	t.Cleanup(func() { database.Drop(context.Background()) })

	coll := database.Collection("people")
	_, err = coll.InsertMany(ctx, []any{
		bson.M{"_id": "p1", "name": "Ada", "address": bson.M{"zip": "10115"}},
		bson.M{"_id": "p2", "name": "Linus", "age": int32(54)},
		bson.M{"_id": "p3", "name": "Grace"},
	})
	require.NoError(t, err)

	source := NewMongoSource(client, dbName)

	names, err := source.ListCollectionNames(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "people")

	count, err := source.CountDocuments(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	docs, err := source.FetchDocuments(ctx, "people", 2)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	none, err := source.FetchDocuments(ctx, "people", 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	missing, err := source.CountDocuments(ctx, "ghost")
	require.NoError(t, err)
	assert.Zero(t, missing)
}
