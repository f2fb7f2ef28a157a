package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestResolve(t *testing.T) {
	doc := Document{
		"_id":  "u1",
		"name": "Ada",
		"address": map[string]any{
			"zip":  "10115",
			"city": bson.M{"name": "Berlin"},
		},
		"meta":   bson.D{{Key: "source", Value: "import"}},
		"tags":   bson.A{"a", "b"},
		"zero":   0,
		"empty":  "",
		"absent": nil,
	}

	tests := []struct {
		name     string
		path     string
		expected any
		found    bool
	}{
		{"top level", "name", "Ada", true},
		{"nested map", "address.zip", "10115", true},
		{"nested bson.M", "address.city.name", "Berlin", true},
		{"nested bson.D", "meta.source", "import", true},
		{"whole subdocument", "address.city", bson.M{"name": "Berlin"}, true},
		{"zero value is present", "zero", 0, true},
		{"empty string is present", "empty", "", true},
		{"missing key", "email", nil, false},
		{"missing nested key", "address.street", nil, false},
		{"through scalar", "name.first", nil, false},
		{"through list", "tags.0", nil, false},
		{"null value", "absent", nil, false},
		{"empty path", "", nil, false},
		{"leading dot", ".name", nil, false},
		{"trailing dot", "name.", nil, false},
		{"double dot", "address..zip", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, found := Resolve(doc, tt.path)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.expected, value)
		})
	}
}

func TestResolve_NilDocument(t *testing.T) {
	value, found := Resolve(nil, "anything")
	assert.False(t, found)
	assert.Nil(t, value)
}

func TestID(t *testing.T) {
	oid := primitive.NewObjectID()

	assert.Equal(t, oid.Hex(), ID(Document{"_id": oid}))
	assert.Equal(t, "x1", ID(Document{"_id": "x1"}))
	assert.Equal(t, "42", ID(Document{"_id": int32(42)}))
	assert.Equal(t, "Unknown", ID(Document{"name": "no id"}))
	assert.Equal(t, "Unknown", ID(Document{"_id": nil}))
}

func TestKind(t *testing.T) {
	tests := []struct {
		value    any
		expected string
	}{
		{"s", "string"},
		{true, "bool"},
		{42, "int"},
		{int32(42), "int"},
		{int64(42), "int"},
		{4.2, "float"},
		{bson.A{1}, "list"},
		{[]any{1}, "list"},
		{bson.M{}, "dict"},
		{bson.D{}, "dict"},
		{map[string]any{}, "dict"},
		{primitive.NewObjectID(), "objectId"},
		{primitive.NewDateTimeFromTime(primitive.NewObjectID().Timestamp()), "date"},
		{nil, "null"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, Kind(tt.value))
		})
	}
}
