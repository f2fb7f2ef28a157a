package document

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const IDField = "_id"

// Document is a decoded record. Nested mappings may be map[string]any,
// bson.M or bson.D depending on how the document was decoded.
type Document map[string]any

// Resolve walks a dotted path through doc. It reports false when any
// segment is empty, when an intermediate value is not a mapping, when a key
// is absent, or when the final value is null.
func Resolve(doc Document, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	current := any(map[string]any(doc))
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			return nil, false
		}
		value, exists := lookup(current, part)
		if !exists {
			return nil, false
		}
		current = value
	}
	if IsNull(current) {
		return nil, false
	}
	return current, true
}

func lookup(container any, key string) (any, bool) {
	switch m := container.(type) {
	case map[string]any:
		value, exists := m[key]
		return value, exists
	case bson.M:
		value, exists := m[key]
		return value, exists
	case Document:
		value, exists := m[key]
		return value, exists
	case bson.D:
		for _, elem := range m {
			if elem.Key == key {
				return elem.Value, true
			}
		}
	}
	return nil, false
}

func IsNull(value any) bool {
	switch value.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return true
	}
	return false
}

// ID returns the printable _id of doc, or "Unknown" when it has none.
func ID(doc Document) string {
	idValue, ok := doc[IDField]
	if !ok || IsNull(idValue) {
		return "Unknown"
	}
	switch v := idValue.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Kind names the observed type of a value in error messages.
func Kind(value any) string {
	switch value.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "int"
	case float32, float64:
		return "float"
	case primitive.Decimal128:
		return "decimal"
	case []any, bson.A:
		return "list"
	case map[string]any, bson.M, bson.D, Document:
		return "dict"
	case primitive.ObjectID:
		return "objectId"
	case primitive.DateTime:
		return "date"
	case primitive.Timestamp:
		return "timestamp"
	case primitive.Binary, []byte:
		return "binary"
	case primitive.Regex:
		return "regex"
	default:
		return fmt.Sprintf("%T", value)
	}
}
