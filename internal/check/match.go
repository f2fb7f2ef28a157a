package check

import (
	"reflect"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nrjais/docqa/internal/document"
	"github.com/nrjais/docqa/internal/rules"
)

// Matches reports whether value has the kind named by tag. There is no
// coercion: a bool is not an int and an int is not a float.
func Matches(value any, tag rules.TypeTag) bool {
	switch tag {
	case rules.TypeString:
		_, ok := value.(string)
		return ok
	case rules.TypeInt:
		return isInteger(value)
	case rules.TypeFloat:
		switch value.(type) {
		case float32, float64, primitive.Decimal128:
			return true
		}
		return false
	case rules.TypeBool:
		_, ok := value.(bool)
		return ok
	case rules.TypeList:
		switch value.(type) {
		case []any, bson.A, []string:
			return true
		}
		return false
	case rules.TypeDict:
		switch value.(type) {
		case map[string]any, bson.M, bson.D, document.Document:
			return true
		}
		return false
	}
	return false
}

func isInteger(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	}
	return 0, false
}

// toFloat converts numeric BSON and Go values. Bools are not numeric.
func toFloat(value any) (float64, bool) {
	if i, ok := toInt64(value); ok {
		return float64(i), true
	}
	switch v := value.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// equalValues compares numbers by value across integer and float kinds and
// everything else by deep equality.
func equalValues(a, b any) bool {
	ai, aInt := toInt64(a)
	bi, bInt := toInt64(b)
	if aInt && bInt {
		return ai == bi
	}
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum && bNum {
		return af == bf
	}
	if aNum != bNum {
		return false
	}
	return reflect.DeepEqual(a, b)
}

func containsValue(allowed []any, value any) bool {
	for _, candidate := range allowed {
		if equalValues(candidate, value) {
			return true
		}
	}
	return false
}
