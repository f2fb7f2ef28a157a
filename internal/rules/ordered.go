package rules

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type Entry[T any] struct {
	Key   string `validate:"required"`
	Value T
}

// OrderedMap keeps YAML mapping entries in declaration order so that
// validation output is reproducible across runs.
type OrderedMap[T any] []Entry[T]

func (m OrderedMap[T]) Len() int {
	return len(m)
}

func (m OrderedMap[T]) Keys() []string {
	keys := make([]string, 0, len(m))
	for _, e := range m {
		keys = append(keys, e.Key)
	}
	return keys
}

func (m OrderedMap[T]) Get(key string) (T, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	var zero T
	return zero, false
}

func (m *OrderedMap[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*m = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}

	out := make(OrderedMap[T], 0, len(node.Content)/2)
	seen := make(map[string]struct{}, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		if _, dup := seen[keyNode.Value]; dup {
			return fmt.Errorf("line %d: duplicate key %q", keyNode.Line, keyNode.Value)
		}
		seen[keyNode.Value] = struct{}{}

		var value T
		if err := valueNode.Decode(&value); err != nil {
			return fmt.Errorf("key %q: %w", keyNode.Value, err)
		}
		out = append(out, Entry[T]{Key: keyNode.Value, Value: value})
	}
	*m = out
	return nil
}
