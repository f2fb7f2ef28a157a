package check

import (
	"fmt"
	"strings"

	"github.com/nrjais/docqa/internal/document"
	"github.com/nrjais/docqa/internal/rules"
)

type RuleKind string

const (
	RuleExistence      RuleKind = "existence"
	RuleExpectedCount  RuleKind = "expected_count"
	RuleRequiredFields RuleKind = "required_fields"
	RuleDataTypes      RuleKind = "data_types"
	RuleCategories     RuleKind = "categories"
	RuleNumericRanges  RuleKind = "numeric_ranges"
	RuleKeywords       RuleKind = "keywords"
	RuleDataSource     RuleKind = "data_source"
)

// ValidationError is a single failed rule check. It is data, not a Go error.
type ValidationError struct {
	DocumentID string   `json:"document_id,omitempty"`
	Rule       RuleKind `json:"rule"`
	Field      string   `json:"field,omitempty"`
	Message    string   `json:"message"`
}

func (e ValidationError) String() string {
	return e.Message
}

// Sink receives validation errors in the order they are found.
type Sink interface {
	Add(ValidationError)
}

type List []ValidationError

func (l *List) Add(e ValidationError) {
	*l = append(*l, e)
}

// ConfiguredKinds lists the per-document rule kinds a rule declares, in
// evaluation order.
func ConfiguredKinds(rule rules.CollectionRule) []RuleKind {
	var kinds []RuleKind
	if len(rule.RequiredFields) > 0 {
		kinds = append(kinds, RuleRequiredFields)
	}
	if rule.DataTypes.Len() > 0 {
		kinds = append(kinds, RuleDataTypes)
	}
	if rule.Categories.Len() > 0 {
		kinds = append(kinds, RuleCategories)
	}
	if rule.NumericRanges.Len() > 0 {
		kinds = append(kinds, RuleNumericRanges)
	}
	if rule.Keywords.Len() > 0 {
		kinds = append(kinds, RuleKeywords)
	}
	return kinds
}

// Document runs every configured validator against doc in the fixed order
// required fields, data types, categories, numeric ranges, keywords.
func Document(doc document.Document, rule rules.CollectionRule, sink Sink) {
	id := document.ID(doc)
	RequiredFields(doc, id, rule.RequiredFields, sink)
	DataTypes(doc, id, rule.DataTypes, sink)
	Categories(doc, id, rule.Categories, sink)
	NumericRanges(doc, id, rule.NumericRanges, sink)
	Keywords(doc, id, rule.Keywords, sink)
}

func RequiredFields(doc document.Document, id string, fields []string, sink Sink) {
	for _, field := range fields {
		if _, found := document.Resolve(doc, field); !found {
			sink.Add(ValidationError{
				DocumentID: id,
				Rule:       RuleRequiredFields,
				Field:      field,
				Message:    fmt.Sprintf("Document %s: Missing required field '%s'.", id, field),
			})
		}
	}
}

func DataTypes(doc document.Document, id string, types rules.OrderedMap[rules.TypeTag], sink Sink) {
	for _, e := range types {
		value, found := document.Resolve(doc, e.Key)
		if !found || Matches(value, e.Value) {
			continue
		}
		sink.Add(ValidationError{
			DocumentID: id,
			Rule:       RuleDataTypes,
			Field:      e.Key,
			Message: fmt.Sprintf("Document %s: Invalid data type for field '%s'. Expected %s, but found %s.",
				id, e.Key, e.Value, document.Kind(value)),
		})
	}
}

func Categories(doc document.Document, id string, categories rules.OrderedMap[[]any], sink Sink) {
	for _, e := range categories {
		value, found := document.Resolve(doc, e.Key)
		if !found || containsValue(e.Value, value) {
			continue
		}
		sink.Add(ValidationError{
			DocumentID: id,
			Rule:       RuleCategories,
			Field:      e.Key,
			Message: fmt.Sprintf("Document %s: Invalid category in field '%s'. Found '%v', expected one of %s.",
				id, e.Key, value, formatList(e.Value)),
		})
	}
}

// NumericRanges checks the lower and upper bound independently, so a
// misconfigured range with min > max can report both for one value.
func NumericRanges(doc document.Document, id string, ranges rules.OrderedMap[rules.Range], sink Sink) {
	for _, e := range ranges {
		value, found := document.Resolve(doc, e.Key)
		if !found {
			continue
		}
		number, ok := toFloat(value)
		if !ok {
			sink.Add(ValidationError{
				DocumentID: id,
				Rule:       RuleNumericRanges,
				Field:      e.Key,
				Message:    fmt.Sprintf("Document %s: Field '%s' is not numeric.", id, e.Key),
			})
			continue
		}
		if number < e.Value.Lower() {
			sink.Add(ValidationError{
				DocumentID: id,
				Rule:       RuleNumericRanges,
				Field:      e.Key,
				Message: fmt.Sprintf("Document %s: Value in field '%s' (%v) is below the minimum %v.",
					id, e.Key, value, e.Value.Lower()),
			})
		}
		if number > e.Value.Upper() {
			sink.Add(ValidationError{
				DocumentID: id,
				Rule:       RuleNumericRanges,
				Field:      e.Key,
				Message: fmt.Sprintf("Document %s: Value in field '%s' (%v) is above the maximum %v.",
					id, e.Key, value, e.Value.Upper()),
			})
		}
	}
}

func Keywords(doc document.Document, id string, keywords rules.OrderedMap[[]string], sink Sink) {
	for _, e := range keywords {
		value, found := document.Resolve(doc, e.Key)
		if !found {
			continue
		}
		text := stringify(value)
		for _, keyword := range e.Value {
			if strings.Contains(text, keyword) {
				continue
			}
			sink.Add(ValidationError{
				DocumentID: id,
				Rule:       RuleKeywords,
				Field:      e.Key,
				Message:    fmt.Sprintf("Document %s: Expected keyword '%s' not found in field '%s'.", id, keyword, e.Key),
			})
		}
	}
}

func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

func formatList(values []any) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprintf("%v", v))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
