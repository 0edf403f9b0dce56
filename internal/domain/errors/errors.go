package errors

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a malformed scenario or schema declaration
// (undefined type reference, negative cardinality, zero servers, missing base count, ...)
type ConfigurationError struct {
	Subject string // layout, collection, type or config section
	Field   string // offending field (empty if subject-level)
	Reason  string // human-readable explanation
}

func (e *ConfigurationError) Error() string {
	var parts []string

	target := e.Subject
	if e.Field != "" {
		target = fmt.Sprintf("%s.%s", e.Subject, e.Field)
	}
	parts = append(parts, fmt.Sprintf("configuration error in %s", target))

	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}

	return strings.Join(parts, " - ")
}

// InvariantViolation reports a query parameter or derived value that breaks
// a model invariant (selectivity outside [0,1], negative size, unknown key field)
type InvariantViolation struct {
	Subject string      // query, collection or calculation
	Field   string      // parameter or schema field
	Value   interface{} // offending value (may be nil)
	Reason  string
}

func (e *InvariantViolation) Error() string {
	var parts []string

	target := e.Subject
	if e.Field != "" {
		target = fmt.Sprintf("%s.%s", e.Subject, e.Field)
	}
	parts = append(parts, fmt.Sprintf("invariant violation in %s", target))

	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}

	return strings.Join(parts, " - ")
}

func NewUndefinedType(subject, field, typeName string) *ConfigurationError {
	return &ConfigurationError{
		Subject: subject,
		Field:   field,
		Reason:  fmt.Sprintf("undefined type %q", typeName),
	}
}

func NewNegativeCardinality(subject, field string, cardinality float64) *ConfigurationError {
	return &ConfigurationError{
		Subject: subject,
		Field:   field,
		Reason:  fmt.Sprintf("negative cardinality %g", cardinality),
	}
}

func NewMissingBaseCount(layout, collection, entity string) *ConfigurationError {
	return &ConfigurationError{
		Subject: layout,
		Field:   collection,
		Reason:  fmt.Sprintf("no base count declared for entity %q", entity),
	}
}

func NewInvalidServers(servers int) *ConfigurationError {
	return &ConfigurationError{
		Subject: "cluster",
		Field:   "servers",
		Reason:  fmt.Sprintf("server count must be positive, got %d", servers),
	}
}

func NewSelectivityOutOfRange(query string, selectivity float64) *InvariantViolation {
	return &InvariantViolation{
		Subject: query,
		Field:   "selectivity",
		Value:   selectivity,
		Reason:  "selectivity must be within [0,1]",
	}
}

func NewUnknownField(collection, field string) *InvariantViolation {
	return &InvariantViolation{
		Subject: collection,
		Field:   field,
		Reason:  "field not present in collection schema",
	}
}

func NewNegativeValue(subject, field string, value interface{}) *InvariantViolation {
	return &InvariantViolation{
		Subject: subject,
		Field:   field,
		Value:   value,
		Reason:  "value must not be negative",
	}
}
