package schema

import (
	"github.com/leengari/docsim/internal/domain/errors"
)

// ByteCosts holds the byte budget primitives used to size documents.
// Strings are sized by a configured average length since no data exists.
type ByteCosts struct {
	KeyValueOverhead int `json:"key_value_overhead"` // per key/value pair and per array
	Int              int `json:"int"`
	Number           int `json:"number"`
	String           int `json:"string"`
	Date             int `json:"date"`
	LongString       int `json:"long_string"`
}

// DefaultByteCosts returns the canonical byte sizes of the dataset assignment
func DefaultByteCosts() ByteCosts {
	return ByteCosts{
		KeyValueOverhead: 12,
		Int:              8,
		Number:           8,
		String:           80,
		Date:             20,
		LongString:       200,
	}
}

// Width returns the payload width of a scalar kind
func (b ByteCosts) Width(kind Kind) (int, bool) {
	switch kind {
	case KindInt:
		return b.Int, true
	case KindNumber:
		return b.Number, true
	case KindString:
		return b.String, true
	case KindLongString:
		return b.LongString, true
	case KindDate:
		return b.Date, true
	}
	return 0, false
}

// Validate rejects negative primitives and leaves that would size to zero
func (b ByteCosts) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"key_value_overhead", b.KeyValueOverhead},
		{"int", b.Int},
		{"number", b.Number},
		{"string", b.String},
		{"date", b.Date},
		{"long_string", b.LongString},
	}

	for _, c := range checks {
		if c.value < 0 {
			return errors.NewNegativeValue("byte_costs", c.name, c.value)
		}
	}

	for _, c := range checks[1:] {
		if b.KeyValueOverhead+c.value <= 0 {
			return &errors.ConfigurationError{
				Subject: "byte_costs",
				Field:   c.name,
				Reason:  "scalar fields must resolve to a positive byte size",
			}
		}
	}
	return nil
}
