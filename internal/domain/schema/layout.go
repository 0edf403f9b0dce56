package schema

import (
	"fmt"

	"github.com/leengari/docsim/internal/domain/errors"
)

// Collection is one top-level collection materialized by a layout.
// Entity names the Stats entry that supplies its document count; a
// collection that embeds its one-to-many children declares the parent entity.
type Collection struct {
	Name   string
	Entity string
	Root   *Object
}

// Layout is one candidate denormalization scheme (DB1..DBn)
type Layout struct {
	Name        string
	Description string
	Collections []Collection
}

// Collection returns the named collection
func (l *Layout) Collection(name string) (*Collection, bool) {
	for i := range l.Collections {
		if l.Collections[i].Name == name {
			return &l.Collections[i], true
		}
	}
	return nil, false
}

// MustCollection returns the named collection or an InvariantViolation
func (l *Layout) MustCollection(name string) (*Collection, error) {
	c, ok := l.Collection(name)
	if !ok {
		return nil, &errors.InvariantViolation{
			Subject: l.Name,
			Field:   name,
			Reason:  "collection not declared by layout",
		}
	}
	return c, nil
}

// CollectionNames returns collection names in declaration order
func (l *Layout) CollectionNames() []string {
	names := make([]string, len(l.Collections))
	for i, c := range l.Collections {
		names[i] = c.Name
	}
	return names
}

// Validate checks the structural invariants of a layout and its schema trees
func (l *Layout) Validate() error {
	if l.Name == "" {
		return &errors.ConfigurationError{Subject: "layout", Reason: "layout name is required"}
	}
	if len(l.Collections) == 0 {
		return &errors.ConfigurationError{Subject: l.Name, Reason: "layout declares no collections"}
	}

	seen := make(map[string]bool)
	for _, c := range l.Collections {
		if c.Name == "" {
			return &errors.ConfigurationError{Subject: l.Name, Reason: "collection name is required"}
		}
		if seen[c.Name] {
			return &errors.ConfigurationError{Subject: l.Name, Field: c.Name, Reason: "duplicate collection"}
		}
		seen[c.Name] = true

		if c.Entity == "" {
			return &errors.ConfigurationError{Subject: l.Name, Field: c.Name, Reason: "collection must declare its base entity"}
		}
		if c.Root == nil {
			return &errors.ConfigurationError{Subject: l.Name, Field: c.Name, Reason: "collection has no schema"}
		}
		if err := validateField(c.Root, fmt.Sprintf("%s.%s", l.Name, c.Name)); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEntities checks that every collection's entity has a base count
func (l *Layout) ValidateEntities(counts Counts) error {
	for _, c := range l.Collections {
		if _, ok := counts.BaseCount(c.Entity); !ok {
			return errors.NewMissingBaseCount(l.Name, c.Name, c.Entity)
		}
	}
	return nil
}

// Counts resolves the base document count of an entity
type Counts interface {
	BaseCount(entity string) (int64, bool)
}

func validateField(f Field, subject string) error {
	switch v := f.(type) {
	case *Scalar:
		if !v.Kind.IsScalar() {
			return &errors.ConfigurationError{Subject: subject, Field: v.Name, Reason: fmt.Sprintf("unknown scalar kind %q", v.Kind)}
		}
		if v.Bytes < 0 {
			return errors.NewNegativeValue(subject, v.Name, v.Bytes)
		}
	case *Object:
		if len(v.Fields) == 0 {
			return &errors.ConfigurationError{Subject: subject, Field: v.Name, Reason: "object declares no fields"}
		}
		seen := make(map[string]bool)
		for _, child := range v.Fields {
			if child == nil {
				return &errors.ConfigurationError{Subject: subject, Field: v.Name, Reason: "nil child field"}
			}
			name := child.FieldName()
			if name == "" {
				return &errors.ConfigurationError{Subject: subject, Field: v.Name, Reason: "child field without a name"}
			}
			if seen[name] {
				return &errors.ConfigurationError{Subject: subject, Field: name, Reason: "duplicate field"}
			}
			seen[name] = true
			if err := validateField(child, subject); err != nil {
				return err
			}
		}
	case *Array:
		if v.Cardinality < 0 {
			return errors.NewNegativeCardinality(subject, v.Name, v.Cardinality)
		}
		if v.Items == nil {
			return &errors.ConfigurationError{Subject: subject, Field: v.Name, Reason: "array has no element schema"}
		}
		return validateField(v.Items, subject)
	default:
		return &errors.ConfigurationError{Subject: subject, Reason: fmt.Sprintf("unsupported field node %T", f)}
	}
	return nil
}
