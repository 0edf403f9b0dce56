package schema

import "strings"

// Kind identifies the payload type of a scalar field
type Kind string

const (
	KindInt        Kind = "int"
	KindNumber     Kind = "number"
	KindString     Kind = "string"
	KindLongString Kind = "longstring"
	KindDate       Kind = "date"
)

// IsScalar reports whether k names one of the scalar payload types
func (k Kind) IsScalar() bool {
	switch k {
	case KindInt, KindNumber, KindString, KindLongString, KindDate:
		return true
	}
	return false
}

// Field is a node of a document schema tree.
// The set of implementations is closed: *Scalar, *Object and *Array.
type Field interface {
	FieldName() string
	isField()
}

// Scalar is a leaf field. Its size is the key/value overhead plus the payload
// width of its kind, or plus Bytes when an explicit width is declared.
type Scalar struct {
	Name  string
	Kind  Kind
	Bytes int // explicit payload width, 0 means "use the kind's width"
}

// Object is an embedded document; its size is the sum of its children.
type Object struct {
	Name   string
	Fields []Field
}

// Array is a repeated field holding Cardinality elements on average.
type Array struct {
	Name        string
	Items       Field
	Cardinality float64
}

func (s *Scalar) FieldName() string { return s.Name }
func (o *Object) FieldName() string { return o.Name }
func (a *Array) FieldName() string  { return a.Name }

func (*Scalar) isField() {}
func (*Object) isField() {}
func (*Array) isField()  {}

// Field returns the direct child with the given name
func (o *Object) Field(name string) (Field, bool) {
	for _, f := range o.Fields {
		if f.FieldName() == name {
			return f, true
		}
	}
	return nil, false
}

// Lookup resolves a dotted path (e.g. "product.brand") through embedded
// objects and array elements.
func (o *Object) Lookup(path string) (Field, bool) {
	if path == "" {
		return nil, false
	}
	head, rest, nested := strings.Cut(path, ".")

	child, ok := o.Field(head)
	if !ok {
		return nil, false
	}
	if !nested {
		return child, true
	}

	switch c := child.(type) {
	case *Object:
		return c.Lookup(rest)
	case *Array:
		if items, ok := c.Items.(*Object); ok {
			return items.Lookup(rest)
		}
	}
	return nil, false
}

// Has reports whether the dotted path resolves to a field
func (o *Object) Has(path string) bool {
	_, ok := o.Lookup(path)
	return ok
}

// Names returns the top-level field names in declaration order
func (o *Object) Names() []string {
	names := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		names[i] = f.FieldName()
	}
	return names
}
