package schema

import (
	"fmt"
	"strings"

	"github.com/leengari/docsim/internal/domain/errors"
)

// FieldDef is the declarative (JSON) form of a Field.
//
// Type is a scalar kind, "object", "array" or the name of an entry in
// Definitions.Types. A named object type may be extended in place by
// listing extra Fields next to the reference.
type FieldDef struct {
	Name        string     `json:"name,omitempty"`
	Type        string     `json:"type"`
	Bytes       int        `json:"bytes,omitempty"`
	Fields      []FieldDef `json:"fields,omitempty"`
	Items       *FieldDef  `json:"items,omitempty"`
	Cardinality float64    `json:"cardinality,omitempty"`
	// Ratio derives an array cardinality from base counts, e.g. "OrderLine/Product"
	Ratio string `json:"ratio,omitempty"`
}

type CollectionDef struct {
	Name   string   `json:"name"`
	Entity string   `json:"entity"`
	Schema FieldDef `json:"schema"`
}

type LayoutDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Collections []CollectionDef `json:"collections"`
}

// Definitions is a set of named types plus the layouts built from them
type Definitions struct {
	Types   map[string]FieldDef `json:"types"`
	Layouts []LayoutDef         `json:"layouts"`
}

const (
	typeObject = "object"
	typeArray  = "array"
)

type compiler struct {
	types     map[string]FieldDef
	counts    Counts
	resolving map[string]bool
}

// Compile resolves every type reference and builds the layouts.
// All malformed declarations are reported here, before any sizing happens.
func Compile(defs Definitions, counts Counts) ([]*Layout, error) {
	c := &compiler{
		types:     defs.Types,
		counts:    counts,
		resolving: make(map[string]bool),
	}

	layouts := make([]*Layout, 0, len(defs.Layouts))
	seen := make(map[string]bool)

	for _, ld := range defs.Layouts {
		if seen[ld.Name] {
			return nil, &errors.ConfigurationError{Subject: ld.Name, Reason: "duplicate layout"}
		}
		seen[ld.Name] = true

		layout, err := c.layout(ld)
		if err != nil {
			return nil, err
		}
		layouts = append(layouts, layout)
	}

	return layouts, nil
}

// CompileField compiles a single definition against the named types
func CompileField(def FieldDef, types map[string]FieldDef, counts Counts) (Field, error) {
	c := &compiler{types: types, counts: counts, resolving: make(map[string]bool)}
	f, err := c.field(def, def.Name)
	if err != nil {
		return nil, err
	}
	if err := validateField(f, def.Name); err != nil {
		return nil, err
	}
	return f, nil
}

func (c *compiler) layout(ld LayoutDef) (*Layout, error) {
	layout := &Layout{
		Name:        ld.Name,
		Description: ld.Description,
		Collections: make([]Collection, 0, len(ld.Collections)),
	}

	for _, cd := range ld.Collections {
		subject := fmt.Sprintf("%s.%s", ld.Name, cd.Name)

		def := cd.Schema
		if def.Name == "" {
			def.Name = cd.Name
		}
		f, err := c.field(def, subject)
		if err != nil {
			return nil, err
		}
		root, ok := f.(*Object)
		if !ok {
			return nil, &errors.ConfigurationError{Subject: subject, Reason: "collection schema must be an object"}
		}

		entity := cd.Entity
		if entity == "" {
			entity = cd.Name
		}
		layout.Collections = append(layout.Collections, Collection{
			Name:   cd.Name,
			Entity: entity,
			Root:   root,
		})
	}

	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return layout, nil
}

func (c *compiler) field(def FieldDef, subject string) (Field, error) {
	kind := Kind(def.Type)

	switch {
	case kind.IsScalar():
		if len(def.Fields) > 0 || def.Items != nil {
			return nil, &errors.ConfigurationError{Subject: subject, Field: def.Name, Reason: "scalar field cannot declare children"}
		}
		if def.Bytes < 0 {
			return nil, errors.NewNegativeValue(subject, def.Name, def.Bytes)
		}
		return &Scalar{Name: def.Name, Kind: kind, Bytes: def.Bytes}, nil

	case def.Type == typeObject:
		return c.object(def.Name, def.Fields, subject)

	case def.Type == typeArray:
		return c.array(def, subject)

	case def.Type == "":
		return nil, &errors.ConfigurationError{Subject: subject, Field: def.Name, Reason: "field type is required"}

	default:
		return c.reference(def, subject)
	}
}

func (c *compiler) object(name string, defs []FieldDef, subject string) (*Object, error) {
	obj := &Object{Name: name, Fields: make([]Field, 0, len(defs))}
	for _, fd := range defs {
		if fd.Name == "" {
			return nil, &errors.ConfigurationError{Subject: subject, Field: name, Reason: "child field without a name"}
		}
		f, err := c.field(fd, subject)
		if err != nil {
			return nil, err
		}
		obj.Fields = append(obj.Fields, f)
	}
	return obj, nil
}

func (c *compiler) array(def FieldDef, subject string) (*Array, error) {
	if def.Items == nil {
		return nil, &errors.ConfigurationError{Subject: subject, Field: def.Name, Reason: "array has no element schema"}
	}

	cardinality := def.Cardinality
	if def.Ratio != "" {
		if def.Cardinality != 0 {
			return nil, &errors.ConfigurationError{Subject: subject, Field: def.Name, Reason: "cardinality and ratio are mutually exclusive"}
		}
		r, err := c.ratio(def.Ratio, subject, def.Name)
		if err != nil {
			return nil, err
		}
		cardinality = r
	}
	if cardinality < 0 {
		return nil, errors.NewNegativeCardinality(subject, def.Name, cardinality)
	}

	itemDef := *def.Items
	if itemDef.Name == "" {
		itemDef.Name = def.Name
	}
	items, err := c.field(itemDef, subject)
	if err != nil {
		return nil, err
	}

	return &Array{Name: def.Name, Items: items, Cardinality: cardinality}, nil
}

func (c *compiler) reference(def FieldDef, subject string) (Field, error) {
	target, ok := c.types[def.Type]
	if !ok {
		return nil, errors.NewUndefinedType(subject, def.Name, def.Type)
	}
	if c.resolving[def.Type] {
		return nil, &errors.ConfigurationError{Subject: subject, Field: def.Name, Reason: fmt.Sprintf("recursive type %q", def.Type)}
	}

	c.resolving[def.Type] = true
	defer delete(c.resolving, def.Type)

	resolved := target
	resolved.Name = def.Name
	if resolved.Name == "" {
		resolved.Name = def.Type
	}

	f, err := c.field(resolved, subject)
	if err != nil {
		return nil, err
	}
	if len(def.Fields) == 0 {
		return f, nil
	}

	base, ok := f.(*Object)
	if !ok {
		return nil, &errors.ConfigurationError{Subject: subject, Field: def.Name, Reason: fmt.Sprintf("only object types can be extended, %q is not one", def.Type)}
	}
	extra, err := c.object(base.Name, def.Fields, subject)
	if err != nil {
		return nil, err
	}

	fields := make([]Field, 0, len(base.Fields)+len(extra.Fields))
	fields = append(fields, base.Fields...)
	fields = append(fields, extra.Fields...)
	return &Object{Name: base.Name, Fields: fields}, nil
}

func (c *compiler) ratio(expr, subject, field string) (float64, error) {
	num, den, ok := strings.Cut(expr, "/")
	num, den = strings.TrimSpace(num), strings.TrimSpace(den)
	if !ok || num == "" || den == "" {
		return 0, &errors.ConfigurationError{Subject: subject, Field: field, Reason: fmt.Sprintf("malformed ratio %q, expected \"Entity/Entity\"", expr)}
	}
	if c.counts == nil {
		return 0, &errors.ConfigurationError{Subject: subject, Field: field, Reason: "ratio requires base counts"}
	}

	n, ok := c.counts.BaseCount(num)
	if !ok {
		return 0, errors.NewMissingBaseCount(subject, field, num)
	}
	d, ok := c.counts.BaseCount(den)
	if !ok {
		return 0, errors.NewMissingBaseCount(subject, field, den)
	}
	if d == 0 {
		return 0, &errors.ConfigurationError{Subject: subject, Field: field, Reason: fmt.Sprintf("ratio denominator %q has a zero count", den)}
	}
	return float64(n) / float64(d), nil
}
