package sizing

import (
	"fmt"

	"github.com/leengari/docsim/internal/domain/errors"
	"github.com/leengari/docsim/internal/domain/schema"
)

// Engine computes average document sizes and collection totals from
// declared byte budgets and base counts.
type Engine struct {
	bytes  schema.ByteCosts
	counts schema.Counts
}

// CollectionSize is the sizing of one collection within a layout
type CollectionSize struct {
	Name          string
	Entity        string
	DocumentBytes float64 // average document size
	Documents     int64   // base count of the collection's entity
	TotalBytes    float64 // DocumentBytes × Documents
}

// LayoutSize is the sizing of a whole layout
type LayoutSize struct {
	Layout      string
	Collections []CollectionSize
	TotalBytes  float64
}

// Collection returns the sizing of the named collection
func (ls LayoutSize) Collection(name string) (CollectionSize, bool) {
	for _, c := range ls.Collections {
		if c.Name == name {
			return c, true
		}
	}
	return CollectionSize{}, false
}

// New creates a sizing engine. Byte costs are validated up front.
func New(bytes schema.ByteCosts, counts schema.Counts) (*Engine, error) {
	if err := bytes.Validate(); err != nil {
		return nil, err
	}
	if counts == nil {
		return nil, &errors.ConfigurationError{Subject: "sizing", Reason: "base counts are required"}
	}
	return &Engine{bytes: bytes, counts: counts}, nil
}

// SizeOf returns the average size in bytes of a schema node:
//   - scalar: key/value overhead + payload width
//   - object: sum of its children
//   - array: overhead + cardinality × element size (0 when cardinality is 0)
func (e *Engine) SizeOf(f schema.Field) float64 {
	switch v := f.(type) {
	case *schema.Scalar:
		width := v.Bytes
		if width == 0 {
			width, _ = e.bytes.Width(v.Kind)
		}
		return float64(e.bytes.KeyValueOverhead + width)

	case *schema.Object:
		total := 0.0
		for _, child := range v.Fields {
			total += e.SizeOf(child)
		}
		return total

	case *schema.Array:
		if v.Cardinality == 0 {
			return 0
		}
		return float64(e.bytes.KeyValueOverhead) + v.Cardinality*e.SizeOf(v.Items)
	}

	// unreachable for compiled schemas: the Field set is closed
	panic(fmt.Sprintf("sizing: unsupported field node %T", f))
}

// DocumentSize returns the average document size of a collection
func (e *Engine) DocumentSize(layout *schema.Layout, collection string) (float64, error) {
	c, err := layout.MustCollection(collection)
	if err != nil {
		return 0, err
	}
	return e.SizeOf(c.Root), nil
}

// CollectionTotal returns document size × base count of the collection's entity
func (e *Engine) CollectionTotal(layout *schema.Layout, collection string) (float64, error) {
	cs, err := e.collection(layout, collection)
	if err != nil {
		return 0, err
	}
	return cs.TotalBytes, nil
}

// LayoutTotal returns the sum of every collection total of the layout
func (e *Engine) LayoutTotal(layout *schema.Layout) (float64, error) {
	ls, err := e.Measure(layout)
	if err != nil {
		return 0, err
	}
	return ls.TotalBytes, nil
}

// Measure sizes every collection of a layout in declaration order
func (e *Engine) Measure(layout *schema.Layout) (LayoutSize, error) {
	if err := layout.ValidateEntities(e.counts); err != nil {
		return LayoutSize{}, err
	}

	ls := LayoutSize{
		Layout:      layout.Name,
		Collections: make([]CollectionSize, 0, len(layout.Collections)),
	}
	for _, c := range layout.Collections {
		cs, err := e.collection(layout, c.Name)
		if err != nil {
			return LayoutSize{}, err
		}
		ls.Collections = append(ls.Collections, cs)
		ls.TotalBytes += cs.TotalBytes
	}
	return ls, nil
}

// ProjectionSize returns the size of a collection document reduced to the
// given field paths. No paths means the full document.
func (e *Engine) ProjectionSize(root *schema.Object, paths []string) (float64, error) {
	projected, err := schema.Project(root, paths)
	if err != nil {
		return 0, err
	}
	return e.SizeOf(projected), nil
}

// BaseCount returns the document count of a layout collection
func (e *Engine) BaseCount(layout *schema.Layout, collection string) (int64, error) {
	c, err := layout.MustCollection(collection)
	if err != nil {
		return 0, err
	}
	n, ok := e.counts.BaseCount(c.Entity)
	if !ok {
		return 0, errors.NewMissingBaseCount(layout.Name, c.Name, c.Entity)
	}
	return n, nil
}

func (e *Engine) collection(layout *schema.Layout, name string) (CollectionSize, error) {
	c, err := layout.MustCollection(name)
	if err != nil {
		return CollectionSize{}, err
	}
	n, ok := e.counts.BaseCount(c.Entity)
	if !ok {
		return CollectionSize{}, errors.NewMissingBaseCount(layout.Name, c.Name, c.Entity)
	}

	doc := e.SizeOf(c.Root)
	return CollectionSize{
		Name:          c.Name,
		Entity:        c.Entity,
		DocumentBytes: doc,
		Documents:     n,
		TotalBytes:    doc * float64(n),
	}, nil
}

// GiB converts bytes to binary gigabytes
func GiB(b float64) float64 {
	return b / (1 << 30)
}
