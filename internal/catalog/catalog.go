package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/leengari/docsim/internal/domain/errors"
	"github.com/leengari/docsim/internal/domain/schema"
	"github.com/leengari/docsim/internal/operators"
	"github.com/leengari/docsim/internal/sharding"
)

//go:embed ecommerce.json
var ecommerce []byte

// File is the JSON declaration of a dataset: named types, layouts, shard
// key candidates and a reference workload
type File struct {
	schema.Definitions
	Shards   []sharding.Scenario `json:"shards"`
	Workload []operators.Query   `json:"workload"`
}

// Catalog is a compiled, read-only dataset declaration
type Catalog struct {
	Layouts  []*schema.Layout
	Shards   []sharding.Scenario
	Workload []operators.Query
}

// Default compiles the built-in e-commerce catalog (layouts DB1..DB5).
// Array cardinalities declared as ratios follow the given counts.
func Default(counts schema.Counts) (*Catalog, error) {
	return Parse(ecommerce, counts)
}

// Load reads a catalog file; empty path selects the built-in catalog
func Load(path string, counts schema.Counts) (*Catalog, error) {
	if path == "" {
		return Default(counts)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data, counts)
}

// Parse decodes and compiles a catalog. Every layout collection must map to
// an entity with a base count, and every workload query to a known layout.
func Parse(data []byte, counts schema.Counts) (*Catalog, error) {
	if counts == nil {
		return nil, &errors.ConfigurationError{Subject: "catalog", Reason: "base counts are required"}
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	layouts, err := schema.Compile(f.Definitions, counts)
	if err != nil {
		return nil, err
	}

	for _, l := range layouts {
		if err := l.ValidateEntities(counts); err != nil {
			return nil, err
		}
	}

	c := &Catalog{
		Layouts:  layouts,
		Shards:   f.Shards,
		Workload: f.Workload,
	}

	seen := make(map[string]bool)
	for _, q := range c.Workload {
		if q.ID == "" {
			return nil, &errors.ConfigurationError{Subject: "workload", Reason: "query id is required"}
		}
		if seen[q.ID] {
			return nil, &errors.ConfigurationError{Subject: "workload", Field: q.ID, Reason: "duplicate query id"}
		}
		seen[q.ID] = true

		if _, ok := c.Layout(q.Layout); !ok {
			return nil, &errors.ConfigurationError{Subject: q.ID, Field: "layout", Reason: fmt.Sprintf("unknown layout %q", q.Layout)}
		}
	}

	return c, nil
}

// Layout returns the named layout
func (c *Catalog) Layout(name string) (*schema.Layout, bool) {
	for _, l := range c.Layouts {
		if l.Name == name {
			return l, true
		}
	}
	return nil, false
}
