package testutil

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/docsim/internal/catalog"
	"github.com/leengari/docsim/internal/config"
	"github.com/leengari/docsim/internal/domain/schema"
	"github.com/leengari/docsim/internal/operators"
	"github.com/leengari/docsim/internal/sizing"
)

// Fixture bundles the default scenario with everything built from it
type Fixture struct {
	Scenario  config.Scenario
	Catalog   *catalog.Catalog
	Sizer     *sizing.Engine
	Simulator *operators.Simulator
}

// DefaultFixture builds the e-commerce scenario and catalog
func DefaultFixture(t *testing.T) *Fixture {
	t.Helper()
	return NewFixture(t, config.Default())
}

// NewFixture builds the built-in catalog against a custom scenario
func NewFixture(t *testing.T, sc config.Scenario) *Fixture {
	t.Helper()

	cat, err := catalog.Default(sc.Stats)
	assert.NilError(t, err)

	sizer, err := sizing.New(sc.Bytes, sc.Stats)
	assert.NilError(t, err)

	sim, err := operators.New(sizer, sc.Stats, sc.Cluster, sc.Cost)
	assert.NilError(t, err)

	return &Fixture{Scenario: sc, Catalog: cat, Sizer: sizer, Simulator: sim}
}

// Layout returns a catalog layout, failing the test when it is missing
func (f *Fixture) Layout(t *testing.T, name string) *schema.Layout {
	t.Helper()
	l, ok := f.Catalog.Layout(name)
	assert.Assert(t, ok, "layout %s not in catalog", name)
	return l
}

// Counts is an in-memory schema.Counts for hand-built layouts
type Counts map[string]int64

func (c Counts) BaseCount(entity string) (int64, bool) {
	n, ok := c[entity]
	return n, ok
}
