package sharding

import (
	stderrors "errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/docsim/internal/domain/errors"
	"github.com/leengari/docsim/internal/domain/stats"
)

func TestStats(t *testing.T) {
	d, err := Stats(20_000_000, 100_000, 1000)
	assert.NilError(t, err)
	assert.Equal(t, d.DocsPerServer, 20_000.0)
	assert.Equal(t, d.DistinctPerServer, 100.0)

	// fewer distinct values than servers
	d, err = Stats(20_000_000, 100, 1000)
	assert.NilError(t, err)
	assert.Equal(t, d.DistinctPerServer, 0.1)

	// distinct above total is reported as is
	d, err = Stats(10, 50, 10)
	assert.NilError(t, err)
	assert.Equal(t, d.DocsPerServer, 1.0)
	assert.Equal(t, d.DistinctPerServer, 5.0)
}

func TestStatsRejectsInvalidInput(t *testing.T) {
	_, err := Stats(100, 10, 0)
	var cfgErr *errors.ConfigurationError
	assert.Assert(t, stderrors.As(err, &cfgErr))
	assert.ErrorContains(t, err, "server count must be positive")

	_, err = Stats(-1, 10, 10)
	assert.ErrorContains(t, err, "value must not be negative")

	_, err = Stats(100, -10, 10)
	assert.ErrorContains(t, err, "value must not be negative")
}

func TestEvaluateAllDefaultScenarios(t *testing.T) {
	calc, err := NewCalculator(stats.Default(), 1000)
	assert.NilError(t, err)

	scenarios := []Scenario{
		{Label: "St - #IDP", Collection: "Stock", Entity: "Stock", ShardKey: "IDP"},
		{Label: "St - #IDW", Collection: "Stock", Entity: "Stock", ShardKey: "IDW"},
		{Label: "OL - #IDC", Collection: "OrderLine", Entity: "OrderLine", ShardKey: "IDC"},
		{Label: "OL - #IDP", Collection: "OrderLine", Entity: "OrderLine", ShardKey: "IDP"},
		{Label: "Prod - #IDP", Collection: "Product", Entity: "Product", ShardKey: "IDP"},
		{Label: "Prod - #brand", Collection: "Product", ShardKey: "brand"},
	}
	want := []Distribution{
		{DocsPerServer: 20_000, DistinctPerServer: 100},
		{DocsPerServer: 20_000, DistinctPerServer: 0.2},
		{DocsPerServer: 4_000_000, DistinctPerServer: 10_000},
		{DocsPerServer: 4_000_000, DistinctPerServer: 100},
		{DocsPerServer: 100, DistinctPerServer: 100},
		{DocsPerServer: 100, DistinctPerServer: 5},
	}

	reports, err := calc.EvaluateAll(scenarios)
	assert.NilError(t, err)
	assert.Equal(t, len(reports), len(want))

	for i, r := range reports {
		assert.Equal(t, r.Label, scenarios[i].Label)
		assert.Equal(t, r.Servers, 1000)
		assert.DeepEqual(t, r.Distribution, want[i])
	}
}

func TestEvaluateErrors(t *testing.T) {
	calc, err := NewCalculator(stats.Default(), 10)
	assert.NilError(t, err)

	_, err = calc.Evaluate(Scenario{Label: "Sup - #IDS", Collection: "Supplier", ShardKey: "IDP"})
	assert.ErrorContains(t, err, `no base count declared for entity "Supplier"`)

	_, err = calc.Evaluate(Scenario{Label: "St - #qty", Collection: "Stock", Entity: "Stock", ShardKey: "quantity"})
	assert.ErrorContains(t, err, "no distinct value count declared for shard key")

	_, err = calc.EvaluateAll([]Scenario{
		{Label: "St - #IDP", Collection: "Stock", ShardKey: "IDP"},
		{Label: "St - #qty", Collection: "Stock", ShardKey: "quantity"},
	})
	assert.ErrorContains(t, err, "St - #qty")

	_, err = NewCalculator(stats.Default(), -3)
	assert.ErrorContains(t, err, "server count must be positive, got -3")
}
