package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/docsim/internal/catalog"
	"github.com/leengari/docsim/internal/domain/stats"
	"github.com/leengari/docsim/internal/operators"
)

func TestDefaultCatalog(t *testing.T) {
	cat, err := catalog.Default(stats.Default())
	assert.NilError(t, err)

	names := make([]string, 0, len(cat.Layouts))
	for _, l := range cat.Layouts {
		names = append(names, l.Name)
		assert.Assert(t, l.Description != "", "layout %s has no description", l.Name)
	}
	assert.DeepEqual(t, names, []string{"DB1", "DB2", "DB3", "DB4", "DB5"})

	assert.Equal(t, len(cat.Shards), 6)
	assert.Equal(t, cat.Shards[0].Label, "St - #IDP")

	assert.Equal(t, len(cat.Workload), 8)
	q1 := cat.Workload[0]
	assert.Equal(t, q1.ID, "Q1")
	assert.Equal(t, q1.Kind, operators.KindFilter)
	assert.Assert(t, q1.Filter != nil)
	assert.Equal(t, *q1.Filter.Selectivity, 5e-8)

	db1, ok := cat.Layout("DB1")
	assert.Assert(t, ok)
	assert.DeepEqual(t, db1.CollectionNames(), []string{"Product", "Stock", "Warehouse", "OrderLine", "Client"})

	_, ok = cat.Layout("DB9")
	assert.Assert(t, !ok)
}

func TestEmbeddingFollowsStats(t *testing.T) {
	st := stats.Default()
	st.Entities["OrderLine"] = 1_000_000

	cat, err := catalog.Default(st)
	assert.NilError(t, err)

	db5, ok := cat.Layout("DB5")
	assert.Assert(t, ok)
	product, ok := db5.Collection("Product")
	assert.Assert(t, ok)
	assert.Assert(t, product.Root.Has("orderLines.comment"))
}

func TestLoadFromFile(t *testing.T) {
	content := `{
		"types": {"Item": {"type": "object", "fields": [{"name": "IDP", "type": "int"}]}},
		"layouts": [{"name": "Flat", "collections": [{"name": "Product", "schema": {"type": "Item"}}]}],
		"workload": [{"id": "Q1", "layout": "Flat", "kind": "filter", "filter": {"collection": "Product", "field": "IDP"}}]
	}`
	path := filepath.Join(t.TempDir(), "catalog.json")
	assert.NilError(t, os.WriteFile(path, []byte(content), 0o644))

	cat, err := catalog.Load(path, stats.Default())
	assert.NilError(t, err)
	assert.Equal(t, len(cat.Layouts), 1)
	assert.Equal(t, cat.Layouts[0].Collections[0].Entity, "Product")

	_, err = catalog.Load(filepath.Join(t.TempDir(), "missing.json"), stats.Default())
	assert.ErrorContains(t, err, "read catalog")

	cat, err = catalog.Load("", stats.Default())
	assert.NilError(t, err)
	assert.Equal(t, len(cat.Layouts), 5)
}

func TestParseErrors(t *testing.T) {
	const layout = `"layouts": [{"name": "L", "collections": [{"name": "Product", "schema": {"type": "object", "fields": [{"name": "IDP", "type": "int"}]}}]}]`

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "malformed json",
			content: `{"layouts": [`,
			wantErr: "parse catalog",
		},
		{
			name:    "unknown layout in workload",
			content: `{` + layout + `, "workload": [{"id": "Q1", "layout": "DB9", "kind": "filter"}]}`,
			wantErr: `unknown layout "DB9"`,
		},
		{
			name:    "duplicate query id",
			content: `{` + layout + `, "workload": [{"id": "Q1", "layout": "L", "kind": "filter"}, {"id": "Q1", "layout": "L", "kind": "join"}]}`,
			wantErr: "duplicate query id",
		},
		{
			name:    "query without id",
			content: `{` + layout + `, "workload": [{"layout": "L", "kind": "filter"}]}`,
			wantErr: "query id is required",
		},
		{
			name:    "collection without base count",
			content: `{"layouts": [{"name": "L", "collections": [{"name": "Review", "schema": {"type": "object", "fields": [{"name": "grade", "type": "int"}]}}]}]}`,
			wantErr: `no base count declared for entity "Review"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Parse([]byte(tt.content), stats.Default())
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}

	_, err := catalog.Parse([]byte(`{}`), nil)
	assert.ErrorContains(t, err, "base counts are required")
}
