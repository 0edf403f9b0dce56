package schema_test

import (
	stderrors "errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/docsim/internal/domain/errors"
	"github.com/leengari/docsim/internal/domain/schema"
	"github.com/leengari/docsim/internal/testutil"
)

func testTypes() map[string]schema.FieldDef {
	return map[string]schema.FieldDef{
		"Category": {
			Type:   "object",
			Fields: []schema.FieldDef{{Name: "title", Type: "string"}},
		},
		"Item": {
			Type: "object",
			Fields: []schema.FieldDef{
				{Name: "id", Type: "int"},
				{Name: "label", Type: "string"},
			},
		},
		"Parent": {
			Type: "object",
			Fields: []schema.FieldDef{
				{Name: "id", Type: "int"},
				{Name: "categories", Type: "array", Items: &schema.FieldDef{Type: "Category"}, Cardinality: 2},
			},
		},
	}
}

func TestCompileResolvesAndExtendsNamedTypes(t *testing.T) {
	defs := schema.Definitions{
		Types: testTypes(),
		Layouts: []schema.LayoutDef{{
			Name: "L1",
			Collections: []schema.CollectionDef{{
				Name:   "Parent",
				Entity: "Parent",
				Schema: schema.FieldDef{
					Type: "Parent",
					Fields: []schema.FieldDef{
						{Name: "items", Type: "array", Items: &schema.FieldDef{Type: "Item"}, Ratio: "Item/Parent"},
					},
				},
			}},
		}},
	}

	layouts, err := schema.Compile(defs, testutil.Counts{"Parent": 10, "Item": 40})
	assert.NilError(t, err)
	assert.Equal(t, len(layouts), 1)

	coll, ok := layouts[0].Collection("Parent")
	assert.Assert(t, ok)
	assert.DeepEqual(t, coll.Root.Names(), []string{"id", "categories", "items"})

	items, ok := coll.Root.Lookup("items")
	assert.Assert(t, ok)
	arr, ok := items.(*schema.Array)
	assert.Assert(t, ok)
	assert.Equal(t, arr.Cardinality, 4.0)

	title, ok := coll.Root.Lookup("categories.title")
	assert.Assert(t, ok)
	assert.Equal(t, title.(*schema.Scalar).Kind, schema.KindString)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		def     schema.FieldDef
		types   map[string]schema.FieldDef
		wantErr string
	}{
		{
			name:    "undefined type",
			def:     schema.FieldDef{Name: "root", Type: "object", Fields: []schema.FieldDef{{Name: "x", Type: "Missing"}}},
			wantErr: `undefined type "Missing"`,
		},
		{
			name: "recursive type",
			def:  schema.FieldDef{Name: "root", Type: "Node"},
			types: map[string]schema.FieldDef{
				"Node": {Type: "object", Fields: []schema.FieldDef{{Name: "next", Type: "Node"}}},
			},
			wantErr: `recursive type "Node"`,
		},
		{
			name:    "negative cardinality",
			def:     schema.FieldDef{Name: "tags", Type: "array", Items: &schema.FieldDef{Type: "string"}, Cardinality: -1},
			wantErr: "negative cardinality",
		},
		{
			name:    "array without items",
			def:     schema.FieldDef{Name: "tags", Type: "array"},
			wantErr: "array has no element schema",
		},
		{
			name:    "missing type",
			def:     schema.FieldDef{Name: "root", Type: "object", Fields: []schema.FieldDef{{Name: "x"}}},
			wantErr: "field type is required",
		},
		{
			name:    "extending a scalar",
			def:     schema.FieldDef{Name: "root", Type: "Id", Fields: []schema.FieldDef{{Name: "x", Type: "int"}}},
			types:   map[string]schema.FieldDef{"Id": {Type: "int"}},
			wantErr: "only object types can be extended",
		},
		{
			name:    "ratio with unknown entity",
			def:     schema.FieldDef{Name: "items", Type: "array", Items: &schema.FieldDef{Type: "int"}, Ratio: "Item/Nope"},
			wantErr: `no base count declared for entity "Item"`,
		},
		{
			name:    "duplicate field",
			def:     schema.FieldDef{Name: "root", Type: "object", Fields: []schema.FieldDef{{Name: "x", Type: "int"}, {Name: "x", Type: "string"}}},
			wantErr: "duplicate field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.CompileField(tt.def, tt.types, testutil.Counts{})
			assert.ErrorContains(t, err, tt.wantErr)

			var cfgErr *errors.ConfigurationError
			assert.Assert(t, stderrors.As(err, &cfgErr), "expected a ConfigurationError, got %T", err)
		})
	}
}

func TestCompileRejectsNonObjectCollection(t *testing.T) {
	defs := schema.Definitions{
		Layouts: []schema.LayoutDef{{
			Name: "L1",
			Collections: []schema.CollectionDef{
				{Name: "Ids", Entity: "Ids", Schema: schema.FieldDef{Type: "int"}},
			},
		}},
	}

	_, err := schema.Compile(defs, testutil.Counts{"Ids": 1})
	assert.ErrorContains(t, err, "collection schema must be an object")
}

func TestCompileRejectsDuplicateLayouts(t *testing.T) {
	layout := schema.LayoutDef{
		Name: "L1",
		Collections: []schema.CollectionDef{{
			Name:   "Item",
			Schema: schema.FieldDef{Type: "Item"},
		}},
	}
	defs := schema.Definitions{Types: testTypes(), Layouts: []schema.LayoutDef{layout, layout}}

	_, err := schema.Compile(defs, testutil.Counts{"Item": 1})
	assert.ErrorContains(t, err, "duplicate layout")
}

func TestCollectionEntityDefaultsToName(t *testing.T) {
	defs := schema.Definitions{
		Types: testTypes(),
		Layouts: []schema.LayoutDef{{
			Name:        "L1",
			Collections: []schema.CollectionDef{{Name: "Item", Schema: schema.FieldDef{Type: "Item"}}},
		}},
	}

	layouts, err := schema.Compile(defs, testutil.Counts{"Item": 1})
	assert.NilError(t, err)
	assert.Equal(t, layouts[0].Collections[0].Entity, "Item")
}
