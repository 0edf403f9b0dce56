package sizing_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/docsim/internal/domain/schema"
	"github.com/leengari/docsim/internal/sizing"
	"github.com/leengari/docsim/internal/testutil"
)

func TestDB1DocumentSizes(t *testing.T) {
	f := testutil.DefaultFixture(t)
	db1 := f.Layout(t, "DB1")

	want := map[string]float64{
		"Product":   1152,
		"Stock":     152,
		"Warehouse": 132,
		"OrderLine": 236,
		"Client":    512,
	}
	for name, size := range want {
		t.Run(name, func(t *testing.T) {
			got, err := f.Sizer.DocumentSize(db1, name)
			assert.NilError(t, err)
			assert.Equal(t, got, size)
		})
	}
}

func TestLayoutTotals(t *testing.T) {
	f := testutil.DefaultFixture(t)

	tests := []struct {
		layout     string
		collection string
		docSize    float64
		total      float64
	}{
		{"DB1", "Product", 1152, 952_275_226_400},
		{"DB2", "Product", 31_564, 952_276_426_400},
		{"DB3", "Stock", 1304, 975_200_026_400},
		{"DB4", "OrderLine", 1388, 5_560_160_026_400},
		{"DB5", "Product", 9_441_164, 952_276_426_400},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			layout := f.Layout(t, tt.layout)

			doc, err := f.Sizer.DocumentSize(layout, tt.collection)
			assert.NilError(t, err)
			assert.Equal(t, doc, tt.docSize)

			total, err := f.Sizer.LayoutTotal(layout)
			assert.NilError(t, err)
			assert.Equal(t, total, tt.total)
		})
	}
}

func TestDB1TotalInGiB(t *testing.T) {
	f := testutil.DefaultFixture(t)

	total, err := f.Sizer.LayoutTotal(f.Layout(t, "DB1"))
	assert.NilError(t, err)
	testutil.AssertClose(t, sizing.GiB(total), 886.875, 1e-5, "DB1 total GiB")
}

func TestLayoutTotalIsSumOfCollections(t *testing.T) {
	f := testutil.DefaultFixture(t)

	for _, layout := range f.Catalog.Layouts {
		t.Run(layout.Name, func(t *testing.T) {
			ls, err := f.Sizer.Measure(layout)
			assert.NilError(t, err)
			assert.Equal(t, len(ls.Collections), len(layout.Collections))

			sum := 0.0
			for i, cs := range ls.Collections {
				assert.Equal(t, cs.Name, layout.Collections[i].Name)
				assert.Equal(t, cs.TotalBytes, cs.DocumentBytes*float64(cs.Documents))

				total, err := f.Sizer.CollectionTotal(layout, cs.Name)
				assert.NilError(t, err)
				assert.Equal(t, total, cs.TotalBytes)
				sum += cs.TotalBytes
			}
			assert.Equal(t, ls.TotalBytes, sum)
		})
	}
}

func TestSizeOfNodes(t *testing.T) {
	f := testutil.DefaultFixture(t)
	s := f.Sizer

	t.Run("scalars", func(t *testing.T) {
		assert.Equal(t, s.SizeOf(&schema.Scalar{Name: "n", Kind: schema.KindInt}), 20.0)
		assert.Equal(t, s.SizeOf(&schema.Scalar{Name: "n", Kind: schema.KindNumber}), 20.0)
		assert.Equal(t, s.SizeOf(&schema.Scalar{Name: "n", Kind: schema.KindString}), 92.0)
		assert.Equal(t, s.SizeOf(&schema.Scalar{Name: "n", Kind: schema.KindDate}), 32.0)
		assert.Equal(t, s.SizeOf(&schema.Scalar{Name: "n", Kind: schema.KindLongString}), 212.0)
		// explicit width overrides the kind default
		assert.Equal(t, s.SizeOf(&schema.Scalar{Name: "n", Kind: schema.KindString, Bytes: 8}), 20.0)
	})

	t.Run("object is the sum of its children", func(t *testing.T) {
		obj := &schema.Object{Name: "o", Fields: []schema.Field{
			&schema.Scalar{Name: "a", Kind: schema.KindInt},
			&schema.Object{Name: "b", Fields: []schema.Field{
				&schema.Scalar{Name: "c", Kind: schema.KindDate},
			}},
		}}
		assert.Equal(t, s.SizeOf(obj), 52.0)
		assert.Equal(t, s.SizeOf(&schema.Object{Name: "empty"}), 0.0)
	})

	t.Run("array", func(t *testing.T) {
		item := &schema.Scalar{Name: "tag", Kind: schema.KindString}
		assert.Equal(t, s.SizeOf(&schema.Array{Name: "tags", Items: item, Cardinality: 2}), 12.0+2*92)
		assert.Equal(t, s.SizeOf(&schema.Array{Name: "tags", Items: item, Cardinality: 0.5}), 12.0+46)
		assert.Equal(t, s.SizeOf(&schema.Array{Name: "tags", Items: item, Cardinality: 0}), 0.0)
	})
}

func TestProjectionIsSmallerThanDocument(t *testing.T) {
	f := testutil.DefaultFixture(t)
	stock, ok := f.Layout(t, "DB1").Collection("Stock")
	assert.Assert(t, ok)

	full, err := f.Sizer.ProjectionSize(stock.Root, nil)
	assert.NilError(t, err)
	assert.Equal(t, full, 152.0)

	projected, err := f.Sizer.ProjectionSize(stock.Root, []string{"quantity", "location"})
	assert.NilError(t, err)
	assert.Equal(t, projected, 112.0)

	_, err = f.Sizer.ProjectionSize(stock.Root, []string{"price"})
	assert.ErrorContains(t, err, "field not present in collection schema")
}

func TestMissingBaseCount(t *testing.T) {
	layout := &schema.Layout{
		Name: "L",
		Collections: []schema.Collection{{
			Name:   "Review",
			Entity: "Review",
			Root: &schema.Object{Name: "Review", Fields: []schema.Field{
				&schema.Scalar{Name: "grade", Kind: schema.KindInt},
			}},
		}},
	}

	s, err := sizing.New(schema.DefaultByteCosts(), testutil.Counts{"Product": 1})
	assert.NilError(t, err)

	_, err = s.Measure(layout)
	assert.ErrorContains(t, err, `no base count declared for entity "Review"`)

	_, err = s.CollectionTotal(layout, "Review")
	assert.ErrorContains(t, err, `no base count declared for entity "Review"`)

	// document size needs no count
	doc, err := s.DocumentSize(layout, "Review")
	assert.NilError(t, err)
	assert.Equal(t, doc, 20.0)

	_, err = s.DocumentSize(layout, "Order")
	assert.ErrorContains(t, err, "collection not declared by layout")
}

func TestNewRejectsInvalidByteCosts(t *testing.T) {
	bytes := schema.DefaultByteCosts()
	bytes.Date = -1
	_, err := sizing.New(bytes, testutil.Counts{})
	assert.ErrorContains(t, err, "value must not be negative")

	_, err = sizing.New(schema.DefaultByteCosts(), nil)
	assert.ErrorContains(t, err, "base counts are required")
}

func TestSizesFollowStats(t *testing.T) {
	sc := testutil.DefaultFixture(t).Scenario
	sc.Stats.Entities["Stock"] = 40_000_000
	f := testutil.NewFixture(t, sc)

	// DB2 embeds Stock/Product = 400 entries per product
	doc, err := f.Sizer.DocumentSize(f.Layout(t, "DB2"), "Product")
	assert.NilError(t, err)
	assert.Equal(t, doc, 1152.0+12+400*152)
}
