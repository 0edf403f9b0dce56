package stats

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"github.com/leengari/docsim/internal/domain/errors"
)

// FallbackSelectivity is used for filter fields with no declared statistics
const FallbackSelectivity = 0.01

// FieldStats describes the value distribution of one field
type FieldStats struct {
	Entity   string           `json:"entity"`           // entity whose documents carry the field
	Distinct int64            `json:"distinct"`         // number of distinct values
	Values   map[string]int64 `json:"values,omitempty"` // documents of Entity carrying a specific value
}

// Stats holds the declared dataset statistics.
// A Stats value is never mutated after a scenario is built.
type Stats struct {
	Entities map[string]int64      `json:"entities"`
	Fields   map[string]FieldStats `json:"fields"`
	// GroupsPerFilter is the average number of distinct group-key values
	// seen under one value of a filter field, keyed "filter:group"
	GroupsPerFilter map[string]float64 `json:"groups_per_filter,omitempty"`
}

// Default returns the statistics of the e-commerce dataset
func Default() Stats {
	const (
		products   = 100_000
		warehouses = 200
	)

	return Stats{
		Entities: map[string]int64{
			"Product":   products,
			"Stock":     products * warehouses, // one stock entry per (product, warehouse), even at zero quantity
			"Warehouse": warehouses,
			"OrderLine": 4_000_000_000,
			"Client":    10_000_000,
		},
		Fields: map[string]FieldStats{
			"IDP": {Entity: "Product", Distinct: products},
			"IDW": {Entity: "Warehouse", Distinct: warehouses},
			"IDC": {Entity: "Client", Distinct: 10_000_000},
			"brand": {
				Entity:   "Product",
				Distinct: 5_000,
				Values:   map[string]int64{"apple": 50},
			},
			"date": {Entity: "OrderLine", Distinct: 365},
		},
		GroupsPerFilter: map[string]float64{
			"IDC:IDP": 100, // distinct products bought by one client
		},
	}
}

// UnmarshalJSON layers a JSON declaration over the receiver: entity counts
// and group correlations merge key by key, and each field entry merges
// attribute by attribute over the entry already present.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var decl struct {
		Entities        map[string]int64           `json:"entities"`
		Fields          map[string]json.RawMessage `json:"fields"`
		GroupsPerFilter map[string]float64         `json:"groups_per_filter"`
	}
	if err := json.Unmarshal(data, &decl); err != nil {
		return err
	}

	if len(decl.Entities) > 0 {
		s.Entities = mergeInto(s.Entities, decl.Entities)
	}
	if len(decl.GroupsPerFilter) > 0 {
		s.GroupsPerFilter = mergeInto(s.GroupsPerFilter, decl.GroupsPerFilter)
	}

	if len(decl.Fields) > 0 {
		fields := make(map[string]FieldStats, len(s.Fields)+len(decl.Fields))
		maps.Copy(fields, s.Fields)
		for name, raw := range decl.Fields {
			fs := fields[name]
			fs.Values = maps.Clone(fs.Values)
			if err := json.Unmarshal(raw, &fs); err != nil {
				return fmt.Errorf("stats field %s: %w", name, err)
			}
			fields[name] = fs
		}
		s.Fields = fields
	}
	return nil
}

func mergeInto[V any](base, overlay map[string]V) map[string]V {
	out := make(map[string]V, len(base)+len(overlay))
	maps.Copy(out, base)
	maps.Copy(out, overlay)
	return out
}

// BaseCount returns the number of standalone documents of an entity
func (s Stats) BaseCount(entity string) (int64, bool) {
	n, ok := s.Entities[entity]
	return n, ok
}

// Distinct returns the distinct value count of a field.
// Dotted paths resolve by their last segment ("product.IDP" -> "IDP").
func (s Stats) Distinct(field string) (int64, bool) {
	fs, ok := s.Fields[fieldKey(field)]
	if !ok {
		return 0, false
	}
	return fs.Distinct, true
}

// DefaultSelectivity returns the uniform-distribution selectivity of an
// equality predicate on field. When value has a declared frequency the
// selectivity is that frequency over the entity count instead.
func (s Stats) DefaultSelectivity(field, value string) float64 {
	fs, ok := s.Fields[fieldKey(field)]
	if !ok || fs.Distinct <= 0 {
		return FallbackSelectivity
	}

	if value != "" {
		if n, ok := fs.Values[strings.ToLower(value)]; ok {
			if total, ok := s.Entities[fs.Entity]; ok && total > 0 {
				return float64(n) / float64(total)
			}
		}
	}
	return 1 / float64(fs.Distinct)
}

// Fanout returns the average number of inner documents matching one outer
// document when joining on key. Unknown pairs are treated as one-to-one.
func (s Stats) Fanout(outer, inner, key string) float64 {
	fs, ok := s.Fields[fieldKey(key)]
	if !ok || fs.Distinct <= 0 {
		return 1
	}

	innerCount, ok := s.Entities[inner]
	if !ok {
		return 1
	}

	// outer is the "many" side: every outer document points at one inner document
	if outer != fs.Entity && inner == fs.Entity {
		return 1
	}
	fanout := float64(innerCount) / float64(fs.Distinct)
	if fanout < 1 {
		return 1
	}
	return fanout
}

// Groups returns the expected number of groups when aggregating on groupKey,
// optionally after an equality filter on filterField
func (s Stats) Groups(groupKey, filterField string) (float64, bool) {
	if filterField != "" {
		if g, ok := s.GroupsPerFilter[fieldKey(filterField)+":"+fieldKey(groupKey)]; ok {
			return g, true
		}
	}
	d, ok := s.Distinct(groupKey)
	if !ok {
		return 0, false
	}
	return float64(d), true
}

// Validate checks counts and distinct values are well formed
func (s Stats) Validate() error {
	if len(s.Entities) == 0 {
		return &errors.ConfigurationError{Subject: "stats", Field: "entities", Reason: "no entity counts declared"}
	}
	for name, n := range s.Entities {
		if n < 0 {
			return errors.NewNegativeValue("stats.entities", name, n)
		}
	}
	for name, fs := range s.Fields {
		if fs.Distinct < 0 {
			return errors.NewNegativeValue("stats.fields", name, fs.Distinct)
		}
		if fs.Entity == "" && len(fs.Values) > 0 {
			return &errors.ConfigurationError{
				Subject: "stats.fields",
				Field:   name,
				Reason:  "value frequencies require the field's entity",
			}
		}
		if fs.Entity != "" {
			if _, ok := s.Entities[fs.Entity]; !ok {
				return &errors.ConfigurationError{
					Subject: "stats.fields",
					Field:   name,
					Reason:  fmt.Sprintf("unknown entity %q", fs.Entity),
				}
			}
		}
		for v, n := range fs.Values {
			if n < 0 {
				return errors.NewNegativeValue("stats.fields."+name, v, n)
			}
		}
	}
	for key, g := range s.GroupsPerFilter {
		if g < 0 {
			return errors.NewNegativeValue("stats.groups_per_filter", key, g)
		}
	}
	return nil
}

func fieldKey(field string) string {
	if i := strings.LastIndex(field, "."); i >= 0 {
		return field[i+1:]
	}
	return field
}
