package operators

// FilterQuery is an equality filter on one field of a collection
type FilterQuery struct {
	Label      string `json:"label,omitempty"`
	Collection string `json:"collection"`
	Field      string `json:"field"`           // filtered field path
	Value      string `json:"value,omitempty"` // literal, used only to pick a default selectivity
	// Selectivity overrides the Stats-derived default when set
	Selectivity *float64 `json:"selectivity,omitempty"`
	// ShardKey matches Field only when spelled as the same path
	// ("product.brand" and "brand" are different keys)
	ShardKey string   `json:"shard_key,omitempty"`
	Project  []string `json:"project,omitempty"` // empty keeps the whole document
	Sharded  bool     `json:"sharded"`
}

// JoinQuery is a nested-loop join: the outer side is optionally filtered,
// then every outer document probes the inner collection on the join key.
type JoinQuery struct {
	Label    string `json:"label,omitempty"`
	Outer    string `json:"outer"`
	Inner    string `json:"inner"`
	OuterKey string `json:"outer_key"`
	InnerKey string `json:"inner_key,omitempty"` // defaults to OuterKey

	OuterFilter      string   `json:"outer_filter,omitempty"`
	OuterValue       string   `json:"outer_value,omitempty"`
	OuterSelectivity *float64 `json:"outer_selectivity,omitempty"`
	// Fanout is the number of inner documents per outer document; defaults from Stats
	Fanout *float64 `json:"fanout,omitempty"`

	OuterShardKey string   `json:"outer_shard_key,omitempty"`
	InnerShardKey string   `json:"inner_shard_key,omitempty"`
	OuterProject  []string `json:"outer_project,omitempty"`
	InnerProject  []string `json:"inner_project,omitempty"`
	Sharded       bool     `json:"sharded"`
}

// AggregateQuery groups a collection and computes one aggregate per group
type AggregateQuery struct {
	Label      string   `json:"label,omitempty"`
	Collection string   `json:"collection"`
	GroupBy    []string `json:"group_by,omitempty"`
	// FilterField narrows the expected number of groups (see stats.Groups)
	FilterField string `json:"filter_field,omitempty"`
	// Groups overrides the Stats-derived group count when set
	Groups   *float64 `json:"groups,omitempty"`
	ShardKey string   `json:"shard_key,omitempty"`
	Project  []string `json:"project,omitempty"` // defaults to GroupBy
	Sharded  bool     `json:"sharded"`
}

// Kind discriminates the operator of a Query
type Kind string

const (
	KindFilter    Kind = "filter"
	KindJoin      Kind = "join"
	KindAggregate Kind = "aggregate"
)

// Query is a declared operator invocation; exactly one body matches Kind
type Query struct {
	ID        string          `json:"id"`
	Title     string          `json:"title,omitempty"`
	Layout    string          `json:"layout"`
	Kind      Kind            `json:"kind"`
	Filter    *FilterQuery    `json:"filter,omitempty"`
	Join      *JoinQuery      `json:"join,omitempty"`
	Aggregate *AggregateQuery `json:"aggregate,omitempty"`
}

// WithSharding returns a copy of q with every body's Sharded flag set
func (q Query) WithSharding(sharded bool) Query {
	out := q
	if q.Filter != nil {
		f := *q.Filter
		f.Sharded = sharded
		out.Filter = &f
	}
	if q.Join != nil {
		j := *q.Join
		j.Sharded = sharded
		out.Join = &j
	}
	if q.Aggregate != nil {
		a := *q.Aggregate
		a.Sharded = sharded
		out.Aggregate = &a
	}
	return out
}

// Float returns a pointer to v, for optional query parameters
func Float(v float64) *float64 {
	return &v
}
