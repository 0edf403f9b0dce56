package operators

import (
	"fmt"
	"math"
	"slices"

	"github.com/leengari/docsim/internal/config"
	"github.com/leengari/docsim/internal/domain/errors"
	"github.com/leengari/docsim/internal/domain/schema"
	"github.com/leengari/docsim/internal/domain/stats"
	"github.com/leengari/docsim/internal/sizing"
)

const bytesPerGB = 1e9

// Result is the simulated cost of one operator invocation
type Result struct {
	Name          string // operator variant, e.g. "filter_sharded"
	Label         string // caller supplied query label
	OutputRows    float64
	OutputBytes   float64 // after projection
	ScannedBytes  float64
	ShardsTouched int
	TimeSeconds   float64
	CarbonKg      float64
	PriceUSD      float64
}

// Simulator models filter, join and aggregate costs over a layout.
// It holds no state besides its configuration; every call is pure.
type Simulator struct {
	sizer   *sizing.Engine
	stats   stats.Stats
	servers int
	cost    config.CostModel
}

func New(sizer *sizing.Engine, st stats.Stats, cluster config.Cluster, cost config.CostModel) (*Simulator, error) {
	if sizer == nil {
		return nil, &errors.ConfigurationError{Subject: "simulator", Reason: "sizing engine is required"}
	}
	if err := cluster.Validate(); err != nil {
		return nil, err
	}
	if err := cost.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{
		sizer:   sizer,
		stats:   st,
		servers: cluster.Servers,
		cost:    cost,
	}, nil
}

type operator int

const (
	opFilter operator = iota
	opJoin
	opAggregate
)

var operatorNames = map[operator]string{
	opFilter:    "filter",
	opJoin:      "nested_loop",
	opAggregate: "aggregate",
}

// access is the shard-awareness record shared by all six variants
type access struct {
	sharded    bool
	coLocated  bool // joins: both sides sharded on the join key
	keyMatches bool // filter: filter field is the shard key; aggregate: shard key is a group key
}

func (a access) suffix() string {
	if a.sharded {
		return "_sharded"
	}
	return "_no_shard"
}

// scan returns bytes scanned, shards touched and any extra coordination latency.
// inner is zero for single-collection operators.
func (s *Simulator) scan(op operator, a access, outer, inner float64) (float64, int, float64) {
	servers := float64(s.servers)

	if !a.sharded {
		return outer + inner, 1, 0
	}

	switch op {
	case opFilter:
		if a.keyMatches {
			return outer / servers, 1, 0
		}
		return outer, s.servers, 0
	case opJoin:
		if a.coLocated {
			return (outer + inner) / servers, s.servers, 0
		}
		return outer/servers + inner, s.servers, 0
	case opAggregate:
		if a.keyMatches {
			return outer, s.servers, 0
		}
		return outer, s.servers, s.cost.MergeLatency
	}
	return outer + inner, s.servers, 0
}

// finish derives time, carbon and price; the formulas are identical for every variant
func (s *Simulator) finish(op operator, a access, label string, rows, outBytes, outer, inner float64) Result {
	scanned, shards, extra := s.scan(op, a, outer, inner)

	gb := scanned / bytesPerGB
	return Result{
		Name:          operatorNames[op] + a.suffix(),
		Label:         label,
		OutputRows:    rows,
		OutputBytes:   outBytes,
		ScannedBytes:  scanned,
		ShardsTouched: shards,
		TimeSeconds:   scanned/s.cost.ReadThroughput + float64(shards)*s.cost.ShardLatency + extra,
		CarbonKg:      gb * s.cost.CarbonPerGB,
		PriceUSD:      gb * s.cost.PricePerGB,
	}
}

// Filter simulates an equality filter, sharded or on a single node
func (s *Simulator) Filter(layout *schema.Layout, q FilterQuery) (Result, error) {
	label := labelOr(q.Label, "filter "+q.Collection)

	coll, err := layout.MustCollection(q.Collection)
	if err != nil {
		return Result{}, err
	}
	if err := requireFields(coll, q.Field); err != nil {
		return Result{}, err
	}
	if err := s.requireShardKey(coll, q.Sharded, q.ShardKey); err != nil {
		return Result{}, err
	}

	sel := s.stats.DefaultSelectivity(q.Field, q.Value)
	if q.Selectivity != nil {
		sel = *q.Selectivity
	}
	if err := checkSelectivity(label, sel); err != nil {
		return Result{}, err
	}

	total, base, err := s.collectionVolume(layout, coll)
	if err != nil {
		return Result{}, err
	}
	projected, err := s.sizer.ProjectionSize(coll.Root, q.Project)
	if err != nil {
		return Result{}, err
	}

	rows := float64(base) * sel
	a := access{sharded: q.Sharded, keyMatches: q.Sharded && q.Field == q.ShardKey}
	return s.finish(opFilter, a, label, rows, rows*projected, total, 0), nil
}

// Join simulates a nested-loop join, sharded or on a single node
func (s *Simulator) Join(layout *schema.Layout, q JoinQuery) (Result, error) {
	label := labelOr(q.Label, fmt.Sprintf("join %s-%s", q.Outer, q.Inner))

	outer, err := layout.MustCollection(q.Outer)
	if err != nil {
		return Result{}, err
	}
	inner, err := layout.MustCollection(q.Inner)
	if err != nil {
		return Result{}, err
	}

	innerKey := q.InnerKey
	if innerKey == "" {
		innerKey = q.OuterKey
	}
	if q.OuterKey == "" {
		return Result{}, &errors.InvariantViolation{Subject: label, Field: "outer_key", Reason: "join key is required"}
	}
	if err := requireFields(outer, q.OuterKey); err != nil {
		return Result{}, err
	}
	if err := requireFields(inner, innerKey); err != nil {
		return Result{}, err
	}
	if q.OuterFilter != "" {
		if err := requireFields(outer, q.OuterFilter); err != nil {
			return Result{}, err
		}
	}
	if err := s.requireShardKey(outer, q.Sharded, q.OuterShardKey); err != nil {
		return Result{}, err
	}
	if err := s.requireShardKey(inner, q.Sharded, q.InnerShardKey); err != nil {
		return Result{}, err
	}

	sel := 1.0
	if q.OuterFilter != "" {
		sel = s.stats.DefaultSelectivity(q.OuterFilter, q.OuterValue)
	}
	if q.OuterSelectivity != nil {
		sel = *q.OuterSelectivity
	}
	if err := checkSelectivity(label, sel); err != nil {
		return Result{}, err
	}

	fanout := s.stats.Fanout(outer.Entity, inner.Entity, q.OuterKey)
	if q.Fanout != nil {
		fanout = *q.Fanout
	}
	if err := checkNonNegative(label, "fanout", fanout); err != nil {
		return Result{}, err
	}

	outerTotal, outerBase, err := s.collectionVolume(layout, outer)
	if err != nil {
		return Result{}, err
	}
	innerTotal, _, err := s.collectionVolume(layout, inner)
	if err != nil {
		return Result{}, err
	}

	outerProj, err := s.sizer.ProjectionSize(outer.Root, q.OuterProject)
	if err != nil {
		return Result{}, err
	}
	innerProj, err := s.sizer.ProjectionSize(inner.Root, q.InnerProject)
	if err != nil {
		return Result{}, err
	}

	rows := float64(outerBase) * sel * fanout
	a := access{
		sharded:   q.Sharded,
		coLocated: q.Sharded && q.OuterShardKey == q.OuterKey && q.InnerShardKey == innerKey,
	}
	return s.finish(opJoin, a, label, rows, rows*(outerProj+innerProj), outerTotal, innerTotal), nil
}

// Aggregate simulates a grouped aggregation: partial aggregates per shard
// merged by a coordinator unless the shard key is one of the group keys.
func (s *Simulator) Aggregate(layout *schema.Layout, q AggregateQuery) (Result, error) {
	label := labelOr(q.Label, "aggregate "+q.Collection)

	coll, err := layout.MustCollection(q.Collection)
	if err != nil {
		return Result{}, err
	}
	if err := requireFields(coll, q.GroupBy...); err != nil {
		return Result{}, err
	}
	if q.FilterField != "" {
		if err := requireFields(coll, q.FilterField); err != nil {
			return Result{}, err
		}
	}
	if err := s.requireShardKey(coll, q.Sharded, q.ShardKey); err != nil {
		return Result{}, err
	}

	total, base, err := s.collectionVolume(layout, coll)
	if err != nil {
		return Result{}, err
	}

	groups, err := s.groups(label, q, base)
	if err != nil {
		return Result{}, err
	}

	project := q.Project
	if len(project) == 0 {
		project = q.GroupBy
	}
	keyBytes := 0.0
	if len(project) > 0 {
		keyBytes, err = s.sizer.ProjectionSize(coll.Root, project)
		if err != nil {
			return Result{}, err
		}
	}
	// one aggregated integer per group
	aggBytes := s.sizer.SizeOf(&schema.Scalar{Name: "aggregate", Kind: schema.KindInt})

	a := access{sharded: q.Sharded, keyMatches: q.Sharded && slices.Contains(q.GroupBy, q.ShardKey)}
	return s.finish(opAggregate, a, label, groups, groups*(keyBytes+aggBytes), total, 0), nil
}

// Run dispatches a declared query against a layout
func (s *Simulator) Run(layout *schema.Layout, q Query) (Result, error) {
	var (
		res Result
		err error
	)

	switch q.Kind {
	case KindFilter:
		if q.Filter == nil {
			return Result{}, malformedQuery(q)
		}
		res, err = s.Filter(layout, *q.Filter)
	case KindJoin:
		if q.Join == nil {
			return Result{}, malformedQuery(q)
		}
		res, err = s.Join(layout, *q.Join)
	case KindAggregate:
		if q.Aggregate == nil {
			return Result{}, malformedQuery(q)
		}
		res, err = s.Aggregate(layout, *q.Aggregate)
	default:
		return Result{}, &errors.ConfigurationError{Subject: q.ID, Field: "kind", Reason: fmt.Sprintf("unknown operator kind %q", q.Kind)}
	}
	if err != nil {
		return Result{}, fmt.Errorf("query %s on %s: %w", q.ID, layout.Name, err)
	}
	return res, nil
}

func (s *Simulator) groups(label string, q AggregateQuery, base int64) (float64, error) {
	if q.Groups != nil {
		if err := checkNonNegative(label, "groups", *q.Groups); err != nil {
			return 0, err
		}
		return *q.Groups, nil
	}

	// a global aggregate yields one row
	groups := 1.0
	for i, key := range q.GroupBy {
		filter := ""
		if i == 0 {
			filter = q.FilterField
		}
		g, ok := s.stats.Groups(key, filter)
		if !ok {
			return 0, &errors.ConfigurationError{
				Subject: label,
				Field:   key,
				Reason:  "no distinct value count declared for group key",
			}
		}
		groups *= g
	}
	if limit := float64(base); groups > limit {
		groups = limit
	}
	return groups, nil
}

func (s *Simulator) collectionVolume(layout *schema.Layout, coll *schema.Collection) (float64, int64, error) {
	total, err := s.sizer.CollectionTotal(layout, coll.Name)
	if err != nil {
		return 0, 0, err
	}
	base, err := s.sizer.BaseCount(layout, coll.Name)
	if err != nil {
		return 0, 0, err
	}
	return total, base, nil
}

func (s *Simulator) requireShardKey(coll *schema.Collection, sharded bool, key string) error {
	if !sharded {
		return nil
	}
	if key == "" {
		return &errors.InvariantViolation{Subject: coll.Name, Field: "shard_key", Reason: "sharded query requires a shard key"}
	}
	return requireFields(coll, key)
}

func requireFields(coll *schema.Collection, paths ...string) error {
	for _, p := range paths {
		if !coll.Root.Has(p) {
			return errors.NewUnknownField(coll.Name, p)
		}
	}
	return nil
}

func checkSelectivity(label string, sel float64) error {
	if math.IsNaN(sel) || sel < 0 || sel > 1 {
		return errors.NewSelectivityOutOfRange(label, sel)
	}
	return nil
}

func checkNonNegative(label, field string, v float64) error {
	if math.IsNaN(v) {
		return &errors.InvariantViolation{Subject: label, Field: field, Value: v, Reason: "value must be a number"}
	}
	if v < 0 {
		return errors.NewNegativeValue(label, field, v)
	}
	return nil
}

func malformedQuery(q Query) error {
	return &errors.ConfigurationError{Subject: q.ID, Field: string(q.Kind), Reason: "query body missing for operator kind"}
}

func labelOr(label, fallback string) string {
	if label != "" {
		return label
	}
	return fallback
}
