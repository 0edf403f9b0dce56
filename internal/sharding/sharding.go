package sharding

import (
	"fmt"

	"github.com/leengari/docsim/internal/domain/errors"
	"github.com/leengari/docsim/internal/domain/stats"
)

// Distribution is the expected per-server share of a sharded collection.
// Both values are averages, not realizable per-shard counts.
type Distribution struct {
	DocsPerServer     float64
	DistinctPerServer float64
}

// Stats computes the even-distribution averages for a collection of
// totalDocs documents whose shard key has distinct values.
// distinct > totalDocs is accepted as is.
func Stats(totalDocs, distinct int64, servers int) (Distribution, error) {
	if servers <= 0 {
		return Distribution{}, errors.NewInvalidServers(servers)
	}
	if totalDocs < 0 {
		return Distribution{}, errors.NewNegativeValue("sharding", "total_docs", totalDocs)
	}
	if distinct < 0 {
		return Distribution{}, errors.NewNegativeValue("sharding", "distinct_values", distinct)
	}

	return Distribution{
		DocsPerServer:     float64(totalDocs) / float64(servers),
		DistinctPerServer: float64(distinct) / float64(servers),
	}, nil
}

// Scenario is a candidate shard key for a collection
type Scenario struct {
	Label      string `json:"label"`      // e.g. "St - #IDP"
	Collection string `json:"collection"` // collection name as reported
	Entity     string `json:"entity"`     // Stats entity supplying the document count
	ShardKey   string `json:"shard_key"`  // Stats field supplying the distinct count
}

// Report is an evaluated Scenario
type Report struct {
	Scenario
	TotalDocs int64
	Distinct  int64
	Servers   int
	Distribution
}

// Calculator evaluates shard scenarios against one set of Stats
type Calculator struct {
	stats   stats.Stats
	servers int
}

func NewCalculator(st stats.Stats, servers int) (*Calculator, error) {
	if servers <= 0 {
		return nil, errors.NewInvalidServers(servers)
	}
	return &Calculator{stats: st, servers: servers}, nil
}

// Evaluate resolves the scenario's counts from Stats and computes its distribution
func (c *Calculator) Evaluate(sc Scenario) (Report, error) {
	entity := sc.Entity
	if entity == "" {
		entity = sc.Collection
	}

	total, ok := c.stats.BaseCount(entity)
	if !ok {
		return Report{}, errors.NewMissingBaseCount(sc.Label, sc.Collection, entity)
	}
	distinct, ok := c.stats.Distinct(sc.ShardKey)
	if !ok {
		return Report{}, &errors.ConfigurationError{
			Subject: sc.Label,
			Field:   sc.ShardKey,
			Reason:  fmt.Sprintf("no distinct value count declared for shard key %q", sc.ShardKey),
		}
	}

	dist, err := Stats(total, distinct, c.servers)
	if err != nil {
		return Report{}, fmt.Errorf("shard scenario %s: %w", sc.Label, err)
	}

	return Report{
		Scenario:     sc,
		TotalDocs:    total,
		Distinct:     distinct,
		Servers:      c.servers,
		Distribution: dist,
	}, nil
}

// EvaluateAll evaluates scenarios in order, stopping at the first error
func (c *Calculator) EvaluateAll(scenarios []Scenario) ([]Report, error) {
	reports := make([]Report, 0, len(scenarios))
	for _, sc := range scenarios {
		r, err := c.Evaluate(sc)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}
