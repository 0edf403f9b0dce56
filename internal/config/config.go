package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/leengari/docsim/internal/domain/errors"
	"github.com/leengari/docsim/internal/domain/schema"
	"github.com/leengari/docsim/internal/domain/stats"
)

// Scenario is the complete set of declared constants for one run.
// It is passed by value into every entry point so several scenarios can be
// evaluated side by side.
type Scenario struct {
	Name    string           `json:"name"`
	Stats   stats.Stats      `json:"stats"`
	Bytes   schema.ByteCosts `json:"bytes"`
	Cluster Cluster          `json:"cluster"`
	Cost    CostModel        `json:"cost"`
}

// Cluster describes the sharded deployment
type Cluster struct {
	Servers int `json:"servers"`
}

// CostModel holds the constants turning scanned bytes into time, carbon and price
type CostModel struct {
	ReadThroughput float64 `json:"read_throughput_bps"` // bytes per second
	ShardLatency   float64 `json:"shard_latency_s"`     // fixed latency per shard touched
	MergeLatency   float64 `json:"merge_latency_s"`     // cross-shard merge of partial aggregates
	CarbonPerGB    float64 `json:"carbon_kg_per_gb"`
	PricePerGB     float64 `json:"price_usd_per_gb"`
}

// Default returns the built-in e-commerce scenario
func Default() Scenario {
	return Scenario{
		Name:  "default",
		Stats: stats.Default(),
		Bytes: schema.DefaultByteCosts(),
		Cluster: Cluster{
			Servers: 1000,
		},
		Cost: DefaultCostModel(),
	}
}

// DefaultCostModel returns the built-in cost constants
func DefaultCostModel() CostModel {
	return CostModel{
		ReadThroughput: 100e6,
		ShardLatency:   0.005,
		MergeLatency:   0.05,
		CarbonPerGB:    0.0005,
		PricePerGB:     0.01,
	}
}

// Load reads a scenario from a JSON file, layered over the defaults.
// Map entries merge key by key; a field stats entry merges attribute by attribute.
// Empty path returns the defaults.
func Load(path string) (Scenario, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes a JSON scenario layered over the defaults and validates it
func Parse(data []byte) (Scenario, error) {
	sc := Default()
	if err := json.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

// Validate checks every section of the scenario
func (s Scenario) Validate() error {
	if err := s.Stats.Validate(); err != nil {
		return err
	}
	if err := s.Bytes.Validate(); err != nil {
		return err
	}
	if err := s.Cluster.Validate(); err != nil {
		return err
	}
	return s.Cost.Validate()
}

func (c Cluster) Validate() error {
	if c.Servers <= 0 {
		return errors.NewInvalidServers(c.Servers)
	}
	return nil
}

func (m CostModel) Validate() error {
	if m.ReadThroughput <= 0 {
		return &errors.ConfigurationError{
			Subject: "cost",
			Field:   "read_throughput_bps",
			Reason:  fmt.Sprintf("throughput must be positive, got %g", m.ReadThroughput),
		}
	}

	checks := []struct {
		name  string
		value float64
	}{
		{"shard_latency_s", m.ShardLatency},
		{"merge_latency_s", m.MergeLatency},
		{"carbon_kg_per_gb", m.CarbonPerGB},
		{"price_usd_per_gb", m.PricePerGB},
	}
	for _, c := range checks {
		if c.value < 0 {
			return errors.NewNegativeValue("cost", c.name, c.value)
		}
	}
	return nil
}
