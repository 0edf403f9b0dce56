package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leengari/docsim/internal/catalog"
	"github.com/leengari/docsim/internal/config"
	"github.com/leengari/docsim/internal/domain/errors"
	"github.com/leengari/docsim/internal/operators"
	"github.com/leengari/docsim/internal/sharding"
	"github.com/leengari/docsim/internal/sizing"
)

// Engine runs the analytical pipeline (sizes, shard distribution, operator
// costs) for one scenario and one catalog.
type Engine struct {
	scenario  config.Scenario
	catalog   *catalog.Catalog
	sizer     *sizing.Engine
	shards    *sharding.Calculator
	sim       *operators.Simulator
	observers []Observer // Observers for lifecycle events
}

// LayoutReport is the sizing of one layout plus its declared trade-off notes
type LayoutReport struct {
	sizing.LayoutSize
	Description string
}

// QueryRun holds both sharding variants of one workload query
type QueryRun struct {
	Query     operators.Query
	Sharded   operators.Result
	Unsharded operators.Result
}

// Analysis is the structured output of a run
type Analysis struct {
	RunID    string
	Scenario string
	Servers  int
	Layouts  []LayoutReport
	Shards   []sharding.Report
	Queries  []QueryRun
}

// New wires the sizing engine, shard calculator and simulator for a scenario.
// Configuration errors surface here, before any computation.
func New(sc config.Scenario, cat *catalog.Catalog) (*Engine, error) {
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", sc.Name, err)
	}
	if cat == nil {
		return nil, &errors.ConfigurationError{Subject: "engine", Reason: "catalog is required"}
	}
	for _, l := range cat.Layouts {
		if err := l.ValidateEntities(sc.Stats); err != nil {
			return nil, err
		}
	}

	sizer, err := sizing.New(sc.Bytes, sc.Stats)
	if err != nil {
		return nil, err
	}
	shards, err := sharding.NewCalculator(sc.Stats, sc.Cluster.Servers)
	if err != nil {
		return nil, err
	}
	sim, err := operators.New(sizer, sc.Stats, sc.Cluster, sc.Cost)
	if err != nil {
		return nil, err
	}

	return &Engine{
		scenario:  sc,
		catalog:   cat,
		sizer:     sizer,
		shards:    shards,
		sim:       sim,
		observers: make([]Observer, 0),
	}, nil
}

// Sizer returns the sizing engine bound to the scenario
func (e *Engine) Sizer() *sizing.Engine {
	return e.sizer
}

// Simulator returns the operator simulator bound to the scenario
func (e *Engine) Simulator() *operators.Simulator {
	return e.sim
}

// Run evaluates every layout, shard scenario and workload query of the
// catalog. The first error aborts the run.
func (e *Engine) Run(ctx context.Context) (*Analysis, error) {
	runID := uuid.New().String()
	e.notify(Event{Type: EventRunStart, RunID: runID, Data: e.scenario.Name})

	analysis := &Analysis{
		RunID:    runID,
		Scenario: e.scenario.Name,
		Servers:  e.scenario.Cluster.Servers,
	}

	layouts, err := e.sizeLayouts(ctx, runID)
	if err != nil {
		return nil, err
	}
	analysis.Layouts = layouts

	e.notify(Event{Type: EventShardingStart, RunID: runID, Data: len(e.catalog.Shards)})
	shards, err := e.shards.EvaluateAll(e.catalog.Shards)
	if err != nil {
		return nil, err
	}
	analysis.Shards = shards
	e.notify(Event{Type: EventShardingEnd, RunID: runID, Data: len(shards)})

	for _, q := range e.catalog.Workload {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		run, err := e.runQuery(runID, q)
		if err != nil {
			return nil, err
		}
		analysis.Queries = append(analysis.Queries, run)
	}

	e.notify(Event{Type: EventRunEnd, RunID: runID, Data: map[string]interface{}{
		"layouts": len(analysis.Layouts),
		"shards":  len(analysis.Shards),
		"queries": len(analysis.Queries),
	}})
	return analysis, nil
}

// sizeLayouts sizes layouts concurrently; results keep declaration order
func (e *Engine) sizeLayouts(ctx context.Context, runID string) ([]LayoutReport, error) {
	e.notify(Event{Type: EventSizingStart, RunID: runID, Data: len(e.catalog.Layouts)})

	reports := make([]LayoutReport, len(e.catalog.Layouts))
	g, ctx := errgroup.WithContext(ctx)
	for i, l := range e.catalog.Layouts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			size, err := e.sizer.Measure(l)
			if err != nil {
				return fmt.Errorf("layout %s: %w", l.Name, err)
			}
			reports[i] = LayoutReport{LayoutSize: size, Description: l.Description}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range reports {
		e.notify(Event{Type: EventLayoutSized, RunID: runID, Data: map[string]interface{}{
			"layout":      r.Layout,
			"total_bytes": r.TotalBytes,
		}})
	}
	e.notify(Event{Type: EventSizingEnd, RunID: runID, Data: len(reports)})
	return reports, nil
}

func (e *Engine) runQuery(runID string, q operators.Query) (QueryRun, error) {
	layout, ok := e.catalog.Layout(q.Layout)
	if !ok {
		return QueryRun{}, &errors.ConfigurationError{Subject: q.ID, Field: "layout", Reason: fmt.Sprintf("unknown layout %q", q.Layout)}
	}

	e.notify(Event{Type: EventOperatorStart, RunID: runID, Data: q.ID})

	sharded, err := e.sim.Run(layout, q.WithSharding(true))
	if err != nil {
		return QueryRun{}, err
	}
	unsharded, err := e.sim.Run(layout, q.WithSharding(false))
	if err != nil {
		return QueryRun{}, err
	}

	e.notify(Event{Type: EventOperatorEnd, RunID: runID, Data: map[string]interface{}{
		"query":     q.ID,
		"sharded":   sharded,
		"unsharded": unsharded,
	}})

	return QueryRun{Query: q, Sharded: sharded, Unsharded: unsharded}, nil
}

// AddObserver registers an observer to receive lifecycle events
func (e *Engine) AddObserver(observer Observer) {
	e.observers = append(e.observers, observer)
}

// RemoveObserver unregisters an observer
func (e *Engine) RemoveObserver(observer Observer) {
	for i, o := range e.observers {
		if o == observer {
			e.observers = append(e.observers[:i], e.observers[i+1:]...)
			return
		}
	}
}

// notify sends an event to all registered observers
func (e *Engine) notify(event Event) {
	event.Timestamp = time.Now()
	for _, observer := range e.observers {
		observer.OnEvent(event)
	}
}
