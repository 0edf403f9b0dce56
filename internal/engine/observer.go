package engine

import "time"

// EventType represents different lifecycle phases of an analysis run
type EventType string

const (
	EventRunStart      EventType = "run_start"
	EventRunEnd        EventType = "run_end"
	EventSizingStart   EventType = "sizing_start"
	EventLayoutSized   EventType = "layout_sized"
	EventSizingEnd     EventType = "sizing_end"
	EventShardingStart EventType = "sharding_start"
	EventShardingEnd   EventType = "sharding_end"
	EventOperatorStart EventType = "operator_start"
	EventOperatorEnd   EventType = "operator_end"
)

// Event represents a lifecycle event in an analysis run
type Event struct {
	Type      EventType   // Type of event
	RunID     string      // Run ID for tracing
	Timestamp time.Time   // When the event occurred
	Data      interface{} // Phase-specific data (layout name, query id, result)
}

// Observer interface for event subscribers
// Observers receive events at major pipeline phases
type Observer interface {
	OnEvent(event Event)
}
