package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventDescend        EventType = "descend"
	EventDeadEnd        EventType = "dead_end"
	EventBacktrack      EventType = "backtrack"
	EventCategorySwitch EventType = "category_switch"
	EventFound          EventType = "found"
	EventExhausted      EventType = "exhausted"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Root      string    `json:"root"`
	Budget    Budget    `json:"budget"`
}

// MoveEvent represents a descent into a child or an ascent.
type MoveEvent struct {
	EventBase
	From   Path `json:"from"`
	To     Path `json:"to"`
	Levels int  `json:"levels,omitempty"` // Set on backtracks
}

// DeadEndEvent is emitted when a path is recorded in the dead-end memo.
type DeadEndEvent struct {
	EventBase
	Path   Path   `json:"path"`
	Reason string `json:"reason"`
}

// CategoryEvent is emitted when the active root category changes.
type CategoryEvent struct {
	EventBase
	From   string `json:"from"`
	To     string `json:"to"`
	Reused bool   `json:"reused,omitempty"` // No distinct alternative was drawn
}

// OutcomeEvent is emitted once when a run terminates normally.
type OutcomeEvent struct {
	EventBase
	Outcome Outcome `json:"outcome"`
}

// Dead end reasons.
const (
	ReasonEmptyLeaf    = "empty_leaf"
	ReasonAllChildren  = "all_children_dead"
	ReasonDepthCeiling = "depth_ceiling"
)

// LifecycleHooks defines callbacks for navigator observability.
// Any field may be nil.
type LifecycleHooks struct {
	OnDescend        func(context.Context, *MoveEvent)
	OnBacktrack      func(context.Context, *MoveEvent)
	OnDeadEnd        func(context.Context, *DeadEndEvent)
	OnCategorySwitch func(context.Context, *CategoryEvent)
	OnFound          func(context.Context, *OutcomeEvent)
	OnExhausted      func(context.Context, *OutcomeEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnDescend:        chain(h.OnDescend, other.OnDescend),
		OnBacktrack:      chain(h.OnBacktrack, other.OnBacktrack),
		OnDeadEnd:        chain(h.OnDeadEnd, other.OnDeadEnd),
		OnCategorySwitch: chain(h.OnCategorySwitch, other.OnCategorySwitch),
		OnFound:          chain(h.OnFound, other.OnFound),
		OnExhausted:      chain(h.OnExhausted, other.OnExhausted),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
