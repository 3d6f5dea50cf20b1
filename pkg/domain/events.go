package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventLaunchStart  EventType = "launch_start"
	EventLaunchFinish EventType = "launch_finish"
	EventItemStart    EventType = "item_start"
	EventItemFinish   EventType = "item_finish"
	EventServiceDown  EventType = "service_down"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	LaunchID  ItemID    `json:"launch_id,omitempty"`
}

// LaunchEvent reports a launch start or finish attempt.
type LaunchEvent struct {
	EventBase
	Name string `json:"name,omitempty"`
	Err  error  `json:"-"`
}

// ItemEvent reports a story, scenario or step start or finish attempt.
// Err is nil when the reporting call succeeded.
type ItemEvent struct {
	EventBase
	ItemID   ItemID        `json:"item_id,omitempty"`
	ParentID ItemID        `json:"parent_id,omitempty"`
	ItemType ItemType      `json:"item_type"`
	Name     string        `json:"name,omitempty"`
	Status   Status        `json:"status,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Forced   bool          `json:"forced,omitempty"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for reporter observability.
// Any of them may be nil.
type LifecycleHooks struct {
	OnLaunchStart  func(context.Context, *LaunchEvent)
	OnLaunchFinish func(context.Context, *LaunchEvent)
	OnItemStart    func(context.Context, *ItemEvent)
	OnItemFinish   func(context.Context, *ItemEvent)
	OnServiceDown  func(context.Context, *LaunchEvent)
}
