package domain

import "time"

// Story is what the test engine hands over when a story begins.
type Story struct {
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description" mapstructure:"description"`
	Meta        Meta   `json:"meta" mapstructure:"-"`
}

// LaunchSpec carries the launch attributes read from configuration.
type LaunchSpec struct {
	Name        string   `json:"name" yaml:"name" mapstructure:"name"`
	Description string   `json:"description" yaml:"description" mapstructure:"description"`
	Tags        []string `json:"tags" yaml:"tags" mapstructure:"tags"`
	Mode        Mode     `json:"mode" yaml:"mode" mapstructure:"mode"`
}

// StartLaunchRequest is sent to open a launch.
type StartLaunchRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Mode        Mode      `json:"mode"`
	StartTime   time.Time `json:"start_time"`
}

// FinishLaunchRequest is sent to close a launch.
type FinishLaunchRequest struct {
	EndTime time.Time `json:"end_time"`
}

// StartItemRequest is sent to open a story, scenario or step.
type StartItemRequest struct {
	LaunchID    ItemID    `json:"launch_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Type        ItemType  `json:"type"`
	StartTime   time.Time `json:"start_time"`
}

// FinishItemRequest is sent to close a story, scenario or step.
type FinishItemRequest struct {
	EndTime time.Time `json:"end_time"`
	Status  Status    `json:"status"`
}
