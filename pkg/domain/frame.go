package domain

// StoryFrame holds the reporting identifiers of one active story.
// Nested given-stories each get their own frame; the parent is the frame
// below it in the tracker stack.
type StoryFrame struct {
	StoryID      ItemID        `json:"story_id,omitempty"`
	StoryMeta    Meta          `json:"story_meta,omitempty"`
	ScenarioMeta Meta          `json:"scenario_meta,omitempty"`
	ScenarioID   ItemID        `json:"scenario_id,omitempty"`
	StepID       ItemID        `json:"step_id,omitempty"`
	Examples     *ExampleTable `json:"examples,omitempty"`
}

// HasExamples reports whether the frame is iterating an example table.
func (f *StoryFrame) HasExamples() bool {
	return f.Examples != nil
}

// Clone returns a deep copy of the frame.
func (f *StoryFrame) Clone() StoryFrame {
	return StoryFrame{
		StoryID:      f.StoryID,
		StoryMeta:    f.StoryMeta.Clone(),
		ScenarioMeta: f.ScenarioMeta.Clone(),
		ScenarioID:   f.ScenarioID,
		StepID:       f.StepID,
		Examples:     f.Examples.Clone(),
	}
}

// Snapshot is a read-only copy of an execution context.
// Frames are ordered root first.
type Snapshot struct {
	LaunchID    ItemID       `json:"launch_id,omitempty"`
	ServiceDown bool         `json:"service_down"`
	CurrentItem ItemID       `json:"current_item,omitempty"`
	OpenItems   []ItemID     `json:"open_items"`
	Frames      []StoryFrame `json:"frames"`
}
