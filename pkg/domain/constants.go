package domain

// ItemID is the opaque identifier the reporting service returns for a started item.
// The zero value means "not set".
type ItemID string

// IsSet reports whether the identifier holds a value.
func (id ItemID) IsSet() bool {
	return id != ""
}

// String returns the raw identifier.
func (id ItemID) String() string {
	return string(id)
}

// ItemType defines the reporting level of a test item.
type ItemType string

const (
	ItemStory    ItemType = "STORY"
	ItemScenario ItemType = "SCENARIO"
	ItemStep     ItemType = "STEP"
)

// Status is the outcome reported when an item finishes.
type Status string

const (
	StatusPassed      Status = "PASSED"
	StatusFailed      Status = "FAILED"
	StatusSkipped     Status = "SKIPPED"
	StatusInterrupted Status = "INTERRUPTED"
	StatusCancelled   Status = "CANCELLED"
	StatusStopped     Status = "STOPPED"
)

// Valid reports whether s belongs to the reporting service vocabulary.
func (s Status) Valid() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusSkipped, StatusInterrupted, StatusCancelled, StatusStopped:
		return true
	}
	return false
}

// Mode is the launch display mode.
type Mode string

const (
	ModeDefault Mode = "DEFAULT"
	ModeDebug   Mode = "DEBUG"
)

// Valid reports whether m is a known launch mode.
func (m Mode) Valid() bool {
	return m == ModeDefault || m == ModeDebug
}
