package domain

import "maps"

// ExampleTable tracks the data-driven example row currently being iterated.
type ExampleTable struct {
	// Steps are the template step texts of the scenario driven by the table.
	Steps []string `json:"steps"`

	// Label identifies the current example row (e.g. "Example: 2").
	Label string `json:"label"`

	// Params are the column values of the current row.
	Params map[string]string `json:"params"`
}

// NewExampleTable creates a table for the given template steps.
func NewExampleTable(steps []string) *ExampleTable {
	return &ExampleTable{
		Steps:  append([]string(nil), steps...),
		Params: make(map[string]string),
	}
}

// HasStep reports whether text is exactly one of the template steps.
func (t *ExampleTable) HasStep(text string) bool {
	if t == nil {
		return false
	}
	for _, s := range t.Steps {
		if s == text {
			return true
		}
	}
	return false
}

// SetRow moves the table to a new example row.
func (t *ExampleTable) SetRow(label string, params map[string]string) {
	t.Label = label
	t.Params = maps.Clone(params)
	if t.Params == nil {
		t.Params = make(map[string]string)
	}
}

// Clone returns a deep copy of the table.
func (t *ExampleTable) Clone() *ExampleTable {
	if t == nil {
		return nil
	}
	return &ExampleTable{
		Steps:  append([]string(nil), t.Steps...),
		Label:  t.Label,
		Params: maps.Clone(t.Params),
	}
}
