package memory

import (
	"slices"
	"time"

	"github.com/aretw0/storyline/pkg/domain"
)

// Launch is a launch as the in-memory backend stores it.
type Launch struct {
	ID          domain.ItemID `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	Mode        domain.Mode   `json:"mode"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time,omitempty"`
	Finished    bool          `json:"finished"`
	Roots       []*Item       `json:"roots"`
}

// Item is a story, scenario or step as the in-memory backend stores it.
type Item struct {
	ID          domain.ItemID   `json:"id"`
	ParentID    domain.ItemID   `json:"parent_id,omitempty"`
	LaunchID    domain.ItemID   `json:"launch_id"`
	Type        domain.ItemType `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Status      domain.Status   `json:"status,omitempty"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     time.Time       `json:"end_time,omitempty"`
	Finished    bool            `json:"finished"`
	Children    []*Item         `json:"children,omitempty"`
}

// Walk visits every item of the launch depth first, passing the nesting depth (roots are 0).
func (l *Launch) Walk(fn func(it *Item, depth int)) {
	for _, root := range l.Roots {
		root.walk(0, fn)
	}
}

// Count returns the number of items of the given type in the launch.
func (l *Launch) Count(typ domain.ItemType) int {
	n := 0
	l.Walk(func(it *Item, _ int) {
		if it.Type == typ {
			n++
		}
	})
	return n
}

// Unfinished returns the ids of items that were never finished.
func (l *Launch) Unfinished() []domain.ItemID {
	var out []domain.ItemID
	l.Walk(func(it *Item, _ int) {
		if !it.Finished {
			out = append(out, it.ID)
		}
	})
	return out
}

func (it *Item) walk(depth int, fn func(*Item, int)) {
	fn(it, depth)
	for _, c := range it.Children {
		c.walk(depth+1, fn)
	}
}

func (l *Launch) clone() *Launch {
	out := *l
	out.Tags = slices.Clone(l.Tags)
	out.Roots = make([]*Item, 0, len(l.Roots))
	for _, r := range l.Roots {
		out.Roots = append(out.Roots, r.clone())
	}
	return &out
}

func (it *Item) clone() *Item {
	out := *it
	out.Children = nil
	for _, c := range it.Children {
		out.Children = append(out.Children, c.clone())
	}
	return &out
}
