package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/storyline/pkg/domain"
)

// Journal implements ports.ItemJournal in memory.
// Safe for concurrent use.
type Journal struct {
	data map[domain.ItemID][]domain.ItemID
	mu   sync.RWMutex
}

// NewJournal creates a new in-memory journal.
func NewJournal() *Journal {
	return &Journal{
		data: make(map[domain.ItemID][]domain.ItemID),
	}
}

// Record appends the item to the launch's pending list.
func (j *Journal) Record(ctx context.Context, launchID, itemID domain.ItemID) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.data[launchID] = append(j.data[launchID], itemID)
	return nil
}

// Forget removes the most recent occurrence of the item.
func (j *Journal) Forget(ctx context.Context, launchID, itemID domain.ItemID) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	items := j.data[launchID]
	for i := len(items) - 1; i >= 0; i-- {
		if items[i] == itemID {
			items = slices.Delete(items, i, i+1)
			break
		}
	}
	if len(items) == 0 {
		delete(j.data, launchID)
		return nil
	}
	j.data[launchID] = items
	return nil
}

// Pending returns a copy of the launch's items, most recent first.
func (j *Journal) Pending(ctx context.Context, launchID domain.ItemID) ([]domain.ItemID, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := slices.Clone(j.data[launchID])
	slices.Reverse(out)
	return out, nil
}

// Launches returns the launches with pending items, sorted.
func (j *Journal) Launches(ctx context.Context) ([]domain.ItemID, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]domain.ItemID, 0, len(j.data))
	for id := range j.data {
		out = append(out, id)
	}
	slices.Sort(out)
	return out, nil
}

// Clear drops the launch.
func (j *Journal) Clear(ctx context.Context, launchID domain.ItemID) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.data, launchID)
	return nil
}
