package tracker

import (
	"slices"
	"sync/atomic"

	"github.com/aretw0/storyline/pkg/domain"
)

// Store is the execution context of one launch.
type Store struct {
	frames      []*domain.StoryFrame
	launchID    domain.ItemID
	serviceDown bool

	// openItems is ordered oldest first; the top of the stack is the last element.
	openItems []domain.ItemID

	currentItem atomic.Value // domain.ItemID
}

// New creates a store holding only the root frame.
func New() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Reset discards every frame and identifier, leaving a fresh root frame.
// The service-down latch is cleared too.
func (s *Store) Reset() {
	s.frames = []*domain.StoryFrame{{}}
	s.launchID = ""
	s.serviceDown = false
	s.openItems = nil
	s.currentItem.Store(domain.ItemID(""))
}

// CurrentFrame returns the frame on top of the stack. It is never nil.
func (s *Store) CurrentFrame() *domain.StoryFrame {
	return s.frames[len(s.frames)-1]
}

// Parent returns the frame below the current one, or nil at the root.
func (s *Store) Parent() *domain.StoryFrame {
	if len(s.frames) < 2 {
		return nil
	}
	return s.frames[len(s.frames)-2]
}

// PushFrame creates a child of the current frame and makes it current.
func (s *Store) PushFrame() *domain.StoryFrame {
	f := &domain.StoryFrame{}
	s.frames = append(s.frames, f)
	return f
}

// PopFrame makes the parent current again.
// The root frame is never removed; false is returned in that case.
func (s *Store) PopFrame() bool {
	if len(s.frames) < 2 {
		return false
	}
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
	return true
}

// Depth returns the number of frames, root included.
func (s *Store) Depth() int {
	return len(s.frames)
}

// LaunchID returns the current launch identifier.
func (s *Store) LaunchID() domain.ItemID {
	return s.launchID
}

// SetLaunchID replaces the current launch identifier. An empty id clears it.
func (s *Store) SetLaunchID(id domain.ItemID) {
	s.launchID = id
}

// ServiceDown reports whether reporting is disabled for the rest of the launch.
func (s *Store) ServiceDown() bool {
	return s.serviceDown
}

// MarkServiceDown latches the service-down flag. It cannot be unset except by Reset.
// The orchestrator resets the store on every StartLaunch, so a new launch clears the latch.
func (s *Store) MarkServiceDown() {
	s.serviceDown = true
}

// PushOpenItem records an item whose start succeeded.
func (s *Store) PushOpenItem(id domain.ItemID) {
	if !id.IsSet() {
		return
	}
	s.openItems = append(s.openItems, id)
}

// RemoveOpenItem forgets an item whose finish was confirmed.
// The search starts at the top, where the matching item almost always is.
func (s *Store) RemoveOpenItem(id domain.ItemID) bool {
	for i := len(s.openItems) - 1; i >= 0; i-- {
		if s.openItems[i] == id {
			s.openItems = slices.Delete(s.openItems, i, i+1)
			return true
		}
	}
	return false
}

// OpenItems returns a copy of the open items, most recently opened first.
func (s *Store) OpenItems() []domain.ItemID {
	out := slices.Clone(s.openItems)
	slices.Reverse(out)
	return out
}

// DrainOpenItems empties the collection and returns its content, most recently opened first.
func (s *Store) DrainOpenItems() []domain.ItemID {
	out := s.OpenItems()
	s.openItems = nil
	return out
}

// CurrentItem returns the item currently executing (the open step), if any.
// Safe to call from any goroutine.
func (s *Store) CurrentItem() domain.ItemID {
	id, _ := s.currentItem.Load().(domain.ItemID)
	return id
}

// SetCurrentItem publishes the item currently executing. An empty id clears it.
func (s *Store) SetCurrentItem(id domain.ItemID) {
	s.currentItem.Store(id)
}

// Snapshot copies the whole context for inspection.
func (s *Store) Snapshot() domain.Snapshot {
	snap := domain.Snapshot{
		LaunchID:    s.launchID,
		ServiceDown: s.serviceDown,
		CurrentItem: s.CurrentItem(),
		OpenItems:   s.OpenItems(),
		Frames:      make([]domain.StoryFrame, 0, len(s.frames)),
	}
	for _, f := range s.frames {
		snap.Frames = append(snap.Frames, f.Clone())
	}
	return snap
}
