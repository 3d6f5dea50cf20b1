package tracker_test

import (
	"sync"
	"testing"

	"github.com/aretw0/storyline/pkg/domain"
	"github.com/aretw0/storyline/pkg/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RootFrame(t *testing.T) {
	s := tracker.New()

	require.NotNil(t, s.CurrentFrame())
	assert.Equal(t, 1, s.Depth())
	assert.Nil(t, s.Parent())
	assert.False(t, s.CurrentFrame().StoryID.IsSet(), "root story id is unset before the first story")
	assert.False(t, s.PopFrame(), "root frame cannot be popped")
	assert.Equal(t, 1, s.Depth())
}

func TestStore_FrameStack(t *testing.T) {
	s := tracker.New()
	root := s.CurrentFrame()
	root.StoryID = "story-1"

	child := s.PushFrame()
	child.StoryID = "story-2"
	grandchild := s.PushFrame()

	assert.Equal(t, 3, s.Depth())
	assert.Same(t, grandchild, s.CurrentFrame())
	assert.Same(t, child, s.Parent())

	require.True(t, s.PopFrame())
	assert.Same(t, child, s.CurrentFrame())
	require.True(t, s.PopFrame())
	assert.Same(t, root, s.CurrentFrame())
	assert.Equal(t, domain.ItemID("story-1"), s.CurrentFrame().StoryID)
}

func TestStore_OpenItemsLIFO(t *testing.T) {
	s := tracker.New()
	s.PushOpenItem("a")
	s.PushOpenItem("b")
	s.PushOpenItem("c")
	s.PushOpenItem("")

	assert.Equal(t, []domain.ItemID{"c", "b", "a"}, s.OpenItems())

	assert.True(t, s.RemoveOpenItem("b"))
	assert.False(t, s.RemoveOpenItem("missing"))
	assert.Equal(t, []domain.ItemID{"c", "a"}, s.OpenItems())

	drained := s.DrainOpenItems()
	assert.Equal(t, []domain.ItemID{"c", "a"}, drained)
	assert.Empty(t, s.OpenItems())
	assert.Empty(t, s.DrainOpenItems())
}

func TestStore_ServiceDownLatch(t *testing.T) {
	s := tracker.New()
	assert.False(t, s.ServiceDown())

	s.MarkServiceDown()
	s.MarkServiceDown()
	assert.True(t, s.ServiceDown())

	s.Reset()
	assert.False(t, s.ServiceDown(), "a new launch gets a new context")
}

func TestStore_ResetClearsEverything(t *testing.T) {
	s := tracker.New()
	s.SetLaunchID("launch-1")
	s.PushFrame().StoryID = "given"
	s.PushOpenItem("x")
	s.SetCurrentItem("x")

	s.Reset()

	assert.False(t, s.LaunchID().IsSet())
	assert.Equal(t, 1, s.Depth())
	assert.Empty(t, s.OpenItems())
	assert.False(t, s.CurrentItem().IsSet())
}

func TestStore_Snapshot(t *testing.T) {
	s := tracker.New()
	s.SetLaunchID("launch-1")
	s.CurrentFrame().StoryID = "story-1"
	s.CurrentFrame().StoryMeta = domain.ParseMeta("@id 1")
	s.PushFrame().StoryID = "story-2"
	s.PushOpenItem("story-1")

	snap := s.Snapshot()
	require.Len(t, snap.Frames, 2)
	assert.Equal(t, domain.ItemID("story-1"), snap.Frames[0].StoryID)
	assert.Equal(t, domain.ItemID("story-2"), snap.Frames[1].StoryID)
	assert.Equal(t, []domain.ItemID{"story-1"}, snap.OpenItems)

	// Mutating the snapshot leaves the store untouched.
	snap.Frames[0].StoryMeta.Set("id", "changed")
	v, _ := s.Parent().StoryMeta.Get("id")
	assert.Equal(t, "1", v)
}

func TestStore_CurrentItemConcurrentReads(t *testing.T) {
	s := tracker.New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.CurrentItem()
			}
		}()
	}
	for j := 0; j < 100; j++ {
		s.SetCurrentItem("step")
		s.SetCurrentItem("")
	}
	wg.Wait()

	assert.False(t, s.CurrentItem().IsSet())
}
