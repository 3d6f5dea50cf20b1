package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/storyline/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunReportingClientContract runs a suite of tests to verify that a ReportingClient
// implementation adheres to the defined interface contract.
// The client must be reachable and empty-handed (no failure injection).
func RunReportingClientContract(t *testing.T, client ReportingClient) {
	ctx := context.Background()
	now := time.Now()

	t.Run("Launch Lifecycle", func(t *testing.T) {
		launchID, err := client.StartLaunch(ctx, domain.StartLaunchRequest{
			Name:      "contract-launch",
			Mode:      domain.ModeDefault,
			StartTime: now,
		})
		require.NoError(t, err, "StartLaunch should not return error")
		assert.True(t, launchID.IsSet(), "StartLaunch should return an id")

		err = client.FinishLaunch(ctx, launchID, domain.FinishLaunchRequest{EndTime: now})
		assert.NoError(t, err, "FinishLaunch should not return error")
	})

	t.Run("Item Hierarchy", func(t *testing.T) {
		launchID, err := client.StartLaunch(ctx, domain.StartLaunchRequest{Name: "contract-items", StartTime: now})
		require.NoError(t, err)

		storyID, err := client.StartRootItem(ctx, domain.StartItemRequest{
			LaunchID: launchID, Name: "story", Type: domain.ItemStory, StartTime: now,
		})
		require.NoError(t, err)

		scenarioID, err := client.StartItem(ctx, storyID, domain.StartItemRequest{
			LaunchID: launchID, Name: "scenario", Type: domain.ItemScenario, StartTime: now,
		})
		require.NoError(t, err)
		assert.NotEqual(t, storyID, scenarioID, "ids must be unique")

		stepID, err := client.StartItem(ctx, scenarioID, domain.StartItemRequest{
			LaunchID: launchID, Name: "step", Type: domain.ItemStep, StartTime: now,
		})
		require.NoError(t, err)

		for _, id := range []domain.ItemID{stepID, scenarioID, storyID} {
			err := client.FinishItem(ctx, id, domain.FinishItemRequest{EndTime: now, Status: domain.StatusPassed})
			assert.NoError(t, err, "FinishItem(%s) should not return error", id)
		}
		assert.NoError(t, client.FinishLaunch(ctx, launchID, domain.FinishLaunchRequest{EndTime: now}))
	})

	t.Run("Finish Unknown Item", func(t *testing.T) {
		err := client.FinishItem(ctx, "does-not-exist", domain.FinishItemRequest{EndTime: now, Status: domain.StatusPassed})
		assert.Error(t, err, "finishing an unknown item should fail")
	})
}

// RunItemJournalContract runs a suite of tests to verify that an ItemJournal
// implementation adheres to the defined interface contract.
func RunItemJournalContract(t *testing.T, journal ItemJournal) {
	ctx := context.Background()
	launchID := domain.ItemID("contract-launch-" + time.Now().Format("20060102150405"))

	t.Run("Record and Pending", func(t *testing.T) {
		require.NoError(t, journal.Record(ctx, launchID, "a"))
		require.NoError(t, journal.Record(ctx, launchID, "b"))
		require.NoError(t, journal.Record(ctx, launchID, "c"))

		pending, err := journal.Pending(ctx, launchID)
		require.NoError(t, err)
		assert.Equal(t, []domain.ItemID{"c", "b", "a"}, pending, "Pending should be most recent first")

		launches, err := journal.Launches(ctx)
		require.NoError(t, err)
		assert.Contains(t, launches, launchID)
	})

	t.Run("Forget", func(t *testing.T) {
		require.NoError(t, journal.Forget(ctx, launchID, "b"))
		require.NoError(t, journal.Forget(ctx, launchID, "unknown"), "forgetting an unknown item is not an error")

		pending, err := journal.Pending(ctx, launchID)
		require.NoError(t, err)
		assert.Equal(t, []domain.ItemID{"c", "a"}, pending)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, journal.Clear(ctx, launchID))

		pending, err := journal.Pending(ctx, launchID)
		require.NoError(t, err)
		assert.Empty(t, pending)

		launches, err := journal.Launches(ctx)
		require.NoError(t, err)
		assert.NotContains(t, launches, launchID, "a cleared launch is no longer listed")
	})

	t.Run("Forget Last Item Unlists Launch", func(t *testing.T) {
		id := launchID + "-single"
		require.NoError(t, journal.Record(ctx, id, "only"))
		require.NoError(t, journal.Forget(ctx, id, "only"))

		launches, err := journal.Launches(ctx)
		require.NoError(t, err)
		assert.NotContains(t, launches, id)
	})

	t.Run("Unknown Launch", func(t *testing.T) {
		pending, err := journal.Pending(ctx, "never-recorded")
		require.NoError(t, err)
		assert.Empty(t, pending)
	})
}
