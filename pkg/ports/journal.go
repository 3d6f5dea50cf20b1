package ports

import (
	"context"

	"github.com/aretw0/storyline/pkg/domain"
)

// ItemJournal durably mirrors the open items of each launch.
// The reporter treats it as best-effort: journal errors are logged, never propagated.
type ItemJournal interface {
	// Record adds an item that was started under launchID.
	Record(ctx context.Context, launchID, itemID domain.ItemID) error

	// Forget removes an item whose finish was confirmed.
	Forget(ctx context.Context, launchID, itemID domain.ItemID) error

	// Pending returns the items still open for launchID, most recently recorded first.
	// An unknown launch yields an empty slice.
	Pending(ctx context.Context, launchID domain.ItemID) ([]domain.ItemID, error)

	// Launches returns the launches that still have pending items.
	Launches(ctx context.Context) ([]domain.ItemID, error)

	// Clear drops every pending item of launchID.
	Clear(ctx context.Context, launchID domain.ItemID) error
}
