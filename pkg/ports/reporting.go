package ports

import (
	"context"

	"github.com/aretw0/storyline/pkg/domain"
)

// ReportingClient is the outbound contract to the reporting service.
// Every call is synchronous and may block on network I/O.
// Failures are uniform; implementations may wrap domain.ErrServiceUnavailable.
type ReportingClient interface {
	// StartLaunch opens a launch and returns its identifier.
	StartLaunch(ctx context.Context, req domain.StartLaunchRequest) (domain.ItemID, error)

	// FinishLaunch closes a launch.
	FinishLaunch(ctx context.Context, launchID domain.ItemID, req domain.FinishLaunchRequest) error

	// StartRootItem opens an item directly under the launch.
	StartRootItem(ctx context.Context, req domain.StartItemRequest) (domain.ItemID, error)

	// StartItem opens an item under parentID.
	StartItem(ctx context.Context, parentID domain.ItemID, req domain.StartItemRequest) (domain.ItemID, error)

	// FinishItem closes an item.
	FinishItem(ctx context.Context, itemID domain.ItemID, req domain.FinishItemRequest) error
}
