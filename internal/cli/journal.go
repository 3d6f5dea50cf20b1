package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/storyline/internal/config"
	"github.com/aretw0/storyline/pkg/domain"
	"github.com/aretw0/storyline/pkg/ports"
)

// ErrJournalDisabled is returned by the journal commands when no Redis address is configured.
var ErrJournalDisabled = errors.New("journal is not configured (set journal.redis_addr or STORYLINE_REDIS_ADDR)")

// InspectableJournal is a journal that can also enumerate and clear launches.
type InspectableJournal interface {
	ports.ItemJournal
	Launches(ctx context.Context) ([]domain.ItemID, error)
	Clear(ctx context.Context, launchID domain.ItemID) error
}

// OpenJournal connects to the configured Redis journal and checks it answers.
func OpenJournal(ctx context.Context, cfg config.Config) (InspectableJournal, func() error, error) {
	if !cfg.JournalEnabled() {
		return nil, nil, ErrJournalDisabled
	}
	j := openJournal(cfg)
	if err := j.Ping(ctx); err != nil {
		_ = j.Close()
		return nil, nil, fmt.Errorf("error connecting to journal at %s: %w", cfg.Journal.RedisAddr, err)
	}
	return j, j.Close, nil
}

// ListLaunches prints every launch that still has pending items.
func ListLaunches(ctx context.Context, j InspectableJournal, w io.Writer) error {
	launches, err := j.Launches(ctx)
	if err != nil {
		return err
	}
	if len(launches) == 0 {
		fmt.Fprintln(w, "No pending launches.")
		return nil
	}

	fmt.Fprintf(w, "%-40s %s\n", "LAUNCH", "PENDING")
	for _, id := range launches {
		pending, err := j.Pending(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-40s %d\n", id, len(pending))
	}
	return nil
}

// ShowLaunch prints the pending items of one launch, most recent first.
func ShowLaunch(ctx context.Context, j InspectableJournal, launchID domain.ItemID, w io.Writer) error {
	pending, err := j.Pending(ctx, launchID)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return fmt.Errorf("%w: %s", domain.ErrLaunchNotFound, launchID)
	}
	for _, id := range pending {
		fmt.Fprintln(w, id)
	}
	return nil
}

// ClearLaunch drops the journal entries of one launch.
func ClearLaunch(ctx context.Context, j InspectableJournal, launchID domain.ItemID, w io.Writer) error {
	if err := j.Clear(ctx, launchID); err != nil {
		return err
	}
	fmt.Fprintf(w, "Cleared journal for launch %s\n", launchID)
	return nil
}
