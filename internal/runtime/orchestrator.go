package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/storyline/internal/logging"
	"github.com/aretw0/storyline/pkg/domain"
	"github.com/aretw0/storyline/pkg/ports"
	"github.com/aretw0/storyline/pkg/text"
	"github.com/aretw0/storyline/pkg/tracker"
)

// Orchestrator turns test-engine lifecycle transitions into reporting calls.
//
// It reads and updates the execution context held by a tracker.Store and
// delegates to a ports.ReportingClient. No operation returns an error:
// launch failures latch the service-down flag, item failures are logged and
// the local state is cleaned up as if the call had not happened.
type Orchestrator struct {
	client  ports.ReportingClient
	store   *tracker.Store
	journal ports.ItemJournal
	hooks   domain.LifecycleHooks
	redact  *text.Redactor
	logger  *slog.Logger
	now     func() time.Time

	// open tracks what we know about each open item, for events and journaling.
	open        map[domain.ItemID]openItem
	launchStart time.Time
}

type openItem struct {
	typ     domain.ItemType
	name    string
	parent  domain.ItemID
	started time.Time
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.hooks = hooks
	}
}

// WithJournal mirrors open items into a durable journal.
func WithJournal(journal ports.ItemJournal) Option {
	return func(o *Orchestrator) {
		o.journal = journal
	}
}

// WithRedactor masks sensitive metadata and example parameters before they
// reach names or descriptions.
func WithRedactor(r *text.Redactor) Option {
	return func(o *Orchestrator) {
		o.redact = r
	}
}

// WithClock overrides the time source used to stamp requests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithStore injects the execution context store.
func WithStore(store *tracker.Store) Option {
	return func(o *Orchestrator) {
		if store != nil {
			o.store = store
		}
	}
}

// New creates an orchestrator reporting through client.
func New(client ports.ReportingClient, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client: client,
		store:  tracker.New(),
		logger: logging.NewNop(),
		now:    time.Now,
		open:   make(map[domain.ItemID]openItem),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Store exposes the execution context.
func (o *Orchestrator) Store() *tracker.Store {
	return o.store
}

// CurrentItem returns the item currently executing, for listeners that attach logs.
func (o *Orchestrator) CurrentItem() domain.ItemID {
	return o.store.CurrentItem()
}

// StartLaunch opens a launch with a fresh execution context.
// On failure the service is marked down and every later call becomes a no-op.
func (o *Orchestrator) StartLaunch(ctx context.Context, spec domain.LaunchSpec) domain.ItemID {
	if prev := o.store.LaunchID(); prev.IsSet() {
		o.logger.Warn("Starting a launch while another one is open, discarding its context",
			"launch_id", prev,
			"open_items", len(o.store.OpenItems()),
		)
	}
	o.store.Reset()
	o.open = make(map[domain.ItemID]openItem)

	mode := spec.Mode
	if mode == "" {
		mode = domain.ModeDefault
	}
	o.launchStart = o.now()
	req := domain.StartLaunchRequest{
		Name:        spec.Name,
		Description: spec.Description,
		Tags:        spec.Tags,
		Mode:        mode,
		StartTime:   o.launchStart,
	}

	id, err := o.client.StartLaunch(ctx, req)
	if err != nil {
		o.store.MarkServiceDown()
		o.logger.Error("Unable to start launch, reporting disabled for this run", "launch", spec.Name, "err", err)
		o.emitLaunch(ctx, domain.EventLaunchStart, "", spec.Name, err)
		o.emitLaunch(ctx, domain.EventServiceDown, "", spec.Name, err)
		return ""
	}

	o.store.SetLaunchID(id)
	o.logger.Info("Launch started", "launch_id", id, "launch", spec.Name)
	o.emitLaunch(ctx, domain.EventLaunchStart, id, spec.Name, nil)
	return id
}

// FinishLaunch closes the current launch.
// The launch id is cleared even when the call fails, so a stale id is never reused.
func (o *Orchestrator) FinishLaunch(ctx context.Context) {
	launchID := o.store.LaunchID()
	if o.store.ServiceDown() || !launchID.IsSet() {
		return
	}
	defer o.store.SetLaunchID("")

	if n := len(o.store.OpenItems()); n > 0 {
		o.logger.Warn("Finishing launch with items still open", "launch_id", launchID, "open_items", n)
	}

	err := o.client.FinishLaunch(ctx, launchID, domain.FinishLaunchRequest{EndTime: o.now()})
	if err != nil {
		o.logger.Error("Unable to finish launch", "launch_id", launchID, "err", err)
	} else {
		o.logger.Info("Launch finished", "launch_id", launchID)
	}
	o.emitLaunch(ctx, domain.EventLaunchFinish, launchID, "", err)
}

// Snapshot copies the execution context for inspection.
func (o *Orchestrator) Snapshot() domain.Snapshot {
	return o.store.Snapshot()
}
