package storyline

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/storyline/internal/logging"
	"github.com/aretw0/storyline/internal/runtime"
	"github.com/aretw0/storyline/pkg/domain"
	"github.com/aretw0/storyline/pkg/ports"
	"github.com/aretw0/storyline/pkg/text"
)

// Reporter is the high-level entry point for the Storyline library.
// It wraps the internal orchestrator and is what a test-engine listener calls.
//
// A Reporter tracks a single launch at a time and is not safe for concurrent
// use, except for CurrentItem.
type Reporter struct {
	runtime *runtime.Orchestrator
	client  ports.ReportingClient
	journal ports.ItemJournal
	hooks   domain.LifecycleHooks
	redact  *text.Redactor
	logger  *slog.Logger
	now     func() time.Time
}

// Option defines a functional option for configuring the Reporter.
type Option func(*Reporter)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Reporter) {
		r.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reporter) {
		r.logger = logger
	}
}

// WithJournal mirrors every open item into journal so a crashed run can be recovered.
func WithJournal(journal ports.ItemJournal) Option {
	return func(r *Reporter) {
		r.journal = journal
	}
}

// WithRedactor masks metadata and example parameter values whose key is
// sensitive, e.g. text.NewRedactor([]string{"(?i)password"}).
func WithRedactor(r *text.Redactor) Option {
	return func(rep *Reporter) {
		rep.redact = r
	}
}

// WithClock overrides the time source used to stamp requests.
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) {
		r.now = now
	}
}

// New initializes a Reporter forwarding lifecycle events to client.
func New(client ports.ReportingClient, opts ...Option) (*Reporter, error) {
	if client == nil {
		return nil, domain.ErrNilClient
	}

	r := &Reporter{client: client}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.NewNop()
	}

	runtimeOpts := []runtime.Option{
		runtime.WithLogger(r.logger),
		runtime.WithLifecycleHooks(r.hooks),
		runtime.WithClock(r.now),
		runtime.WithRedactor(r.redact),
	}
	if r.journal != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithJournal(r.journal))
	}
	r.runtime = runtime.New(client, runtimeOpts...)

	return r, nil
}

// StartLaunch opens a launch. It returns an empty id when the service is unreachable,
// in which case every later call is a no-op until the next launch.
func (r *Reporter) StartLaunch(ctx context.Context, spec domain.LaunchSpec) domain.ItemID {
	return r.runtime.StartLaunch(ctx, spec)
}

// FinishLaunch closes the current launch.
func (r *Reporter) FinishLaunch(ctx context.Context) {
	r.runtime.FinishLaunch(ctx)
}

// StartStory opens a root story, or a nested one when given is true.
func (r *Reporter) StartStory(ctx context.Context, story domain.Story, given bool) domain.ItemID {
	return r.runtime.StartStory(ctx, story, given)
}

// FinishStory closes the current story.
func (r *Reporter) FinishStory(ctx context.Context) {
	r.runtime.FinishStory(ctx)
}

// SetScenarioMeta attaches metadata to the next scenario.
func (r *Reporter) SetScenarioMeta(meta domain.Meta) {
	r.runtime.SetScenarioMeta(meta)
}

// StartScenario opens a scenario under the current story.
func (r *Reporter) StartScenario(ctx context.Context, name string) domain.ItemID {
	return r.runtime.StartScenario(ctx, name)
}

// FinishScenario closes the current scenario.
func (r *Reporter) FinishScenario(ctx context.Context, status domain.Status) {
	r.runtime.FinishScenario(ctx, status)
}

// BeginExamples starts iterating an example table over the given template steps.
func (r *Reporter) BeginExamples(steps []string) {
	r.runtime.BeginExamples(steps)
}

// Example moves to the next example row.
func (r *Reporter) Example(label string, params map[string]string) {
	r.runtime.Example(label, params)
}

// EndExamples stops the example table iteration.
func (r *Reporter) EndExamples() {
	r.runtime.EndExamples()
}

// StartStep opens a step under the current scenario.
func (r *Reporter) StartStep(ctx context.Context, text string) domain.ItemID {
	return r.runtime.StartStep(ctx, text)
}

// FinishStep closes the current step.
func (r *Reporter) FinishStep(ctx context.Context, status domain.Status) {
	r.runtime.FinishStep(ctx, status)
}

// ForceFinishAllOpenItems closes every item still open, most recent first.
func (r *Reporter) ForceFinishAllOpenItems(ctx context.Context, status domain.Status) {
	r.runtime.ForceFinishAllOpenItems(ctx, status)
}

// Recover finishes the items a previous run left in the journal for launchID.
func (r *Reporter) Recover(ctx context.Context, launchID domain.ItemID, status domain.Status) int {
	return r.runtime.Recover(ctx, launchID, status)
}

// CurrentItem returns the id of the executing step, or an empty id.
// Safe to call from other goroutines.
func (r *Reporter) CurrentItem() domain.ItemID {
	return r.runtime.CurrentItem()
}

// Snapshot returns a copy of the execution context.
func (r *Reporter) Snapshot() domain.Snapshot {
	return r.runtime.Snapshot()
}

// Client returns the underlying reporting client.
func (r *Reporter) Client() ports.ReportingClient {
	return r.client
}
