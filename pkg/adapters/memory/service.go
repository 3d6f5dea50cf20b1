package memory

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/aretw0/storyline/pkg/domain"
	"github.com/google/uuid"
)

// Operation names one ReportingClient method.
type Operation string

const (
	OpStartLaunch   Operation = "start_launch"
	OpFinishLaunch  Operation = "finish_launch"
	OpStartRootItem Operation = "start_root_item"
	OpStartItem     Operation = "start_item"
	OpFinishItem    Operation = "finish_item"
)

// Call is one recorded client invocation.
// ID is the returned id for starts and the target id for finishes.
type Call struct {
	Op       Operation
	ID       domain.ItemID
	ParentID domain.ItemID
	Name     string
	Type     domain.ItemType
	Status   domain.Status
	Err      error
}

// Service implements ports.ReportingClient entirely in memory.
// It builds the launch/item tree a real reporting service would hold and lets
// tests inject failures per operation or per item.
// Safe for concurrent use.
type Service struct {
	mu       sync.Mutex
	launches map[domain.ItemID]*Launch
	order    []domain.ItemID
	items    map[domain.ItemID]*Item
	calls    []Call

	failOn   map[Operation]error
	failItem map[domain.ItemID]error
	down     bool

	newID func() domain.ItemID
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(fn func() domain.ItemID) ServiceOption {
	return func(s *Service) {
		s.newID = fn
	}
}

// SequentialIDs returns a generator producing prefix-1, prefix-2, ...
func SequentialIDs(prefix string) func() domain.ItemID {
	var n atomic.Int64
	return func() domain.ItemID {
		return domain.ItemID(prefix + "-" + strconv.FormatInt(n.Add(1), 10))
	}
}

// NewService creates an empty in-memory reporting backend.
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		launches: make(map[domain.ItemID]*Launch),
		items:    make(map[domain.ItemID]*Item),
		failOn:   make(map[Operation]error),
		failItem: make(map[domain.ItemID]error),
		newID: func() domain.ItemID {
			return domain.ItemID(uuid.NewString())
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FailOn makes every call of op return err until ClearFailures.
func (s *Service) FailOn(op Operation, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn[op] = err
}

// FailItem makes finishing itemID return err until ClearFailures.
func (s *Service) FailItem(itemID domain.ItemID, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failItem[itemID] = err
}

// SetDown simulates an unreachable service: every call fails with domain.ErrServiceUnavailable.
func (s *Service) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

// ClearFailures removes every injected failure.
func (s *Service) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn = make(map[Operation]error)
	s.failItem = make(map[domain.ItemID]error)
	s.down = false
}

// Calls returns every recorded invocation in order.
func (s *Service) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// CallsFor returns the recorded invocations of one operation.
func (s *Service) CallsFor(op Operation) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Launches returns a copy of every launch tree, in start order.
func (s *Service) Launches() []*Launch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Launch, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.launches[id].clone())
	}
	return out
}

// Tree returns a copy of one launch tree.
func (s *Service) Tree(launchID domain.ItemID) (*Launch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.launches[launchID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrLaunchNotFound, launchID)
	}
	return l.clone(), nil
}

// Item returns a copy of one item (children included).
func (s *Service) Item(itemID domain.ItemID) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[itemID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, itemID)
	}
	return it.clone(), nil
}

// StartLaunch implements ports.ReportingClient.
func (s *Service) StartLaunch(ctx context.Context, req domain.StartLaunchRequest) (domain.ItemID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := Call{Op: OpStartLaunch, Name: req.Name}
	if err := s.injected(ctx, OpStartLaunch, ""); err != nil {
		return "", s.record(call, err)
	}

	id := s.newID()
	s.launches[id] = &Launch{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Tags:        slices.Clone(req.Tags),
		Mode:        req.Mode,
		StartTime:   req.StartTime,
	}
	s.order = append(s.order, id)

	call.ID = id
	return id, s.record(call, nil)
}

// FinishLaunch implements ports.ReportingClient.
func (s *Service) FinishLaunch(ctx context.Context, launchID domain.ItemID, req domain.FinishLaunchRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := Call{Op: OpFinishLaunch, ID: launchID}
	if err := s.injected(ctx, OpFinishLaunch, ""); err != nil {
		return s.record(call, err)
	}

	l, ok := s.launches[launchID]
	if !ok {
		return s.record(call, fmt.Errorf("%w: %s", domain.ErrLaunchNotFound, launchID))
	}
	l.EndTime = req.EndTime
	l.Finished = true
	return s.record(call, nil)
}

// StartRootItem implements ports.ReportingClient.
func (s *Service) StartRootItem(ctx context.Context, req domain.StartItemRequest) (domain.ItemID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := Call{Op: OpStartRootItem, Name: req.Name, Type: req.Type}
	if err := s.injected(ctx, OpStartRootItem, ""); err != nil {
		return "", s.record(call, err)
	}

	l, ok := s.launches[req.LaunchID]
	if !ok {
		return "", s.record(call, fmt.Errorf("%w: %s", domain.ErrLaunchNotFound, req.LaunchID))
	}

	it := s.newItem(req, "")
	l.Roots = append(l.Roots, it)

	call.ID = it.ID
	return it.ID, s.record(call, nil)
}

// StartItem implements ports.ReportingClient.
func (s *Service) StartItem(ctx context.Context, parentID domain.ItemID, req domain.StartItemRequest) (domain.ItemID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := Call{Op: OpStartItem, ParentID: parentID, Name: req.Name, Type: req.Type}
	if err := s.injected(ctx, OpStartItem, ""); err != nil {
		return "", s.record(call, err)
	}

	parent, ok := s.items[parentID]
	if !ok {
		return "", s.record(call, fmt.Errorf("%w: parent %s", domain.ErrItemNotFound, parentID))
	}

	it := s.newItem(req, parentID)
	it.LaunchID = parent.LaunchID
	parent.Children = append(parent.Children, it)

	call.ID = it.ID
	return it.ID, s.record(call, nil)
}

// FinishItem implements ports.ReportingClient.
func (s *Service) FinishItem(ctx context.Context, itemID domain.ItemID, req domain.FinishItemRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := Call{Op: OpFinishItem, ID: itemID, Status: req.Status}
	if err := s.injected(ctx, OpFinishItem, itemID); err != nil {
		return s.record(call, err)
	}

	it, ok := s.items[itemID]
	if !ok {
		return s.record(call, fmt.Errorf("%w: %s", domain.ErrItemNotFound, itemID))
	}
	if it.Finished {
		return s.record(call, fmt.Errorf("item %s already finished", itemID))
	}
	it.Status = req.Status
	it.EndTime = req.EndTime
	it.Finished = true
	call.Name = it.Name
	call.Type = it.Type
	return s.record(call, nil)
}

func (s *Service) newItem(req domain.StartItemRequest, parentID domain.ItemID) *Item {
	it := &Item{
		ID:          s.newID(),
		ParentID:    parentID,
		LaunchID:    req.LaunchID,
		Type:        req.Type,
		Name:        req.Name,
		Description: req.Description,
		StartTime:   req.StartTime,
	}
	s.items[it.ID] = it
	return it
}

// injected returns the failure configured for this call, if any.
// A canceled context also fails the call, like a real transport would.
func (s *Service) injected(ctx context.Context, op Operation, itemID domain.ItemID) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrServiceUnavailable, err)
	}
	if s.down {
		return fmt.Errorf("%w: %s", domain.ErrServiceUnavailable, op)
	}
	if err, ok := s.failOn[op]; ok {
		return err
	}
	if itemID.IsSet() {
		if err, ok := s.failItem[itemID]; ok {
			return err
		}
	}
	return nil
}

func (s *Service) record(call Call, err error) error {
	call.Err = err
	s.calls = append(s.calls, call)
	return err
}
