package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/storyline/pkg/domain"
)

// opened registers a successfully started item as open.
func (o *Orchestrator) opened(ctx context.Context, id domain.ItemID, req domain.StartItemRequest, parent domain.ItemID) {
	o.store.PushOpenItem(id)
	o.open[id] = openItem{typ: req.Type, name: req.Name, parent: parent, started: req.StartTime}

	if o.journal != nil {
		if err := o.journal.Record(ctx, o.store.LaunchID(), id); err != nil {
			o.logger.Warn("Failed to journal open item", "item_id", id, "err", err)
		}
	}

	o.logger.Debug("Item started", "item_type", req.Type, "item_id", id, "parent_id", parent, "name", req.Name)
	o.emitItem(ctx, domain.EventItemStart, &domain.ItemEvent{
		ItemID:   id,
		ParentID: parent,
		ItemType: req.Type,
		Name:     req.Name,
	})
}

// finishItem sends a finish request. A confirmed finish removes the item from
// the open collection; an unconfirmed one keeps it there for forced cleanup.
func (o *Orchestrator) finishItem(ctx context.Context, id domain.ItemID, status domain.Status, forced bool) error {
	info := o.open[id]
	end := o.now()

	err := o.client.FinishItem(ctx, id, domain.FinishItemRequest{EndTime: end, Status: status})
	if err != nil {
		err = fmt.Errorf("%w: finish %s: %w", domain.ErrItemOperationFailed, id, err)
		msg := "Unable to finish " + strings.ToLower(string(info.typ))
		if forced {
			msg = "Unable to finish started item during cleanup"
		}
		o.logger.Error(msg,
			"operation", "finish",
			"item_type", info.typ,
			"item_id", id,
			"status", status,
			"err", err,
		)
	} else {
		o.store.RemoveOpenItem(id)
		delete(o.open, id)
		o.forget(ctx, o.store.LaunchID(), id)
		o.logger.Debug("Item finished", "item_type", info.typ, "item_id", id, "status", status)
	}

	ev := &domain.ItemEvent{
		ItemID:   id,
		ParentID: info.parent,
		ItemType: info.typ,
		Name:     info.name,
		Status:   status,
		Forced:   forced,
		Err:      err,
	}
	if !info.started.IsZero() {
		ev.Duration = end.Sub(info.started)
	}
	o.emitItem(ctx, domain.EventItemFinish, ev)
	return err
}

// ForceFinishAllOpenItems closes every item that is still open, most recently
// opened first. Each item is attempted on its own; the collection always ends empty.
// Frame identifiers are cleared afterwards so later finishes do not target closed items.
func (o *Orchestrator) ForceFinishAllOpenItems(ctx context.Context, status domain.Status) {
	if o.store.ServiceDown() {
		return
	}

	items := o.store.DrainOpenItems()
	if len(items) == 0 {
		return
	}
	o.logger.Info("Finishing items left open", "count", len(items), "status", status)

	failed := 0
	for _, id := range items {
		if err := o.finishItem(ctx, id, status, true); err != nil {
			failed++
		}
		delete(o.open, id)
	}
	if failed > 0 {
		o.logger.Warn("Some items could not be finished", "failed", failed, "total", len(items))
	}

	for o.store.PopFrame() {
	}
	root := o.store.CurrentFrame()
	root.StoryID = ""
	root.ScenarioID = ""
	root.StepID = ""
	root.ScenarioMeta = nil
	root.Examples = nil
	o.store.SetCurrentItem("")
}

// Recover finishes the items the journal still holds for launchID, typically
// left behind by a run that crashed before cleanup. It returns how many were closed.
// Items the service no longer knows are dropped from the journal.
func (o *Orchestrator) Recover(ctx context.Context, launchID domain.ItemID, status domain.Status) int {
	if o.journal == nil || o.store.ServiceDown() {
		return 0
	}

	pending, err := o.journal.Pending(ctx, launchID)
	if err != nil {
		o.logger.Warn("Failed to read journal", "launch_id", launchID, "err", err)
		return 0
	}

	closed := 0
	for _, id := range pending {
		err := o.client.FinishItem(ctx, id, domain.FinishItemRequest{EndTime: o.now(), Status: status})
		switch {
		case err == nil:
			closed++
			o.forget(ctx, launchID, id)
		case errors.Is(err, domain.ErrItemNotFound):
			o.logger.Debug("Journaled item unknown to the service, dropping", "item_id", id)
			o.forget(ctx, launchID, id)
		default:
			o.logger.Error("Unable to finish journaled item", "launch_id", launchID, "item_id", id, "err", err)
		}
	}
	o.logger.Info("Journal recovered", "launch_id", launchID, "closed", closed, "pending", len(pending))
	return closed
}

func (o *Orchestrator) forget(ctx context.Context, launchID, id domain.ItemID) {
	if o.journal == nil {
		return
	}
	if err := o.journal.Forget(ctx, launchID, id); err != nil {
		o.logger.Warn("Failed to remove item from journal", "item_id", id, "err", err)
	}
}

func (o *Orchestrator) emitItem(ctx context.Context, typ domain.EventType, ev *domain.ItemEvent) {
	hook := o.hooks.OnItemStart
	if typ == domain.EventItemFinish {
		hook = o.hooks.OnItemFinish
	}
	if hook == nil {
		return
	}
	ev.Type = typ
	ev.Timestamp = o.now()
	ev.LaunchID = o.store.LaunchID()
	hook(ctx, ev)
}

func (o *Orchestrator) emitLaunch(ctx context.Context, typ domain.EventType, id domain.ItemID, name string, err error) {
	var hook func(context.Context, *domain.LaunchEvent)
	switch typ {
	case domain.EventLaunchStart:
		hook = o.hooks.OnLaunchStart
	case domain.EventLaunchFinish:
		hook = o.hooks.OnLaunchFinish
	case domain.EventServiceDown:
		hook = o.hooks.OnServiceDown
	}
	if hook == nil {
		return
	}
	ev := &domain.LaunchEvent{Name: name, Err: err}
	ev.Type = typ
	ev.Timestamp = o.now()
	ev.LaunchID = id
	hook(ctx, ev)
}
