package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/storyline/pkg/domain"
	"github.com/aretw0/storyline/pkg/text"
)

// StartStory opens a story.
//
// A given story is nested: it attaches under the current scenario (or the
// current story when no scenario is open) and gets its own frame. A root story
// attaches to the launch and reuses the current frame.
func (o *Orchestrator) StartStory(ctx context.Context, story domain.Story, given bool) domain.ItemID {
	if o.store.ServiceDown() {
		return ""
	}

	story.Meta = o.redact.Meta(story.Meta)
	frame := o.store.CurrentFrame()
	req := o.itemRequest(domain.ItemStory, text.Truncate(story.Name), storyDescription(story))

	if !given {
		id, err := o.client.StartRootItem(ctx, req)
		if err != nil {
			o.itemFailed(ctx, "start", req, "", err)
			return ""
		}
		frame.StoryID = id
		frame.StoryMeta = story.Meta.Clone()
		o.opened(ctx, id, req, "")
		return id
	}

	parent := frame.ScenarioID
	if !parent.IsSet() {
		parent = frame.StoryID
	}

	// The child frame is pushed even if the start fails, so the matching
	// FinishStory always returns to this parent.
	child := o.store.PushFrame()
	if !parent.IsSet() {
		o.skipped("start", req)
		return ""
	}

	id, err := o.client.StartItem(ctx, parent, req)
	if err != nil {
		o.itemFailed(ctx, "start", req, parent, err)
		return ""
	}
	child.StoryID = id
	child.StoryMeta = story.Meta.Clone()
	o.opened(ctx, id, req, parent)
	return id
}

// FinishStory closes the current story with status PASSED and returns to the parent frame.
// The parent is restored even when the finish call fails.
func (o *Orchestrator) FinishStory(ctx context.Context) {
	if o.store.ServiceDown() {
		return
	}

	frame := o.store.CurrentFrame()
	if !frame.StoryID.IsSet() {
		// Placeholder frame of a given story that never started.
		if o.store.PopFrame() {
			o.restoreCurrentItem()
		}
		return
	}

	o.finishItem(ctx, frame.StoryID, domain.StatusPassed, false)
	frame.StoryID = ""

	if o.store.PopFrame() {
		o.restoreCurrentItem()
	}
}

// SetScenarioMeta attaches the scenario metadata of the current frame.
// It is cleared again when the scenario finishes.
func (o *Orchestrator) SetScenarioMeta(meta domain.Meta) {
	o.store.CurrentFrame().ScenarioMeta = o.redact.Meta(meta)
}

// StartScenario opens a scenario under the current story.
// <placeholders> in the name are expanded from story and scenario metadata.
func (o *Orchestrator) StartScenario(ctx context.Context, name string) domain.ItemID {
	if o.store.ServiceDown() {
		return ""
	}

	frame := o.store.CurrentFrame()
	params := domain.MergeMaps(frame.StoryMeta, frame.ScenarioMeta)
	req := o.itemRequest(domain.ItemScenario,
		text.Truncate(text.ExpandParameters(name, params)),
		text.JoinMetas(frame.StoryMeta, frame.ScenarioMeta),
	)

	if frame.ScenarioID.IsSet() {
		o.logger.Warn("Starting scenario while the previous one is still open",
			"item_id", frame.ScenarioID,
			"name", req.Name,
		)
		frame.ScenarioID = ""
	}
	if !frame.StoryID.IsSet() {
		o.skipped("start", req)
		return ""
	}

	id, err := o.client.StartItem(ctx, frame.StoryID, req)
	if err != nil {
		o.itemFailed(ctx, "start", req, frame.StoryID, err)
		return ""
	}
	frame.ScenarioID = id
	o.opened(ctx, id, req, frame.StoryID)
	return id
}

// FinishScenario closes the current scenario with the given status.
func (o *Orchestrator) FinishScenario(ctx context.Context, status domain.Status) {
	frame := o.store.CurrentFrame()
	if o.store.ServiceDown() || !frame.ScenarioID.IsSet() {
		return
	}

	o.finishItem(ctx, frame.ScenarioID, status, false)
	frame.ScenarioID = ""
	frame.ScenarioMeta = nil
}

// FinishScenarioPassed closes the current scenario with status PASSED.
func (o *Orchestrator) FinishScenarioPassed(ctx context.Context) {
	o.FinishScenario(ctx, domain.StatusPassed)
}

// BeginExamples marks the current frame as iterating an example table over the given template steps.
func (o *Orchestrator) BeginExamples(steps []string) {
	o.store.CurrentFrame().Examples = domain.NewExampleTable(steps)
}

// Example moves the current example table to a new row.
func (o *Orchestrator) Example(label string, params map[string]string) {
	frame := o.store.CurrentFrame()
	if !frame.HasExamples() {
		o.logger.Warn("Example row received outside an example table", "label", label)
		frame.Examples = domain.NewExampleTable(nil)
	}
	frame.Examples.SetRow(label, o.redact.Params(params))
}

// EndExamples stops the example table iteration of the current frame.
func (o *Orchestrator) EndExamples() {
	o.store.CurrentFrame().Examples = nil
}

// StartStep opens a step under the current scenario.
//
// Inside an example row, template steps are renamed "[label] expanded text"
// and described by the row parameters.
func (o *Orchestrator) StartStep(ctx context.Context, stepText string) domain.ItemID {
	if o.store.ServiceDown() {
		return ""
	}

	frame := o.store.CurrentFrame()
	var req domain.StartItemRequest
	if frame.HasExamples() && frame.Examples.HasStep(stepText) {
		ex := frame.Examples
		name := text.ExpandParameters(stepText, ex.Params)
		if ex.Label != "" {
			name = "[" + ex.Label + "] " + name
		}
		req = o.itemRequest(domain.ItemStep, text.Truncate(name), text.JoinParams(ex.Params))
	} else {
		req = o.itemRequest(domain.ItemStep, text.Truncate(stepText), text.JoinMetas(frame.StoryMeta, frame.ScenarioMeta))
	}

	if frame.StepID.IsSet() {
		o.logger.Warn("Starting step while the previous one is still open", "item_id", frame.StepID, "name", req.Name)
		frame.StepID = ""
	}
	if !frame.ScenarioID.IsSet() {
		o.skipped("start", req)
		return ""
	}

	id, err := o.client.StartItem(ctx, frame.ScenarioID, req)
	if err != nil {
		o.itemFailed(ctx, "start", req, frame.ScenarioID, err)
		return ""
	}
	frame.StepID = id
	o.store.SetCurrentItem(id)
	o.opened(ctx, id, req, frame.ScenarioID)
	return id
}

// FinishStep closes the current step with the given status.
func (o *Orchestrator) FinishStep(ctx context.Context, status domain.Status) {
	frame := o.store.CurrentFrame()
	if o.store.ServiceDown() || !frame.StepID.IsSet() {
		return
	}

	o.finishItem(ctx, frame.StepID, status, false)
	frame.StepID = ""
	o.store.SetCurrentItem("")
}

// storyDescription appends the joined metadata to a non-empty description.
// An empty description stays empty.
func storyDescription(story domain.Story) string {
	if story.Description == "" {
		return ""
	}
	return story.Description + "\n" + text.JoinMeta(story.Meta)
}

func (o *Orchestrator) itemRequest(typ domain.ItemType, name, description string) domain.StartItemRequest {
	return domain.StartItemRequest{
		LaunchID:    o.store.LaunchID(),
		Name:        name,
		Description: description,
		Type:        typ,
		StartTime:   o.now(),
	}
}

// restoreCurrentItem points the currently executing item back at the step
// that was open in the frame we returned to.
func (o *Orchestrator) restoreCurrentItem() {
	o.store.SetCurrentItem(o.store.CurrentFrame().StepID)
}

func (o *Orchestrator) skipped(op string, req domain.StartItemRequest) {
	o.logger.Debug("Skipping item without a reported parent",
		"operation", op,
		"item_type", req.Type,
		"name", req.Name,
	)
}

// itemFailed logs and reports a failed start. The engine never sees the error.
func (o *Orchestrator) itemFailed(ctx context.Context, op string, req domain.StartItemRequest, parent domain.ItemID, err error) {
	wrapped := fmt.Errorf("%w: %s %s: %w", domain.ErrItemOperationFailed, op, strings.ToLower(string(req.Type)), err)
	o.logger.Error("Unable to "+op+" "+strings.ToLower(string(req.Type)),
		"operation", op,
		"item_type", req.Type,
		"name", req.Name,
		"parent_id", parent,
		"err", err,
	)
	o.emitItem(ctx, domain.EventItemStart, &domain.ItemEvent{
		ItemType: req.Type,
		ParentID: parent,
		Name:     req.Name,
		Err:      wrapped,
	})
}
