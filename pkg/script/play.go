package script

import (
	"context"
	"fmt"

	"github.com/aretw0/storyline/pkg/domain"
)

// Target receives the replayed lifecycle. *storyline.Reporter satisfies it.
type Target interface {
	StartLaunch(ctx context.Context, spec domain.LaunchSpec) domain.ItemID
	FinishLaunch(ctx context.Context)
	StartStory(ctx context.Context, story domain.Story, given bool) domain.ItemID
	FinishStory(ctx context.Context)
	SetScenarioMeta(meta domain.Meta)
	StartScenario(ctx context.Context, name string) domain.ItemID
	FinishScenario(ctx context.Context, status domain.Status)
	BeginExamples(steps []string)
	Example(label string, params map[string]string)
	EndExamples()
	StartStep(ctx context.Context, text string) domain.ItemID
	FinishStep(ctx context.Context, status domain.Status)
	ForceFinishAllOpenItems(ctx context.Context, status domain.Status)
}

// Result summarizes a replay.
type Result struct {
	// LaunchID is the id of the last launch started, empty if it failed.
	LaunchID domain.ItemID
	// Started counts the items the target reported as started.
	Started int
	// Skipped counts item starts that returned an empty id.
	Skipped int
}

// Play drives target through the script's events.
//
// A script without its own start_launch is wrapped in a launch built from its
// launch block. Play stops early only when ctx is done.
func Play(ctx context.Context, target Target, s *Script) (Result, error) {
	var res Result
	wrap := !s.HasLaunch()
	if wrap {
		res.LaunchID = target.StartLaunch(ctx, s.Launch)
	}

	for i, ev := range s.Events {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("replay stopped at event %d: %w", i, err)
		}
		apply(ctx, target, ev, &res)
	}

	if wrap {
		target.FinishLaunch(ctx)
	}
	return res, nil
}

func apply(ctx context.Context, target Target, ev Event, res *Result) {
	count := func(id domain.ItemID) {
		if id.IsSet() {
			res.Started++
		} else {
			res.Skipped++
		}
	}

	switch a := ev.Args.(type) {
	case domain.LaunchSpec:
		res.LaunchID = target.StartLaunch(ctx, a)
	case StoryArgs:
		count(target.StartStory(ctx, domain.Story{
			Name:        a.Name,
			Description: a.Description,
			Meta:        domain.ParseMeta(a.Meta...),
		}, a.Given))
	case MetaArgs:
		target.SetScenarioMeta(domain.ParseMeta(a.Meta...))
	case ScenarioArgs:
		if len(a.Meta) > 0 {
			target.SetScenarioMeta(domain.ParseMeta(a.Meta...))
		}
		count(target.StartScenario(ctx, a.Name))
	case ExamplesArgs:
		target.BeginExamples(a.Steps)
	case ExampleArgs:
		target.Example(a.Label, a.Params)
	case StepArgs:
		count(target.StartStep(ctx, a.Text))
	case StatusArgs:
		switch ev.Op {
		case OpFinishScenario:
			target.FinishScenario(ctx, statusOr(a.Status, domain.StatusPassed))
		case OpFinishStep:
			target.FinishStep(ctx, statusOr(a.Status, domain.StatusPassed))
		case OpCleanup:
			target.ForceFinishAllOpenItems(ctx, statusOr(a.Status, domain.StatusInterrupted))
		}
	case NoArgs:
		switch ev.Op {
		case OpFinishLaunch:
			target.FinishLaunch(ctx)
		case OpFinishStory:
			target.FinishStory(ctx)
		case OpEndExamples:
			target.EndExamples()
		}
	}
}

func statusOr(s, def domain.Status) domain.Status {
	if s == "" {
		return def
	}
	return s
}
