/*
Package storyline forwards the lifecycle of a behavior-driven test run to a test-reporting service.

A test engine walks launch, story, scenario and step. Storyline turns each transition into a
start or finish call on a reporting client, keeping the mapping between the engine's position
(including nested "given" stories and example tables) and the identifiers the service hands
back.

# Concept

Reporting is best-effort. If the launch cannot be started the service is considered down and
every later call returns immediately. Failures on single items are logged and the local state
is cleaned up, but they never reach the engine. At the end of a run, ForceFinishAllOpenItems
closes whatever was left open, most recent first.

The reporting protocol itself lives behind ports.ReportingClient. The memory adapter provides
a complete in-process backend, useful for tests and for replaying recorded runs.

# Usage

	svc := memory.NewService()
	rep, err := storyline.New(svc, storyline.WithLogger(slog.Default()))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	rep.StartLaunch(ctx, domain.LaunchSpec{Name: "nightly"})
	rep.StartStory(ctx, domain.Story{Name: "Checkout"}, false)
	rep.StartScenario(ctx, "Pay by card")
	rep.StartStep(ctx, "Given a cart")
	rep.FinishStep(ctx, domain.StatusPassed)
	rep.FinishScenario(ctx, domain.StatusPassed)
	rep.FinishStory(ctx)
	rep.ForceFinishAllOpenItems(ctx, domain.StatusInterrupted)
	rep.FinishLaunch(ctx)
*/
package storyline
