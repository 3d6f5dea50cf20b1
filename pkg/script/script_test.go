package script_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/storyline"
	"github.com/aretw0/storyline/pkg/adapters/memory"
	"github.com/aretw0/storyline/pkg/domain"
	"github.com/aretw0/storyline/pkg/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Checkout(t *testing.T) {
	s, err := script.Load(filepath.Join("testdata", "checkout.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "checkout-smoke", s.Launch.Name)
	assert.Equal(t, []string{"nightly", "checkout"}, s.Launch.Tags)
	assert.Equal(t, domain.ModeDefault, s.Launch.Mode)
	assert.False(t, s.HasLaunch())
	require.Len(t, s.Events, 13)

	assert.Equal(t, script.ExampleArgs{Label: "Example: 1", Params: map[string]string{"n": "3"}}, s.Events[3].Args,
		"numeric params are read as strings")
	assert.Equal(t, script.NoArgs{}, s.Events[8].Args)
	assert.Equal(t, script.StatusArgs{}, s.Events[12].Args)
}

func TestPlay_Checkout(t *testing.T) {
	s, err := script.Load(filepath.Join("testdata", "checkout.yaml"))
	require.NoError(t, err)

	svc := memory.NewService()
	rep, err := storyline.New(svc)
	require.NoError(t, err)

	res, err := script.Play(context.Background(), rep, s)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Started)
	assert.Zero(t, res.Skipped)

	tree, err := svc.Tree(res.LaunchID)
	require.NoError(t, err)
	assert.True(t, tree.Finished, "the stream is wrapped in a launch")
	assert.Equal(t, "Replayed from a recorded run", tree.Description)
	assert.Empty(t, tree.Unfinished(), "cleanup closes what the stream left open")

	story := tree.Roots[0]
	assert.Equal(t, "As a shopper I want to pay\nid:42 <a href=\"http://jira.example.com/browse/SHOP-7\">issue:SHOP-7</a>", story.Description)

	paying := story.Children[0]
	assert.Equal(t, "Pay as guest", paying.Name)
	assert.Equal(t, domain.StatusFailed, paying.Status)
	require.Len(t, paying.Children, 2)
	assert.Equal(t, "[Example: 1] Given 3 items in the cart", paying.Children[0].Name)
	assert.Equal(t, "When I pay", paying.Children[1].Name)

	abandoned := story.Children[1]
	assert.Equal(t, domain.StatusInterrupted, abandoned.Status)
	assert.Equal(t, domain.StatusInterrupted, abandoned.Children[0].Status)
}

func TestPlay_ExplicitLaunch(t *testing.T) {
	s, err := script.Parse([]byte(`
events:
  - op: start_launch
    args: {name: explicit, mode: DEBUG}
  - op: start_story
    args: {name: S}
  - op: finish_story
  - op: finish_launch
`))
	require.NoError(t, err)
	assert.True(t, s.HasLaunch())

	svc := memory.NewService()
	rep, err := storyline.New(svc)
	require.NoError(t, err)

	res, err := script.Play(context.Background(), rep, s)
	require.NoError(t, err)

	launches := svc.Launches()
	require.Len(t, launches, 1, "an explicit launch is not wrapped again")
	assert.Equal(t, res.LaunchID, launches[0].ID)
	assert.Equal(t, domain.ModeDebug, launches[0].Mode)
	assert.True(t, launches[0].Finished)
}

func TestPlay_ServiceDownCountsSkips(t *testing.T) {
	s, err := script.Parse([]byte(`
launch: {name: down}
events:
  - op: start_story
    args: {name: S}
  - op: start_scenario
    args: {name: Sc}
`))
	require.NoError(t, err)

	svc := memory.NewService()
	svc.SetDown(true)
	rep, err := storyline.New(svc)
	require.NoError(t, err)

	res, err := script.Play(context.Background(), rep, s)
	require.NoError(t, err)
	assert.Empty(t, res.LaunchID)
	assert.Equal(t, 2, res.Skipped)
}

func TestPlay_CanceledContext(t *testing.T) {
	s, err := script.Parse([]byte("events:\n  - op: finish_story\n"))
	require.NoError(t, err)

	rep, err := storyline.New(memory.NewService())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = script.Play(ctx, rep, s)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"unknown op", "events:\n  - op: jump\n", script.ErrUnknownOp},
		{"unknown arg", "events:\n  - op: start_step\n    args: {txt: typo}\n", script.ErrInvalidArgs},
		{"bad status", "events:\n  - op: finish_step\n    args: {status: GREEN}\n", script.ErrInvalidArgs},
		{"args on argless op", "events:\n  - op: finish_story\n    args: {now: true}\n", script.ErrInvalidArgs},
		{"bad launch mode", "launch: {name: x, mode: LOUD}\n", script.ErrInvalidArgs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := script.Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := script.Parse([]byte("events: [this is: not valid"))
	assert.Error(t, err)

	_, err = script.Load(filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)
}
