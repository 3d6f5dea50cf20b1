package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/storyline/internal/config"
	"github.com/aretw0/storyline/internal/presentation/tree"
	"github.com/aretw0/storyline/internal/presentation/tui"
	"github.com/aretw0/storyline/pkg/adapters/memory"
	"github.com/aretw0/storyline/pkg/script"
	"github.com/muesli/termenv"
)

// errSimulatedOutage is what the memory backend answers when --fail-launch is set.
var errSimulatedOutage = errors.New("simulated outage")

// ReplayOptions configures RunReplay.
type ReplayOptions struct {
	ScriptPath string
	Format     tree.Format
	// FailLaunch makes the launch start fail, to exercise the degraded path.
	FailLaunch bool
	Out        io.Writer
}

// RunReplay plays a recorded script against the in-memory backend and prints the resulting tree.
func RunReplay(ctx context.Context, cfg config.Config, opts ReplayOptions, logger *slog.Logger) error {
	s, err := script.Load(opts.ScriptPath)
	if err != nil {
		return err
	}
	if s.Launch.Name == "" {
		s.Launch = cfg.LaunchSpec()
	}

	svc := memory.NewService()
	if opts.FailLaunch {
		svc.FailOn(memory.OpStartLaunch, errSimulatedOutage)
	}

	rep, closeJournal, err := createReporter(cfg, svc, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeJournal(); err != nil {
			logger.Warn("Failed to close journal", "err", err)
		}
	}()

	res, err := script.Play(ctx, rep, s)
	if err != nil {
		return err
	}
	logger.Info("Replay finished", "launch_id", res.LaunchID, "started", res.Started, "skipped", res.Skipped)

	if !res.LaunchID.IsSet() {
		fmt.Fprintf(opts.Out, "Launch %q was not reported (service unavailable); %d item(s) skipped.\n", s.Launch.Name, res.Skipped)
		return nil
	}

	l, err := svc.Tree(res.LaunchID)
	if err != nil {
		return err
	}
	return render(opts.Out, opts.Format, l)
}

// render writes the launch in the requested format. Colours and glamour
// rendering are only used when out is a terminal.
func render(out io.Writer, format tree.Format, l *memory.Launch) error {
	f, isFile := out.(*os.File)
	tty := isFile && tui.IsTerminal(f)

	switch format {
	case tree.FormatMermaid:
		_, err := io.WriteString(out, tree.Mermaid(l))
		return err
	case tree.FormatMarkdown:
		md := tree.Markdown(l)
		if tty {
			renderMarkdown, err := tui.NewRenderer(tui.Width(f))
			if err != nil {
				return err
			}
			if md, err = renderMarkdown(md); err != nil {
				return err
			}
		}
		_, err := io.WriteString(out, md)
		return err
	default:
		profile := termenv.WithProfile(termenv.Ascii)
		if tty {
			profile = termenv.WithColorCache(true)
		}
		return tree.WriteText(out, termenv.NewOutput(out, profile), l)
	}
}
