// Package tree renders a reported launch as text, Mermaid or Markdown.
package tree

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/storyline/pkg/adapters/memory"
	"github.com/aretw0/storyline/pkg/domain"
	"github.com/muesli/termenv"
)

// Format selects a renderer.
type Format string

const (
	FormatText     Format = "text"
	FormatMermaid  Format = "mermaid"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatMermaid, FormatMarkdown:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, mermaid or markdown)", s)
}

var statusColors = map[domain.Status]string{
	domain.StatusPassed:      "#22c55e",
	domain.StatusFailed:      "#ef4444",
	domain.StatusSkipped:     "#a3a3a3",
	domain.StatusInterrupted: "#f59e0b",
	domain.StatusCancelled:   "#f59e0b",
	domain.StatusStopped:     "#f59e0b",
}

// WriteText writes the launch as an indented tree, one item per line.
// Statuses are coloured according to out's profile.
func WriteText(w io.Writer, out *termenv.Output, l *memory.Launch) error {
	state := "finished"
	if !l.Finished {
		state = "open"
	}
	if _, err := fmt.Fprintf(w, "%s %s (%s)\n", out.String("Launch").Bold(), l.Name, state); err != nil {
		return err
	}

	var err error
	l.Walk(func(it *memory.Item, depth int) {
		if err != nil {
			return
		}
		indent := strings.Repeat("  ", depth+1)
		_, err = fmt.Fprintf(w, "%s%s %s %s\n", indent, statusLabel(out, it), strings.ToLower(string(it.Type)), it.Name)
	})
	return err
}

func statusLabel(out *termenv.Output, it *memory.Item) termenv.Style {
	if !it.Finished {
		return out.String("[OPEN]").Faint()
	}
	label := out.String("[" + string(it.Status) + "]")
	if c, ok := statusColors[it.Status]; ok {
		label = label.Foreground(out.Color(c))
	}
	return label
}

// Text renders the launch as plain text, without colours.
func Text(l *memory.Launch) string {
	var sb strings.Builder
	_ = WriteText(&sb, termenv.NewOutput(&sb, termenv.WithProfile(termenv.Ascii)), l)
	return sb.String()
}
