package tree

import (
	"fmt"
	"strings"

	"github.com/aretw0/storyline/pkg/adapters/memory"
	"github.com/aretw0/storyline/pkg/domain"
)

var statusIcons = map[domain.Status]string{
	domain.StatusPassed:      "✅",
	domain.StatusFailed:      "❌",
	domain.StatusSkipped:     "⏭️",
	domain.StatusInterrupted: "⚠️",
	domain.StatusCancelled:   "⚠️",
	domain.StatusStopped:     "⚠️",
}

// Markdown renders the launch as a Markdown document: a summary table
// followed by the item tree as a nested list.
func Markdown(l *memory.Launch) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", l.Name)
	if l.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", l.Description)
	}
	if len(l.Tags) > 0 {
		fmt.Fprintf(&sb, "Tags: `%s`\n\n", strings.Join(l.Tags, "`, `"))
	}

	counts := make(map[domain.Status]int)
	open := 0
	l.Walk(func(it *memory.Item, _ int) {
		if it.Type != domain.ItemStep {
			return
		}
		if !it.Finished {
			open++
			return
		}
		counts[it.Status]++
	})

	sb.WriteString("| Status | Steps |\n|---|---|\n")
	for _, s := range []domain.Status{
		domain.StatusPassed, domain.StatusFailed, domain.StatusSkipped,
		domain.StatusInterrupted, domain.StatusCancelled, domain.StatusStopped,
	} {
		if n := counts[s]; n > 0 {
			fmt.Fprintf(&sb, "| %s %s | %d |\n", statusIcons[s], s, n)
		}
	}
	if open > 0 {
		fmt.Fprintf(&sb, "| OPEN | %d |\n", open)
	}
	sb.WriteString("\n")

	l.Walk(func(it *memory.Item, depth int) {
		icon := "⏳"
		if it.Finished {
			icon = statusIcons[it.Status]
		}
		name := it.Name
		if it.Type != domain.ItemStep {
			name = "**" + name + "**"
		}
		fmt.Fprintf(&sb, "%s- %s %s\n", strings.Repeat("  ", depth), icon, name)
	})

	return sb.String()
}
