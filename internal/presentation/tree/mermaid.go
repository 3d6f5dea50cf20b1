package tree

import (
	"fmt"
	"strings"

	"github.com/aretw0/storyline/pkg/adapters/memory"
	"github.com/aretw0/storyline/pkg/domain"
)

// Mermaid produces a Mermaid flowchart of the launch.
// It applies semantic shapes:
// - Launch: ((Circle))
// - Story: [[Subroutine]]
// - Scenario: [Rectangle]
// - Step: (Rounded)
// Items are styled by status; unfinished items get the "open" class.
func Mermaid(l *memory.Launch) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	root := "launch_" + sanitizeMermaidID(string(l.ID))
	fmt.Fprintf(&sb, "    %s((\"%s\"))\n", root, escapeLabel(l.Name))

	classes := make(map[string][]string)
	l.Walk(func(it *memory.Item, _ int) {
		id := sanitizeMermaidID(string(it.ID))

		opener, closer := "(", ")"
		switch it.Type {
		case domain.ItemStory:
			opener, closer = "[[", "]]"
		case domain.ItemScenario:
			opener, closer = "[", "]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, escapeLabel(it.Name), closer)

		parent := root
		if it.ParentID.IsSet() {
			parent = sanitizeMermaidID(string(it.ParentID))
		}
		fmt.Fprintf(&sb, "    %s --> %s\n", parent, id)

		class := "open"
		if it.Finished {
			class = strings.ToLower(string(it.Status))
		}
		classes[class] = append(classes[class], id)
	})

	if len(classes) > 0 {
		sb.WriteString("\n    %% Status Styles\n")
		// Force black text (color:#000) for contrast on light fills in both themes.
		sb.WriteString("    classDef passed fill:#dcfce7,stroke:#15803d,color:#000;\n")
		sb.WriteString("    classDef failed fill:#fee2e2,stroke:#b91c1c,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef skipped fill:#f5f5f5,stroke:#737373,color:#000;\n")
		sb.WriteString("    classDef interrupted fill:#fef3c7,stroke:#b45309,color:#000;\n")
		sb.WriteString("    classDef open fill:#fff,stroke:#737373,stroke-dasharray: 4 4,color:#000;\n")
		for _, class := range []string{"passed", "failed", "skipped", "interrupted", "cancelled", "stopped", "open"} {
			if ids := classes[class]; len(ids) > 0 {
				if class == "cancelled" || class == "stopped" {
					class = "interrupted"
				}
				fmt.Fprintf(&sb, "    class %s %s;\n", strings.Join(ids, ","), class)
			}
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_", ":", "_")
	return r.Replace(id)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
