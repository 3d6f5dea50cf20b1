package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Storyline banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{`  ___ _                 _ _`, "#34d399"},
		{` / __| |_ ___ _ _ _  _| (_)_ _  ___`, "#2dd4bf"},
		{` \__ \  _/ _ \ '_| || | | | ' \/ -_)`, "#22d3ee"},
		{` |___/\__\___/_|  \_, |_|_|_||_\___|`, "#38bdf8"},
		{`                  |__/`, "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
