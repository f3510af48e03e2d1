package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text, color string
}{
	{`                  __ _`, "#38bdf8"},
	{`  ___  ___  __ _ / _| | _____      __`, "#60a5fa"},
	{` / __|/ _ \/ _' | |_| |/ _ \ \ /\ / /`, "#818cf8"},
	{` \__ \  __/ (_| |  _| | (_) \ V  V /`, "#a78bfa"},
	{` |___/\___|\__, |_| |_|\___/ \_/\_/`, "#c084fc"},
	{`              |_|`, "#e879f9"},
}

// PrintBanner writes the ASCII banner to w using the terminal's color profile.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
