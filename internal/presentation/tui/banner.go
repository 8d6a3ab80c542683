package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`   ___ __ _ _ __   ___  _ __  _   _ `, "#a3e635"},
	{`  / __/ _' | '_ \ / _ \| '_ \| | | |`, "#4ade80"},
	{` | (_| (_| | | | | (_) | |_) | |_| |`, "#34d399"},
	{`  \___\__,_|_| |_|\___/| .__/ \__, |`, "#2dd4bf"},
	{`                       |_|    |___/ `, "#22d3ee"},
}

// PrintBanner outputs the canopy ASCII art banner.
// Colors are dropped when w is not a color-capable terminal.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, out.String(line.text).Foreground(out.Color(line.color)))
	}
	fmt.Fprintln(w)
}

// Status colours a one-word run status: green when found, yellow when
// exhausted and red for anything else.
func Status(w io.Writer, status string) string {
	out := termenv.NewOutput(w)
	color := "#f87171"
	switch status {
	case "found":
		color = "#4ade80"
	case "exhausted":
		color = "#facc15"
	}
	return out.String(status).Foreground(out.Color(color)).Bold().String()
}
