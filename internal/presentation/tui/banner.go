package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ASCII art banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{"                   _ _            ", "#818cf8"},
		{"   ___ _ __  ___(_) | ___  _ __ ", "#a78bfa"},
		{"  / _ \\ '_ \\/ __| | |/ _ \\| '_ \\ ", "#c084fc"},
		{" |  __/ |_) \\__ \\ | | (_) | | | |", "#e879f9"},
		{"  \\___| .__/|___/_|_|\\___/|_| |_|", "#f472b6"},
		{"      |_|                         ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
