package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Statescript banner to w, colored when the
// terminal supports it.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  ___ _        _                    _      _   ", "#818cf8"},
		{" / __| |_ __ _| |_ ___ ___ __ _ _ _(_)_ __| |_ ", "#a78bfa"},
		{" \\__ \\  _/ _` |  _/ -_|_-</ _| '_| | '_ \\  _|", "#c084fc"},
		{" |___/\\__\\__,_|\\__\\___/__/\\__|_| |_| .__/\\__|", "#f472b6"},
		{"                                   |_|        ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
