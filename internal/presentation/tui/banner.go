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
	{`              _                         _ `, "#818cf8"},
	{`   ___  _ __ | |__   ___   __ _ _ __ __| |`, "#a78bfa"},
	{`  / _ \| '_ \| '_ \ / _ \ / _' | '__/ _' |`, "#c084fc"},
	{` | (_) | | | | |_) | (_) | (_| | | | (_| |`, "#e879f9"},
	{`  \___/|_| |_|_.__/ \___/ \__,_|_|  \__,_|`, "#f472b6"},
}

// PrintBanner writes the onboard banner and a subtitle to w.
// Colors are dropped when w is not a terminal.
func PrintBanner(w io.Writer, subtitle string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	if subtitle != "" {
		fmt.Fprintln(w, out.String("  "+subtitle).Faint())
	}
	fmt.Fprintln(w)
}
