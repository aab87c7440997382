package ui

import (
	"os"

	"golang.org/x/term"
)

const defaultWidth = 80

// Terminal describes the stream progress is drawn on.
type Terminal struct {
	IsTTY bool
	Width int
}

// DetectTerminal probes f. Width falls back to 80 columns when f is not a
// terminal or its size is unknown.
func DetectTerminal(f *os.File) Terminal {
	fd := int(f.Fd()) //nolint:gosec // G115: fd values are small non-negative integers
	t := Terminal{IsTTY: term.IsTerminal(fd), Width: defaultWidth}
	if !t.IsTTY {
		return t
	}
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		t.Width = w
	}
	return t
}
