package tui

import (
	"os"

	"golang.org/x/term"
)

// Terminal cell size used to turn columns and rows into canvas units.
const (
	cellWidth  = 10.0
	cellHeight = 20.0
)

// CanvasSize returns a canvas sized after the terminal attached to f.
// ok is false when f is not a terminal; the fallback size is returned then.
func CanvasSize(f *os.File, fallbackW, fallbackH float64) (w, h float64, ok bool) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return fallbackW, fallbackH, false
	}
	cols, rows, err := term.GetSize(fd)
	if err != nil || cols <= 0 || rows <= 0 {
		return fallbackW, fallbackH, false
	}
	return float64(cols) * cellWidth, float64(rows) * cellHeight, true
}

// Width returns the column count of the terminal attached to f, or 0.
func Width(f *os.File) int {
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return cols
}
