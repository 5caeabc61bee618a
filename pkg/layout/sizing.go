package layout

import "unicode/utf8"

// SizeFunc maps a display name to a visual radius in layout-space units.
// The same function must be shared between layout and renderer so that
// computed positions never visually overlap when drawn.
type SizeFunc func(name string) float64

// Sizing constants for DefaultSizing. Longer names render as larger
// bubbles; the mapping is monotonic in rune count.
const (
	baseRadius    = 7.0
	perRuneRadius = 0.4
)

// DefaultSizing derives a radius from the display name's rune count.
func DefaultSizing(name string) float64 {
	return baseRadius + perRuneRadius*float64(utf8.RuneCountInString(name))
}
