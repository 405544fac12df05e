package layer

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit sRGB color.
type RGB struct {
	R, G, B uint8
}

func (c RGB) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// Floats returns the channels scaled to [0, 1].
func (c RGB) Floats() (r, g, b float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255
}

// paletteSize is the number of hues in the rotation.
const paletteSize = 12

var palette = buildPalette(paletteSize)

// buildPalette spaces n hues by the golden angle so neighbours in
// insertion order contrast.
func buildPalette(n int) []RGB {
	out := make([]RGB, n)
	for i := range out {
		h := float64(i) * 137.508
		for h >= 360 {
			h -= 360
		}
		r, g, b := colorful.Hsv(h, 0.65, 0.85).RGB255()
		out[i] = RGB{R: r, G: g, B: b}
	}
	return out
}

// ColorFor returns the palette entry for the n-th inserted layer. Any n is
// accepted; negative values wrap from the end of the palette.
func ColorFor(n int) RGB {
	k := len(palette)
	return palette[(n%k+k)%k]
}
