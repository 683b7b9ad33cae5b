// SPDX-License-Identifier: MIT
package palette

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// MinLEDLuma is the lowest value any palette produces, so a lit pixel is
// never fully dark.
const MinLEDLuma = 25

// HueTurn is the size of the hue circle. Hue arithmetic wraps at this value.
const HueTurn = 1 << 16

// HSV is a color on the 16-bit hue circle with 8-bit saturation and value.
type HSV struct {
	Hue uint16
	Sat uint8
	Val uint8
}

// RGBA converts the color for a pixel sink. Alpha is always opaque.
func (c HSV) RGBA() color.RGBA {
	h := float64(c.Hue) * 360 / HueTurn
	r, g, b := colorful.Hsv(h, float64(c.Sat)/255, float64(c.Val)/255).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// Hex packs a 0xRRGGBB value into an opaque color.
func Hex(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// WrapHue folds any real hue position onto the circle, negative values
// included.
func WrapHue(h float64) uint16 {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	m := math.Mod(math.Floor(h), HueTurn)
	if m < 0 {
		m += HueTurn
	}
	return uint16(m)
}

func fract(x float64) float64 { return x - math.Floor(x) }

// Triwave maps a phase to a triangle wave in [-1, 1] with period 1.
// Triwave(0) is 0, Triwave(0.25) is 1.
func Triwave(v float64) float64 {
	x := 2 * v
	return 1 - 4*math.Abs(0.5-fract(0.5*x+0.25))
}

// Mod is the floored modulo, its result has the sign of y.
func Mod(x, y float64) float64 {
	return x - y*math.Floor(x/y)
}
