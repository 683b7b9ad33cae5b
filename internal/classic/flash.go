// SPDX-License-Identifier: MIT
package classic

import (
	"lumiband/internal/audio"
	"lumiband/internal/clock"
	"lumiband/internal/palette"
)

var white = palette.Hex(0xffffff)

// fullFlash fills the strip white on a beat, then holds a random color whose
// value follows the smoothed level.
type fullFlash struct {
	hue uint16
	sat uint8
}

func (f *fullFlash) Reset(int, clock.Millis) {
	f.hue = 0
	f.sat = 255
}

func (f *fullFlash) Render(c *Canvas, snap *audio.Snapshot) {
	if snap.BeatDetected {
		f.hue = uint16(c.Random())<<8 | uint16(c.Random())
		f.sat = c.Random()/4 + 192
		c.Fill(white)
		return
	}
	lum := (255-palette.MinLEDLuma)*snap.SmoothedLevel + palette.MinLEDLuma
	c.Fill(palette.HSV{Hue: f.hue, Sat: f.sat, Val: uint8(lum)}.RGBA())
}

const (
	glitterHueKick  = 40000
	glitterHueDecay = 1000
)

// glitter drops a spark on every beat. Sparks keep their hue until
// overwritten, and the whole strip starts shifted in hue after a beat.
type glitter struct {
	stars    []uint16
	hueShift uint16
}

func (g *glitter) Reset(n int, _ clock.Millis) {
	g.stars = resize(g.stars, n)
	g.hueShift = 0
}

func (g *glitter) Render(c *Canvas, snap *audio.Snapshot) {
	n := len(g.stars)
	if n == 0 {
		return
	}

	sat := uint8(255)
	if snap.BeatDetected {
		g.hueShift = glitterHueKick
		pos := int(c.Random()) % n
		g.stars[pos] = uint16((43690 + uint32(snap.BeatCounter)) << 9)
		sat = 100
	}

	val := uint8(palette.MinLEDLuma + snap.SmoothedLevel*(255-palette.MinLEDLuma))
	for i, star := range g.stars {
		c.Set(i, palette.HSV{Hue: star + g.hueShift, Sat: sat, Val: val}.RGBA())
	}

	if g.hueShift > glitterHueDecay {
		g.hueShift -= glitterHueDecay
	} else {
		g.hueShift = 0
	}
}
