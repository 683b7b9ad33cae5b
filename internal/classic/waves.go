// SPDX-License-Identifier: MIT
package classic

import (
	"image/color"
	"math"

	"lumiband/internal/audio"
	"lumiband/internal/clock"
	"lumiband/internal/palette"
)

var polynomFlash = palette.Hex(0xffffaf)

// pos01 maps pixel i onto [0,1] across the strip.
func pos01(i, n int) float64 {
	if n < 2 {
		return 0
	}
	return float64(i) / float64(n-1)
}

// interval draws a triangle pattern whose spacing breathes with the spin
// phase and whose origin moves one pixel per beat.
func interval(c *Canvas, snap *audio.Snapshot) {
	n := c.Len()
	if n == 0 {
		return
	}
	scale := 0.5 * palette.Triwave(snap.SpinPhase/200)
	origin := int(snap.BeatCounter) % n
	for i := range n {
		v := 0.5 + 0.5*palette.Triwave(float64(i-origin)*scale)
		c.Set(i, c.Color(v, snap))
	}
}

// meter is a VU meter growing outwards from the middle.
func meter(c *Canvas, snap *audio.Snapshot) {
	n := c.Len()
	on := c.Color(0.5+snap.SmoothedLevel/2, snap)
	off := c.Color(0.1, snap)
	level := int(uint8(snap.SmoothedLevel * snap.RelativeLevel * 255))

	for k := range n {
		div := 2
		if k%2 == 1 {
			div = -2
		}
		pos := n/2 + (k+1)/div
		step := 0
		if n > 1 {
			step = 255 * k / (n - 1)
		}
		if level >= step {
			c.Set(pos, on)
		} else {
			c.Set(pos, off)
		}
	}
}

// split bounces a triangle across halves or quarters of the strip,
// switching every eight beats.
func split(c *Canvas, snap *audio.Snapshot) {
	n := c.Len()
	beats := 0.0
	if snap.BeatCounter%2 == 1 {
		beats = 0.5
	}
	more := float64(1 + (snap.BeatCounter/8)%2)
	for i := range n {
		v := 0.45 + palette.Triwave(beats+0.5*snap.SmoothedLevel*more+more*float64(i)/float64(n))
		c.Set(i, c.Color(v, snap))
	}
}

// wave3 sums three triangle waves at different speeds.
func wave3(factor, x float64) float64 {
	const turn = 2 * math.Pi
	a0 := palette.Triwave(factor*2/turn + x)
	a1 := palette.Triwave(factor*-1.1/turn + x)
	a2 := palette.Triwave(factor*1.2/turn + x)
	return a0 + a1 + a2*a2
}

// polynom draws a slowly morphing sum of waves, flashing on beats.
func polynom(c *Canvas, snap *audio.Snapshot) {
	n := c.Len()
	for i := range n {
		if snap.BeatDetected {
			c.Set(i, polynomFlash)
			continue
		}
		v := math.Abs(wave3(snap.SpinPhase*0.15, pos01(i, n))) * 0.75
		c.Set(i, c.Color(v, snap))
	}
}

// disco lights every other pixel, swapping on each beat and picking a new
// color offset.
type disco struct {
	offset uint8
}

func (d *disco) Reset(int, clock.Millis) { d.offset = 0 }

func (d *disco) Render(c *Canvas, snap *audio.Snapshot) {
	n := c.Len()
	on := int(snap.BeatCounter % 2)
	if snap.BeatDetected {
		d.offset = c.Random()
	}
	base := 0.4 + 0.1*snap.RelativeLevel
	for i := range n {
		if (on+i)%2 == 0 {
			c.Set(i, color.RGBA{A: 0xff})
			continue
		}
		v := base + 0.5*palette.Triwave(float64(d.offset)/128+0.6*pos01(i, n))
		c.Set(i, c.Color(v, snap))
	}
}
