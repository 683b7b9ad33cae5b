// SPDX-License-Identifier: MIT
package classic

import (
	"image/color"

	"lumiband/internal/audio"
	"lumiband/internal/clock"
	"lumiband/internal/palette"
)

// Flash color pushed into the ring on every fourth beat.
var shiftFlash = palette.Hex(0xafaf6f)

const (
	shiftLeft = iota
	shiftRight
	shiftHalves
	shiftQuarters
)

// shiftRing scrolls the strip one pixel per tick and feeds the level color
// in at the open end. The scroll mode changes at random on every fourth beat.
type shiftRing struct {
	ring []color.RGBA
	mode uint8
}

func (s *shiftRing) Reset(n int, _ clock.Millis) {
	if cap(s.ring) < n {
		s.ring = make([]color.RGBA, n)
	}
	s.ring = s.ring[:n]
	clear(s.ring)
	s.mode = shiftLeft
}

func (s *shiftRing) Render(c *Canvas, snap *audio.Snapshot) {
	n := len(s.ring)
	if n == 0 {
		return
	}

	var col color.RGBA
	if snap.BeatDetected && snap.BeatCounter%4 == 1 {
		s.mode = c.Random() % 4
		col = shiftFlash
	} else {
		col = c.Color(snap.RelativeLevel, snap)
	}

	switch s.mode {
	case shiftLeft:
		copy(s.ring, s.ring[1:])
		s.ring[n-1] = col
	case shiftRight:
		copy(s.ring[1:], s.ring[:n-1])
		s.ring[0] = col
	default:
		s.ring[n-1] = col
		half := n / 2
		if half > 1 {
			copy(s.ring[1:half], s.ring[:half-1])
		}
		s.ring[0] = col
		mirror(s.ring, s.mode == shiftHalves)
	}

	for i, px := range s.ring {
		c.Set(i, px)
	}
}

// mirror copies the first half onto the second, in reverse. With quarter
// set the first quarter is mirrored into the first half beforehand.
func mirror(px []color.RGBA, quarter bool) {
	n := len(px)
	if quarter {
		for i := range n / 4 {
			px[n/2-2-i] = px[i]
		}
	}
	for i := range n / 2 {
		px[n-2-i] = px[i]
	}
}
