// SPDX-License-Identifier: MIT
package classic

import (
	"math"
	"time"

	"lumiband/internal/audio"
	"lumiband/internal/clock"
	"lumiband/internal/palette"
)

const (
	spinnerDots      = 2
	spinnerPeriod    = 500 // ms per revolution until the first beat
	spinnerMaxPeriod = math.MaxUint16
	spinnerIdle      = 10 * time.Second // Quiet time after which dots slow down.
)

// spinner runs two dots around the strip, each with its own period taken
// from a recent beat interval.
type spinner struct {
	pos        [spinnerDots]float64
	period     [spinnerDots]int // ms per revolution
	dir        [spinnerDots]int
	lastSpin   clock.Millis
	lastDouble clock.Millis
	stars      []uint16
}

func (s *spinner) Reset(n int, now clock.Millis) {
	s.stars = resize(s.stars, n)
	s.lastSpin = now
	s.lastDouble = now
	for i := range spinnerDots {
		s.pos[i] = 0
		s.period[i] = spinnerPeriod
		s.dir[i] = 1
		if i%2 == 1 {
			s.dir[i] = -1
		}
	}
}

func (s *spinner) Render(c *Canvas, snap *audio.Snapshot) {
	n := len(s.stars)
	if n == 0 {
		return
	}

	// Halve the speed after a long quiet stretch, at most once per stretch.
	quiet := min(snap.SinceBeat(), clock.Since(snap.Now, s.lastDouble))
	slowDown := quiet > spinnerIdle

	if snap.BeatDetected {
		ms := int(snap.BeatInterval / time.Millisecond)
		s.period[int(c.Random())%spinnerDots] = min(max(ms, 1), spinnerMaxPeriod)
	}
	clear(s.stars)

	dt := float64(clock.Since(snap.Now, s.lastSpin) / time.Millisecond)
	for i := range spinnerDots {
		if slowDown {
			s.period[i] = min(s.period[i]*2, spinnerMaxPeriod)
			s.lastDouble = snap.Now
		}
		p := palette.Mod(s.pos[i]+float64(n)*dt/float64(s.dir[i]*s.period[i]), float64(n))
		s.pos[i] = p
		s.stars[int(p)%n] = 255
	}

	for i, star := range s.stars {
		v := 0.3
		if star > 0 {
			v = snap.RelativeLevel*0.3 + 0.7
		}
		c.Set(i, c.Color(v, snap))
	}
	s.lastSpin = snap.Now
}

func resize(buf []uint16, n int) []uint16 {
	if cap(buf) < n {
		return make([]uint16, n)
	}
	buf = buf[:n]
	clear(buf)
	return buf
}
