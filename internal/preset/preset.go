// SPDX-License-Identifier: MIT
/*
Package preset holds the display modes of the strip and the Controller that
drives them.

Exactly one preset is active. The Controller ticks the audio tracker, then
the active preset, once per tick interval on a single goroutine. Switching
runs the new preset's Init before its first Tick.
*/
package preset

import (
	"time"

	"lumiband/internal/audio"
	"lumiband/internal/clock"
)

// Preset names.
const (
	NameStatic  = "static"
	NameDim     = "dim"
	NameLava    = "lava"
	NameParty   = "party"
	NameClassic = "classic"
	NameCustom  = "custom"
)

// Preset is one display mode.
type Preset interface {
	Name() string
	// Init discards all state left from a previous activation.
	Init(snap *audio.Snapshot)
	// Tick draws at most one frame.
	Tick(snap *audio.Snapshot)
}

// FreshAudio is implemented by presets that need the tracker reset when
// they are activated.
type FreshAudio interface {
	FreshAudio() bool
}

// gate opens at most once per interval.
type gate struct {
	every time.Duration
	last  clock.Millis
}

func (g *gate) reset(now clock.Millis) { g.last = now }

func (g *gate) open(now clock.Millis) bool {
	if !clock.Elapsed(now, g.last, g.every) {
		return false
	}
	g.last = now
	return true
}
