// SPDX-License-Identifier: MIT
package audio

import (
	"time"

	"lumiband/internal/clock"
)

// Snapshot is the audio state produced once per tick. Consumers receive a
// pointer to it and must treat it as read-only.
type Snapshot struct {
	Now clock.Millis // Time the window was sampled.

	Level         float64 // Peak-to-peak variation, decayed across ticks.
	AmbientFloor  float64 // Slow-decaying running maximum of Level.
	RelativeLevel float64 // Level / max(AmbientFloor, MinAmbientFloor), in [0,1].
	SmoothedLevel float64 // Single-pole low-pass of RelativeLevel, in [0,1].

	BeatDetected bool          // True for exactly one tick per beat.
	BeatCounter  uint8         // Incremented per beat, modulo BeatCountMax.
	BeatInterval time.Duration // Time between the last two beats.
	LastBeat     clock.Millis  // Time of the last beat (or of the last reset).

	SpinDirection float64 // ±1 on beat, decays toward 0 between beats.
	SpinPhase     float64 // Unbounded phase accumulator.
}

// SinceBeat returns how long ago the last beat fired, relative to the
// snapshot's own timestamp.
func (s *Snapshot) SinceBeat() time.Duration {
	return clock.Since(s.Now, s.LastBeat)
}
