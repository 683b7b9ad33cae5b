// SPDX-License-Identifier: MIT
/*
Package audio turns microphone samples into the level and beat signal that
drives every LED preset, and provides the sample sources feeding it:
- Tracker: envelope follower with adaptive beat threshold and debounce
- Samplers: PortAudio microphone, WAV replay, plain functions
- Recorder: WAV capture of the exact samples the tracker consumed

Thread Safety:
- Tracker is owned by the single tick goroutine and is not locked
- MicSampler is fed from the PortAudio callback thread and locks its ring
*/
package audio

import (
	"math"
	"time"

	"lumiband/internal/clock"
	applog "lumiband/internal/log"

	"gonum.org/v1/gonum/floats"
)

const (
	DefaultWindowSamples = 160 // Samples per tick window (20 ms at 8 kHz).
	MinWindowSamples     = 2

	MinAmbientFloor = 8.0 // Lower bound of the level denominator.
	BeatCountMax    = 64

	LevelDecay      = 0.9025
	AmbientDecay    = 0.9959675
	SpinDecay       = 0.98
	SmoothingFactor = 0.1

	BeatDebounce = 333 * time.Millisecond
)

// Tracker is the audio envelope and beat detector. Call Tick once per loop
// iteration at a fixed cadence; rate limiting is the caller's job.
type Tracker struct {
	sampler Sampler
	clock   clock.Clock
	window  []float64 // Pre-allocated sample window, reused every tick.
	snap    Snapshot
}

// NewTracker creates a tracker reading windowSamples samples per tick. A
// window below MinWindowSamples falls back to DefaultWindowSamples.
func NewTracker(sampler Sampler, clk clock.Clock, windowSamples int) *Tracker {
	if windowSamples < MinWindowSamples {
		windowSamples = DefaultWindowSamples
	}
	t := &Tracker{
		sampler: sampler,
		clock:   clk,
		window:  make([]float64, windowSamples),
	}
	t.Reset()
	return t
}

// Reset returns the tracker to a clean baseline anchored at the current time.
func (t *Tracker) Reset() {
	now := t.clock.Now()
	t.snap = Snapshot{
		Now:           now,
		LastBeat:      now,
		SpinDirection: 1,
	}
}

// Snapshot returns the result of the most recent tick.
func (t *Tracker) Snapshot() Snapshot {
	return t.snap
}

// Tick samples one window and advances the envelope state.
func (t *Tracker) Tick() Snapshot {
	for i := range t.window {
		t.window[i] = float64(t.sampler.Sample())
	}
	variation := floats.Max(t.window) - floats.Min(t.window)
	return t.advance(t.clock.Now(), variation)
}

// advance applies one tick worth of decay, beat detection and smoothing for
// a window whose peak-to-peak variation is given.
func (t *Tracker) advance(now clock.Millis, variation float64) Snapshot {
	s := &t.snap
	s.Now = now

	s.Level *= LevelDecay
	s.AmbientFloor *= AmbientDecay

	newLevel := math.Max(variation, s.Level)
	threshold := beatThreshold(s.AmbientFloor)
	sinceBeat := clock.Since(now, s.LastBeat)

	s.BeatDetected = newLevel > s.Level+threshold && sinceBeat > BeatDebounce
	if s.BeatDetected {
		s.BeatCounter = (s.BeatCounter + 1) % BeatCountMax
		s.LastBeat = now
		s.BeatInterval = sinceBeat
		applog.Debugf("Tracker: beat %d after %s (level %.1f, floor %.1f)",
			s.BeatCounter, sinceBeat, newLevel, s.AmbientFloor)
	}

	s.Level = newLevel
	s.AmbientFloor = math.Max(s.AmbientFloor, newLevel)
	s.RelativeLevel = clamp01(newLevel / math.Max(s.AmbientFloor, MinAmbientFloor))

	if s.BeatDetected {
		if s.BeatCounter%8 > 3 {
			s.SpinDirection = 1
		} else {
			s.SpinDirection = -1
		}
	} else {
		s.SpinDirection *= SpinDecay
	}

	s.SmoothedLevel = clamp01((1-SmoothingFactor)*s.SmoothedLevel + SmoothingFactor*s.RelativeLevel)
	s.SpinPhase += s.SpinDirection * s.SmoothedLevel

	return *s
}

// beatThreshold is the jump above the decayed level needed to register a
// beat. It grows with the ambient floor in whole steps of four.
func beatThreshold(ambient float64) float64 {
	if ambient < 0 {
		ambient = 0
	}
	return 2 + float64(int64(math.Floor(ambient))/4)
}

// clamp01 also maps NaN to zero.
func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
