// SPDX-License-Identifier: MIT
//
// Package clock provides the wrapping millisecond time base used by the tick
// loop. All comparisons go through Since, which subtracts with unsigned
// semantics so that intervals stay correct when the counter wraps.
package clock

import (
	"sync/atomic"
	"time"
)

// Millis is a 32-bit millisecond counter. It wraps roughly every 49.7 days.
type Millis uint32

// Clock is a monotonic millisecond source.
type Clock interface {
	Now() Millis
}

// Since returns the time elapsed from then to now, tolerating a single
// wraparound of the counter between the two readings.
func Since(now, then Millis) time.Duration {
	return time.Duration(now-then) * time.Millisecond
}

// Elapsed reports whether at least d has passed between then and now.
func Elapsed(now, then Millis, d time.Duration) bool {
	return Since(now, then) >= d
}

// System reads the process monotonic clock.
type System struct {
	start time.Time
}

// NewSystem returns a clock whose zero is the moment of the call.
func NewSystem() *System {
	return &System{start: time.Now()}
}

func (s *System) Now() Millis {
	return Millis(uint64(time.Since(s.start) / time.Millisecond))
}

// Manual is a clock that only moves when told to. It is safe to read from
// other goroutines while the owner advances it.
type Manual struct {
	now atomic.Uint32
}

// NewManual returns a manual clock set to start.
func NewManual(start Millis) *Manual {
	m := &Manual{}
	m.now.Store(uint32(start))
	return m
}

func (m *Manual) Now() Millis {
	return Millis(m.now.Load())
}

// Advance moves the clock forward by d, truncated to whole milliseconds.
func (m *Manual) Advance(d time.Duration) {
	m.now.Add(uint32(d / time.Millisecond))
}

// Set jumps the clock to t.
func (m *Manual) Set(t Millis) {
	m.now.Store(uint32(t))
}

var (
	_ Clock = (*System)(nil)
	_ Clock = (*Manual)(nil)
)
