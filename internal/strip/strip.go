// SPDX-License-Identifier: MIT
/*
Package strip is the pixel sink the presets draw into.

A Sink stages colors with SetPixel and displays them atomically with Show.
Strip is the in-memory implementation used by the engine: it applies the
master brightness when a frame is shown, keeps the latest frame for
pull-based readers and pushes each frame to registered outputs.

Thread Safety:
- SetPixel and Show are called from the tick goroutine only
- Latest, Brightness and SetBrightness are safe from any goroutine
*/
package strip

import (
	"image/color"
	"sync"
	"sync/atomic"

	applog "lumiband/internal/log"
)

// Sink is the display contract of the core.
type Sink interface {
	Len() int
	SetPixel(i int, c color.RGBA)
	Show()
}

// Dimmer is implemented by sinks with a master brightness.
type Dimmer interface {
	Brightness() uint8
	SetBrightness(b uint8)
}

// Output receives every shown frame. transport.Transport satisfies it.
type Output interface {
	Send(data any) error
}

// Strip is a Sink backed by memory.
type Strip struct {
	staged []color.RGBA
	bright atomic.Uint32

	mu     sync.RWMutex
	latest Frame

	outputs []Output
}

// New creates a strip of length pixels. A non-positive length is raised
// to one pixel.
func New(length int, brightness uint8) *Strip {
	if length < 1 {
		applog.Warnf("Strip: invalid length %d, using 1", length)
		length = 1
	}
	s := &Strip{
		staged: make([]color.RGBA, length),
		latest: Frame{Pixels: make([]color.RGBA, length)},
	}
	s.bright.Store(uint32(brightness))
	return s
}

// AddOutput registers o for every subsequent frame. Call before the tick
// loop starts.
func (s *Strip) AddOutput(o Output) {
	s.outputs = append(s.outputs, o)
}

func (s *Strip) Len() int { return len(s.staged) }

// SetPixel stages a color. Indices outside the strip are ignored.
func (s *Strip) SetPixel(i int, c color.RGBA) {
	if i < 0 || i >= len(s.staged) {
		return
	}
	s.staged[i] = c
}

// Pixel returns the staged color at i, before brightness.
func (s *Strip) Pixel(i int) color.RGBA {
	if i < 0 || i >= len(s.staged) {
		return color.RGBA{}
	}
	return s.staged[i]
}

// Fill stages c on every pixel.
func (s *Strip) Fill(c color.RGBA) {
	for i := range s.staged {
		s.staged[i] = c
	}
}

// Show publishes the staged pixels as one frame, scaled by the master
// brightness. Staged colors are kept so the next frame can build on them.
func (s *Strip) Show() {
	b := s.Brightness()

	s.mu.Lock()
	for i, c := range s.staged {
		s.latest.Pixels[i] = Scale(c, b)
	}
	s.latest.Seq++
	s.latest.Brightness = b
	var out Frame
	if len(s.outputs) > 0 {
		out = s.latest.Clone()
	}
	s.mu.Unlock()

	for _, o := range s.outputs {
		if err := o.Send(out); err != nil {
			applog.Debugf("Strip: output dropped frame %d: %v", out.Seq, err)
		}
	}
}

func (s *Strip) Brightness() uint8 { return uint8(s.bright.Load()) }

// SetBrightness takes effect at the next Show.
func (s *Strip) SetBrightness(b uint8) { s.bright.Store(uint32(b)) }

// Latest returns a copy of the most recently shown frame.
func (s *Strip) Latest() Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest.Clone()
}

// LatestInto copies the most recently shown pixels into dst and returns the
// frame sequence number. It does not allocate.
func (s *Strip) LatestInto(dst []color.RGBA) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copy(dst, s.latest.Pixels)
	return s.latest.Seq
}

// Scale multiplies each channel by b/255.
func Scale(c color.RGBA, b uint8) color.RGBA {
	if b == 255 {
		return c
	}
	return color.RGBA{
		R: uint8(uint16(c.R) * uint16(b) / 255),
		G: uint8(uint16(c.G) * uint16(b) / 255),
		B: uint8(uint16(c.B) * uint16(b) / 255),
		A: c.A,
	}
}

// Ensure Strip satisfies the sink contracts at compile time.
var (
	_ Sink   = (*Strip)(nil)
	_ Dimmer = (*Strip)(nil)
)
