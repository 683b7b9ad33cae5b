// SPDX-License-Identifier: MIT
/*
Package classic implements the nine built-in audio-reactive effects.

A Dispatcher owns one Renderer per Story and forwards each tick to the
selected one. Renderers keep their own working buffers, sized to the strip
when the dispatcher is initialized, and draw through a Canvas that applies
the current color mode.
*/
package classic

import (
	"fmt"
	"image/color"
	"math/rand/v2"

	"lumiband/internal/audio"
	"lumiband/internal/clock"
	applog "lumiband/internal/log"
	"lumiband/internal/palette"
	"lumiband/internal/strip"
)

// Story selects one of the classic renderers.
type Story uint8

const (
	StorySpinner Story = iota
	StoryShiftRing
	StoryFlash
	StoryInterval
	StoryMeter
	StorySplit
	StoryPolynom
	StoryDisco
	StoryGlitter

	StoryCount = 9
)

var storyNames = [StoryCount]string{
	"spinner", "shift-ring", "flash", "interval", "meter", "split", "polynom", "disco", "glitter",
}

// StoryOf brings any index into range by modulo.
func StoryOf(i int) Story {
	i %= StoryCount
	if i < 0 {
		i += StoryCount
	}
	return Story(i)
}

func (s Story) String() string {
	if s < StoryCount {
		return storyNames[s]
	}
	return fmt.Sprintf("story(%d)", uint8(s))
}

// Next returns the following story, wrapping after the last one.
func (s Story) Next() Story { return StoryOf(int(s) + 1) }

// Renderer draws one frame per tick. Reset discards all private state and
// sizes working buffers for a strip of n pixels.
type Renderer interface {
	Reset(n int, now clock.Millis)
	Render(c *Canvas, snap *audio.Snapshot)
}

// Canvas is what renderers draw on.
type Canvas struct {
	sink strip.Sink
	mode palette.Mode
	rng  *rand.Rand
}

// Len is the strip length.
func (c *Canvas) Len() int { return c.sink.Len() }

// Color maps a brightness value through the active color mode.
func (c *Canvas) Color(v float64, snap *audio.Snapshot) color.RGBA {
	return palette.Map(v, c.mode, snap).RGBA()
}

func (c *Canvas) Set(i int, col color.RGBA) { c.sink.SetPixel(i, col) }

func (c *Canvas) Fill(col color.RGBA) {
	for i := range c.sink.Len() {
		c.sink.SetPixel(i, col)
	}
}

// Random returns a uniformly distributed byte.
func (c *Canvas) Random() uint8 { return uint8(c.rng.UintN(256)) }

// Dispatcher is the classic effect engine.
type Dispatcher struct {
	sink      strip.Sink
	canvas    Canvas
	renderers [StoryCount]Renderer
	story     Story
}

// NewDispatcher creates a dispatcher drawing into sink. rng drives every
// random choice the renderers make.
func NewDispatcher(sink strip.Sink, rng *rand.Rand) *Dispatcher {
	return &Dispatcher{
		sink:   sink,
		canvas: Canvas{sink: sink, rng: rng},
		renderers: [StoryCount]Renderer{
			StorySpinner:   &spinner{},
			StoryShiftRing: &shiftRing{},
			StoryFlash:     &fullFlash{},
			StoryInterval:  rendererFunc(interval),
			StoryMeter:     rendererFunc(meter),
			StorySplit:     rendererFunc(split),
			StoryPolynom:   rendererFunc(polynom),
			StoryDisco:     &disco{},
			StoryGlitter:   &glitter{},
		},
	}
}

// Init resets the story and color pointers to zero and clears every
// renderer's private state. The caller resets the tracker alongside.
func (d *Dispatcher) Init(now clock.Millis) {
	d.story = StorySpinner
	d.canvas.mode = palette.ModeDrift
	n := d.sink.Len()
	for _, r := range d.renderers {
		r.Reset(n, now)
	}
	applog.Debugf("Classic: initialized for %d pixels", n)
}

// Tick renders one frame of the selected story and shows it.
func (d *Dispatcher) Tick(snap *audio.Snapshot) {
	d.renderers[d.story].Render(&d.canvas, snap)
	d.sink.Show()
}

func (d *Dispatcher) Story() Story { return d.story }

// SetStory selects a renderer. Out-of-range values wrap.
func (d *Dispatcher) SetStory(s Story) { d.story = StoryOf(int(s)) }

func (d *Dispatcher) ColorMode() palette.Mode { return d.canvas.mode }

// SetColorMode selects a palette. Out-of-range values wrap.
func (d *Dispatcher) SetColorMode(m palette.Mode) { d.canvas.mode = palette.ModeOf(int(m)) }

// rendererFunc adapts a stateless effect to Renderer.
type rendererFunc func(c *Canvas, snap *audio.Snapshot)

func (f rendererFunc) Reset(int, clock.Millis) {}

func (f rendererFunc) Render(c *Canvas, snap *audio.Snapshot) { f(c, snap) }
