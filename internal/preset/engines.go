// SPDX-License-Identifier: MIT
package preset

import (
	"lumiband/internal/audio"
	"lumiband/internal/classic"
	"lumiband/internal/custom"
	"lumiband/internal/palette"
)

// Classic runs the classic effect dispatcher.
type Classic struct {
	d *classic.Dispatcher

	// Applied once, on the first activation only.
	startStory classic.Story
	startMode  palette.Mode
	started    bool
}

// NewClassic wraps d. story and mode are selected on first activation;
// later activations start from story 0 and mode 0.
func NewClassic(d *classic.Dispatcher, story classic.Story, mode palette.Mode) *Classic {
	return &Classic{d: d, startStory: story, startMode: mode}
}

func (p *Classic) Name() string { return NameClassic }

func (p *Classic) FreshAudio() bool { return true }

func (p *Classic) Init(snap *audio.Snapshot) {
	p.d.Init(snap.Now)
	if !p.started {
		p.started = true
		p.d.SetStory(p.startStory)
		p.d.SetColorMode(p.startMode)
	}
}

func (p *Classic) Tick(snap *audio.Snapshot) { p.d.Tick(snap) }

// Dispatcher exposes the wrapped dispatcher for story and color changes.
func (p *Classic) Dispatcher() *classic.Dispatcher { return p.d }

// Custom plays the uploaded effect catalog.
type Custom struct {
	e     *custom.Engine
	count int
}

// NewCustom wraps e, cycling through count slots.
func NewCustom(e *custom.Engine, count int) *Custom {
	return &Custom{e: e, count: count}
}

func (p *Custom) Name() string { return NameCustom }

func (p *Custom) Init(snap *audio.Snapshot) { p.e.Init(p.count, snap) }

func (p *Custom) Tick(snap *audio.Snapshot) { p.e.Tick(snap) }

// SetCount changes the number of cycled slots. It takes effect at the next
// activation.
func (p *Custom) SetCount(n int) { p.count = n }

// Engine exposes the wrapped engine.
func (p *Custom) Engine() *custom.Engine { return p.e }
