// SPDX-License-Identifier: MIT
package preset

import (
	"image/color"
	"math"
	"time"

	"lumiband/internal/audio"
	"lumiband/internal/palette"
	"lumiband/internal/strip"
)

// Static shows solid white, redrawn at 10 Hz so brightness changes show up.
type Static struct {
	sink strip.Sink
	gate gate
}

func NewStatic(sink strip.Sink) *Static {
	return &Static{sink: sink, gate: gate{every: 100 * time.Millisecond}}
}

func (p *Static) Name() string { return NameStatic }

func (p *Static) Init(snap *audio.Snapshot) {
	p.draw()
	p.gate.reset(snap.Now)
}

func (p *Static) Tick(snap *audio.Snapshot) {
	if p.gate.open(snap.Now) {
		p.draw()
	}
}

func (p *Static) draw() {
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for i := range p.sink.Len() {
		p.sink.SetPixel(i, white)
	}
	p.sink.Show()
}

// wave is a slow sine travelling along the strip.
type wave struct {
	sink  strip.Sink
	gate  gate
	phase float64
	step  float64
}

func (w *wave) init(snap *audio.Snapshot) {
	w.phase = 0
	w.gate.reset(snap.Now)
}

// advance moves the phase and calls px for every pixel with its sine.
func (w *wave) advance(snap *audio.Snapshot, px func(s float64) color.RGBA) {
	if !w.gate.open(snap.Now) {
		return
	}
	w.phase += w.step
	if w.phase > 2*math.Pi {
		w.phase -= 2 * math.Pi
	}
	n := w.sink.Len()
	for i := range n {
		w.sink.SetPixel(i, px(math.Sin(w.phase+float64(i)*math.Pi/float64(n))))
	}
	w.sink.Show()
}

// Dim is a soft amber candle glow.
type Dim struct{ wave }

func NewDim(sink strip.Sink) *Dim {
	return &Dim{wave{sink: sink, gate: gate{every: 50 * time.Millisecond}, step: 0.015}}
}

func (p *Dim) Name() string { return NameDim }

func (p *Dim) Init(snap *audio.Snapshot) { p.init(snap) }

func (p *Dim) Tick(snap *audio.Snapshot) {
	p.advance(snap, func(s float64) color.RGBA {
		w := 0.75 + 0.25*s
		return color.RGBA{R: uint8(139 * w), G: uint8(90 * w), B: uint8(20 * w), A: 255}
	})
}

// Lava pulses red and orange.
type Lava struct{ wave }

func NewLava(sink strip.Sink) *Lava {
	return &Lava{wave{sink: sink, gate: gate{every: 30 * time.Millisecond}, step: 0.04}}
}

func (p *Lava) Name() string { return NameLava }

func (p *Lava) Init(snap *audio.Snapshot) { p.init(snap) }

func (p *Lava) Tick(snap *audio.Snapshot) {
	p.advance(snap, func(s float64) color.RGBA {
		w := 0.5 + 0.5*s
		return color.RGBA{R: 200 + uint8(w*55), G: uint8(w * 60), A: 255}
	})
}

// Party cycles a rainbow along the strip.
type Party struct {
	sink strip.Sink
	gate gate
	hue  uint16
}

const partyHueStep = 512

func NewParty(sink strip.Sink) *Party {
	return &Party{sink: sink, gate: gate{every: 20 * time.Millisecond}}
}

func (p *Party) Name() string { return NameParty }

func (p *Party) Init(snap *audio.Snapshot) {
	p.hue = 0
	p.gate.reset(snap.Now)
}

func (p *Party) Tick(snap *audio.Snapshot) {
	if !p.gate.open(snap.Now) {
		return
	}
	p.hue += partyHueStep
	n := p.sink.Len()
	for i := range n {
		h := p.hue + uint16(i*palette.HueTurn/n)
		p.sink.SetPixel(i, palette.HSV{Hue: h, Sat: 255, Val: 255}.RGBA())
	}
	p.sink.Show()
}
