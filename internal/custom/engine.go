// SPDX-License-Identifier: MIT
/*
Package custom plays back uploaded effect matrices.

Each tick the Engine picks a row of the active slot and renders it. The
slot's settings byte selects how rows advance:

  - Pegel: the row follows the relative audio level
  - NextOnBeat: one row per detected beat
  - otherwise: one row per row interval

A fixed slot interval moves on to the next slot in every mode. Rendering
shows a solid white frame on beats when FlashOnBeat is set, otherwise the
stored row, scaled by the audio level when Orgel is set.
*/
package custom

import (
	"image/color"
	"math"
	"time"

	"lumiband/internal/audio"
	"lumiband/internal/clock"
	applog "lumiband/internal/log"
	"lumiband/internal/palette"
	"lumiband/internal/strip"
)

const (
	DefaultSlotInterval   = 3 * time.Minute
	DefaultRowInterval    = 500 * time.Millisecond
	DefaultMinRowInterval = 20 * time.Millisecond
)

var flashWhite = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Timing holds the engine's intervals.
type Timing struct {
	SlotInterval       time.Duration
	DefaultRowInterval time.Duration
	MinRowInterval     time.Duration
}

// DefaultTiming returns the stock intervals.
func DefaultTiming() Timing {
	return Timing{
		SlotInterval:       DefaultSlotInterval,
		DefaultRowInterval: DefaultRowInterval,
		MinRowInterval:     DefaultMinRowInterval,
	}
}

// withDefaults replaces non-positive fields.
func (t Timing) withDefaults() Timing {
	d := DefaultTiming()
	if t.SlotInterval <= 0 {
		t.SlotInterval = d.SlotInterval
	}
	if t.DefaultRowInterval <= 0 {
		t.DefaultRowInterval = d.DefaultRowInterval
	}
	if t.MinRowInterval <= 0 {
		t.MinRowInterval = d.MinRowInterval
	}
	return t
}

// Cursor is the playback position.
type Cursor struct {
	Slot       int
	Row        int
	Forward    bool // Bounce direction.
	RowTick    clock.Millis
	SlotTick   clock.Millis
	LastBright uint8
}

// Engine is the custom playback state machine. It is driven by the tick
// goroutine only.
type Engine struct {
	catalog *Catalog
	sink    strip.Sink
	timing  Timing

	count   int // Slots cycled, 1..catalog.Len().
	cur     Cursor
	renders int
}

// NewEngine creates an engine playing cat into sink. Call Init before the
// first Tick.
func NewEngine(cat *Catalog, sink strip.Sink, timing Timing) *Engine {
	return &Engine{
		catalog: cat,
		sink:    sink,
		timing:  timing.withDefaults(),
		count:   1,
		cur:     Cursor{Forward: true},
	}
}

// Init restarts playback at slot 0 cycling through count slots, clamped
// to the catalog size, and renders the first row.
func (e *Engine) Init(count int, snap *audio.Snapshot) {
	e.count = min(max(count, 1), e.catalog.Len())
	e.cur = Cursor{
		Forward:    true,
		RowTick:    snap.Now,
		SlotTick:   snap.Now,
		LastBright: e.brightness(),
	}
	applog.Debugf("Custom: playing %d slot(s), %d loaded", e.count, e.catalog.Loaded())
	e.render(snap)
}

// Tick advances the cursor per the active slot's settings and renders.
func (e *Engine) Tick(snap *audio.Snapshot) {
	now := snap.Now
	slot, loaded := e.catalog.Slot(e.cur.Slot)
	var flags Flags
	if loaded {
		flags = slot.Settings
	}
	slotDue := clock.Elapsed(now, e.cur.SlotTick, e.timing.SlotInterval)

	switch {
	case flags.Has(Pegel):
		e.cur.RowTick = now
		if slotDue {
			e.cur.SlotTick = now
			e.advanceSlot(snap)
			return
		}
		e.cur.Row = PegelRow(snap.RelativeLevel, e.catalog.Rows())
		e.render(snap)

	case flags.Has(NextOnBeat):
		e.cur.RowTick = now
		if slotDue {
			e.cur.SlotTick = now
			e.advanceSlot(snap)
			return
		}
		if snap.BeatDetected {
			e.advanceRow(flags, snap)
		} else {
			e.render(snap)
		}

	default:
		if slotDue {
			e.cur.SlotTick = now
			e.advanceSlot(snap)
			return
		}
		if clock.Elapsed(now, e.cur.RowTick, e.rowInterval(slot, loaded)) {
			e.cur.RowTick = now
			e.advanceRow(flags, snap)
			return
		}
		if b := e.brightness(); b != e.cur.LastBright || flags.Has(AudioReactive) {
			e.cur.LastBright = b
			e.render(snap)
		}
	}
}

// Cursor returns the current playback position.
func (e *Engine) Cursor() Cursor { return e.cur }

// Count is the number of slots being cycled.
func (e *Engine) Count() int { return e.count }

// Renders counts frames pushed to the sink since creation.
func (e *Engine) Renders() int { return e.renders }

// PegelRow maps a relative level onto a row index.
func PegelRow(level float64, rows int) int {
	if rows < 1 || !(level > 0) {
		return 0
	}
	return min(max(int(math.Round(level*float64(rows))), 0), rows-1)
}

// NextRow applies the row-advance rule. It returns the new row and bounce
// direction.
func NextRow(row int, forward bool, rows int, bounce bool) (int, bool) {
	if rows < 2 {
		return 0, forward
	}
	if !bounce {
		return (row + 1) % rows, forward
	}
	if forward {
		if row >= rows-1 {
			return rows - 2, false
		}
		return row + 1, true
	}
	if row <= 0 {
		return 1, true
	}
	return row - 1, false
}

func (e *Engine) rowInterval(slot *Slot, loaded bool) time.Duration {
	if loaded && slot.RowInterval >= e.timing.MinRowInterval {
		return slot.RowInterval
	}
	return e.timing.DefaultRowInterval
}

func (e *Engine) advanceRow(flags Flags, snap *audio.Snapshot) {
	e.cur.Row, e.cur.Forward = NextRow(e.cur.Row, e.cur.Forward, e.catalog.Rows(), flags.Has(Bounce))
	e.render(snap)
}

func (e *Engine) advanceSlot(snap *audio.Snapshot) {
	e.cur.Slot = (e.cur.Slot + 1) % e.count
	e.cur.Row = 0
	e.cur.Forward = true
	e.cur.RowTick = snap.Now
	applog.Debugf("Custom: slot %d", e.cur.Slot)
	e.render(snap)
}

func (e *Engine) render(snap *audio.Snapshot) {
	slot, ok := e.catalog.Slot(e.cur.Slot)
	if !ok {
		return
	}
	e.renders++
	n := e.sink.Len()

	if slot.Settings.Has(FlashOnBeat) && snap.BeatDetected {
		for i := range n {
			e.sink.SetPixel(i, flashWhite)
		}
		e.sink.Show()
		return
	}

	row := slot.Rows[min(e.cur.Row, len(slot.Rows)-1)]
	n = min(n, len(row))
	if slot.Settings.Has(Orgel) {
		luma := uint8((255-palette.MinLEDLuma)*snap.RelativeLevel + palette.MinLEDLuma)
		for i := range n {
			e.sink.SetPixel(i, strip.Scale(row[i].RGBA(), luma))
		}
	} else {
		for i := range n {
			e.sink.SetPixel(i, row[i].RGBA())
		}
	}
	e.sink.Show()
}

func (e *Engine) brightness() uint8 {
	if d, ok := e.sink.(strip.Dimmer); ok {
		return d.Brightness()
	}
	return 255
}
