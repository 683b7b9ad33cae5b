// SPDX-License-Identifier: MIT
/*
Package palette maps a brightness value and the current audio snapshot to an
HSV color. Eight color modes are available, each a Palette strategy.

All modes share the same value channel: the input is clamped to [0,1],
squared, and scaled onto [MinLEDLuma, 255]. Modes only shape hue and
saturation, so brighter input never yields a darker pixel. Saturation drops
on beat ticks so colors flash towards white.
*/
package palette

import (
	"fmt"

	"lumiband/internal/audio"
)

// Mode selects one of the color palettes.
type Mode uint8

const (
	ModeDrift    Mode = iota // Level-driven hue sweep with saturation dip.
	ModeRed                  // Reds only.
	ModeOpposite             // Hue spread around the clock hue.
	ModeIce                  // Ramp with a pale middle band.
	ModeDissolve             // Level-shifted hue, full saturation.
	ModeBlue                 // Clock hue pulled back by value.
	ModeEmber                // Fixed red at the top end.
	ModeSpin                 // Hue wobble following the spin phase.

	ModeCount = 8
)

var modeNames = [ModeCount]string{"drift", "red", "opposite", "ice", "dissolve", "blue", "ember", "spin"}

// ModeOf brings any index into range by modulo.
func ModeOf(i int) Mode {
	i %= ModeCount
	if i < 0 {
		i += ModeCount
	}
	return Mode(i)
}

func (m Mode) String() string {
	if m < ModeCount {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// Next returns the following mode, wrapping after the last one.
func (m Mode) Next() Mode { return ModeOf(int(m) + 1) }

// Palette is a color mode.
type Palette interface {
	Map(value float64, snap *audio.Snapshot) HSV
}

// Base is the color every mode starts from before shaping it.
type Base struct {
	Value float64 // Clamped and squared input.
	HSV
}

// PaletteFunc adapts a shaping function to the Palette interface.
type PaletteFunc func(b Base, snap *audio.Snapshot) HSV

func (f PaletteFunc) Map(value float64, snap *audio.Snapshot) HSV {
	return f(baseOf(value, snap), snap)
}

var palettes = [ModeCount]Palette{
	ModeDrift:    PaletteFunc(drift),
	ModeRed:      PaletteFunc(red),
	ModeOpposite: PaletteFunc(opposite),
	ModeIce:      PaletteFunc(ice),
	ModeDissolve: PaletteFunc(dissolve),
	ModeBlue:     PaletteFunc(blue),
	ModeEmber:    PaletteFunc(ember),
	ModeSpin:     PaletteFunc(spin),
}

// Palette returns the strategy for m. Out-of-range modes wrap.
func (m Mode) Palette() Palette {
	return palettes[ModeOf(int(m))]
}

// Map colors value in mode m. It is a pure function of its arguments.
func Map(value float64, m Mode, snap *audio.Snapshot) HSV {
	return m.Palette().Map(value, snap)
}

func baseOf(value float64, snap *audio.Snapshot) Base {
	v := value
	if !(v > 0) {
		v = 0
	} else if v > 1 {
		v = 1
	}
	v *= v

	b := Base{Value: v}
	b.Hue = uint16(snap.Now >> 1)
	b.Sat = 255
	if snap.BeatDetected {
		b.Sat = 180
	}
	b.Val = uint8(MinLEDLuma + v*(255-MinLEDLuma))
	return b
}

func drift(b Base, snap *audio.Snapshot) HSV {
	c := b.HSV
	c.Hue = WrapHue(float64(b.Hue) + b.Value*30000 + snap.SmoothedLevel*40000)
	c.Sat = uint8(float64(b.Sat) - 35*b.Value)
	return c
}

func red(b Base, _ *audio.Snapshot) HSV {
	c := b.HSV
	c.Hue = WrapHue(64000 + float64(b.Val)*30)
	return c
}

func opposite(b Base, _ *audio.Snapshot) HSV {
	c := b.HSV
	c.Hue = WrapHue(float64(b.Hue) + float64(b.Val)*137)
	return c
}

func ice(b Base, snap *audio.Snapshot) HSV {
	c := b.HSV
	c.Sat = 255
	switch {
	case b.Val > 150:
		c.Hue = b.Hue + HueTurn/2
	case b.Val > 85:
		rel := snap.RelativeLevel
		c.Sat = 255 - uint8(rel*rel*255)
	}
	return c
}

func dissolve(b Base, snap *audio.Snapshot) HSV {
	c := b.HSV
	c.Sat = 255
	c.Hue = WrapHue(float64(b.Hue) + snap.RelativeLevel*255*150)
	return c
}

func blue(b Base, snap *audio.Snapshot) HSV {
	c := b.HSV
	c.Hue = WrapHue(float64(snap.Now/2) - float64(b.Val)*50)
	return c
}

func ember(b Base, _ *audio.Snapshot) HSV {
	c := b.HSV
	if b.Val >= 128 {
		c.Hue = 0
	} else {
		c.Hue = WrapHue(float64(b.Hue) * (1 - b.Value))
	}
	c.Sat = uint8(float64(b.Sat) - 60 + 60*b.Value)
	return c
}

func spin(b Base, snap *audio.Snapshot) HSV {
	c := b.HSV
	d := b.Value + snap.SpinPhase/40
	c.Hue = WrapHue(float64(b.Hue) + Triwave(d)*10000)
	c.Sat = uint8(200 + Triwave(b.Value+d)*55)
	return c
}
