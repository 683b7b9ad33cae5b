// SPDX-License-Identifier: MIT
package custom

import (
	"errors"
	"fmt"
	"image/color"
	"time"
)

// ErrSlotOutOfRange is returned when a slot index is outside the catalog.
var ErrSlotOutOfRange = errors.New("slot out of range")

// RGB565 is a packed 16-bit color as stored in effect matrices.
type RGB565 uint16

// RGBA expands the color to 8 bits per channel, replicating the high bits
// into the low ones so that full scale maps to 255.
func (c RGB565) RGBA() color.RGBA {
	r := uint8(c>>11) & 0x1f
	g := uint8(c>>5) & 0x3f
	b := uint8(c) & 0x1f
	return color.RGBA{
		R: r<<3 | r>>2,
		G: g<<2 | g>>4,
		B: b<<3 | b>>2,
		A: 0xff,
	}
}

// ToRGB565 packs an 8-bit color, dropping the low bits.
func ToRGB565(c color.RGBA) RGB565 {
	return RGB565(uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3))
}

// Slot is one effect: a matrix of rows by pixels plus its settings.
type Slot struct {
	Name        string
	Settings    Flags
	RowInterval time.Duration // Zero or below the engine minimum selects the default.
	Rows        [][]RGB565
}

// Catalog holds the uploaded effects. Every loaded slot is normalized to
// exactly Rows rows of Length pixels.
type Catalog struct {
	rows   int
	length int
	slots  []*Slot
}

// NewCatalog creates an empty catalog. Non-positive sizes are raised to 1.
func NewCatalog(slots, rows, length int) *Catalog {
	return &Catalog{
		rows:   max(rows, 1),
		length: max(length, 1),
		slots:  make([]*Slot, max(slots, 1)),
	}
}

// Len is the number of slots, loaded or not.
func (c *Catalog) Len() int { return len(c.slots) }

// Rows is the row count of every slot.
func (c *Catalog) Rows() int { return c.rows }

// Length is the pixel count of every row.
func (c *Catalog) Length() int { return c.length }

// Load stores s at index i. Short rows and missing rows are padded with
// black, extra pixels and rows are dropped. s is copied.
func (c *Catalog) Load(i int, s *Slot) error {
	if i < 0 || i >= len(c.slots) {
		return fmt.Errorf("load slot %d of %d: %w", i, len(c.slots), ErrSlotOutOfRange)
	}
	if s == nil {
		return errors.New("load slot: nil slot")
	}
	ns := &Slot{
		Name:        s.Name,
		Settings:    s.Settings,
		RowInterval: s.RowInterval,
		Rows:        make([][]RGB565, c.rows),
	}
	for r := range ns.Rows {
		ns.Rows[r] = make([]RGB565, c.length)
		if r < len(s.Rows) {
			copy(ns.Rows[r], s.Rows[r])
		}
	}
	c.slots[i] = ns
	return nil
}

// Unload clears slot i.
func (c *Catalog) Unload(i int) error {
	if i < 0 || i >= len(c.slots) {
		return fmt.Errorf("unload slot %d of %d: %w", i, len(c.slots), ErrSlotOutOfRange)
	}
	c.slots[i] = nil
	return nil
}

// Slot returns the effect at i and whether it is loaded.
func (c *Catalog) Slot(i int) (*Slot, bool) {
	if i < 0 || i >= len(c.slots) || c.slots[i] == nil {
		return nil, false
	}
	return c.slots[i], true
}

// Loaded counts the loaded slots.
func (c *Catalog) Loaded() int {
	n := 0
	for _, s := range c.slots {
		if s != nil {
			n++
		}
	}
	return n
}
