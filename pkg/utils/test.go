// Package utils holds fakes and signal generators shared by package tests.
package utils

import (
	"image/color"
	"math"
)

// MidScale is the resting value of a raw sample (silence).
const MidScale = 512

// VariationSampler alternates around MidScale so that any window of two or
// more samples has a peak-to-peak variation of exactly V.
type VariationSampler struct {
	V     uint16
	phase bool
}

// Set changes the variation produced from the next sample on.
func (s *VariationSampler) Set(v uint16) {
	s.V = v
}

func (s *VariationSampler) Sample() uint16 {
	s.phase = !s.phase
	lo := MidScale - int(s.V)/2
	if s.phase {
		return uint16(lo)
	}
	return uint16(lo + int(s.V))
}

// GenerateSineWindow returns n raw samples of a sine with the given
// peak-to-peak amplitude centred on MidScale.
func GenerateSineWindow(n int, amplitude float64, cycles float64) []uint16 {
	out := make([]uint16, n)
	for i := range out {
		v := MidScale + amplitude/2*math.Sin(2*math.Pi*cycles*float64(i)/float64(n))
		out[i] = uint16(math.Round(math.Max(0, math.Min(1023, v))))
	}
	return out
}

// RecordingSink is an in-memory pixel sink that counts frames.
type RecordingSink struct {
	Pixels     []color.RGBA
	Shown      []color.RGBA // Copy of Pixels at the last Show.
	Shows      int
	Bright     uint8
	OutOfRange int
}

// NewRecordingSink returns a sink of n pixels at full brightness.
func NewRecordingSink(n int) *RecordingSink {
	return &RecordingSink{
		Pixels: make([]color.RGBA, n),
		Shown:  make([]color.RGBA, n),
		Bright: 255,
	}
}

func (s *RecordingSink) Len() int { return len(s.Pixels) }

func (s *RecordingSink) SetPixel(i int, c color.RGBA) {
	if i < 0 || i >= len(s.Pixels) {
		s.OutOfRange++
		return
	}
	s.Pixels[i] = c
}

func (s *RecordingSink) Show() {
	copy(s.Shown, s.Pixels)
	s.Shows++
}

func (s *RecordingSink) Brightness() uint8 { return s.Bright }

func (s *RecordingSink) SetBrightness(b uint8) { s.Bright = b }

// AllEqual reports whether every shown pixel equals c.
func (s *RecordingSink) AllEqual(c color.RGBA) bool {
	for _, p := range s.Shown {
		if p != c {
			return false
		}
	}
	return true
}
