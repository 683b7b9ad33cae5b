// SPDX-License-Identifier: MIT
package utils

import (
	"image/color"
	"os"
	"testing"
)

const testWindow = 160

var testSineWindow []uint16

func TestMain(m *testing.M) {
	testSineWindow = GenerateSineWindow(testWindow, 400, 4)
	os.Exit(m.Run())
}

func TestVariationSampler(t *testing.T) {
	tests := []struct {
		name string
		v    uint16
	}{
		{"Silence", 0},
		{"Odd variation", 7},
		{"Loud", 900},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &VariationSampler{}
			s.Set(tt.v)
			lo, hi := uint16(1023), uint16(0)
			for range testWindow {
				v := s.Sample()
				lo = min(lo, v)
				hi = max(hi, v)
			}
			if hi-lo != tt.v {
				t.Errorf("variation = %d, want %d", hi-lo, tt.v)
			}
		})
	}
}

func TestGenerateSineWindow(t *testing.T) {
	if len(testSineWindow) != testWindow {
		t.Fatalf("len = %d, want %d", len(testSineWindow), testWindow)
	}
	lo, hi := uint16(1023), uint16(0)
	for _, v := range testSineWindow {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if span := int(hi) - int(lo); span < 395 || span > 401 {
		t.Errorf("peak-to-peak = %d, want ~400", span)
	}
}

func TestRecordingSink(t *testing.T) {
	s := NewRecordingSink(3)
	red := color.RGBA{R: 255, A: 255}

	s.SetPixel(0, red)
	s.SetPixel(3, red)
	s.SetPixel(-1, red)
	if s.OutOfRange != 2 {
		t.Errorf("OutOfRange = %d, want 2", s.OutOfRange)
	}
	if s.Shows != 0 || s.Shown[0] == red {
		t.Error("pixels must not be visible before Show")
	}

	s.Show()
	if s.Shows != 1 || s.Shown[0] != red {
		t.Errorf("after Show: shows=%d pixel=%v", s.Shows, s.Shown[0])
	}
	if s.AllEqual(red) {
		t.Error("AllEqual should be false for a partly set frame")
	}
}
