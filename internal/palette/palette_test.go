// SPDX-License-Identifier: MIT
package palette

import (
	"math"
	"testing"

	"lumiband/internal/audio"
)

func testSnapshot(beat bool) *audio.Snapshot {
	return &audio.Snapshot{
		Now:           123456,
		RelativeLevel: 0.6,
		SmoothedLevel: 0.4,
		BeatDetected:  beat,
		SpinPhase:     17.5,
	}
}

func TestMap_Deterministic(t *testing.T) {
	snap := testSnapshot(false)
	for m := Mode(0); m < ModeCount; m++ {
		for _, v := range []float64{0, 0.25, 0.5, 0.99, 1} {
			a := Map(v, m, snap)
			b := Map(v, m, snap)
			if a != b {
				t.Errorf("%s(%v): %+v != %+v", m, v, a, b)
			}
		}
	}
}

func TestMap_ValueMonotonicWithFloor(t *testing.T) {
	for _, beat := range []bool{false, true} {
		snap := testSnapshot(beat)
		for m := Mode(0); m < ModeCount; m++ {
			prev := -1
			for i := 0; i <= 100; i++ {
				c := Map(float64(i)/100, m, snap)
				if int(c.Val) < MinLEDLuma {
					t.Fatalf("%s: value %d below floor", m, c.Val)
				}
				if int(c.Val) < prev {
					t.Fatalf("%s: value dropped from %d to %d at %d%%", m, prev, c.Val, i)
				}
				prev = int(c.Val)
			}
			if got := Map(1, m, snap).Val; got != 255 {
				t.Errorf("%s: full input value = %d, want 255", m, got)
			}
		}
	}
}

func TestMap_ClampsInput(t *testing.T) {
	snap := testSnapshot(false)
	for m := Mode(0); m < ModeCount; m++ {
		if Map(-3, m, snap) != Map(0, m, snap) {
			t.Errorf("%s: negative input not clamped", m)
		}
		if Map(7, m, snap) != Map(1, m, snap) {
			t.Errorf("%s: large input not clamped", m)
		}
		if Map(math.NaN(), m, snap) != Map(0, m, snap) {
			t.Errorf("%s: NaN input not treated as zero", m)
		}
	}
}

func TestMap_BeatDesaturates(t *testing.T) {
	quiet, beat := testSnapshot(false), testSnapshot(true)
	// Modes that derive saturation from the beat-aware base.
	for _, m := range []Mode{ModeDrift, ModeRed, ModeOpposite, ModeBlue, ModeEmber} {
		for _, v := range []float64{0, 0.5, 1} {
			q, b := Map(v, m, quiet), Map(v, m, beat)
			if b.Sat >= q.Sat {
				t.Errorf("%s(%v): beat saturation %d not below %d", m, v, b.Sat, q.Sat)
			}
		}
	}
}

func TestModeOf(t *testing.T) {
	tests := []struct {
		in   int
		want Mode
	}{
		{0, ModeDrift},
		{7, ModeSpin},
		{8, ModeDrift},
		{13, ModeBlue},
		{-1, ModeSpin},
	}
	for _, tt := range tests {
		if got := ModeOf(tt.in); got != tt.want {
			t.Errorf("ModeOf(%d) = %s, want %s", tt.in, got, tt.want)
		}
	}
	if ModeSpin.Next() != ModeDrift {
		t.Errorf("Next should wrap after the last mode")
	}
}

func TestWrapHue(t *testing.T) {
	tests := []struct {
		in   float64
		want uint16
	}{
		{0, 0},
		{65535.9, 65535},
		{65536, 0},
		{70000, 70000 - 65536},
		{-1, 65535},
		{-65537, 65535},
		{math.Inf(1), 0},
	}
	for _, tt := range tests {
		if got := WrapHue(tt.in); got != tt.want {
			t.Errorf("WrapHue(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTriwave(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{0.25, 1},
		{0.5, 0},
		{0.75, -1},
		{1, 0},
		{-0.25, -1},
	}
	for _, tt := range tests {
		if got := Triwave(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Triwave(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHSV_RGBA(t *testing.T) {
	tests := []struct {
		name string
		in   HSV
		want [3]uint8
	}{
		{"Black", HSV{0, 255, 0}, [3]uint8{0, 0, 0}},
		{"White", HSV{0, 0, 255}, [3]uint8{255, 255, 255}},
		{"Red", HSV{0, 255, 255}, [3]uint8{255, 0, 0}},
		{"Green", HSV{HueTurn / 3, 255, 255}, [3]uint8{0, 255, 0}},
		{"Blue", HSV{2 * HueTurn / 3, 255, 255}, [3]uint8{0, 0, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.in.RGBA()
			got := [3]uint8{c.R, c.G, c.B}
			for i := range got {
				if d := int(got[i]) - int(tt.want[i]); d > 1 || d < -1 {
					t.Fatalf("RGBA() = %v, want %v", got, tt.want)
				}
			}
			if c.A != 0xff {
				t.Errorf("alpha = %d, want 255", c.A)
			}
		})
	}
}

func BenchmarkMap(b *testing.B) {
	snap := testSnapshot(false)
	for b.Loop() {
		for m := Mode(0); m < ModeCount; m++ {
			_ = Map(0.5, m, snap).RGBA()
		}
	}
}
