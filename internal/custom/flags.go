// SPDX-License-Identifier: MIT
package custom

import (
	"fmt"
	"strconv"
	"strings"
)

// Flags is the per-slot settings byte.
type Flags uint8

const (
	Orgel       Flags = 0x01 // Scale stored colors by the audio level.
	FlashOnBeat Flags = 0x02 // Solid white for the tick of a beat.
	NextOnBeat  Flags = 0x04 // Advance rows on beats instead of the row timer.
	Pegel       Flags = 0x08 // Pick the row from the audio level every tick.
	Bounce      Flags = 0x10 // Reverse at the ends of the matrix instead of wrapping.

	// AudioReactive flags require a redraw on every tick.
	AudioReactive = Orgel | FlashOnBeat
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{Orgel, "orgel"},
	{FlashOnBeat, "flash"},
	{NextOnBeat, "next-on-beat"},
	{Pegel, "pegel"},
	{Bounce, "bounce"},
}

// Has reports whether any of x is set.
func (f Flags) Has(x Flags) bool { return f&x != 0 }

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
			f &^= fn.flag
		}
	}
	if f != 0 {
		parts = append(parts, fmt.Sprintf("0x%02x", uint8(f)))
	}
	return strings.Join(parts, "|")
}

// ParseFlag resolves a single flag name, case-insensitively.
func ParseFlag(name string) (Flags, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, fn := range flagNames {
		if fn.name == name {
			return fn.flag, nil
		}
	}
	return 0, fmt.Errorf("unknown flag %q", name)
}

// ParseFlags resolves a "|" or "," separated list of flag names or
// numbers, the inverse of String.
func ParseFlags(s string) (Flags, error) {
	var f Flags
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		if strings.TrimSpace(part) == "" || strings.EqualFold(strings.TrimSpace(part), "none") {
			continue
		}
		if n, err := strconv.ParseUint(strings.TrimSpace(part), 0, 8); err == nil {
			f |= Flags(n)
			continue
		}
		x, err := ParseFlag(part)
		if err != nil {
			return 0, err
		}
		f |= x
	}
	return f, nil
}
