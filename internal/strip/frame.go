// SPDX-License-Identifier: MIT
package strip

import (
	"encoding/json"
	"fmt"
	"image/color"
)

// Frame is one shown set of pixels, brightness already applied.
type Frame struct {
	Seq        uint64
	Brightness uint8
	Pixels     []color.RGBA
}

// Clone returns a deep copy.
func (f Frame) Clone() Frame {
	f.Pixels = append([]color.RGBA(nil), f.Pixels...)
	return f
}

// Hex returns the pixels as "#rrggbb" strings.
func (f Frame) Hex() []string {
	out := make([]string, len(f.Pixels))
	for i, c := range f.Pixels {
		out[i] = fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return out
}

type frameJSON struct {
	Type       string   `json:"type"`
	Seq        uint64   `json:"seq"`
	Brightness uint8    `json:"brightness"`
	Pixels     []string `json:"pixels"`
}

// MarshalJSON encodes the frame for browser previews.
func (f Frame) MarshalJSON() ([]byte, error) {
	return json.Marshal(frameJSON{
		Type:       "frame",
		Seq:        f.Seq,
		Brightness: f.Brightness,
		Pixels:     f.Hex(),
	})
}
