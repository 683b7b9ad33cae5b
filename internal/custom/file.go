// SPDX-License-Identifier: MIT
package custom

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	applog "lumiband/internal/log"
	"lumiband/internal/palette"

	"gopkg.in/yaml.v3"
)

// SlotFile is the on-disk form of a slot:
//
//	name: sunrise
//	slot: 0                    # optional, defaults to file order
//	settings: orgel|bounce     # names, a list of names, or the raw byte
//	row_ms: 250
//	rows:
//	  - ["f800", "07e0", "#0000ff"]
//
// Colors are 4-digit RGB565 hex or "#rrggbb".
type SlotFile struct {
	Name     string     `yaml:"name"`
	Slot     *int       `yaml:"slot"`
	Settings Flags      `yaml:"settings"`
	RowMs    int        `yaml:"row_ms"`
	Rows     [][]RGB565 `yaml:"rows"`
}

// UnmarshalYAML accepts an integer, a flag expression or a list of names.
func (f *Flags) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if n, err := strconv.ParseUint(value.Value, 0, 8); err == nil {
			*f = Flags(n)
			return nil
		}
		parsed, err := ParseFlags(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*f = parsed
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := value.Decode(&names); err != nil {
			return err
		}
		var out Flags
		for _, name := range names {
			x, err := ParseFlag(name)
			if err != nil {
				return fmt.Errorf("line %d: %w", value.Line, err)
			}
			out |= x
		}
		*f = out
		return nil
	}
	return fmt.Errorf("line %d: settings must be a number, a name or a list of names", value.Line)
}

// MarshalYAML writes the flag expression.
func (f Flags) MarshalYAML() (any, error) {
	return f.String(), nil
}

// UnmarshalYAML parses "f800", "0xf800" or "#rrggbb".
func (c *RGB565) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParseColor(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*c = v
	return nil
}

// MarshalYAML writes 4-digit hex.
func (c RGB565) MarshalYAML() (any, error) {
	return fmt.Sprintf("%04x", uint16(c)), nil
}

// ParseColor parses one matrix color.
func ParseColor(s string) (RGB565, error) {
	s = strings.TrimSpace(s)
	if rgb, ok := strings.CutPrefix(s, "#"); ok {
		if len(rgb) != 6 {
			return 0, fmt.Errorf("color %q: want #rrggbb", s)
		}
		v, err := strconv.ParseUint(rgb, 16, 32)
		if err != nil {
			return 0, fmt.Errorf("color %q: %w", s, err)
		}
		return ToRGB565(palette.Hex(uint32(v))), nil
	}
	hex := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(hex, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	return RGB565(v), nil
}

// ToSlot converts the file to a Slot.
func (f *SlotFile) ToSlot() *Slot {
	return &Slot{
		Name:        f.Name,
		Settings:    f.Settings,
		RowInterval: time.Duration(f.RowMs) * time.Millisecond,
		Rows:        f.Rows,
	}
}

// ReadSlotFile parses one slot file.
func ReadSlotFile(path string) (*SlotFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read effect file: %w", err)
	}
	var f SlotFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse effect file %s: %w", filepath.Base(path), err)
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &f, nil
}

// WriteSlotFile stores s at path.
func WriteSlotFile(path string, index int, s *Slot) error {
	f := SlotFile{
		Name:     s.Name,
		Slot:     &index,
		Settings: s.Settings,
		RowMs:    int(s.RowInterval / time.Millisecond),
		Rows:     s.Rows,
	}
	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("failed to encode effect %q: %w", s.Name, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write effect file: %w", err)
	}
	return nil
}

// LoadDir loads every *.yaml and *.yml file of dir into cat, in name order.
// Files without a slot index take the next free position. It returns the
// number of slots loaded. Bad files are reported together after the rest
// are loaded.
func LoadDir(dir string, cat *Catalog) (int, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		m, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return 0, fmt.Errorf("failed to list effects: %w", err)
		}
		paths = append(paths, m...)
	}
	slices.Sort(paths)

	var errs []error
	loaded, next := 0, 0
	for _, path := range paths {
		f, err := ReadSlotFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		idx := next
		if f.Slot != nil {
			idx = *f.Slot
		}
		if err := cat.Load(idx, f.ToSlot()); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(path), err))
			continue
		}
		applog.Infof("Custom: loaded %q into slot %d (%s)", f.Name, idx, f.Settings)
		loaded++
		next = idx + 1
	}
	return loaded, errors.Join(errs...)
}
