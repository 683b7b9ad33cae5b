// SPDX-License-Identifier: MIT
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"lumiband/internal/audio"
	"lumiband/internal/clock"
	"lumiband/internal/config"
	applog "lumiband/internal/log"
	"lumiband/internal/preset"
	"lumiband/pkg/utils"
)

const (
	burstEvery  = 25 // Windows between bursts: 500 ms at 20 ms per tick.
	testWindows = 100
)

// writeBurstWav writes testWindows silent windows with a loud window every
// burstEvery windows, ending on the last one.
func writeBurstWav(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bursts.wav")
	rec := audio.NewRecorder(config.DefaultSampleRate)
	if err := rec.Start(path); err != nil {
		t.Fatal(err)
	}
	for w := range testWindows {
		burst := (w+1)%burstEvery == 0
		for i := range config.DefaultWindowSamples {
			switch {
			case !burst:
				rec.Write(512)
			case i%2 == 0:
				rec.Write(312)
			default:
				rec.Write(712)
			}
		}
	}
	if err := rec.Stop(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSimulate(t *testing.T) {
	path := writeBurstWav(t)
	cfg := config.NewConfig()
	cfg.Classic.Seed = 7

	report, err := simulate(cfg, path, 0)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if report.Ticks != testWindows {
		t.Errorf("ticks = %d, want %d", report.Ticks, testWindows)
	}
	if want := testWindows / burstEvery; report.Beats != want {
		t.Errorf("beats = %d, want %d", report.Beats, want)
	}
	if report.MeanInterval != 500*time.Millisecond {
		t.Errorf("mean interval = %s, want 500ms", report.MeanInterval)
	}
	if report.Frames != uint64(testWindows) {
		t.Errorf("frames = %d, want one per tick (%d)", report.Frames, testWindows)
	}
	if report.Preset != preset.NameClassic {
		t.Errorf("preset = %q, want %q", report.Preset, preset.NameClassic)
	}
}

func TestSimulateTickLimit(t *testing.T) {
	path := writeBurstWav(t)
	report, err := simulate(config.NewConfig(), path, 10)
	if err != nil {
		t.Fatal(err)
	}
	if report.Ticks != 10 || report.Beats != 0 {
		t.Errorf("got %d ticks and %d beats, want 10 and 0", report.Ticks, report.Beats)
	}
}

func TestSimulateCommand(t *testing.T) {
	path := writeBurstWav(t)
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"simulate", path, "--preset", "static"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("simulate command: %v", err)
	}

	for _, want := range []string{"preset:        static", "ticks:         100", "beats:         4"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestSimulateMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	root := NewRootCommand()
	root.SetArgs([]string{"simulate", "nope.wav"})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("expected an error for a missing wav file")
	}
}

func TestLoadConfigFlags(t *testing.T) {
	t.Cleanup(func() { applog.SetLevel(applog.LevelInfo) })

	dir := t.TempDir()
	path := filepath.Join(dir, "lumiband.yaml")
	yml := "preset: dim\nstrip:\n  length: 30\n  brightness: 100\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name           string
		args           []string
		wantPreset     string
		wantBrightness uint8
		wantErr        bool
	}{
		{"file only", []string{"--config", path}, "dim", 100, false},
		{"flag wins", []string{"--config", path, "--brightness", "10", "--preset", "lava"}, "lava", 10, false},
		{"unknown preset", []string{"--config", path, "--preset", "disco"}, "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &options{}
			root := newRootCommand(opts)
			if err := root.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			cfg, err := loadConfig(root, opts)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected a validation error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Preset != tt.wantPreset {
				t.Errorf("preset = %q, want %q", cfg.Preset, tt.wantPreset)
			}
			if cfg.Strip.Brightness != tt.wantBrightness {
				t.Errorf("brightness = %d, want %d", cfg.Strip.Brightness, tt.wantBrightness)
			}
			if cfg.Strip.Length != 30 {
				t.Errorf("length = %d, want 30", cfg.Strip.Length)
			}
		})
	}
}

func TestLoadConfigVerbose(t *testing.T) {
	t.Cleanup(func() { applog.SetLevel(applog.LevelInfo) })
	t.Chdir(t.TempDir())

	opts := &options{}
	root := newRootCommand(opts)
	if err := root.ParseFlags([]string{"-v"}); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(root, opts); err != nil {
		t.Fatal(err)
	}
	if !applog.Enabled(applog.LevelDebug) {
		t.Error("--verbose should enable debug logging")
	}
}

func TestRigRegistersEveryPreset(t *testing.T) {
	path := writeBurstWav(t)
	ws, err := audio.NewWavSampler(path)
	if err != nil {
		t.Fatal(err)
	}

	r, err := newRig(config.NewConfig(), ws, clock.NewManual(0))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if got := r.controller.Names(); !slices.Equal(got, config.PresetNames) {
		t.Errorf("presets = %v, want %v", got, config.PresetNames)
	}
	if r.catalog.Len() != config.DefaultSlots || r.catalog.Length() != config.DefaultStripLength {
		t.Errorf("catalog %d slots x %d pixels", r.catalog.Len(), r.catalog.Length())
	}
	for _, name := range config.PresetNames {
		if err := r.controller.Switch(name); err != nil {
			t.Errorf("Switch(%q): %v", name, err)
		}
		r.controller.Tick()
	}
}

func TestRigUnknownPreset(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Preset = "strobe"
	if _, err := newRig(cfg, &utils.VariationSampler{}, clock.NewManual(0)); err == nil {
		t.Error("expected an error for an unregistered preset")
	}
}
