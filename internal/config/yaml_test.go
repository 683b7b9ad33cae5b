// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.Audio.WindowSamples != DefaultWindowSamples || cfg.Audio.TickInterval != DefaultTickInterval {
		t.Errorf("audio defaults not applied: %+v", cfg.Audio)
	}
	if cfg.Playback.SlotInterval != 3*time.Minute {
		t.Errorf("slot interval = %s, want 3m", cfg.Playback.SlotInterval)
	}
	if cfg.Preset != "classic" {
		t.Errorf("preset = %q, want classic", cfg.Preset)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("expected unmarshal error, got %v", err)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
preset: custom
strip:
  length: 42
  brightness: 128
playback:
  active_slots: 3
  slot_interval: 90s
  default_row_interval: 250ms
audio:
  source: wav
  wav_file: session.wav
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Preset != "custom" || cfg.Strip.Length != 42 || cfg.Strip.Brightness != 128 {
		t.Errorf("top-level values not loaded: %+v", cfg)
	}
	if cfg.Playback.SlotInterval != 90*time.Second || cfg.Playback.DefaultRowInterval != 250*time.Millisecond {
		t.Errorf("durations not parsed: %+v", cfg.Playback)
	}
	if cfg.Playback.Rows != DefaultRows {
		t.Errorf("unset rows should keep default, got %d", cfg.Playback.Rows)
	}
	if cfg.Audio.Source != SourceWav || cfg.Audio.TickInterval != DefaultTickInterval {
		t.Errorf("audio section merge failed: %+v", cfg.Audio)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ENV_PRESET", "party")
	t.Setenv("ENV_STRIP_LENGTH", "64")
	t.Setenv("ENV_BRIGHTNESS", "not-a-number")
	t.Setenv("ENV_UDP_ENABLED", "true")
	t.Setenv("ENV_UDP_SEND_INTERVAL", "50ms")

	cfg, err := LoadConfig(writeTempConfig(t, "preset: dim\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Preset != "party" || cfg.Strip.Length != 64 {
		t.Errorf("env overrides not applied: preset=%q length=%d", cfg.Preset, cfg.Strip.Length)
	}
	if cfg.Strip.Brightness != DefaultBrightness {
		t.Errorf("malformed env value should be ignored, brightness=%d", cfg.Strip.Brightness)
	}
	if !cfg.Transport.UDPEnabled || cfg.Transport.UDPSendInterval != 50*time.Millisecond {
		t.Errorf("udp overrides not applied: %+v", cfg.Transport)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		substr string
	}{
		{"Defaults", func(*Config) {}, ""},
		{"Unknown source", func(c *Config) { c.Audio.Source = "line" }, "audio.source"},
		{"Wav without file", func(c *Config) { c.Audio.Source = SourceWav }, "audio.wav_file"},
		{"Low sample rate", func(c *Config) { c.Audio.SampleRate = 100 }, "audio.sample_rate"},
		{"Tiny window", func(c *Config) { c.Audio.WindowSamples = 1 }, "audio.window_samples"},
		{"Zero strip", func(c *Config) { c.Strip.Length = 0 }, "strip.length"},
		{"Unknown preset", func(c *Config) { c.Preset = "disco" }, "preset"},
		{"Zero rows", func(c *Config) { c.Playback.Rows = 0 }, "playback.rows"},
		{"UDP without port", func(c *Config) {
			c.Transport.UDPEnabled = true
			c.Transport.UDPTargetAddress = "localhost"
		}, "udp_target_address"},
		{"Zero row interval is repaired later", func(c *Config) { c.Playback.DefaultRowInterval = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.substr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("error = %v, want substring %q", err, tt.substr)
			}
		})
	}
}
