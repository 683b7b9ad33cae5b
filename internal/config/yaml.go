// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Known preset names, in the order the controller registers them.
var PresetNames = []string{"static", "dim", "lava", "party", "classic", "custom"}

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations ("config.yaml"). If no file is found, it uses built-in
// defaults. After loading defaults or from file, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		candidates := []string{"config.yaml", "lumiband.yaml"}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the outer layers cannot run with. Values the
// core can repair on its own (row intervals, out-of-range story or color
// indices) are left alone.
func (c *Config) Validate() error {
	var errs []error

	switch c.Audio.Source {
	case SourceMic:
		if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
			errs = append(errs, fmt.Errorf("audio.sample_rate %.0f outside [%d, %d]", c.Audio.SampleRate, MinSampleRate, MaxSampleRate))
		}
		if c.Audio.FramesPerBuffer < 1 {
			errs = append(errs, fmt.Errorf("audio.frames_per_buffer must be positive, got %d", c.Audio.FramesPerBuffer))
		}
		if c.Audio.InputDevice < MinDeviceID {
			errs = append(errs, fmt.Errorf("audio.input_device %d is invalid", c.Audio.InputDevice))
		}
	case SourceWav:
		if c.Audio.WavFile == "" {
			errs = append(errs, errors.New("audio.wav_file must be set when audio.source is wav"))
		}
	default:
		errs = append(errs, fmt.Errorf("audio.source %q must be %q or %q", c.Audio.Source, SourceMic, SourceWav))
	}
	if c.Audio.WindowSamples < MinWindowSamples {
		errs = append(errs, fmt.Errorf("audio.window_samples must be at least %d, got %d", MinWindowSamples, c.Audio.WindowSamples))
	}
	if c.Audio.TickInterval < MinTickInterval {
		errs = append(errs, fmt.Errorf("audio.tick_interval must be at least %s, got %s", MinTickInterval, c.Audio.TickInterval))
	}

	if c.Strip.Length < 1 {
		errs = append(errs, fmt.Errorf("strip.length must be positive, got %d", c.Strip.Length))
	}

	if !IsPreset(c.Preset) {
		errs = append(errs, fmt.Errorf("preset %q must be one of %s", c.Preset, strings.Join(PresetNames, ", ")))
	}

	if c.Playback.Rows < 1 {
		errs = append(errs, fmt.Errorf("playback.rows must be positive, got %d", c.Playback.Rows))
	}
	if c.Playback.Slots < 1 {
		errs = append(errs, fmt.Errorf("playback.slots must be positive, got %d", c.Playback.Slots))
	}
	if c.Playback.SlotInterval <= 0 {
		errs = append(errs, fmt.Errorf("playback.slot_interval must be positive, got %s", c.Playback.SlotInterval))
	}

	if c.Transport.UDPEnabled {
		if !strings.Contains(c.Transport.UDPTargetAddress, ":") {
			errs = append(errs, fmt.Errorf("transport.udp_target_address %q appears invalid (missing port?)", c.Transport.UDPTargetAddress))
		}
		if c.Transport.UDPSendInterval <= 0 {
			errs = append(errs, errors.New("transport.udp_send_interval must be positive when UDP is enabled"))
		}
	}
	if c.Transport.WebSocketEnabled && c.Transport.WebSocketAddr == "" {
		errs = append(errs, errors.New("transport.websocket_addr must be set when the websocket is enabled"))
	}

	return errors.Join(errs...)
}

// IsPreset reports whether name is a known preset.
func IsPreset(name string) bool {
	for _, p := range PresetNames {
		if p == name {
			return true
		}
	}
	return false
}

// applyEnvOverrides lets deployments tweak a handful of settings without
// editing the file. Malformed values are ignored.
func (c *Config) applyEnvOverrides() {
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
	}
	// ENV_PRESET
	if val, ok := os.LookupEnv("ENV_PRESET"); ok {
		c.Preset = val
	}
	// ENV_STRIP_LENGTH
	if val, ok := os.LookupEnv("ENV_STRIP_LENGTH"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			c.Strip.Length = n
		}
	}
	// ENV_BRIGHTNESS
	if val, ok := os.LookupEnv("ENV_BRIGHTNESS"); ok {
		if n, err := strconv.ParseUint(val, 10, 8); err == nil {
			c.Strip.Brightness = uint8(n)
		}
	}

	// ENV_UDP_{...}
	// These are specific to the transport layer.

	// ENV_UDP_ENABLED
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.UDPEnabled = bVal
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
	}
	// ENV_UDP_SEND_INTERVAL
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Transport.UDPSendInterval = dur
		}
	}
}
