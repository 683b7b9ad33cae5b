package config

import "time"

// Core configuration constants that define the boundaries and defaults
// for the LED engine.
const (
	// Audio input
	SourceMic             = "mic"
	SourceWav             = "wav"
	DefaultSource         = SourceMic
	DefaultDeviceID       = MinDeviceID           // System default device
	DefaultSampleRate     = 8000                  // 160 samples per 20 ms tick
	DefaultFramesPerBuf   = 160                   // One tick window per callback
	DefaultWindowSamples  = 160                   // Samples per tick window
	DefaultTickInterval   = 20 * time.Millisecond // Tracker cadence
	DefaultLowLatency     = false
	MinDeviceID           = -1 // -1 represents system default device
	MinSampleRate         = 4000
	MaxSampleRate         = 192000
	MinWindowSamples      = 2
	MinTickInterval       = time.Millisecond
	DefaultStripLength    = 20
	DefaultBrightness     = 255
	DefaultPreset         = "classic"
	DefaultRows           = 10
	DefaultSlots          = 8
	DefaultActiveSlots    = 1
	DefaultSlotInterval   = 3 * time.Minute
	DefaultRowInterval    = 500 * time.Millisecond
	DefaultMinRowInterval = 20 * time.Millisecond

	// Transport
	DefaultWebSocketAddr   = ":8080"
	DefaultUDPTarget       = "127.0.0.1:21324" // WLED realtime port
	DefaultUDPSendInterval = 33 * time.Millisecond
	DefaultUDPTimeout      = 2 // Seconds WLED holds realtime mode after the last packet

	DefaultRecordingDir = "./recordings"
)

// Config holds all runtime configuration options. It is loaded from YAML,
// then overridden by environment variables and command line flags.
type Config struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error.
	Preset   string `yaml:"preset"`    // Preset active at startup.
	TUI      bool   `yaml:"tui"`       // Run the terminal monitor.

	Audio     AudioConfig     `yaml:"audio"`
	Strip     StripConfig     `yaml:"strip"`
	Classic   ClassicConfig   `yaml:"classic"`
	Playback  PlaybackConfig  `yaml:"playback"`
	Recording RecordingConfig `yaml:"recording"`
	Transport TransportConfig `yaml:"transport"`

	// Set by the CLI, never read from file.
	Command string   `yaml:"-"`
	Args    []string `yaml:"-"`
}

// AudioConfig selects and shapes the sample source.
type AudioConfig struct {
	Source          string        `yaml:"source"`            // "mic" or "wav".
	WavFile         string        `yaml:"wav_file"`          // Replay file when source is wav.
	InputDevice     int           `yaml:"input_device"`      // PortAudio device index (-1 for default).
	SampleRate      float64       `yaml:"sample_rate"`       // Capture rate in Hz.
	FramesPerBuffer int           `yaml:"frames_per_buffer"` // PortAudio callback size.
	WindowSamples   int           `yaml:"window_samples"`    // Samples consumed per tick.
	TickInterval    time.Duration `yaml:"tick_interval"`     // Cadence of the tick loop.
	LowLatency      bool          `yaml:"low_latency"`       // Request low latency from PortAudio.
}

// StripConfig describes the physical strip.
type StripConfig struct {
	Length     int   `yaml:"length"`     // Number of pixels.
	Brightness uint8 `yaml:"brightness"` // Master brightness 0-255.
}

// ClassicConfig holds the initial pointers of the classic dispatcher.
type ClassicConfig struct {
	Story     int    `yaml:"story"`      // Renderer index, taken modulo 9.
	ColorMode int    `yaml:"color_mode"` // Palette index, taken modulo 8.
	Seed      uint64 `yaml:"seed"`       // Random seed for renderers (0 = time based).
}

// PlaybackConfig bounds the custom effect catalog and its timers.
type PlaybackConfig struct {
	Rows               int           `yaml:"rows"`                 // Rows per effect matrix.
	Slots              int           `yaml:"slots"`                // Slots in the catalog.
	ActiveSlots        int           `yaml:"active_slots"`         // Slots cycled by the engine.
	SlotInterval       time.Duration `yaml:"slot_interval"`        // Time per slot.
	DefaultRowInterval time.Duration `yaml:"default_row_interval"` // Used when a slot's interval is invalid.
	MinRowInterval     time.Duration `yaml:"min_row_interval"`     // Below this a slot interval is invalid.
	EffectsDir         string        `yaml:"effects_dir"`          // Directory of YAML slot files.
}

// RecordingConfig holds settings related to session recording.
type RecordingConfig struct {
	Enabled   bool   `yaml:"enabled"`    // Record the sampled windows to WAV.
	OutputDir string `yaml:"output_dir"` // Directory for recordings.
}

// TransportConfig holds settings for sending frames off the device.
type TransportConfig struct {
	WebSocketEnabled  bool          `yaml:"websocket_enabled"`   // Serve the browser preview.
	WebSocketAddr     string        `yaml:"websocket_addr"`      // Listen address, e.g. ":8080".
	UDPEnabled        bool          `yaml:"udp_enabled"`         // Stream frames to a WLED controller.
	UDPTargetAddress  string        `yaml:"udp_target_address"` // host:port of the controller.
	UDPSendInterval   time.Duration `yaml:"udp_send_interval"`   // Interval between packets.
	UDPTimeoutSeconds uint8         `yaml:"udp_timeout_seconds"` // DRGB timeout byte.
}

// NewConfig creates a Config with default values. It is the base that
// LoadConfig unmarshals a file on top of.
func NewConfig() *Config {
	return &Config{
		LogLevel: "info",
		Preset:   DefaultPreset,
		Audio: AudioConfig{
			Source:          DefaultSource,
			InputDevice:     DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuf,
			WindowSamples:   DefaultWindowSamples,
			TickInterval:    DefaultTickInterval,
			LowLatency:      DefaultLowLatency,
		},
		Strip: StripConfig{
			Length:     DefaultStripLength,
			Brightness: DefaultBrightness,
		},
		Playback: PlaybackConfig{
			Rows:               DefaultRows,
			Slots:              DefaultSlots,
			ActiveSlots:        DefaultActiveSlots,
			SlotInterval:       DefaultSlotInterval,
			DefaultRowInterval: DefaultRowInterval,
			MinRowInterval:     DefaultMinRowInterval,
		},
		Recording: RecordingConfig{
			OutputDir: DefaultRecordingDir,
		},
		Transport: TransportConfig{
			WebSocketAddr:     DefaultWebSocketAddr,
			UDPTargetAddress:  DefaultUDPTarget,
			UDPSendInterval:   DefaultUDPSendInterval,
			UDPTimeoutSeconds: DefaultUDPTimeout,
		},
	}
}
