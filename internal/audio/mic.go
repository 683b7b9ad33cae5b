// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"lumiband/internal/config"
	applog "lumiband/internal/log"

	"github.com/gordonklaus/portaudio"
)

// MicSampler captures mono audio through PortAudio. The stream callback
// fills a ring buffer; Sample drains it from the tick goroutine and repeats
// the last value when the ring runs dry, so a tick never waits on hardware.
type MicSampler struct {
	cfg     config.AudioConfig
	device  *portaudio.DeviceInfo
	latency time.Duration
	stream  *portaudio.Stream

	mu   sync.Mutex
	ring []uint16
	head int // Index of the oldest unread sample.
	size int // Number of unread samples.
	last uint16

	underruns atomic.Uint64
	overruns  atomic.Uint64
}

// NewMicSampler resolves the configured input device. PortAudio must already
// be initialised.
func NewMicSampler(cfg config.AudioConfig) (*MicSampler, error) {
	device, err := InputDevice(cfg.InputDevice)
	if err != nil {
		return nil, err
	}

	// Four windows of slack absorbs callback jitter without adding much lag.
	capacity := 4 * max(cfg.WindowSamples, cfg.FramesPerBuffer)

	m := &MicSampler{
		cfg:    cfg,
		device: device,
		ring:   make([]uint16, capacity),
		last:   MaxSample / 2,
	}
	if cfg.LowLatency {
		m.latency = device.DefaultLowInputLatency
	} else {
		m.latency = device.DefaultHighInputLatency
	}
	return m, nil
}

// Start opens and starts the input stream.
func (m *MicSampler) Start() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 1,
			Device:   m.device,
			Latency:  m.latency,
		},
		FramesPerBuffer: m.cfg.FramesPerBuffer,
		SampleRate:      m.cfg.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, m.processInputStream)
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start input stream: %w", err)
	}
	m.stream = stream

	applog.Infof("MicSampler: Capturing from %q at %.0f Hz (latency %s)",
		m.device.Name, m.cfg.SampleRate, m.latency)
	return nil
}

// processInputStream runs on the PortAudio thread.
func (m *MicSampler) processInputStream(in []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	m.mu.Lock()
	for _, v := range in {
		m.push(FromFloat(v))
	}
	m.mu.Unlock()
}

// push appends one sample, overwriting the oldest when full. Caller holds mu.
func (m *MicSampler) push(s uint16) {
	n := len(m.ring)
	if m.size == n {
		m.head = (m.head + 1) % n
		m.size--
		m.overruns.Add(1)
	}
	m.ring[(m.head+m.size)%n] = s
	m.size++
}

func (m *MicSampler) Sample() uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.size == 0 {
		m.underruns.Add(1)
		return m.last
	}
	m.last = m.ring[m.head]
	m.head = (m.head + 1) % len(m.ring)
	m.size--
	return m.last
}

// Stats returns how often the ring ran dry and how often it dropped samples.
func (m *MicSampler) Stats() (underruns, overruns uint64) {
	return m.underruns.Load(), m.overruns.Load()
}

// Close stops and releases the stream.
func (m *MicSampler) Close() error {
	if m.stream == nil {
		return nil
	}
	if err := m.stream.Stop(); err != nil {
		return err
	}
	if err := m.stream.Close(); err != nil {
		return err
	}
	m.stream = nil

	under, over := m.Stats()
	applog.Infof("MicSampler: Closed (underruns %d, overruns %d)", under, over)
	return nil
}

var _ Sampler = (*MicSampler)(nil)
