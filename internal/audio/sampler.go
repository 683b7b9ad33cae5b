// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// MaxSample is the top of the raw sample range (10-bit ADC).
const MaxSample = 1023

// Sampler yields one raw sample in [0, MaxSample]. Implementations must not
// block: the tracker calls Sample a whole window's worth of times per tick.
type Sampler interface {
	Sample() uint16
}

// SamplerFunc adapts a plain function to the Sampler interface.
type SamplerFunc func() uint16

func (f SamplerFunc) Sample() uint16 { return f() }

// ErrEmptyWav is returned when a WAV file decodes to zero samples.
var ErrEmptyWav = errors.New("wav file contains no samples")

// WavSampler replays the first channel of a WAV file, rescaled to the raw
// sample range. It loops when it reaches the end.
type WavSampler struct {
	samples    []uint16
	pos        int
	sampleRate int
}

// NewWavSampler decodes the whole file up front so Sample never touches disk.
func NewWavSampler(path string) (*WavSampler, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wav file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode wav file: %w", err)
	}

	channels := 1
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}
	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(dec.BitDepth)
	}
	if bitDepth <= 0 {
		bitDepth = 16
	}

	frames := len(buf.Data) / channels
	if frames == 0 {
		return nil, ErrEmptyWav
	}

	s := &WavSampler{
		samples:    make([]uint16, frames),
		sampleRate: int(dec.SampleRate),
	}
	for i := range frames {
		s.samples[i] = FromSigned(buf.Data[i*channels], bitDepth)
	}
	return s, nil
}

// Sample returns the next sample, wrapping to the start of the file.
func (s *WavSampler) Sample() uint16 {
	v := s.samples[s.pos]
	s.pos++
	if s.pos == len(s.samples) {
		s.pos = 0
	}
	return v
}

// Len returns the number of samples in one pass of the file.
func (s *WavSampler) Len() int { return len(s.samples) }

// SampleRate returns the rate recorded in the WAV header.
func (s *WavSampler) SampleRate() int { return s.sampleRate }

// FromSigned maps a signed PCM value of the given bit depth onto the raw
// sample range, clamping anything outside it.
func FromSigned(v, bitDepth int) uint16 {
	half := 1 << (bitDepth - 1)
	scaled := (v + half) * MaxSample / (2*half - 1)
	if scaled < 0 {
		return 0
	}
	if scaled > MaxSample {
		return MaxSample
	}
	return uint16(scaled)
}

// ToSigned is the inverse of FromSigned.
func ToSigned(s uint16, bitDepth int) int {
	half := 1 << (bitDepth - 1)
	return int(s)*(2*half-1)/MaxSample - half
}

// FromFloat maps a PortAudio float sample in [-1, 1] onto the raw range.
func FromFloat(v float32) uint16 {
	scaled := (v + 1) * 0.5 * MaxSample
	if scaled <= 0 {
		return 0
	}
	if scaled >= MaxSample {
		return MaxSample
	}
	return uint16(scaled + 0.5)
}

// teeSampler forwards every sample to a recorder.
type teeSampler struct {
	src Sampler
	rec *Recorder
}

// Tee returns a sampler that records every sample read from src.
func Tee(src Sampler, rec *Recorder) Sampler {
	return &teeSampler{src: src, rec: rec}
}

func (t *teeSampler) Sample() uint16 {
	v := t.src.Sample()
	t.rec.Write(v)
	return v
}

var (
	_ Sampler = SamplerFunc(nil)
	_ Sampler = (*WavSampler)(nil)
	_ Sampler = (*teeSampler)(nil)
)
