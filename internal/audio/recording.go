// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	RecordingBitDepth = 16
	recordChunk       = 1024 // Samples buffered before each encoder write.
)

// ErrAlreadyRecording is returned by Start while a recording is active.
var ErrAlreadyRecording = errors.New("already recording")

// Recorder captures the raw samples consumed by the tracker into a mono WAV
// file, so a session can be replayed later through a WavSampler.
type Recorder struct {
	sampleRate int

	isRecording int32 // Atomic flag for thread-safe state
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *audio.IntBuffer // Reusable chunk buffer
	pending     int
	written     int64
	lastErr     error
}

// NewRecorder returns an idle recorder for the given sample rate.
func NewRecorder(sampleRate int) *Recorder {
	return &Recorder{sampleRate: sampleRate}
}

func (r *Recorder) Start(filename string) error {
	if atomic.LoadInt32(&r.isRecording) == 1 {
		return ErrAlreadyRecording
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create recording: %w", err)
	}
	r.outputFile = file
	r.wavEncoder = wav.NewEncoder(file, r.sampleRate, RecordingBitDepth, 1, 1)
	r.sampleBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  r.sampleRate,
		},
		Data:           make([]int, recordChunk),
		SourceBitDepth: RecordingBitDepth,
	}
	r.pending = 0
	r.written = 0
	r.lastErr = nil

	atomic.StoreInt32(&r.isRecording, 1)
	return nil
}

// Write appends one raw sample. It is a no-op while not recording, so the
// tee sampler can stay wired in permanently.
func (r *Recorder) Write(s uint16) {
	if atomic.LoadInt32(&r.isRecording) == 0 {
		return
	}
	r.sampleBuf.Data[r.pending] = ToSigned(s, RecordingBitDepth)
	r.pending++
	if r.pending == len(r.sampleBuf.Data) {
		r.flush()
	}
}

func (r *Recorder) flush() {
	if r.pending == 0 {
		return
	}
	full := r.sampleBuf.Data
	r.sampleBuf.Data = full[:r.pending]
	if err := r.wavEncoder.Write(r.sampleBuf); err != nil && r.lastErr == nil {
		r.lastErr = fmt.Errorf("failed to write wav chunk: %w", err)
	}
	r.sampleBuf.Data = full
	r.written += int64(r.pending)
	r.pending = 0
}

// Recording reports whether Start has been called without a matching Stop.
func (r *Recorder) Recording() bool {
	return atomic.LoadInt32(&r.isRecording) == 1
}

// Written returns the number of samples handed to the encoder so far.
func (r *Recorder) Written() int64 {
	return r.written
}

// Stop flushes buffered samples and finalises the WAV header. The first
// write error seen during the recording, if any, is returned.
func (r *Recorder) Stop() error {
	if atomic.LoadInt32(&r.isRecording) == 0 {
		return nil
	}

	r.flush()
	atomic.StoreInt32(&r.isRecording, 0)

	if r.wavEncoder != nil {
		if err := r.wavEncoder.Close(); err != nil {
			return err
		}
		r.wavEncoder = nil
	}

	if r.outputFile != nil {
		if err := r.outputFile.Close(); err != nil {
			return err
		}
		r.outputFile = nil
	}

	return r.lastErr
}
