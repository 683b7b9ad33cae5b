// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"lumiband/internal/audio"
	"lumiband/internal/clock"
	"lumiband/internal/config"
	applog "lumiband/internal/log"
	"lumiband/internal/tui"

	"github.com/spf13/cobra"
)

func newRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Drive the strip from live or replayed audio (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			cfg.Command = "run"
			return runLive(cmd.Context(), cfg)
		},
	}
}

// runLive ticks the engine until a signal arrives or the monitor quits.
func runLive(ctx context.Context, cfg *config.Config) (err error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sampler, closeSource, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeSource(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if cfg.Recording.Enabled {
		rec, path, err := startRecording(cfg)
		if err != nil {
			return err
		}
		sampler = audio.Tee(sampler, rec)
		defer func() {
			if serr := rec.Stop(); serr != nil {
				applog.Errorf("Error stopping recording: %v", serr)
				return
			}
			applog.Infof("Recording saved to: %s (%d samples)", path, rec.Written())
		}()
	}

	r, err := newRig(cfg, sampler, clock.NewSystem())
	if err != nil {
		return err
	}
	if err := r.attachOutputs(cfg); err != nil {
		r.Close()
		return err
	}
	defer r.Close()

	errc := make(chan error, 1)
	go func() { errc <- r.controller.Run(ctx, cfg.Audio.TickInterval) }()

	if cfg.TUI {
		if err := tui.RunMonitor(ctx, r.controller, r.strip); err != nil {
			applog.Errorf("Monitor: %v", err)
		}
		stop()
	}

	// The tick goroutine must be gone before the recorder is stopped.
	return <-errc
}

// openSource returns the configured sampler and a function releasing it.
func openSource(cfg *config.Config) (audio.Sampler, func() error, error) {
	switch cfg.Audio.Source {
	case config.SourceWav:
		ws, err := audio.NewWavSampler(cfg.Audio.WavFile)
		if err != nil {
			return nil, nil, err
		}
		applog.Infof("Source: replaying %s (%d samples at %d Hz)", cfg.Audio.WavFile, ws.Len(), ws.SampleRate())
		return ws, func() error { return nil }, nil

	default:
		if err := audio.Initialize(); err != nil {
			return nil, nil, err
		}
		mic, err := audio.NewMicSampler(cfg.Audio)
		if err != nil {
			audio.Terminate()
			return nil, nil, err
		}
		if err := mic.Start(); err != nil {
			audio.Terminate()
			return nil, nil, err
		}
		return mic, func() error {
			under, over := mic.Stats()
			applog.Infof("Source: microphone closed (underruns %d, overruns %d)", under, over)
			err := mic.Close()
			if terr := audio.Terminate(); err == nil {
				err = terr
			}
			return err
		}, nil
	}
}

func startRecording(cfg *config.Config) (*audio.Recorder, string, error) {
	if err := os.MkdirAll(cfg.Recording.OutputDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("failed to create recording directory: %w", err)
	}
	path := filepath.Join(cfg.Recording.OutputDir,
		"recording-"+time.Now().UTC().Format("02-01-2006-150405")+".wav")

	rec := audio.NewRecorder(int(cfg.Audio.SampleRate))
	if err := rec.Start(path); err != nil {
		return nil, "", err
	}
	applog.Infof("Recording to %s", path)
	return rec, path, nil
}
