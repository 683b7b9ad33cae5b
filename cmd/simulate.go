// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"io"
	"time"

	"lumiband/internal/audio"
	"lumiband/internal/clock"
	"lumiband/internal/config"

	"github.com/spf13/cobra"
)

// SimulationReport summarises an offline replay.
type SimulationReport struct {
	Ticks        int
	Beats        int
	MeanInterval time.Duration // Mean of the non-zero beat intervals.
	Frames       uint64        // Frames shown by the active preset.
	Preset       string
}

func (r SimulationReport) write(w io.Writer) {
	fmt.Fprintf(w, "preset:        %s\n", r.Preset)
	fmt.Fprintf(w, "ticks:         %d\n", r.Ticks)
	fmt.Fprintf(w, "beats:         %d\n", r.Beats)
	fmt.Fprintf(w, "mean interval: %s\n", r.MeanInterval)
	fmt.Fprintf(w, "frames:        %d\n", r.Frames)
}

func newSimulateCommand(opts *options) *cobra.Command {
	var maxTicks int

	cmd := &cobra.Command{
		Use:   "simulate <file.wav>",
		Short: "Replay a WAV file offline and report beats and frames",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			cfg.Command = "simulate"
			cfg.Args = args

			report, err := simulate(cfg, args[0], maxTicks)
			if err != nil {
				return err
			}
			report.write(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().IntVarP(&maxTicks, "ticks", "n", 0, "Stop after this many ticks (0 replays the file once)")
	return cmd
}

// simulate replays path through a fresh rig on a manual clock, advancing
// one tick interval per window.
func simulate(cfg *config.Config, path string, maxTicks int) (SimulationReport, error) {
	ws, err := audio.NewWavSampler(path)
	if err != nil {
		return SimulationReport{}, err
	}

	clk := clock.NewManual(0)
	r, err := newRig(cfg, ws, clk)
	if err != nil {
		return SimulationReport{}, err
	}
	defer r.Close()

	ticks := maxTicks
	if ticks <= 0 {
		ticks = max(ws.Len()/cfg.Audio.WindowSamples, 1)
	}

	report := SimulationReport{Ticks: ticks, Preset: r.controller.Active()}
	var total time.Duration
	var intervals int
	for range ticks {
		clk.Advance(cfg.Audio.TickInterval)
		snap := r.controller.Tick()
		if !snap.BeatDetected {
			continue
		}
		report.Beats++
		if snap.BeatInterval > 0 {
			total += snap.BeatInterval
			intervals++
		}
	}
	if intervals > 0 {
		report.MeanInterval = total / time.Duration(intervals)
	}
	report.Frames = r.strip.Latest().Seq
	return report, nil
}
