// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"lumiband/internal/audio"
	"lumiband/internal/classic"
	"lumiband/internal/clock"
	"lumiband/internal/config"
	"lumiband/internal/custom"
	applog "lumiband/internal/log"
	"lumiband/internal/palette"
	"lumiband/internal/preset"
	"lumiband/internal/strip"
	"lumiband/internal/transport"
	"lumiband/internal/transport/udp"
)

// statusLogEvery thins the verbose logging transport.
const statusLogEvery = 50

// rig is the wired engine: one strip, one tracker and the controller that
// ticks them.
type rig struct {
	strip      *strip.Strip
	tracker    *audio.Tracker
	controller *preset.Controller
	catalog    *custom.Catalog

	closers []io.Closer
}

// newRig wires every preset against sampler and clk and activates the
// configured startup preset.
func newRig(cfg *config.Config, sampler audio.Sampler, clk clock.Clock) (*rig, error) {
	s := strip.New(cfg.Strip.Length, cfg.Strip.Brightness)
	tracker := audio.NewTracker(sampler, clk, cfg.Audio.WindowSamples)

	seed := cfg.Classic.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	dispatcher := classic.NewDispatcher(s, rand.New(rand.NewPCG(seed, seed>>1|1)))

	cat := custom.NewCatalog(cfg.Playback.Slots, cfg.Playback.Rows, s.Len())
	if cfg.Playback.EffectsDir != "" {
		n, err := custom.LoadDir(cfg.Playback.EffectsDir, cat)
		if err != nil {
			applog.Warnf("Rig: some effect files were skipped: %v", err)
		}
		applog.Infof("Rig: loaded %d effect slots from %s", n, cfg.Playback.EffectsDir)
	}
	engine := custom.NewEngine(cat, s, custom.Timing{
		SlotInterval:       cfg.Playback.SlotInterval,
		DefaultRowInterval: cfg.Playback.DefaultRowInterval,
		MinRowInterval:     cfg.Playback.MinRowInterval,
	})

	c := preset.NewController(tracker, clk, s)
	c.Register(preset.NewStatic(s))
	c.Register(preset.NewDim(s))
	c.Register(preset.NewLava(s))
	c.Register(preset.NewParty(s))
	c.Register(preset.NewClassic(dispatcher,
		classic.StoryOf(cfg.Classic.Story), palette.ModeOf(cfg.Classic.ColorMode)))
	c.Register(preset.NewCustom(engine, cfg.Playback.ActiveSlots))

	if err := c.Switch(cfg.Preset); err != nil {
		return nil, err
	}
	return &rig{strip: s, tracker: tracker, controller: c, catalog: cat}, nil
}

// attachOutputs starts the configured transports and hooks them to the
// strip and the controller.
func (r *rig) attachOutputs(cfg *config.Config) error {
	tc := cfg.Transport

	if tc.WebSocketEnabled {
		ws := transport.NewWebSocketTransport(tc.WebSocketAddr)
		r.strip.AddOutput(ws)
		r.controller.AddObserver(ws)
		r.closers = append(r.closers, ws)
	}

	if applog.Enabled(applog.LevelDebug) {
		lt := transport.NewLoggingTransport(statusLogEvery)
		r.controller.AddObserver(lt)
		r.closers = append(r.closers, lt)
	}

	if tc.UDPEnabled {
		sender, err := udp.NewUDPSender(tc.UDPTargetAddress)
		if err != nil {
			return fmt.Errorf("failed to create UDP sender: %w", err)
		}
		pub, err := udp.NewUDPPublisher(tc.UDPSendInterval, tc.UDPTimeoutSeconds, sender, r.strip)
		if err != nil {
			sender.Close()
			return fmt.Errorf("failed to create UDP publisher: %w", err)
		}
		pub.Start()
		// Publisher first so it stops sending before the socket closes.
		r.closers = append(r.closers, pub, sender)
	}
	return nil
}

// Close shuts the outputs down in the order they were attached.
func (r *rig) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.closers = nil
	return firstErr
}
