// SPDX-License-Identifier: MIT
package preset

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"lumiband/internal/audio"
	"lumiband/internal/clock"
	applog "lumiband/internal/log"
	"lumiband/internal/strip"
)

const (
	requestQueue  = 16
	statusEvery   = 5 // Ticks between status messages, beats are always sent.
	DefaultPreset = NameClassic
)

// Observer receives Status messages. transport.Transport satisfies it.
type Observer interface {
	Send(data any) error
}

// Status summarizes the controller state for observers.
type Status struct {
	Type        string  `json:"type"` // Always "status".
	Tick        uint64  `json:"tick"`
	Preset      string  `json:"preset"`
	Story       string  `json:"story,omitempty"`
	ColorMode   string  `json:"color_mode,omitempty"`
	Brightness  uint8   `json:"brightness"`
	Level       float64 `json:"level"`
	Ambient     float64 `json:"ambient"`
	Relative    float64 `json:"relative"`
	Smoothed    float64 `json:"smoothed"`
	Beat        bool    `json:"beat"`
	BeatCounter uint8   `json:"beat_counter"`
	BeatMs      int64   `json:"beat_interval_ms"`
}

// Controller owns the tracker, the sink and the presets. Tick, Switch and
// the setters must run on one goroutine: either call them directly (tests,
// offline simulation) or start Run and go through Request.
type Controller struct {
	tracker *audio.Tracker
	clock   clock.Clock
	sink    strip.Sink

	presets map[string]Preset
	order   []string
	active  Preset

	requests  chan func(*Controller)
	observers []Observer
	ticks     atomic.Uint64

	mu         sync.RWMutex
	latest     audio.Snapshot
	activeName string
}

// NewController creates a controller with no presets registered.
func NewController(tracker *audio.Tracker, clk clock.Clock, sink strip.Sink) *Controller {
	return &Controller{
		tracker:  tracker,
		clock:    clk,
		sink:     sink,
		presets:  make(map[string]Preset),
		requests: make(chan func(*Controller), requestQueue),
	}
}

// Register adds p. A preset with the same name is replaced.
func (c *Controller) Register(p Preset) {
	if _, ok := c.presets[p.Name()]; !ok {
		c.order = append(c.order, p.Name())
	}
	c.presets[p.Name()] = p
}

// AddObserver registers o for Status messages. Call before Run.
func (c *Controller) AddObserver(o Observer) {
	c.observers = append(c.observers, o)
}

// Names lists the registered presets in registration order.
func (c *Controller) Names() []string { return slices.Clone(c.order) }

// Switch activates the named preset. Its Init completes before the next
// Tick, and presets asking for fresh audio get a reset tracker first.
func (c *Controller) Switch(name string) error {
	p, ok := c.presets[name]
	if !ok {
		return fmt.Errorf("unknown preset %q", name)
	}
	if fa, ok := p.(FreshAudio); ok && fa.FreshAudio() {
		c.tracker.Reset()
	}
	snap := c.tracker.Snapshot()
	snap.Now = c.clock.Now()
	p.Init(&snap)
	c.active = p

	c.mu.Lock()
	c.activeName = name
	c.mu.Unlock()
	applog.Infof("Controller: switched to %s", name)
	return nil
}

// Next activates the preset registered after the active one.
func (c *Controller) Next() error {
	if len(c.order) == 0 {
		return fmt.Errorf("no presets registered")
	}
	i := 0
	if c.active != nil {
		i = (slices.Index(c.order, c.active.Name()) + 1) % len(c.order)
	}
	return c.Switch(c.order[i])
}

// Tick samples one window and advances the active preset by one tick.
func (c *Controller) Tick() audio.Snapshot {
	snap := c.tracker.Tick()
	if c.active != nil {
		c.active.Tick(&snap)
	}
	n := c.ticks.Add(1)

	c.mu.Lock()
	c.latest = snap
	c.mu.Unlock()

	if len(c.observers) > 0 && (snap.BeatDetected || n%statusEvery == 0) {
		st := c.status(&snap, n)
		for _, o := range c.observers {
			if err := o.Send(st); err != nil {
				applog.Debugf("Controller: observer dropped status: %v", err)
			}
		}
	}
	return snap
}

// Run ticks every interval until ctx is done, applying queued requests
// between ticks.
func (c *Controller) Run(ctx context.Context, interval time.Duration) error {
	if c.active == nil {
		if err := c.Switch(DefaultPreset); err != nil {
			return err
		}
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	applog.Infof("Controller: running at %s per tick", interval)

	for {
		select {
		case <-ctx.Done():
			applog.Infof("Controller: stopped after %d ticks", c.ticks.Load())
			return nil
		case fn := <-c.requests:
			fn(c)
		case <-ticker.C:
			c.Tick()
		}
	}
}

// Request queues fn to run on the tick goroutine. It blocks while the
// queue is full and gives up when ctx is done.
func (c *Controller) Request(ctx context.Context, fn func(*Controller)) error {
	select {
	case c.requests <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Latest returns the most recent snapshot. Safe from any goroutine.
func (c *Controller) Latest() audio.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest
}

// Active returns the active preset name. Safe from any goroutine.
func (c *Controller) Active() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeName
}

// Ticks counts completed ticks. Safe from any goroutine.
func (c *Controller) Ticks() uint64 { return c.ticks.Load() }

// SetBrightness changes the master brightness if the sink supports it.
func (c *Controller) SetBrightness(b uint8) {
	if d, ok := c.sink.(strip.Dimmer); ok {
		d.SetBrightness(b)
	}
}

// Brightness returns the master brightness, 255 if the sink has none.
func (c *Controller) Brightness() uint8 {
	if d, ok := c.sink.(strip.Dimmer); ok {
		return d.Brightness()
	}
	return 255
}

// Classic returns the registered classic preset, if any.
func (c *Controller) Classic() (*Classic, bool) {
	p, ok := c.presets[NameClassic].(*Classic)
	return p, ok
}

// NextStory moves the classic dispatcher to its next story.
func (c *Controller) NextStory() {
	if p, ok := c.Classic(); ok {
		d := p.Dispatcher()
		d.SetStory(d.Story().Next())
		applog.Infof("Controller: story %s", d.Story())
	}
}

// NextColorMode moves the classic dispatcher to its next palette.
func (c *Controller) NextColorMode() {
	if p, ok := c.Classic(); ok {
		d := p.Dispatcher()
		d.SetColorMode(d.ColorMode().Next())
		applog.Infof("Controller: color mode %s", d.ColorMode())
	}
}

func (c *Controller) status(snap *audio.Snapshot, tick uint64) Status {
	st := Status{
		Type:        "status",
		Tick:        tick,
		Brightness:  c.Brightness(),
		Level:       snap.Level,
		Ambient:     snap.AmbientFloor,
		Relative:    snap.RelativeLevel,
		Smoothed:    snap.SmoothedLevel,
		Beat:        snap.BeatDetected,
		BeatCounter: snap.BeatCounter,
		BeatMs:      snap.BeatInterval.Milliseconds(),
	}
	if c.active != nil {
		st.Preset = c.active.Name()
		if p, ok := c.active.(*Classic); ok {
			st.Story = p.d.Story().String()
			st.ColorMode = p.d.ColorMode().String()
		}
	}
	return st
}

// Ensure the built-in presets satisfy the interface at compile time.
var (
	_ Preset = (*Static)(nil)
	_ Preset = (*Dim)(nil)
	_ Preset = (*Lava)(nil)
	_ Preset = (*Party)(nil)
	_ Preset = (*Classic)(nil)
	_ Preset = (*Custom)(nil)
)
