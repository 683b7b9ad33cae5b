// SPDX-License-Identifier: MIT
package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lumiband/internal/audio"
	"lumiband/internal/clock"
	"lumiband/internal/preset"
	"lumiband/internal/strip"
	"lumiband/pkg/utils"

	tea "github.com/charmbracelet/bubbletea"
)

// direct applies requests immediately instead of queueing them for Run.
type direct struct {
	*preset.Controller
}

func (d direct) Request(_ context.Context, fn func(*preset.Controller)) error {
	fn(d.Controller)
	return nil
}

type refusing struct {
	direct
}

func (refusing) Request(context.Context, func(*preset.Controller)) error {
	return errors.New("engine stopped")
}

func newTestMonitor(t *testing.T) (MonitorModel, *preset.Controller, *strip.Strip) {
	t.Helper()
	s := strip.New(4, 200)
	tracker := audio.NewTracker(&utils.VariationSampler{V: 10}, clock.NewManual(0), 4)
	c := preset.NewController(tracker, clock.NewManual(0), s)
	c.Register(preset.NewStatic(s))
	c.Register(preset.NewParty(s))
	if err := c.Switch(preset.NameStatic); err != nil {
		t.Fatal(err)
	}
	return NewMonitorModel(context.Background(), direct{c}, s), c, s
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m MonitorModel, msg tea.KeyMsg) (MonitorModel, tea.Msg) {
	t.Helper()
	next, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatalf("key %q produced no command", msg.String())
	}
	return next.(MonitorModel), cmd()
}

func TestMonitorRefreshPolls(t *testing.T) {
	m, c, s := newTestMonitor(t)
	c.Tick()

	next, cmd := m.Update(refreshMsg{})
	if cmd == nil {
		t.Fatal("refresh should schedule the next refresh")
	}
	m = next.(MonitorModel)

	if m.active != preset.NameStatic {
		t.Errorf("active = %q, want %q", m.active, preset.NameStatic)
	}
	if m.ticks != 1 {
		t.Errorf("ticks = %d, want 1", m.ticks)
	}
	if m.bright != 200 {
		t.Errorf("brightness = %d, want 200", m.bright)
	}
	latest := s.Latest()
	if m.seq != latest.Seq {
		t.Errorf("seq = %d, want %d", m.seq, latest.Seq)
	}
	for i, p := range latest.Pixels {
		if m.pixels[i] != p {
			t.Errorf("pixel %d = %v, want %v", i, m.pixels[i], p)
		}
	}
}

func TestMonitorBrightnessKeys(t *testing.T) {
	m, c, _ := newTestMonitor(t)

	m, _ = press(t, m, runes("+"))
	if got := c.Brightness(); got != 216 {
		t.Errorf("after + brightness = %d, want 216", got)
	}
	for range 5 {
		m, _ = press(t, m, runes("+"))
	}
	if got := c.Brightness(); got != 255 {
		t.Errorf("brightness should clamp at 255, got %d", got)
	}

	c.SetBrightness(10)
	_, _ = press(t, m, runes("-"))
	if got := c.Brightness(); got != 0 {
		t.Errorf("brightness should clamp at 0, got %d", got)
	}
}

func TestMonitorPresetKey(t *testing.T) {
	m, c, _ := newTestMonitor(t)
	_, _ = press(t, m, runes("p"))
	if got := c.Active(); got != preset.NameParty {
		t.Errorf("active = %q, want %q", got, preset.NameParty)
	}
}

func TestMonitorQuit(t *testing.T) {
	m, _, _ := newTestMonitor(t)
	_, msg := press(t, m, runes("q"))
	if _, ok := msg.(tea.QuitMsg); !ok {
		t.Errorf("q produced %T, want tea.QuitMsg", msg)
	}
}

func TestMonitorRequestError(t *testing.T) {
	m, c, s := newTestMonitor(t)
	m = NewMonitorModel(context.Background(), refusing{direct{c}}, s)

	m, msg := press(t, m, runes("s"))
	if _, ok := msg.(errMsg); !ok {
		t.Fatalf("got %T, want errMsg", msg)
	}
	next, _ := m.Update(msg)
	if view := next.(MonitorModel).View(); !strings.Contains(view, "engine stopped") {
		t.Errorf("view does not show the error:\n%s", view)
	}
}

func TestMonitorView(t *testing.T) {
	m, _, _ := newTestMonitor(t)
	m.active = preset.NameClassic
	m.snap = audio.Snapshot{BeatDetected: true, BeatCounter: 7, RelativeLevel: 0.5}

	view := m.View()
	for _, want := range []string{"classic", "BEAT", "#7", "0.50", "quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	m.snap.BeatDetected = false
	if strings.Contains(m.View(), "BEAT") {
		t.Error("view shows a beat when none was detected")
	}
}

func TestMeter(t *testing.T) {
	tests := []struct {
		v    float64
		full int
	}{
		{-1, 0},
		{0, 0},
		{0.5, meterWidth / 2},
		{1, meterWidth},
		{3, meterWidth},
	}
	for _, tt := range tests {
		got := meter(tt.v)
		if n := strings.Count(got, "█"); n != tt.full {
			t.Errorf("meter(%v) has %d full cells, want %d", tt.v, n, tt.full)
		}
		if n := strings.Count(got, "░"); n != meterWidth-tt.full {
			t.Errorf("meter(%v) has %d empty cells, want %d", tt.v, n, meterWidth-tt.full)
		}
	}
}

func TestDeviceListPicksInput(t *testing.T) {
	devices := []audio.Device{
		{ID: 0, Name: "speakers", MaxOutputChannels: 2},
		{ID: 1, Name: "mic", MaxInputChannels: 1},
		{ID: 2, Name: "headset", MaxInputChannels: 1, MaxOutputChannels: 2},
	}
	m := NewDeviceListModel(func() ([]audio.Device, error) { return devices, nil })

	msg := m.Init()()
	got, ok := msg.(devicesMsg)
	if !ok {
		t.Fatalf("Init produced %T, want devicesMsg", msg)
	}
	if len(got.devices) != 2 || got.devices[0].Name != "mic" || got.devices[1].Name != "headset" {
		t.Fatalf("unexpected device list %+v", got.devices)
	}

	var model tea.Model = m
	model, _ = model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model, _ = model.Update(msg)
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd == nil {
		t.Fatal("enter should quit the picker")
	}
	d, ok := model.(DeviceListModel).Chosen()
	if !ok || d.ID != 2 {
		t.Errorf("chosen = %+v, %v; want device 2", d, ok)
	}
}

func TestDeviceListFetchError(t *testing.T) {
	m := NewDeviceListModel(func() ([]audio.Device, error) { return nil, errors.New("no host") })
	model, _ := m.Update(m.Init()())
	if _, ok := model.(DeviceListModel).Chosen(); ok {
		t.Error("nothing should be chosen after a fetch error")
	}
	if !strings.Contains(model.View(), "no host") {
		t.Errorf("view does not show the error: %s", model.View())
	}
}
