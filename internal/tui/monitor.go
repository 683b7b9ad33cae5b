// SPDX-License-Identifier: MIT
package tui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"
	"time"

	"lumiband/internal/audio"
	applog "lumiband/internal/log"
	"lumiband/internal/preset"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	refreshInterval = 50 * time.Millisecond
	brightnessStep  = 16
	meterWidth      = 30
)

// Engine is the part of the controller the monitor reads and drives.
type Engine interface {
	Latest() audio.Snapshot
	Active() string
	Ticks() uint64
	Brightness() uint8
	Request(ctx context.Context, fn func(*preset.Controller)) error
}

// FrameSource provides the latest shown frame.
type FrameSource interface {
	Len() int
	LatestInto(dst []color.RGBA) uint64
}

type keyMap struct {
	Preset   key.Binding
	Story    key.Binding
	Color    key.Binding
	Brighter key.Binding
	Dimmer   key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Preset, k.Story, k.Color, k.Brighter, k.Dimmer, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var keys = keyMap{
	Preset:   key.NewBinding(key.WithKeys("p", "tab"), key.WithHelp("p", "next preset")),
	Story:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "next story")),
	Color:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "next colors")),
	Brighter: key.NewBinding(key.WithKeys("+", "=", "up"), key.WithHelp("+", "brighter")),
	Dimmer:   key.NewBinding(key.WithKeys("-", "down"), key.WithHelp("-", "dimmer")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type refreshMsg time.Time

// MonitorModel shows the live strip and the audio tracker state.
type MonitorModel struct {
	ctx    context.Context
	engine Engine
	frames FrameSource
	help   help.Model

	pixels []color.RGBA
	seq    uint64
	snap   audio.Snapshot
	active string
	ticks  uint64
	bright uint8
	err    error
}

// NewMonitorModel creates a monitor over engine and frames. Requests are
// abandoned once ctx is done.
func NewMonitorModel(ctx context.Context, engine Engine, frames FrameSource) MonitorModel {
	return MonitorModel{
		ctx:    ctx,
		engine: engine,
		frames: frames,
		help:   help.New(),
		pixels: make([]color.RGBA, frames.Len()),
	}
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

func (m MonitorModel) Init() tea.Cmd { return refresh() }

func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.poll()
		return m, refresh()

	case errMsg:
		m.err = msg.err

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Preset):
			return m, m.request(func(c *preset.Controller) {
				if err := c.Next(); err != nil {
					applog.Warnf("Monitor: %v", err)
				}
			})
		case key.Matches(msg, keys.Story):
			return m, m.request((*preset.Controller).NextStory)
		case key.Matches(msg, keys.Color):
			return m, m.request((*preset.Controller).NextColorMode)
		case key.Matches(msg, keys.Brighter):
			return m, m.request(func(c *preset.Controller) {
				c.SetBrightness(uint8(min(int(c.Brightness())+brightnessStep, 255)))
			})
		case key.Matches(msg, keys.Dimmer):
			return m, m.request(func(c *preset.Controller) {
				c.SetBrightness(uint8(max(int(c.Brightness())-brightnessStep, 0)))
			})
		}
	}
	return m, nil
}

// request hands fn to the tick goroutine without blocking the UI.
func (m MonitorModel) request(fn func(*preset.Controller)) tea.Cmd {
	engine, ctx := m.engine, m.ctx
	return func() tea.Msg {
		if err := engine.Request(ctx, fn); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m *MonitorModel) poll() {
	m.seq = m.frames.LatestInto(m.pixels)
	m.snap = m.engine.Latest()
	m.active = m.engine.Active()
	m.ticks = m.engine.Ticks()
	m.bright = m.engine.Brightness()
}

func (m MonitorModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("lumiband"))
	sb.WriteString(fmt.Sprintf("  preset %s  brightness %d  tick %d  frame %d\n\n",
		highlightStyle.Render(m.active), m.bright, m.ticks, m.seq))

	sb.WriteString(renderStrip(m.pixels))
	sb.WriteString("\n\n")

	s := m.snap
	sb.WriteString(fmt.Sprintf("relative %s %.2f\n", meter(s.RelativeLevel), s.RelativeLevel))
	sb.WriteString(fmt.Sprintf("smoothed %s %.2f\n", meter(s.SmoothedLevel), s.SmoothedLevel))
	sb.WriteString(fmt.Sprintf("level %.1f  ambient %.1f  spin %+.2f\n", s.Level, s.AmbientFloor, s.SpinDirection))

	beat := dimStyle.Render(" beat ")
	if s.BeatDetected {
		beat = beatStyle.Render(" BEAT ")
	}
	sb.WriteString(fmt.Sprintf("%s #%d  interval %s\n", beat, s.BeatCounter, s.BeatInterval.Round(time.Millisecond)))

	if m.err != nil {
		sb.WriteString(fmt.Sprintf("\nerror: %v\n", m.err))
	}
	sb.WriteString("\n")
	sb.WriteString(m.help.View(keys))
	return sb.String()
}

func renderStrip(pixels []color.RGBA) string {
	var sb strings.Builder
	for _, c := range pixels {
		hex := fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("██"))
	}
	return sb.String()
}

func meter(v float64) string {
	n := int(v*meterWidth + 0.5)
	n = min(max(n, 0), meterWidth)
	return highlightStyle.Render(strings.Repeat("█", n)) + dimStyle.Render(strings.Repeat("░", meterWidth-n))
}

// RunMonitor runs the monitor until the user quits or ctx is done.
func RunMonitor(ctx context.Context, engine Engine, frames FrameSource) error {
	p := tea.NewProgram(NewMonitorModel(ctx, engine, frames), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
