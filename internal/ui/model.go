// Package ui provides the Bubbletea terminal dashboard for a muve
// session: live smoothed magnitudes, classification, stability progress
// and crossfade state.
package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/exerrika/muve/internal/engine"
	"github.com/exerrika/muve/internal/motion"
)

// historyLen bounds the combined-magnitude sparkline.
const historyLen = 60

// eventLen bounds the recent-event list.
const eventLen = 6

// tickInterval is the dashboard refresh cadence.
const tickInterval = 100 * time.Millisecond

type tickMsg time.Time

// Model is the Bubbletea model for the session dashboard.
type Model struct {
	eng             *engine.Engine
	stabilityPeriod time.Duration

	status  engine.Status
	history []float64
	events  []string

	width  int
	height int
}

// NewModel creates a dashboard over a constructed engine.
func NewModel(eng *engine.Engine, stabilityPeriod time.Duration) Model {
	return Model{
		eng:             eng,
		stabilityPeriod: stabilityPeriod,
		status:          eng.Status(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.status = m.eng.Status()
		m.history = append(m.history, m.status.Smoothed.Combined)
		if len(m.history) > historyLen {
			m.history = m.history[len(m.history)-historyLen:]
		}
		return m, tick()

	case IntensityMsg:
		// Raw classification changes are frequent; the gauges already
		// show them, so no event line.

	case ConfirmedMsg:
		m = m.pushEvent(fmt.Sprintf("confirmed %s → %s", msg.Level, engine.StyleFor(msg.Level)))

	case ProgressMsg:
		if msg.InProgress {
			m = m.pushEvent("crossfade started")
		} else {
			m = m.pushEvent("crossfade finished")
		}

	case FeedStoppedMsg:
		m = m.pushEvent("sensor feed stopped")
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "a":
		if m.eng.Mode() == engine.ModeAuto {
			m.eng.DisableAuto()
			m = m.pushEvent("switched to manual mode")
		} else {
			m.eng.EnableAuto()
			m = m.pushEvent("switched to auto mode")
		}

	case "1", "2", "3", "4":
		level := motion.Level(int(msg.String()[0] - '1'))
		if track, ok := m.eng.ManualSelect(level); ok {
			m = m.pushEvent(fmt.Sprintf("manual: %s (%s)", track.TrackTitle(), level))
		} else {
			m = m.pushEvent(fmt.Sprintf("manual: no track for %s", level))
		}

	case "c":
		if t, err := m.eng.Calibrate(); err != nil {
			m = m.pushEvent(fmt.Sprintf("calibration failed: %v", err))
		} else {
			m = m.pushEvent(fmt.Sprintf("calibrated %.2f/%.2f/%.2f", t.Calm, t.Moderate, t.Active))
		}

	case "+", "=":
		m.eng.SetVolume(m.status.Volume + 0.05)
	case "-":
		m.eng.SetVolume(m.status.Volume - 0.05)
	}

	return m, nil
}

func (m Model) pushEvent(line string) Model {
	stamp := time.Now().Format("15:04:05")
	m.events = append(m.events, stamp+"  "+line)
	if len(m.events) > eventLen {
		m.events = m.events[len(m.events)-eventLen:]
	}
	return m
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return "Starting session...\n"
	}
	return renderDashboard(m)
}
