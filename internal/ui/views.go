package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/exerrika/muve/internal/engine"
	"github.com/exerrika/muve/internal/motion"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5F5FD7"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	valueStyle = lipgloss.NewStyle().
			Bold(true)

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)
)

// levelColors gives each intensity band a stable accent color.
var levelColors = map[motion.Level]lipgloss.Color{
	motion.Calm:      lipgloss.Color("#5FAFAF"),
	motion.Moderate:  lipgloss.Color("#87AF5F"),
	motion.Active:    lipgloss.Color("#D7AF5F"),
	motion.Energetic: lipgloss.Color("#D75F5F"),
}

func levelBadge(level motion.Level) string {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#000000")).
		Background(levelColors[level]).
		Padding(0, 1)
	return style.Render(strings.ToUpper(level.String()))
}

// barWidth is the gauge width in cells.
const barWidth = 30

// gaugeMax is the magnitude rendered as a full bar; matches the top of the
// useful classification range.
const gaugeMax = 2.5

func renderBar(value, max float64, color lipgloss.Color) string {
	if max <= 0 {
		max = 1
	}
	frac := value / max
	if frac < 0 {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}
	filled := int(frac*barWidth + 0.5)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	return lipgloss.NewStyle().Foreground(color).Render(bar)
}

func renderDashboard(m Model) string {
	var b strings.Builder
	st := m.status

	b.WriteString(titleStyle.Render("Muve 🎷 Motion-Adaptive Session"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("mode: %s   feed: %s   motion: %s",
		st.Mode, runningLabel(st.Running), motionCharacter(st.Smoothed.Accel, st.Smoothed.Gyro))))
	b.WriteString("\n\n")

	// Signal gauges
	b.WriteString(renderGauge("accel", st.Smoothed.Accel, "#5F87D7"))
	b.WriteString(renderGauge("gyro", st.Smoothed.Gyro, "#875FD7"))
	b.WriteString(renderGauge("fused", st.Smoothed.Combined, "#5FD7AF"))
	b.WriteString("\n")

	// Classification state
	b.WriteString(labelStyle.Render("intensity  "))
	if st.HaveLevel {
		b.WriteString(levelBadge(st.Level))
	} else {
		b.WriteString(valueStyle.Render("—"))
	}
	b.WriteString(labelStyle.Render("   confirmed  "))
	b.WriteString(levelBadge(st.Confirmed))
	b.WriteString("\n")

	b.WriteString(renderPending(m))
	b.WriteString(renderTransition(st))
	b.WriteString("\n")
	b.WriteString(renderEvents(m))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("a auto/manual · 1-4 manual level · c calibrate · +/- volume · q quit"))
	b.WriteString("\n")
	return b.String()
}

func renderGauge(name string, value float64, color string) string {
	return fmt.Sprintf("%s %s %s\n",
		labelStyle.Render(fmt.Sprintf("%-6s", name)),
		renderBar(value, gaugeMax, lipgloss.Color(color)),
		valueStyle.Render(fmt.Sprintf("%5.2f", value)))
}

func renderPending(m Model) string {
	st := m.status
	if !st.Pending {
		return labelStyle.Render("stability  ") + subtitleStyle.Render("idle") + "\n"
	}
	frac := 0.0
	if m.stabilityPeriod > 0 {
		frac = float64(st.PendingFor) / float64(m.stabilityPeriod)
	}
	if frac > 1 {
		frac = 1
	}
	return fmt.Sprintf("%s %s %s\n",
		labelStyle.Render(fmt.Sprintf("%-6s", "hold")),
		renderBar(frac, 1, levelColors[st.PendingLevel]),
		valueStyle.Render(fmt.Sprintf("%s %.1fs", st.PendingLevel, st.PendingFor.Seconds())))
}

func renderTransition(st engine.Status) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("volume     "))
	b.WriteString(renderBar(st.Volume, 1, lipgloss.Color("#D7D75F")))
	b.WriteString(valueStyle.Render(fmt.Sprintf(" %3.0f%%", st.Volume*100)))
	if st.InProgress {
		b.WriteString(valueStyle.Render("  ⇆ crossfading"))
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("track      "))
	if st.HasTrack {
		b.WriteString(valueStyle.Render(st.TrackTitle))
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("  (%s · %s)", st.TrackLevel, engine.StyleFor(st.TrackLevel))))
	} else {
		b.WriteString(subtitleStyle.Render("none yet"))
	}
	b.WriteString("\n")
	return b.String()
}

func renderEvents(m Model) string {
	if len(m.events) == 0 {
		return subtitleStyle.Render("No transitions yet — move around.") + "\n"
	}
	var b strings.Builder
	for _, e := range m.events {
		b.WriteString(eventStyle.Render(e))
		b.WriteString("\n")
	}
	return b.String()
}

// motionCharacter describes whether the movement is driven by wrist
// rotation or by translation.
func motionCharacter(accel, gyro float64) string {
	if accel < 0.05 && gyro < 0.05 {
		return "still"
	}
	ratio := motion.Dominance(accel, gyro)
	switch {
	case ratio > 1.5:
		return "rotation-led"
	case ratio < 0.67:
		return "stride-led"
	default:
		return "mixed"
	}
}

func runningLabel(running bool) string {
	if running {
		return "running"
	}
	return "stopped"
}
