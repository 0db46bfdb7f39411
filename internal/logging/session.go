package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/exerrika/muve/internal/motion"
)

// Event classifies one recorded session entry.
type Event string

const (
	EventConfirmed Event = "confirmed"
	EventStarted   Event = "fade"
	EventCompleted Event = "swap"
	EventManual    Event = "manual"
)

// Record is one line of the session history.
type Record struct {
	At    time.Time
	Event Event
	Level motion.Level
	Note  string // style, track title, or suppression reason
}

// Session accumulates transition history for the end-of-run report. It is
// safe to record from observer callbacks.
type Session struct {
	mu      sync.Mutex
	started time.Time
	records []Record
}

// NewSession starts an empty history.
func NewSession() *Session {
	return &Session{started: time.Now()}
}

// Record appends one entry.
func (s *Session) Record(event Event, level motion.Level, note string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, Record{
		At:    time.Now(),
		Event: event,
		Level: level,
		Note:  note,
	})
}

var (
	reportTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#5F5FD7"))

	reportMutedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#888888"))
)

// Report renders the session history as a styled table, or a short notice
// when nothing was confirmed.
func (s *Session) Report() string {
	s.mu.Lock()
	records := make([]Record, len(s.records))
	copy(records, s.records)
	started := s.started
	s.mu.Unlock()

	var sb strings.Builder
	sb.WriteString(reportTitleStyle.Render("Session transitions"))
	sb.WriteString("\n")
	if len(records) == 0 {
		sb.WriteString(reportMutedStyle.Render("No confirmed transitions this session."))
		sb.WriteString("\n")
		return sb.String()
	}

	table := Table{Headers: []string{"Elapsed", "Event", "Level", "Detail"}}
	for _, r := range records {
		table.Rows = append(table.Rows, Row{Values: []string{
			formatElapsed(r.At.Sub(started)),
			string(r.Event),
			r.Level.String(),
			r.Note,
		}})
	}
	sb.WriteString(table.String())
	sb.WriteString(reportMutedStyle.Render(fmt.Sprintf("%d event(s) in %s", len(records), formatElapsed(time.Since(started)))))
	sb.WriteString("\n")
	return sb.String()
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%02d:%05.2f", int(d.Minutes()), d.Seconds()-60*float64(int(d.Minutes())))
}
