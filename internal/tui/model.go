package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/slotbook/internal/availability"
	"github.com/julianstephens/slotbook/internal/models"
	"github.com/julianstephens/slotbook/internal/tui/components/spotlist"
	"github.com/julianstephens/slotbook/internal/utils"
)

const (
	durationStep = 5
	minDuration  = 0
)

// spotsMsg carries the result of a spot lookup for day and duration. Results
// for a stale day or duration are dropped.
type spotsMsg struct {
	day      string
	duration int
	spots    []models.BookableSlot
	free     []models.TimeWindow
	err      error
}

type Model struct {
	finder     *availability.Finder
	calendarID string
	day        string
	today      string
	duration   int
	free       []models.TimeWindow
	err        error
	spotList   spotlist.Model
	keys       KeyMap
	help       help.Model
	quitting   bool
	width      int
	height     int
}

// NewModel builds a browser for calendarID starting at day (DD-MM-YYYY) with
// spots of duration minutes.
func NewModel(finder *availability.Finder, calendarID, day string, duration int) Model {
	if duration < minDuration {
		duration = minDuration
	}
	return Model{
		finder:     finder,
		calendarID: calendarID,
		day:        day,
		today:      day,
		duration:   duration,
		spotList:   spotlist.New(0, 0),
		keys:       DefaultKeyMap(),
		help:       help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadSpots()
}

// Day returns the day currently shown.
func (m Model) Day() string {
	return m.day
}

// Duration returns the spot length currently requested.
func (m Model) Duration() int {
	return m.duration
}

func (m Model) loadSpots() tea.Cmd {
	finder, id, day, duration := m.finder, m.calendarID, m.day, m.duration
	return func() tea.Msg {
		ctx := context.Background()
		msg := spotsMsg{day: day, duration: duration}
		msg.spots, msg.err = finder.GetAvailableSpots(ctx, id, day, duration)
		if msg.err != nil {
			return msg
		}
		msg.free, msg.err = finder.FreeWindows(ctx, id, day)
		return msg
	}
}

func (m *Model) shiftDay(n int) tea.Cmd {
	next, err := utils.ShiftDay(m.day, n)
	if err != nil {
		m.err = err
		return nil
	}
	m.day = next
	return m.loadSpots()
}

func (m *Model) setDuration(d int) tea.Cmd {
	if d < minDuration || d == m.duration {
		return nil
	}
	m.duration = d
	return m.loadSpots()
}
