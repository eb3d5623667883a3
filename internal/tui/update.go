package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// chromeHeight is the number of lines taken by the header and help bar.
const chromeHeight = 6

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.spotList.SetSize(msg.Width-4, max(msg.Height-chromeHeight, 1))
		return m, nil

	case spotsMsg:
		if msg.day != m.day || msg.duration != m.duration {
			return m, nil
		}
		m.err = msg.err
		m.free = msg.free
		if msg.err == nil {
			m.spotList.SetSpots(msg.spots)
		} else {
			m.spotList.SetSpots(nil)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.PrevDay):
			return m, m.shiftDay(-1)
		case key.Matches(msg, m.keys.NextDay):
			return m, m.shiftDay(1)
		case key.Matches(msg, m.keys.Today):
			if m.day == m.today {
				return m, nil
			}
			m.day = m.today
			return m, m.loadSpots()
		case key.Matches(msg, m.keys.Longer):
			return m, m.setDuration(m.duration + durationStep)
		case key.Matches(msg, m.keys.Shorter):
			return m, m.setDuration(m.duration - durationStep)
		case key.Matches(msg, m.keys.Reload):
			return m, m.loadSpots()
		}
	}

	var cmd tea.Cmd
	m.spotList, cmd = m.spotList.Update(msg)
	return m, cmd
}
