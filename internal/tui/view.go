package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	if m.err != nil {
		content = errorStyle.Render("Error: " + m.err.Error())
	} else {
		content = docStyle.Render(m.spotList.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		m.viewWindows(),
		content,
		m.help.View(m.keys),
	)
}

func (m Model) viewHeader() string {
	title := titleStyle.Render(m.calendarID)
	sub := subtitleStyle.Render(fmt.Sprintf("%s · %d min · %d spots", m.day, m.duration, m.spotList.Len()))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, sub)
}

func (m Model) viewWindows() string {
	if len(m.free) == 0 {
		return windowStyle.Render("Free: none")
	}
	parts := make([]string, len(m.free))
	for i, w := range m.free {
		parts[i] = w.String()
	}
	return windowStyle.Render("Free: " + strings.Join(parts, ", "))
}
