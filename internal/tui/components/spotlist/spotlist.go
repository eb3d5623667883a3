package spotlist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/slotbook/internal/constants"
	"github.com/julianstephens/slotbook/internal/models"
)

var (
	indexStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(5)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Width(16)

	heldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Model is a scrollable list of bookable spots.
type Model struct {
	viewport viewport.Model
	spots    []models.BookableSlot
	loaded   bool
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.render()
}

func (m *Model) SetSpots(spots []models.BookableSlot) {
	m.spots = spots
	m.loaded = true
	m.viewport.GotoTop()
	m.render()
}

func (m Model) Len() int {
	return len(m.spots)
}

func (m *Model) render() {
	if !m.loaded {
		m.viewport.SetContent(emptyStyle.Render("Loading..."))
		return
	}
	if len(m.spots) == 0 {
		m.viewport.SetContent(emptyStyle.Render("No spots available on this day."))
		return
	}

	var b strings.Builder
	for i, s := range m.spots {
		client := fmt.Sprintf("%s - %s",
			s.ClientStartHour.Format(constants.TimeFormat),
			s.ClientEndHour.Format(constants.TimeFormat),
		)
		held := fmt.Sprintf("held %s - %s",
			s.StartHour.Format(constants.TimeFormat),
			s.EndHour.Format(constants.TimeFormat),
		)
		fmt.Fprintf(&b, "%s %s %s\n",
			indexStyle.Render(fmt.Sprintf("%d.", i+1)),
			timeStyle.Render(client),
			heldStyle.Render(held),
		)
	}
	m.viewport.SetContent(b.String())
}
