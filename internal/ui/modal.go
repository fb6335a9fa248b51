package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// alertModal lists messages until dismissed.
type alertModal struct {
	title  string
	lines  []string
	offset int
}

func newAlertModal(title string, lines []string) *alertModal {
	return &alertModal{title: title, lines: append([]string(nil), lines...)}
}

func (a *alertModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil, false
	}
	switch {
	case key.Matches(km, keys.Confirm), key.Matches(km, keys.Back):
		return a, nil, true
	case key.Matches(km, keys.Down):
		if a.offset < len(a.lines)-1 {
			a.offset++
		}
	case key.Matches(km, keys.Up):
		if a.offset > 0 {
			a.offset--
		}
	}
	return a, nil, false
}

func (a *alertModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	boxWidth := min(max(width-10, 30), 70)
	maxLines := max(height-8, 3)

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(a.title))
	b.WriteString("\n\n")
	end := min(a.offset+maxLines, len(a.lines))
	for _, line := range a.lines[a.offset:end] {
		b.WriteString(truncate(line, boxWidth-4))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("enter OK"))

	box := styles.CardFocused.Width(boxWidth).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
