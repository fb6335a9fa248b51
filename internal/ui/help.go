package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

var helpTitles = []string{"Views", "Movement", "Actions", "Camera", "Logs", "General"}

// renderHelp renders the help overlay from the key map.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)

	section := func(title string, bindings []key.Binding) string {
		var b strings.Builder
		b.WriteString(styles.AccentText.Bold(true).Render(title))
		b.WriteString("\n")
		for _, binding := range bindings {
			h := binding.Help()
			b.WriteString(keyStyle.Render(h.Key))
			b.WriteString(styles.Text.Render(h.Desc))
			b.WriteString("\n")
		}
		return b.String()
	}

	groups := m.keys.FullHelp()
	blocks := make([]string, len(groups))
	for i, g := range groups {
		blocks[i] = section(helpTitles[i], g)
	}

	var content string
	if m.width >= LayoutCompactWidth {
		half := (len(blocks) + 1) / 2
		col := lipgloss.NewStyle().Width(32)
		content = lipgloss.JoinHorizontal(lipgloss.Top,
			col.Render(strings.Join(blocks[:half], "\n")),
			col.Render(strings.Join(blocks[half:], "\n")),
		)
	} else {
		content = strings.Join(blocks, "\n")
	}

	title := styles.Text.Bold(true).Render("Keyboard Shortcuts") + "\n" +
		styles.FaintText.Render(strings.Repeat("─", 30)) + "\n\n"

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Render(title + content)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
