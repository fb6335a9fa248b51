package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestThemeLookups(t *testing.T) {
	assert.Equal(t, "Kanagawa", GetTheme("Kanagawa").Name)
	assert.Equal(t, "Nightfox", GetTheme("missing").Name)

	assert.Equal(t, "Kanagawa", NextTheme("Nightfox"))
	assert.Equal(t, "Nightfox", NextTheme("Slate"))
	assert.Equal(t, "Nightfox", NextTheme("unknown"))
}

func TestBadgeColors(t *testing.T) {
	th := GetTheme("Slate")
	styles := th.Styles()

	assert.Equal(t, lipgloss.Color(th.Success), styles.Badge(badgeOn).GetBackground())
	assert.Equal(t, lipgloss.Color(th.Warning), styles.Badge(badgePending).GetBackground())
	assert.Equal(t, lipgloss.Color(th.Muted), styles.Badge("other").GetBackground())
}

func TestTruncateMeasuresCells(t *testing.T) {
	assert.Equal(t, "Living Room", truncate("  Living Room  ", 20))
	assert.Equal(t, "Livi...", truncate("Living Room", 7))
	assert.Equal(t, "Liv", truncate("Living Room", 3))
	assert.Equal(t, 7, lipgloss.Width(truncate("客厅的空调和风扇", 7)))

	assert.Equal(t, "客厅  ", padRight("客厅", 6))
	assert.Equal(t, "Lamp", padRight("Lamp", 2))
}
