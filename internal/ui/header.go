package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/homedash/internal/nav"
)

type sidebarItem struct {
	binding key.Binding
	route   string
	label   string
}

func sidebarItems(keys keyMap) []sidebarItem {
	return []sidebarItem{
		{keys.ViewHome, nav.RouteHome, "nav_home"},
		{keys.ViewRooms, nav.RouteRooms, "nav_rooms"},
		{keys.ViewCamera, nav.RouteCamera, "nav_camera"},
		{keys.ViewCalendar, nav.RouteCalendar, "nav_calendar"},
		{keys.ViewAddUser, nav.RouteAddUser, "nav_add_user"},
		{keys.ViewLogs, nav.RouteLogs, "nav_logs"},
		{keys.ViewLogin, nav.RouteLogin, "nav_login"},
	}
}

func (m Model) sidebarWidth() int {
	if m.sidebarCollapsed || m.width < LayoutCompactWidth {
		return SidebarCollapsedWidth
	}
	return SidebarWidth
}

// contentSize is the area left for the active view: everything but the
// header, footer and sidebar.
func (m Model) contentSize() (int, int) {
	return max(m.width-m.sidebarWidth()-2, 1), max(m.height-2, 1)
}

func (m Model) renderMain() string {
	w, h := m.contentSize()
	content := m.renderContent(w, h)
	content = lipgloss.NewStyle().
		Width(w).
		Height(h).
		MaxHeight(h).
		Padding(0, 1).
		Render(content)

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(h), content)
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

func (m Model) renderContent(width, height int) string {
	route := m.router.Current()
	if _, ok := nav.RoomFromRoute(route); ok {
		return m.renderRoom(width, height)
	}
	switch route {
	case nav.RouteRooms:
		return m.renderRooms(width, height)
	case nav.RouteCamera:
		return m.renderCamera(width, height)
	case nav.RouteCalendar:
		return m.renderCalendar(width, height)
	case nav.RouteAddUser:
		return m.renderUsers(width, height)
	case nav.RouteLogin:
		return m.renderLogin(width, height)
	case nav.RouteLogs:
		return m.renderLogs(width, height)
	default:
		return m.renderHome(width, height)
	}
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	left := bg.Render(m.t("app_title"), styles.Logo)

	var conn string
	switch {
	case m.snapshot.IsOffline():
		conn = bg.Render("● "+m.t("offline"), styles.DangerText)
	case !m.snapshot.LastUpdated.IsZero() && m.snapshot.LastError == nil:
		conn = bg.Render("● "+m.t("online"), styles.SuccessText)
	case m.snapshot.Room != "":
		conn = bg.Render("● "+m.t("status_connecting"), styles.WarningText)
	}

	right := bg.Join([]string{
		conn,
		bg.Render(strings.ToUpper(m.session.Language()), styles.MutedText),
		bg.Render(m.theme.Name, styles.FaintText),
	}, "  ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	line := bg.Spaces(1) + left + bg.Spaces(gap) + right + bg.Spaces(1)
	return bg.FillLine(line, m.width)
}

func (m Model) renderSidebar(height int) string {
	styles := m.theme.Styles()
	width := m.sidebarWidth()
	collapsed := width == SidebarCollapsedWidth

	current := m.router.Current()
	if _, ok := nav.RoomFromRoute(current); ok {
		current = nav.RouteRooms
	}

	lines := make([]string, 0, height)
	for _, item := range sidebarItems(m.keys) {
		text := item.binding.Help().Key
		if !collapsed {
			text = fmt.Sprintf("%s %s", text, m.t(item.label))
		}
		style := styles.MutedText
		if item.route == current {
			style = styles.Selected.Bold(true)
		}
		lines = append(lines, style.Width(width).Render(" "+truncate(text, width-1)))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return styles.Surface.Width(width).Height(height).Render(strings.Join(lines[:height], "\n"))
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	var text string
	if m.status.text != "" {
		style := styles.InfoText
		switch m.status.kind {
		case statusWarn:
			style = styles.WarningText
		case statusError:
			style = styles.DangerText
		}
		text = bg.Render(truncate(m.status.text, m.width-2), style)
	} else {
		parts := make([]string, 0, 4)
		for _, b := range []key.Binding{m.keys.Back, m.keys.Help, m.keys.CycleLanguage, m.keys.Quit} {
			h := b.Help()
			parts = append(parts, bg.Render(h.Key, styles.AccentText)+bg.Spaces(1)+bg.Render(h.Desc, styles.MutedText))
		}
		text = bg.Join(parts, "  ")
	}
	return bg.FillLine(bg.Spaces(1)+text, m.width)
}
