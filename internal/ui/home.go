package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/homedash/internal/carousel"
	"github.com/five82/homedash/internal/config"
	"github.com/five82/homedash/internal/nav"
)

type homeState struct {
	rooms  *carousel.Carousel[config.Room]
	cursor int
	speed  int
}

type roomsState struct {
	carousel *carousel.Carousel[config.Room]
	cursor   int
}

// moveCursor steps the highlighted card inside the visible window and
// slides the carousel when stepping past either edge.
func moveCursor(c *carousel.Carousel[config.Room], cursor *int, delta int, id carouselID) tea.Cmd {
	visible := len(c.Visible())
	next := *cursor + delta
	switch {
	case next < 0:
		return slide(c, id, false)
	case next >= visible:
		return slide(c, id, true)
	}
	*cursor = next
	return nil
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.home.rooms
	switch {
	case key.Matches(msg, m.keys.Next):
		return m, slide(c, carouselHome, true)
	case key.Matches(msg, m.keys.Prev):
		return m, slide(c, carouselHome, false)
	case key.Matches(msg, m.keys.Down):
		return m, moveCursor(c, &m.home.cursor, 1, carouselHome)
	case key.Matches(msg, m.keys.Up):
		return m, moveCursor(c, &m.home.cursor, -1, carouselHome)
	case key.Matches(msg, m.keys.Open):
		visible := c.Visible()
		if c.Phase() == carousel.Idle && m.home.cursor < len(visible) {
			return m, m.navigate(nav.RoomDevices(visible[m.home.cursor].Name))
		}
	case msg.String() == "c":
		return m, m.navigate(nav.RouteCamera)
	}
	return m, nil
}

func (m Model) handleRoomsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.rooms.carousel
	switch {
	case key.Matches(msg, m.keys.Next):
		return m, slide(c, carouselRooms, true)
	case key.Matches(msg, m.keys.Prev):
		return m, slide(c, carouselRooms, false)
	case key.Matches(msg, m.keys.Down):
		return m, moveCursor(c, &m.rooms.cursor, 1, carouselRooms)
	case key.Matches(msg, m.keys.Up):
		return m, moveCursor(c, &m.rooms.cursor, -1, carouselRooms)
	case key.Matches(msg, m.keys.Open):
		visible := c.Visible()
		if c.Phase() == carousel.Idle && m.rooms.cursor < len(visible) {
			return m, m.navigate(nav.RoomDevices(visible[m.rooms.cursor].Name))
		}
	}
	return m, nil
}

func (m Model) renderHome(width, height int) string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(styles.AccentText.Bold(true).Render(m.t("nav_rooms")))
	b.WriteString("\n\n")
	b.WriteString(m.renderRoomCards(m.home.rooms, m.home.cursor, width))
	b.WriteString("\n")
	b.WriteString(m.renderCarouselFooter(m.home.rooms))
	b.WriteString("\n\n")
	b.WriteString(m.renderNetwork(width))
	b.WriteString("\n\n")

	if sel := m.session.SelectedDevice(); sel != "" {
		b.WriteString(styles.MutedText.Render(m.t("selected") + ": "))
		b.WriteString(styles.WarningText.Render(sel))
		b.WriteString("\n")
	}
	b.WriteString(styles.FaintText.Render("c " + m.t("check_camera")))
	return b.String()
}

func (m Model) renderRooms(width, height int) string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(m.t("rooms_title")))
	b.WriteString("\n\n")
	b.WriteString(m.renderRoomCards(m.rooms.carousel, m.rooms.cursor, width))
	b.WriteString("\n")
	b.WriteString(m.renderCarouselFooter(m.rooms.carousel))
	return b.String()
}

// renderRoomCards lays the committed window out as a row of cards. A pending
// slide is marked with its direction; the cards change only once it commits.
func (m Model) renderRoomCards(c *carousel.Carousel[config.Room], cursor, width int) string {
	styles := m.theme.Styles()
	visible := c.Visible()
	if len(visible) == 0 {
		return styles.MutedText.Render(m.t("no_image"))
	}

	cardWidth := max((width-2*c.Step())/c.Step()-2, 8)
	cards := make([]string, 0, len(visible))
	for i, room := range visible {
		style := styles.Card
		if i == cursor {
			style = styles.CardFocused
		}
		image := room.Image
		if image == "" {
			image = m.t("no_image")
		}
		body := lipgloss.JoinVertical(lipgloss.Left,
			styles.Text.Bold(true).Render(truncate(room.Name, cardWidth)),
			styles.FaintText.Render(truncate(image, cardWidth)),
		)
		cards = append(cards, style.Width(cardWidth).Render(body))
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	if c.Phase() == carousel.Transitioning {
		marker := "»"
		if c.Variant() == carousel.VariantPrev {
			marker = "«"
		}
		return lipgloss.JoinHorizontal(lipgloss.Center, styles.FaintText.Render(marker+" "), row)
	}
	return row
}

// renderCarouselFooter draws prev/next arrows, page dots and the page text.
// During a slide the target page is marked until it commits.
func (m Model) renderCarouselFooter(c interface {
	CanPrevious() bool
	CanNext() bool
	PageCount() int
	CurrentPage() int
	PendingPage() int
}) string {
	styles := m.theme.Styles()
	arrow := func(s string, enabled bool) string {
		if enabled {
			return styles.AccentText.Render(s)
		}
		return styles.FaintText.Render(s)
	}
	pages := c.PageCount()
	if pages == 0 {
		return ""
	}
	dots := make([]string, pages)
	for i := range dots {
		switch i {
		case c.CurrentPage():
			dots[i] = styles.AccentText.Render("●")
		case c.PendingPage():
			dots[i] = styles.InfoText.Render("◍")
		default:
			dots[i] = styles.FaintText.Render("○")
		}
	}
	return fmt.Sprintf("%s %s %s  %s",
		arrow("◀", c.CanPrevious()),
		strings.Join(dots, " "),
		arrow("▶", c.CanNext()),
		styles.MutedText.Render(m.tf("page_indicator",
			"current", fmt.Sprint(c.CurrentPage()+1),
			"total", fmt.Sprint(pages))),
	)
}

// renderNetwork draws the sampled network speed as a gauge.
func (m Model) renderNetwork(width int) string {
	styles := m.theme.Styles()
	barWidth := min(max(width-30, 10), 40)
	filled := m.home.speed * barWidth / NetworkMaxMbps
	bar := styles.SuccessText.Render(strings.Repeat("█", filled)) +
		styles.FaintText.Render(strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("%s  %s %s",
		styles.MutedText.Render(m.t("network_speed")),
		bar,
		styles.Text.Render(fmt.Sprintf("%d Mbps", m.home.speed)),
	)
}
