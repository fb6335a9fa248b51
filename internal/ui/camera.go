package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/homedash/internal/camera"
	"github.com/five82/homedash/internal/carousel"
	"github.com/five82/homedash/internal/config"
)

type cameraState struct {
	carousel *carousel.Carousel[config.Camera]
	mover    *camera.Mover
	panSeq   int
}

// panReleaseMsg fires PanReleaseAfter the last pan key. Terminals send no
// key-up events, so a direction counts as held while repeats keep arriving.
type panReleaseMsg struct{ seq int }

// newPanMover logs each pan step; the feed has no control channel.
func newPanMover(logger *zap.Logger) *camera.Mover {
	return camera.NewMover(func(d camera.Direction) {
		logger.Debug("camera move", zap.Stringer("direction", d))
	}, logger)
}

func (m Model) panDirection(msg tea.KeyMsg) (camera.Direction, bool) {
	switch {
	case key.Matches(msg, m.keys.PanUp):
		return camera.Up, true
	case key.Matches(msg, m.keys.PanDown):
		return camera.Down, true
	case key.Matches(msg, m.keys.PanLeft):
		return camera.Left, true
	case key.Matches(msg, m.keys.PanRight):
		return camera.Right, true
	}
	return 0, false
}

func (m Model) handleCameraKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if d, ok := m.panDirection(msg); ok {
		m.camera.mover.Press(m.ctx, d)
		m.camera.panSeq++
		seq := m.camera.panSeq
		return m, tea.Tick(PanReleaseAfter, func(time.Time) tea.Msg {
			return panReleaseMsg{seq: seq}
		})
	}
	switch {
	case key.Matches(msg, m.keys.Next):
		m.camera.mover.Release()
		return m, slide(m.camera.carousel, carouselCamera, true)
	case key.Matches(msg, m.keys.Prev):
		m.camera.mover.Release()
		return m, slide(m.camera.carousel, carouselCamera, false)
	}
	return m, nil
}

func (m Model) renderCamera(width, height int) string {
	styles := m.theme.Styles()
	c := m.camera.carousel
	var b strings.Builder

	b.WriteString(styles.AccentText.Bold(true).Render(m.t("camera_title")))
	b.WriteString("\n\n")

	visible := c.Visible()
	if len(visible) == 0 {
		b.WriteString(styles.MutedText.Render(m.t("no_image")))
		return b.String()
	}

	name := visible[0].Name
	if c.Phase() == carousel.Transitioning {
		name = styles.FaintText.Render(name)
	}
	feedWidth := min(max(width-4, 20), 60)
	feed := styles.Card.Width(feedWidth).Height(max(min(height-10, 10), 3)).Render(
		styles.Text.Bold(true).Render(name) + "\n" + m.renderPanPad(),
	)
	b.WriteString(feed)
	b.WriteString("\n")
	b.WriteString(m.renderCarouselFooter(c))
	b.WriteString("\n\n")

	if d, ok := m.camera.mover.Active(); ok {
		b.WriteString(styles.WarningText.Render(m.tf("camera_moving", "direction", d.String())))
	} else {
		b.WriteString(styles.FaintText.Render(m.t("camera_hint")))
	}
	b.WriteString(styles.FaintText.Render(fmt.Sprintf("  (%d)", m.camera.mover.Steps())))
	return b.String()
}

// renderPanPad draws the four direction arrows, lighting the held one.
func (m Model) renderPanPad() string {
	styles := m.theme.Styles()
	active, held := m.camera.mover.Active()
	arrow := func(d camera.Direction, glyph string) string {
		if held && active == d {
			return styles.AccentText.Bold(true).Render(glyph)
		}
		return styles.MutedText.Render(glyph)
	}
	return strings.Join([]string{
		"    " + arrow(camera.Up, "▲"),
		arrow(camera.Left, "◀") + "   " + arrow(camera.Right, "▶"),
		"    " + arrow(camera.Down, "▼"),
	}, "\n")
}
