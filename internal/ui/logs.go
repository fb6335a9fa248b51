package ui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/five82/homedash/internal/logtail"
)

// logState holds all log-related state.
type logState struct {
	follower *logtail.Follower
	lines    []string
	follow   bool
	polling  bool
	viewport viewport.Model

	// Search
	searching bool
	search    textinput.Model
	query     *regexp.Regexp
	matches   []int // Line indices that match
	matchIdx  int
}

type logLinesMsg struct {
	lines []string
	reset bool
	err   error
}

func newLogState(path string) logState {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.CharLimit = 100

	var follower *logtail.Follower
	if strings.TrimSpace(path) != "" {
		follower = logtail.NewFollower(path, LogTailLimit)
	}
	return logState{
		follower: follower,
		follow:   true,
		search:   ti,
		viewport: viewport.New(0, 0),
	}
}

// resizeLogViewport fits the viewport to the content area.
func (m *Model) resizeLogViewport() {
	w, h := m.contentSize()
	m.logs.viewport.Width = max(w, 1)
	m.logs.viewport.Height = max(h-3, 1)
	m.refreshLogViewport()
}

// refreshLogViewport re-renders the buffered lines.
func (m *Model) refreshLogViewport() {
	m.logs.viewport.SetContent(m.renderLogContent())
	if m.logs.follow {
		m.logs.viewport.GotoBottom()
	}
}

// pollLogsCmd reads newly appended lines. At most one read runs at a time.
func (m *Model) pollLogsCmd() tea.Cmd {
	if m.logs.follower == nil || m.logs.polling {
		return nil
	}
	m.logs.polling = true
	follower := m.logs.follower
	return func() tea.Msg {
		lines, reset, err := follower.Poll()
		return logLinesMsg{lines: lines, reset: reset, err: err}
	}
}

func (m *Model) handleLogLines(msg logLinesMsg) {
	m.logs.polling = false
	if msg.err != nil {
		m.logger.Debug("poll log file", zap.Error(msg.err))
		return
	}
	if msg.reset {
		m.logs.lines = nil
		m.logs.matches = nil
		m.logs.matchIdx = 0
	}
	if len(msg.lines) == 0 && !msg.reset {
		return
	}
	m.logs.lines = trimLogBuffer(append(m.logs.lines, msg.lines...), LogBufferLimit)
	m.logs.findMatches()
	m.refreshLogViewport()
}

func trimLogBuffer(lines []string, limit int) []string {
	if overflow := len(lines) - limit; overflow > 0 {
		return append([]string(nil), lines[overflow:]...)
	}
	return lines
}

// stopSearch leaves search input mode and drops the active query.
func (s *logState) stopSearch() {
	s.searching = false
	s.search.Blur()
	s.search.SetValue("")
	s.query = nil
	s.matches = nil
	s.matchIdx = 0
}

func (s *logState) findMatches() {
	s.matches = nil
	if s.query == nil {
		return
	}
	for i, line := range s.lines {
		if s.query.MatchString(line) {
			s.matches = append(s.matches, i)
		}
	}
	if s.matchIdx >= len(s.matches) {
		s.matchIdx = 0
	}
}

// scrollToMatch centers the current match and stops following.
func (s *logState) scrollToMatch() {
	if len(s.matches) == 0 || s.matchIdx >= len(s.matches) {
		return
	}
	s.follow = false
	s.viewport.SetYOffset(max(s.matches[s.matchIdx]-s.viewport.Height/2, 0))
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.logs.searching {
		return m.handleLogSearchInput(msg)
	}

	s := &m.logs
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		s.follow = !s.follow
		if s.follow {
			s.viewport.GotoBottom()
			return m, m.pollLogsCmd()
		}
	case key.Matches(msg, m.keys.Search):
		s.searching = true
		s.search.SetValue("")
		return m, s.search.Focus()
	case key.Matches(msg, m.keys.NextMatch):
		if len(s.matches) > 0 {
			s.matchIdx = (s.matchIdx + 1) % len(s.matches)
			m.refreshLogViewport()
			s.scrollToMatch()
		}
	case key.Matches(msg, m.keys.PrevMatch):
		if len(s.matches) > 0 {
			s.matchIdx = (s.matchIdx - 1 + len(s.matches)) % len(s.matches)
			m.refreshLogViewport()
			s.scrollToMatch()
		}
	case key.Matches(msg, m.keys.Top):
		s.viewport.GotoTop()
		s.follow = false
	case key.Matches(msg, m.keys.Bottom):
		s.viewport.GotoBottom()
		s.follow = true
	case key.Matches(msg, m.keys.Down):
		s.viewport.ScrollDown(1)
		s.follow = false
	case key.Matches(msg, m.keys.Up):
		s.viewport.ScrollUp(1)
		s.follow = false
	case key.Matches(msg, m.keys.PageDown):
		s.viewport.PageDown()
		s.follow = false
	case key.Matches(msg, m.keys.PageUp):
		s.viewport.PageUp()
		s.follow = false
	}
	return m, nil
}

func (m Model) handleLogSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.logs
	switch {
	case key.Matches(msg, m.keys.Confirm):
		query := strings.TrimSpace(s.search.Value())
		s.searching = false
		s.search.Blur()
		if query == "" {
			s.query = nil
			s.findMatches()
			m.refreshLogViewport()
			return m, nil
		}
		re, err := regexp.Compile("(?i)" + query)
		if err != nil {
			re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
		}
		s.query = re
		s.matchIdx = 0
		s.findMatches()
		m.refreshLogViewport()
		s.scrollToMatch()
		return m, nil

	case key.Matches(msg, m.keys.Back):
		s.searching = false
		s.search.Blur()
		s.search.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	s.search, cmd = s.search.Update(msg)
	return m, cmd
}

func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Background)
	s := m.logs
	width := s.viewport.Width

	if len(s.lines) == 0 {
		return bg.FillLine(bg.Render(m.t("log_empty"), styles.MutedText), width)
	}

	matchSet := make(map[int]bool, len(s.matches))
	for _, idx := range s.matches {
		matchSet[idx] = true
	}
	active := -1
	if s.matchIdx < len(s.matches) {
		active = s.matches[s.matchIdx]
	}

	var b strings.Builder
	for i, line := range s.lines {
		num := fmt.Sprintf("%4d │ ", i+1)
		var content string
		switch {
		case i == active:
			hl := lipgloss.NewStyle().
				Background(lipgloss.Color(m.theme.Warning)).
				Foreground(lipgloss.Color(m.theme.Background))
			content = hl.Render(num + line)
		case matchSet[i]:
			content = bg.Render(num, styles.AccentText) + bg.Render(line, styles.AccentText)
		default:
			content = bg.Render(num, styles.FaintText) + m.colorizeLine(line, styles, bg)
		}
		b.WriteString(bg.FillLine(content, width))
		if i < len(s.lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

var (
	timestampRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})`)
	levelRe     = regexp.MustCompile(`\b(DEBUG|INFO|WARN|ERROR|DPANIC|PANIC|FATAL)\b`)
	loggerRe    = regexp.MustCompile(`^\s+([a-z][\w.]*)\s`)
)

// colorizeLine styles a console-encoded log line: timestamp, level, logger
// name, then the message and fields.
func (m Model) colorizeLine(line string, styles Styles, bg BgStyle) string {
	if strings.TrimSpace(line) == "" {
		return line
	}

	var out strings.Builder
	rest := line
	if loc := timestampRe.FindStringSubmatchIndex(rest); loc != nil {
		out.WriteString(bg.Render(rest[loc[2]:loc[3]], styles.FaintText))
		rest = rest[loc[3]:]
	}
	if loc := levelRe.FindStringSubmatchIndex(rest); loc != nil && strings.TrimSpace(rest[:loc[2]]) == "" {
		level := rest[loc[2]:loc[3]]
		out.WriteString(bg.Spaces(1))
		out.WriteString(bg.Render(level, levelStyle(level, styles).Bold(true)))
		rest = rest[loc[3]:]
		if loc := loggerRe.FindStringSubmatchIndex(rest); loc != nil {
			out.WriteString(bg.Spaces(1))
			out.WriteString(bg.Render(rest[loc[2]:loc[3]], styles.AccentText))
			rest = rest[loc[3]:]
		}
	}
	out.WriteString(bg.Spaces(1))
	out.WriteString(bg.Render(strings.TrimSpace(rest), styles.Text))
	return out.String()
}

func levelStyle(level string, styles Styles) lipgloss.Style {
	switch level {
	case "INFO":
		return styles.SuccessText
	case "WARN":
		return styles.WarningText
	case "ERROR", "DPANIC", "PANIC", "FATAL":
		return styles.DangerText
	case "DEBUG":
		return styles.InfoText
	default:
		return styles.Text
	}
}

func (m Model) renderLogs(width, height int) string {
	styles := m.theme.Styles()
	s := m.logs

	title := styles.AccentText.Bold(true).Render(m.t("logs_title"))
	if m.logs.follower != nil {
		title += styles.FaintText.Render("  " + truncate(m.logs.follower.Path, max(width-20, 10)))
	}

	follow := styles.FaintText.Render(m.t("follow") + " off")
	if s.follow {
		follow = styles.SuccessText.Render(m.t("follow") + " on")
	}
	var status string
	switch {
	case s.searching:
		status = s.search.View()
	case s.query != nil:
		pos := 0
		if len(s.matches) > 0 {
			pos = s.matchIdx + 1
		}
		status = styles.InfoText.Render(fmt.Sprintf("%s: %s (%d/%d)", m.t("search"), s.query.String()[4:], pos, len(s.matches)))
	default:
		status = styles.FaintText.Render(fmt.Sprintf("%d lines", len(s.lines)))
	}

	return title + "\n" + s.viewport.View() + "\n" + follow + "  " + status
}
