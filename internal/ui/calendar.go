package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/five82/homedash/internal/calendar"
	"github.com/five82/homedash/internal/homeapi"
)

// Calendar focus order: the text fields, then the repeat switch, the device
// list and the saved reminders.
const (
	calFocusDate = iota
	calFocusHour
	calFocusMinute
	calFocusTitle
	calFocusDescription
	calFocusRepeat
	calFocusDevices
	calFocusEvents
	calFocusCount
)

type calendarState struct {
	inputs       [calFocusRepeat]textinput.Model
	repeat       bool
	focus        int
	deviceCursor int
	eventCursor  int
	reminders    []calendar.Reminder
	saving       bool
}

type remindersMsg struct {
	reminders []calendar.Reminder
	err       error
	deleted   bool
}

type reminderSavedMsg struct {
	reminder calendar.Reminder
	err      error
}

func newCalendarState(now time.Time) calendarState {
	var s calendarState
	for i := range s.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 120
		s.inputs[i] = in
	}
	s.inputs[calFocusDate].Placeholder = now.Format("2006-01-02")
	s.inputs[calFocusDate].CharLimit = 10
	s.inputs[calFocusHour].CharLimit = 2
	s.inputs[calFocusMinute].CharLimit = 2
	s.resetDraft(now)
	return s
}

// resetDraft clears the form back to a blank reminder at now.
func (s *calendarState) resetDraft(now time.Time) {
	d := calendar.NewDraft(now)
	s.inputs[calFocusDate].SetValue("")
	s.inputs[calFocusHour].SetValue(fmt.Sprintf("%02d", d.Hour))
	s.inputs[calFocusMinute].SetValue(fmt.Sprintf("%02d", d.Minute))
	s.inputs[calFocusTitle].SetValue("")
	s.inputs[calFocusDescription].SetValue("")
	s.repeat = false
}

// focusInput focuses the current text field and blurs the rest.
func (s *calendarState) focusInput() tea.Cmd {
	var cmd tea.Cmd
	for i := range s.inputs {
		if i == s.focus {
			cmd = s.inputs[i].Focus()
		} else {
			s.inputs[i].Blur()
		}
	}
	return cmd
}

// draft reads the form. Hour and minute that are not numbers come back as
// -1 so validation rejects them.
func (s calendarState) draft() calendar.Draft {
	num := func(i int) int {
		n, err := strconv.Atoi(strings.TrimSpace(s.inputs[i].Value()))
		if err != nil {
			return -1
		}
		return n
	}
	return calendar.Draft{
		Date:        s.inputs[calFocusDate].Value(),
		Hour:        num(calFocusHour),
		Minute:      num(calFocusMinute),
		Title:       s.inputs[calFocusTitle].Value(),
		Description: s.inputs[calFocusDescription].Value(),
		Repeat:      s.repeat,
	}
}

func (m Model) loadRemindersCmd() tea.Cmd {
	planner, ctx := m.planner, m.ctx
	return func() tea.Msg {
		list, err := planner.List(ctx)
		return remindersMsg{reminders: list, err: err}
	}
}

func (m Model) deleteReminderCmd(id string) tea.Cmd {
	planner, ctx := m.planner, m.ctx
	return func() tea.Msg {
		if err := planner.Delete(ctx, id); err != nil {
			return remindersMsg{err: err}
		}
		list, err := planner.List(ctx)
		return remindersMsg{reminders: list, err: err, deleted: err == nil}
	}
}

func (m Model) saveReminderCmd(d calendar.Draft) tea.Cmd {
	planner, ctx := m.planner, m.ctx
	return func() tea.Msg {
		r, err := planner.Add(ctx, d)
		return reminderSavedMsg{reminder: r, err: err}
	}
}

func (m *Model) handleReminders(msg remindersMsg) {
	if msg.err != nil {
		m.logger.Warn("reminders", zap.Error(msg.err))
		m.setStatus(homeapi.Message(msg.err), statusError)
		return
	}
	m.cal.reminders = msg.reminders
	if m.cal.eventCursor >= len(msg.reminders) {
		m.cal.eventCursor = max(len(msg.reminders)-1, 0)
	}
	if msg.deleted {
		m.setStatus(m.t("reminder_deleted"), statusInfo)
	}
}

func (m Model) handleReminderSaved(msg reminderSavedMsg) (tea.Model, tea.Cmd) {
	m.cal.saving = false
	switch {
	case msg.err == nil:
	case errors.Is(msg.err, calendar.ErrMissingTitle):
		m.setStatus(m.t("reminder_missing_title"), statusWarn)
		return m, nil
	case errors.Is(msg.err, calendar.ErrMissingDate):
		m.setStatus(m.t("reminder_missing_date"), statusWarn)
		return m, nil
	case errors.Is(msg.err, calendar.ErrInvalidDate), errors.Is(msg.err, calendar.ErrInvalidTime):
		m.setStatus(m.t("reminder_invalid"), statusWarn)
		return m, nil
	default:
		m.logger.Error("save reminder", zap.Error(msg.err))
		m.setStatus(homeapi.Message(msg.err), statusError)
		return m, nil
	}

	m.logger.Info("reminder added",
		zap.String("id", msg.reminder.ID),
		zap.Time("at", msg.reminder.At),
		zap.Strings("devices", msg.reminder.Devices))
	m.cal.resetDraft(m.now())
	m.cal.focus = calFocusDate
	m.setStatus(m.t("reminder_added"), statusInfo)
	return m, tea.Batch(m.loadRemindersCmd(), m.cal.focusInput())
}

func (m Model) handleCalendarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.cal
	switch {
	case key.Matches(msg, m.keys.NextField):
		s.focus = (s.focus + 1) % calFocusCount
		return m, s.focusInput()
	case key.Matches(msg, m.keys.PrevField):
		s.focus = (s.focus + calFocusCount - 1) % calFocusCount
		return m, s.focusInput()
	case key.Matches(msg, m.keys.Submit):
		if s.saving {
			return m, nil
		}
		s.saving = true
		return m, m.saveReminderCmd(s.draft())
	}

	switch s.focus {
	case calFocusRepeat:
		if key.Matches(msg, m.keys.Toggle) {
			s.repeat = !s.repeat
		}
		return m, nil

	case calFocusDevices:
		catalog := m.planner.Catalog()
		switch {
		case key.Matches(msg, m.keys.Down):
			if s.deviceCursor < len(catalog)-1 {
				s.deviceCursor++
			}
		case key.Matches(msg, m.keys.Up):
			if s.deviceCursor > 0 {
				s.deviceCursor--
			}
		case key.Matches(msg, m.keys.Favorite):
			if s.deviceCursor < len(catalog) {
				m.planner.ToggleFavorite(catalog[s.deviceCursor].Name)
			}
		case key.Matches(msg, m.keys.Toggle):
			if s.deviceCursor < len(catalog) {
				m.planner.ToggleSelected(catalog[s.deviceCursor].Name)
			}
		}
		return m, nil

	case calFocusEvents:
		switch {
		case key.Matches(msg, m.keys.Down):
			if s.eventCursor < len(s.reminders)-1 {
				s.eventCursor++
			}
		case key.Matches(msg, m.keys.Up):
			if s.eventCursor > 0 {
				s.eventCursor--
			}
		case key.Matches(msg, m.keys.Delete):
			if s.eventCursor < len(s.reminders) {
				return m, m.deleteReminderCmd(s.reminders[s.eventCursor].ID)
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return m, cmd
}

func (m Model) renderCalendar(width, height int) string {
	styles := m.theme.Styles()
	s := m.cal

	label := func(focus int, text string) string {
		if s.focus == focus {
			return styles.AccentText.Bold(true).Render("▸ " + text)
		}
		return styles.MutedText.Render("  " + text)
	}

	var form strings.Builder
	form.WriteString(styles.AccentText.Bold(true).Render(m.t("add_event")))
	form.WriteString("\n\n")
	fields := []struct {
		focus int
		key   string
	}{
		{calFocusDate, "reminder_date"},
		{calFocusHour, "reminder_hour"},
		{calFocusMinute, "reminder_minute"},
		{calFocusTitle, "reminder_title"},
		{calFocusDescription, "reminder_description"},
	}
	for _, f := range fields {
		form.WriteString(label(f.focus, m.t(f.key)))
		form.WriteString("\n    ")
		form.WriteString(s.inputs[f.focus].View())
		form.WriteString("\n")
	}
	check := "[ ]"
	if s.repeat {
		check = "[x]"
	}
	form.WriteString(label(calFocusRepeat, m.t("reminder_repeat")+" "+check))
	form.WriteString("\n\n")
	form.WriteString(label(calFocusDevices, m.t("reminder_devices")))
	form.WriteString("\n")
	for i, d := range m.planner.Catalog() {
		star := " "
		if m.planner.IsFavorite(d.Name) {
			star = styles.WarningText.Render("★")
		}
		box := "[ ]"
		if m.planner.IsSelected(d.Name) {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s %s %s", star, box, d.Name, styles.FaintText.Render(d.Type))
		if s.focus == calFocusDevices && i == s.deviceCursor {
			line = styles.Selected.Render(line)
		}
		form.WriteString("    " + line + "\n")
	}
	if favs := m.planner.Favorites(); len(favs) > 0 {
		form.WriteString(styles.MutedText.Render("    " + m.t("favorites") + ": " + strings.Join(favs, ", ")))
		form.WriteString("\n")
	}
	if s.saving {
		form.WriteString(styles.WarningText.Render(m.t("submitting")))
	}

	var events strings.Builder
	events.WriteString(label(calFocusEvents, m.t("calendar_title")))
	events.WriteString("\n\n")
	if len(s.reminders) == 0 {
		events.WriteString(styles.FaintText.Render(m.t("no_events")))
	}
	for i, r := range s.reminders {
		line := r.At.Format("2006-01-02 15:04") + "  " + r.Title
		if r.Repeat {
			line += " ↻"
		}
		if len(r.Devices) > 0 {
			line += styles.FaintText.Render(" [" + strings.Join(r.Devices, ", ") + "]")
		}
		if s.focus == calFocusEvents && i == s.eventCursor {
			line = styles.Selected.Render(line)
		}
		events.WriteString(line + "\n")
		if r.Description != "" {
			events.WriteString(styles.FaintText.Render("    "+truncate(r.Description, max(width/2-6, 10))) + "\n")
		}
	}

	if width < LayoutCompactWidth {
		return form.String() + "\n" + events.String()
	}
	half := width/2 - 1
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(half).Render(form.String()),
		lipgloss.NewStyle().Width(half).Render(events.String()),
	)
}
