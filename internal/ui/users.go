package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/five82/homedash/internal/bulk"
	"github.com/five82/homedash/internal/homeapi"
)

type usersState struct {
	form       *bulk.Form
	submitter  bulk.Submitter
	inputs     []textinput.Model
	focus      int
	submitting bool
}

type bulkDoneMsg struct {
	report bulk.Report
	err    error
}

var rowPlaceholders = [bulk.FieldCount]string{
	bulk.FieldUsername: "enter_username_for_row",
	bulk.FieldEmail:    "enter_email_for_row",
	bulk.FieldPassword: "enter_password_for_row",
}

// rebuildInputs recreates one input per form cell, keeping the form's
// values. It runs after rows change or the language switches.
func (s *usersState) rebuildInputs(tf func(key string, args ...string) string) {
	rows := s.form.Rows()
	inputs := make([]textinput.Model, 0, len(rows)*bulk.FieldCount)
	for r, d := range rows {
		for i := range bulk.FieldCount {
			f := bulk.Field(i)
			in := textinput.New()
			in.Prompt = ""
			in.CharLimit = 128
			in.Placeholder = tf(rowPlaceholders[f], "index", fmt.Sprint(r+1))
			in.SetValue(d.Get(f))
			if f == bulk.FieldPassword {
				in.EchoMode = textinput.EchoPassword
				in.EchoCharacter = '•'
			}
			inputs = append(inputs, in)
		}
	}
	s.inputs = inputs
	if s.focus >= len(inputs) {
		s.focus = 0
	}
}

// focusCurrent focuses the cell under the cursor and blurs the rest.
func (s *usersState) focusCurrent() tea.Cmd {
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

func (s usersState) cell() (row int, field bulk.Field) {
	return s.focus / bulk.FieldCount, bulk.Field(s.focus % bulk.FieldCount)
}

func (m Model) submitUsersCmd() tea.Cmd {
	submitter, form, ctx := m.users.submitter, m.users.form, m.ctx
	return func() tea.Msg {
		report, err := submitter.Submit(ctx, form)
		return bulkDoneMsg{report: report, err: err}
	}
}

func (m Model) handleUsersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.users
	if s.submitting || len(s.inputs) == 0 {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.NextField):
		s.focus = (s.focus + 1) % len(s.inputs)
		return m, s.focusCurrent()
	case key.Matches(msg, m.keys.PrevField):
		s.focus = (s.focus + len(s.inputs) - 1) % len(s.inputs)
		return m, s.focusCurrent()
	case key.Matches(msg, m.keys.AddRow):
		s.form.AddRow()
		s.rebuildInputs(m.tf)
		s.focus = (s.form.Len() - 1) * bulk.FieldCount
		return m, s.focusCurrent()
	case key.Matches(msg, m.keys.Submit):
		s.submitting = true
		return m, m.submitUsersCmd()
	}

	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	row, field := s.cell()
	if err := s.form.Set(row, field, s.inputs[s.focus].Value()); err != nil {
		m.logger.Debug("edit user row", zap.Error(err))
	}
	return m, cmd
}

func (m Model) handleBulkDone(msg bulkDoneMsg) (tea.Model, tea.Cmd) {
	m.users.submitting = false
	if errors.Is(msg.err, bulk.ErrNoValidRows) {
		m.setStatus(m.t("no_valid_data"), statusWarn)
		return m, nil
	}
	if msg.err != nil {
		m.logger.Error("submit users", zap.Error(msg.err))
		m.setStatus(msg.err.Error(), statusError)
		return m, nil
	}

	report := msg.report
	if len(report.Alerts) > 0 {
		m.modal = newAlertModal(m.t("add_user"), report.Alerts)
	}
	if report.SessionExpired {
		for _, res := range report.Results {
			if homeapi.IsSessionExpired(res.Err) {
				return m, m.expireSession(res.Err)
			}
		}
	}

	ok := report.Issued() - report.Failed()
	kind := statusInfo
	if report.Failed() > 0 {
		kind = statusWarn
	}
	m.setStatus(m.tf("users_submitted", "ok", fmt.Sprint(ok), "total", fmt.Sprint(report.Issued())), kind)

	var cmd tea.Cmd
	if report.Reload {
		m.users.focus = 0
		m.users.rebuildInputs(m.tf)
		cmd = m.users.focusCurrent()
	}
	return m, cmd
}

func (m Model) renderUsers(width, height int) string {
	styles := m.theme.Styles()
	s := m.users
	var b strings.Builder

	b.WriteString(styles.AccentText.Bold(true).Render(m.t("add_user")))
	b.WriteString("\n\n")

	colWidth := max((width-8)/bulk.FieldCount, 12)
	cellStyle := lipgloss.NewStyle().Width(colWidth)
	maxRows := max((height-6)/2, 1)
	row, _ := s.cell()
	first := max(row-maxRows+1, 0)
	for r := first; r < s.form.Len() && r < first+maxRows; r++ {
		marker := "  "
		if r == row {
			marker = styles.AccentText.Render("▸ ")
		}
		b.WriteString(marker)
		b.WriteString(styles.FaintText.Render(fmt.Sprintf("%2d ", r+1)))
		for f := range bulk.FieldCount {
			in := s.inputs[r*bulk.FieldCount+f]
			in.Width = colWidth - 2
			b.WriteString(cellStyle.Render(in.View()))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if s.submitting {
		b.WriteString(styles.WarningText.Render(m.t("submitting")))
	} else {
		b.WriteString(styles.FaintText.Render(
			m.keys.AddRow.Help().Key + " " + m.t("add_row") + "   " +
				m.keys.Submit.Help().Key + " " + m.t("submit")))
	}
	return b.String()
}
