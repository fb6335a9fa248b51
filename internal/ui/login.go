package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/homedash/internal/nav"
)

type loginState struct {
	input textinput.Model
}

func newLoginState() loginState {
	in := textinput.New()
	in.Prompt = "> "
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	in.CharLimit = 4096
	return loginState{input: in}
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.Confirm) {
		var cmd tea.Cmd
		m.login.input, cmd = m.login.input.Update(msg)
		return m, cmd
	}

	token := strings.TrimSpace(m.login.input.Value())
	if token == "" {
		m.setStatus(m.t("token_missing"), statusWarn)
		return m, nil
	}
	m.session.SetToken(token)
	if err := m.session.Save(); err != nil {
		m.logger.Warn("save session", zap.Error(err))
	}
	m.login.input.SetValue("")
	m.logger.Info("logged in")

	cmd := m.back()
	if m.router.Current() == nav.RouteLogin {
		cmd = m.navigate(nav.RouteHome)
	}
	m.setStatus(m.t("login_saved"), statusInfo)
	return m, cmd
}

func (m Model) renderLogin(width, height int) string {
	styles := m.theme.Styles()
	m.login.input.Width = min(max(width-8, 20), 60)

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(m.t("login_title")))
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render(m.t("login_prompt")))
	b.WriteString("\n\n")
	b.WriteString(styles.CardFocused.Render(m.login.input.View()))
	if !m.session.LoggedIn() {
		b.WriteString("\n\n")
		b.WriteString(styles.WarningText.Render(m.t("token_missing")))
	}
	return b.String()
}
