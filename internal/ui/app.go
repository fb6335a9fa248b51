package ui

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/homedash/internal/bulk"
	"github.com/five82/homedash/internal/calendar"
	"github.com/five82/homedash/internal/carousel"
	"github.com/five82/homedash/internal/config"
	"github.com/five82/homedash/internal/homeapi"
	"github.com/five82/homedash/internal/i18n"
	"github.com/five82/homedash/internal/nav"
	"github.com/five82/homedash/internal/prefs"
	"github.com/five82/homedash/internal/session"
	"github.com/five82/homedash/internal/state"
	"github.com/five82/homedash/internal/toggle"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Config    config.Config
	Service   homeapi.DeviceService
	Session   *session.Session
	Store     *state.Store
	Planner   *calendar.Planner
	Bundle    *i18n.Bundle
	Policy    toggle.Policy
	Logger    *zap.Logger
	ThemeName string
	PrefsPath string

	// Now and Rand are replaced in tests.
	Now  func() time.Time
	Rand *rand.Rand
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusWarn
	statusError
)

type statusLine struct {
	text string
	kind statusKind
	at   time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	service   homeapi.DeviceService
	session   *session.Session
	store     *state.Store
	planner   *calendar.Planner
	bundle    *i18n.Bundle
	policy    toggle.Policy
	logger    *zap.Logger
	prefsPath string
	now       func() time.Time
	rng       *rand.Rand
	keys      keyMap
	router    *nav.Router

	// UI state
	theme            Theme
	width            int
	height           int
	ready            bool
	sidebarCollapsed bool
	showHelp         bool
	modal            Modal
	status           statusLine
	snapshot         state.Snapshot

	home   homeState
	rooms  roomsState
	room   *roomView
	camera cameraState
	cal    calendarState
	users  usersState
	login  loginState
	logs   logState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	rng := opts.Rand
	if rng == nil {
		seed := uint64(now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	bundle := opts.Bundle
	if bundle == nil {
		bundle = i18n.Default()
	}
	sess := opts.Session
	if sess == nil {
		sess = session.New("")
	}
	store := opts.Store
	if store == nil {
		store = state.NewStore(now)
	}
	planner := opts.Planner
	if planner == nil {
		planner = calendar.NewPlanner(calendar.NewMemoryStore(), nil)
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.DefaultTheme
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	rooms := opts.Config.Rooms
	if len(rooms) == 0 {
		rooms = config.DefaultRooms()
	}

	m := Model{
		ctx:       ctx,
		service:   opts.Service,
		session:   sess,
		store:     store,
		planner:   planner,
		bundle:    bundle,
		policy:    opts.Policy,
		logger:    logger,
		prefsPath: prefsPath,
		now:       now,
		rng:       rng,
		keys:      DefaultKeyMap(),
		router:    nav.NewRouter(nav.RouteHome),
		theme:     GetTheme(themeName),
		home: homeState{
			rooms: carousel.New(rooms, HomeRoomsStep),
		},
		rooms: roomsState{
			carousel: carousel.New(rooms, RoomsStep),
		},
		camera: cameraState{
			carousel: carousel.New(opts.Config.Cameras, CameraStep),
			mover:    newPanMover(logger.Named("camera")),
		},
		users: usersState{
			form:      bulk.NewForm(),
			submitter: bulk.Submitter{Creator: opts.Service, Limit: 4, Logger: logger.Named("bulk")},
		},
		login: newLoginState(),
		logs:  newLogState(opts.Config.LogFile),
	}
	m.home.speed = m.sampleSpeed()
	m.cal = newCalendarState(now())
	m.users.rebuildInputs(m.tf)
	if !m.authorized() {
		m.router.Navigate(nav.RouteLogin)
		m.login.input.Focus()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(DefaultUIInterval),
		textinput.Blink,
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case transitionEndMsg:
		m.endTransition(msg.id)
		return m, nil

	case devicesMsg:
		return m.handleDevices(msg)

	case toggleMsg:
		return m.handleToggleResult(msg)

	case panReleaseMsg:
		if msg.seq == m.camera.panSeq {
			m.camera.mover.Release()
		}
		return m, nil

	case remindersMsg:
		m.handleReminders(msg)
		return m, nil

	case reminderSavedMsg:
		return m.handleReminderSaved(msg)

	case bulkDoneMsg:
		return m.handleBulkDone(msg)

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil
	}

	return m.updateFocusedInput(msg)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return m.t("status_connecting")
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// t translates key in the session language.
func (m Model) t(key string) string {
	return m.bundle.T(m.session.Language(), key)
}

// tf translates key and fills {name} placeholders from name/value pairs.
func (m Model) tf(key string, args ...string) string {
	return m.bundle.Format(m.session.Language(), key, args...)
}

func (m *Model) setStatus(text string, kind statusKind) {
	m.status = statusLine{text: text, kind: kind, at: m.now()}
}

func (m Model) authorized() bool {
	return m.session.LoggedIn() && !m.session.Expired(m.now())
}

func requiresAuth(route string) bool {
	return route != nav.RouteLogin && route != nav.RouteLogs
}

// navigate moves to route, running the leave and enter hooks of the views
// involved. Routes that need a token send the user to the login view first.
func (m *Model) navigate(route string) tea.Cmd {
	if route == m.router.Current() {
		return nil
	}
	if requiresAuth(route) && !m.authorized() {
		m.setStatus(m.t("token_missing"), statusWarn)
		route = nav.RouteLogin
		if m.router.Current() == route {
			return nil
		}
	}
	m.leave(m.router.Current())
	m.router.Navigate(route)
	return m.enter(route)
}

// back pops the history and re-enters the previous view.
func (m *Model) back() tea.Cmd {
	from := m.router.Current()
	to := m.router.Back()
	if to == from {
		return nil
	}
	if requiresAuth(to) && !m.authorized() {
		m.router.Navigate(from)
		return nil
	}
	m.leave(from)
	return m.enter(to)
}

func (m *Model) leave(route string) {
	switch {
	case route == nav.RouteCamera:
		m.camera.mover.Release()
	case route == nav.RouteLogin:
		m.login.input.Blur()
	case route == nav.RouteLogs:
		m.logs.stopSearch()
	default:
		if _, ok := nav.RoomFromRoute(route); ok {
			m.closeRoom()
		}
	}
}

func (m *Model) enter(route string) tea.Cmd {
	if room, ok := nav.RoomFromRoute(route); ok {
		return m.openRoom(room)
	}
	switch route {
	case nav.RouteLogin:
		m.login.input.SetValue("")
		return m.login.input.Focus()
	case nav.RouteCalendar:
		return tea.Batch(m.loadRemindersCmd(), m.cal.focusInput())
	case nav.RouteAddUser:
		return m.users.focusCurrent()
	case nav.RouteLogs:
		return m.pollLogsCmd()
	}
	return nil
}

// expireSession drops credentials and routes to the login view. Used for
// every 401/403 regardless of which view saw it.
func (m *Model) expireSession(err error) tea.Cmd {
	m.logger.Warn("session expired", zap.Error(err))
	m.session.ClearCredentials()
	if saveErr := m.session.Save(); saveErr != nil {
		m.logger.Error("save session", zap.Error(saveErr))
	}
	cmd := m.navigate(nav.RouteLogin)
	m.setStatus(m.t("session_expired"), statusError)
	return cmd
}

// typing reports whether a text field owns the keyboard.
func (m Model) typing() bool {
	switch m.router.Current() {
	case nav.RouteLogin:
		return true
	case nav.RouteCalendar:
		return m.cal.focus < calFocusRepeat
	case nav.RouteAddUser:
		return !m.users.submitting
	case nav.RouteLogs:
		return m.logs.searching
	}
	return false
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.modal != nil {
		next, cmd, done := m.modal.Update(msg, m.keys)
		if done {
			m.modal = nil
		} else {
			m.modal = next
		}
		return m, cmd
	}

	if msg.String() == "ctrl+c" {
		m.camera.mover.Release()
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Logout) {
		return m, m.logout()
	}
	if key.Matches(msg, m.keys.Back) && !(m.router.Current() == nav.RouteLogs && m.logs.searching) {
		return m, m.back()
	}

	if !m.typing() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.camera.mover.Release()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, m.keys.CycleTheme):
			m.cycleTheme()
			return m, nil
		case key.Matches(msg, m.keys.CycleLanguage):
			m.cycleLanguage()
			m.users.rebuildInputs(m.tf)
			return m, nil
		case key.Matches(msg, m.keys.Sidebar):
			m.sidebarCollapsed = !m.sidebarCollapsed
			return m, nil
		}
		for _, item := range sidebarItems(m.keys) {
			if key.Matches(msg, item.binding) {
				return m, m.navigate(item.route)
			}
		}
	}

	route := m.router.Current()
	if _, ok := nav.RoomFromRoute(route); ok {
		return m.handleRoomKey(msg)
	}
	switch route {
	case nav.RouteHome:
		return m.handleHomeKey(msg)
	case nav.RouteRooms:
		return m.handleRoomsKey(msg)
	case nav.RouteCamera:
		return m.handleCameraKey(msg)
	case nav.RouteCalendar:
		return m.handleCalendarKey(msg)
	case nav.RouteAddUser:
		return m.handleUsersKey(msg)
	case nav.RouteLogin:
		return m.handleLoginKey(msg)
	case nav.RouteLogs:
		return m.handleLogsKey(msg)
	}
	return m, nil
}

// updateFocusedInput forwards non-key messages (cursor blink) to whichever
// text input is focused.
func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.router.Current() {
	case nav.RouteLogin:
		m.login.input, cmd = m.login.input.Update(msg)
	case nav.RouteCalendar:
		if m.cal.focus < calFocusRepeat {
			m.cal.inputs[m.cal.focus], cmd = m.cal.inputs[m.cal.focus].Update(msg)
		}
	case nav.RouteAddUser:
		if len(m.users.inputs) > 0 {
			m.users.inputs[m.users.focus], cmd = m.users.inputs[m.users.focus].Update(msg)
		}
	case nav.RouteLogs:
		if m.logs.searching {
			m.logs.search, cmd = m.logs.search.Update(msg)
		}
	}
	return m, cmd
}

func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name}); err != nil {
		m.logger.Warn("save prefs", zap.Error(err))
	}
	m.setStatus(m.tf("theme_changed", "theme", m.theme.Name), statusInfo)
}

func (m *Model) cycleLanguage() {
	next := m.bundle.Next(m.session.Language())
	if err := m.session.SetLanguage(next); err != nil {
		m.logger.Warn("set language", zap.String("language", next), zap.Error(err))
		return
	}
	if err := m.session.Save(); err != nil {
		m.logger.Warn("save session", zap.Error(err))
	}
	m.setStatus(m.t("language")+": "+strings.ToUpper(next), statusInfo)
}

func (m *Model) logout() tea.Cmd {
	m.session.ClearCredentials()
	if err := m.session.Save(); err != nil {
		m.logger.Warn("save session", zap.Error(err))
	}
	cmd := m.navigate(nav.RouteLogin)
	m.setStatus(m.t("logged_out"), statusInfo)
	return cmd
}

// handleTick processes the UI tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(DefaultUIInterval)}

	m.home.speed = m.sampleSpeed()
	if !m.status.at.IsZero() && m.now().Sub(m.status.at) > StatusTTL {
		m.status = statusLine{}
	}

	m.snapshot = m.store.Snapshot()
	if cmd := m.syncRoomFromSnapshot(); cmd != nil {
		cmds = append(cmds, cmd)
	}

	if m.router.Current() == nav.RouteHome && !m.authorized() {
		cmds = append(cmds, m.navigate(nav.RouteLogin))
	}
	if m.router.Current() == nav.RouteLogs && m.logs.follow {
		if cmd := m.pollLogsCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) sampleSpeed() int {
	return NetworkMinMbps + m.rng.IntN(NetworkMaxMbps-NetworkMinMbps+1)
}

// Messages

type tickMsg time.Time

type carouselID int

const (
	carouselHome carouselID = iota
	carouselRooms
	carouselCamera
)

type transitionEndMsg struct{ id carouselID }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func transitionCmd(id carouselID) tea.Cmd {
	return tea.Tick(TransitionDuration, func(time.Time) tea.Msg {
		return transitionEndMsg{id: id}
	})
}

// slide requests a page change and schedules its commit.
func slide[T any](c *carousel.Carousel[T], id carouselID, next bool) tea.Cmd {
	var ok bool
	if next {
		ok = c.RequestNext()
	} else {
		ok = c.RequestPrevious()
	}
	if !ok {
		return nil
	}
	return transitionCmd(id)
}

func (m *Model) endTransition(id carouselID) {
	switch id {
	case carouselHome:
		if m.home.rooms.TransitionEnd() {
			m.home.cursor = 0
		}
	case carouselRooms:
		if m.rooms.carousel.TransitionEnd() {
			m.rooms.cursor = 0
		}
	case carouselCamera:
		m.camera.carousel.TransitionEnd()
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.camera.mover.Release()
		fm.closeRoom()
	}
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
