package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit          key.Binding
	Help          key.Binding
	CycleTheme    key.Binding
	CycleLanguage key.Binding
	Sidebar       key.Binding
	Back          key.Binding
	Logout        key.Binding

	// View switching
	ViewHome     key.Binding
	ViewRooms    key.Binding
	ViewCamera   key.Binding
	ViewCalendar key.Binding
	ViewAddUser  key.Binding
	ViewLogs     key.Binding
	ViewLogin    key.Binding

	// Navigation
	Up        key.Binding
	Down      key.Binding
	Prev      key.Binding
	Next      key.Binding
	Top       key.Binding
	Bottom    key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	NextField key.Binding
	PrevField key.Binding

	// Actions
	Open     key.Binding
	Toggle   key.Binding
	Select   key.Binding
	Favorite key.Binding
	Delete   key.Binding
	AddRow   key.Binding
	Submit   key.Binding
	Refresh  key.Binding

	// Camera
	PanUp    key.Binding
	PanDown  key.Binding
	PanLeft  key.Binding
	PanRight key.Binding

	// Logs
	ToggleFollow key.Binding
	Search       key.Binding
	NextMatch    key.Binding
	PrevMatch    key.Binding

	Confirm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "Q"),
			key.WithHelp("Q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		CycleLanguage: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Switch language"),
		),
		Sidebar: key.NewBinding(
			key.WithKeys("B"),
			key.WithHelp("B", "Collapse sidebar"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "Log out"),
		),

		ViewHome:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "Home")),
		ViewRooms:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "Rooms")),
		ViewCamera:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "Camera")),
		ViewCalendar: key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "Calendar")),
		ViewAddUser:  key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "Add user")),
		ViewLogs:     key.NewBinding(key.WithKeys("6"), key.WithHelp("6", "Logs")),
		ViewLogin:    key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "Login")),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Prev: key.NewBinding(
			key.WithKeys("h", "left", "["),
			key.WithHelp("h/[", "Previous page"),
		),
		Next: key.NewBinding(
			key.WithKeys("l", "right", "]"),
			key.WithHelp("l/]", "Next page"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("ctrl+u", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("ctrl+d", "Page down"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous field"),
		),

		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "Toggle"),
		),
		Select: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Select device"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Favorite"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "Delete"),
		),
		AddRow: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "Add row"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "Submit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh"),
		),

		PanUp:    key.NewBinding(key.WithKeys("w", "up"), key.WithHelp("w", "Pan up")),
		PanDown:  key.NewBinding(key.WithKeys("s", "down"), key.WithHelp("s", "Pan down")),
		PanLeft:  key.NewBinding(key.WithKeys("a", "left"), key.WithHelp("a", "Pan left")),
		PanRight: key.NewBinding(key.WithKeys("d", "right"), key.WithHelp("d", "Pan right")),

		ToggleFollow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Toggle follow mode"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search logs"),
		),
		NextMatch: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Next match"),
		),
		PrevMatch: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "Previous match"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ViewHome, k.ViewRooms, k.ViewCamera, k.ViewCalendar, k.ViewAddUser, k.ViewLogs, k.ViewLogin, k.Back},
		{k.Up, k.Down, k.Prev, k.Next, k.NextField, k.PrevField},
		{k.Open, k.Toggle, k.Select, k.Favorite, k.Delete, k.AddRow, k.Submit, k.Refresh},
		{k.PanUp, k.PanDown, k.PanLeft, k.PanRight},
		{k.ToggleFollow, k.Search, k.NextMatch, k.PrevMatch},
		{k.CycleTheme, k.CycleLanguage, k.Sidebar, k.Logout, k.Help, k.Quit},
	}
}
