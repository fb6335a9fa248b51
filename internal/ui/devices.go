package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/homedash/internal/homeapi"
	"github.com/five82/homedash/internal/toggle"
)

// roomView is the live state of one open room. It is created on entry and
// torn down on leave; cancelling ctx turns any late result into a no-op.
type roomView struct {
	name    string
	ctx     context.Context
	cancel  context.CancelFunc
	ctl     *toggle.Controller
	runner  *toggle.Runner
	devices []homeapi.Device
	loading bool
	err     error
	cursor  int
	// seq orders the view's data against store results; see state.Store.Begin.
	seq     uint64
}

type devicesMsg struct {
	room    string
	seq     uint64
	devices []homeapi.Device
	err     error
}

type toggleMsg struct {
	room string
	res  toggle.Resolution
}

func (m *Model) openRoom(name string) tea.Cmd {
	m.closeRoom()
	ctx, cancel := context.WithCancel(m.ctx)
	ctl := toggle.New(m.policy)
	m.room = &roomView{
		name:    name,
		ctx:     ctx,
		cancel:  cancel,
		ctl:     ctl,
		loading: true,
		runner: &toggle.Runner{
			Controller: ctl,
			Backend:    toggle.RoomBackend{Service: m.service, Room: name},
			Logger:     m.logger.Named("toggle").With(zap.String("room", name)),
		},
	}
	m.store.SetRoom(name)
	m.logger.Debug("room opened", zap.String("room", name))
	return fetchDevicesCmd(ctx, m.service, name, m.store.Begin())
}

// closeRoom ends the open room's lifetime. Outstanding toggles resolve as
// stale and the poller stops watching it.
func (m *Model) closeRoom() {
	if m.room == nil {
		return
	}
	m.room.cancel()
	m.room.ctl.Close()
	m.store.SetRoom("")
	m.logger.Debug("room closed", zap.String("room", m.room.name))
	m.room = nil
}

func fetchDevicesCmd(ctx context.Context, svc homeapi.DeviceService, room string, seq uint64) tea.Cmd {
	return func() tea.Msg {
		devices, err := svc.DevicesInRoom(ctx, room)
		return devicesMsg{room: room, seq: seq, devices: devices, err: err}
	}
}

func (m Model) handleDevices(msg devicesMsg) (tea.Model, tea.Cmd) {
	if m.room == nil || m.room.name != msg.room || m.room.ctx.Err() != nil {
		return m, nil
	}
	m.room.loading = false
	if msg.err != nil {
		if homeapi.IsSessionExpired(msg.err) {
			return m, m.expireSession(msg.err)
		}
		m.room.err = msg.err
		m.logger.Warn("load devices", zap.String("room", msg.room), zap.Error(msg.err))
		return m, nil
	}
	m.room.err = nil
	if msg.seq > m.room.seq {
		m.applyDevices(msg.devices, msg.seq)
	}
	m.store.Update(msg.room, msg.seq, msg.devices, nil)
	return m, nil
}

func (m *Model) applyDevices(devices []homeapi.Device, seq uint64) {
	m.room.devices = devices
	m.room.ctl.Replace(homeapi.PowerStates(devices))
	m.room.seq = seq
	if m.room.cursor >= len(devices) {
		m.room.cursor = max(len(devices)-1, 0)
	}
}

// syncRoomFromSnapshot folds the poller's latest result for the open room
// into the view. Results whose request went out before the view's current
// data are ignored.
func (m *Model) syncRoomFromSnapshot() tea.Cmd {
	snap := m.snapshot
	if m.room == nil || snap.Room != m.room.name || m.room.loading {
		return nil
	}
	if snap.SessionExpired {
		return m.expireSession(snap.LastError)
	}
	if snap.HasDevices && snap.LastError == nil && snap.Seq > m.room.seq {
		m.applyDevices(snap.Devices, snap.Seq)
	}
	return nil
}

// beginToggle flips the device under the cursor and returns the command
// that sends it.
func (m *Model) beginToggle() tea.Cmd {
	if m.room == nil || len(m.room.devices) == 0 {
		return nil
	}
	id := m.room.devices[m.room.cursor].ID
	mut, err := m.room.ctl.Begin(id)
	switch {
	case errors.Is(err, toggle.ErrInFlight):
		m.setStatus(m.t("toggle_busy"), statusWarn)
		return nil
	case errors.Is(err, toggle.ErrQueued):
		m.setStatus(m.t("toggle_queued"), statusInfo)
		return nil
	case err != nil:
		return nil
	}
	return executeToggleCmd(m.room, mut)
}

func executeToggleCmd(rv *roomView, mut toggle.Mutation) tea.Cmd {
	runner, ctx, room := rv.runner, rv.ctx, rv.name
	return func() tea.Msg {
		return toggleMsg{room: room, res: runner.Execute(ctx, mut)}
	}
}

func (m Model) handleToggleResult(msg toggleMsg) (tea.Model, tea.Cmd) {
	res := msg.res
	if res.Outcome == toggle.OutcomeStale || m.room == nil || m.room.name != msg.room {
		return m, nil
	}
	// Reads requested before this point may predate the change.
	m.room.seq = max(m.room.seq, m.store.Begin())

	var cmd tea.Cmd
	switch res.Outcome {
	case toggle.OutcomeSessionExpired:
		return m, m.expireSession(res.Err)
	case toggle.OutcomeReverted:
		m.setStatus(m.tf("toggle_failed", "error", homeapi.Message(res.Err)), statusError)
	case toggle.OutcomeConfirmed:
		if res.Err != nil {
			m.setStatus(m.t("refresh_failed"), statusWarn)
		}
	}
	if res.Next != nil {
		cmd = executeToggleCmd(m.room, *res.Next)
	}
	return m, cmd
}

func (m *Model) selectDevice() {
	if m.room == nil || len(m.room.devices) == 0 {
		return
	}
	name := m.room.devices[m.room.cursor].Name
	m.session.SelectDevice(name)
	if err := m.session.Save(); err != nil {
		m.logger.Warn("save session", zap.Error(err))
	}
	m.setStatus(m.tf("device_selected", "device", name), statusInfo)
}

func (m Model) handleRoomKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.room == nil {
		return m, nil
	}
	n := len(m.room.devices)
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.room.cursor < n-1 {
			m.room.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.room.cursor > 0 {
			m.room.cursor--
		}
	case key.Matches(msg, m.keys.Top):
		m.room.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.room.cursor = max(n-1, 0)
	case key.Matches(msg, m.keys.Toggle):
		return m, m.beginToggle()
	case key.Matches(msg, m.keys.Select):
		m.selectDevice()
	case key.Matches(msg, m.keys.Refresh):
		if !m.room.loading {
			m.room.loading = true
			return m, fetchDevicesCmd(m.room.ctx, m.service, m.room.name, m.store.Begin())
		}
	}
	return m, nil
}

func (m Model) renderRoom(width, height int) string {
	styles := m.theme.Styles()
	var b strings.Builder

	if m.room == nil {
		return ""
	}
	b.WriteString(styles.AccentText.Bold(true).Render(m.room.name))
	b.WriteString(styles.MutedText.Render("  " + m.t("list_of_devices")))
	b.WriteString("\n\n")

	switch {
	case m.room.loading && len(m.room.devices) == 0:
		b.WriteString(styles.WarningText.Render(m.t("loading_devices")))
		return b.String()
	case m.room.err != nil && len(m.room.devices) == 0:
		b.WriteString(styles.DangerText.Render(m.t("unexpected_error")))
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render(truncate(homeapi.Message(m.room.err), width-2)))
		return b.String()
	case len(m.room.devices) == 0:
		b.WriteString(styles.MutedText.Render(m.t("no_devices")))
		return b.String()
	}

	selected := m.session.SelectedDevice()
	nameWidth := max(width-30, 10)
	for i, d := range m.room.devices {
		if i >= height-3 {
			break
		}
		on := m.room.ctl.State(d.ID)
		kind := badgeOff
		if on {
			kind = badgeOn
		}
		if m.room.ctl.InFlight(d.ID) {
			kind = badgePending
		}
		badge := styles.Badge(kind).Render(fmt.Sprintf("%-3s", homeapi.FormatPower(on)))

		name := padRight(truncate(d.Name, nameWidth), nameWidth)
		line := badge + " " + name
		if d.Name == selected {
			line += " " + styles.WarningText.Render("★ "+m.t("selected"))
		}
		if q := m.room.ctl.Queued(d.ID); q > 0 {
			line += " " + styles.InfoText.Render(fmt.Sprintf("+%d", q))
		}
		if i == m.room.cursor {
			line = styles.Selected.Render("▸ ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
