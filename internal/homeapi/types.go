package homeapi

import "strings"

// Power states as the backend spells them.
const (
	PowerOn  = "On"
	PowerOff = "Off"
)

// Device mirrors an entry of /api/getDeviceRoom.
type Device struct {
	ID      string `json:"deviceid"`
	Name    string `json:"deviceName"`
	Picture string `json:"picture"`
	OnOff   string `json:"onOff"`
}

// On reports whether the backend holds the device as switched on.
func (d Device) On() bool {
	return strings.EqualFold(strings.TrimSpace(d.OnOff), PowerOn)
}

// NewUser is the body of /api/registerUser.
type NewUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type roomRequest struct {
	RoomName string `json:"roomName"`
}

type onOffRequest struct {
	DeviceID string `json:"deviceid"`
	State    string `json:"state"`
}

type registerResponse struct {
	Data string `json:"data"`
}

// FormatPower renders a boolean as "On"/"Off".
func FormatPower(on bool) string {
	if on {
		return PowerOn
	}
	return PowerOff
}

// PowerStates maps device IDs to their on/off state.
func PowerStates(devices []Device) map[string]bool {
	states := make(map[string]bool, len(devices))
	for _, d := range devices {
		states[d.ID] = d.On()
	}
	return states
}
