package state

import (
	"errors"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/homedash/internal/homeapi"
)

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	stamp := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	s := NewStore(func() time.Time { return stamp })
	s.SetRoom("Kitchen")

	require.True(t, s.Update("Kitchen", s.Begin(), []homeapi.Device{{ID: "a", OnOff: homeapi.PowerOn}, {ID: "b"}}, nil))

	snap := s.Snapshot()
	assert.True(t, snap.HasDevices)
	require.Len(t, snap.Devices, 2)
	assert.Equal(t, stamp, snap.LastUpdated)
	assert.NoError(t, snap.LastError)

	snap.Devices[0].ID = "mutated"
	assert.Equal(t, "a", s.Snapshot().Devices[0].ID, "Snapshot should clone devices")
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store
	s.SetRoom("Kitchen")
	s.Update("Kitchen", s.Begin(), []homeapi.Device{{ID: "a"}}, nil)

	origErr := errors.New("boom")
	s.Update("Kitchen", s.Begin(), nil, origErr)

	snap := s.Snapshot()
	require.Len(t, snap.Devices, 1)
	require.Error(t, snap.LastError)
	assert.Equal(t, "boom", snap.LastError.Error())
	assert.NotEqual(t, reflect.ValueOf(origErr).Pointer(), reflect.ValueOf(snap.LastError).Pointer(),
		"Snapshot should clone error instance")
	assert.False(t, snap.SessionExpired)
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store
	s.SetRoom("Office")
	assert.False(t, s.Snapshot().IsOffline())

	s.Update("Office", s.Begin(), nil, errors.New("fail 1"))
	assert.Equal(t, 1, s.Snapshot().ConsecutiveFailures)
	assert.False(t, s.Snapshot().IsOffline())

	s.Update("Office", s.Begin(), nil, errors.New("fail 2"))
	assert.True(t, s.Snapshot().IsOffline())

	s.Update("Office", s.Begin(), nil, nil)
	assert.Equal(t, 0, s.Snapshot().ConsecutiveFailures)
	assert.False(t, s.Snapshot().IsOffline())
}

func TestStore_SessionExpiredFlag(t *testing.T) {
	var s Store
	s.SetRoom("Office")
	s.Update("Office", s.Begin(), nil, &homeapi.APIError{Path: "/api/getDeviceRoom", Status: http.StatusForbidden})
	assert.True(t, s.Snapshot().SessionExpired)
}

func TestStore_StaleRoomUpdateDiscarded(t *testing.T) {
	var s Store
	s.SetRoom("Kitchen")
	s.Update("Kitchen", s.Begin(), []homeapi.Device{{ID: "k"}}, nil)

	s.SetRoom("Garage")
	assert.Equal(t, "Garage", s.Room())
	assert.False(t, s.Snapshot().HasDevices, "switching rooms drops old devices")

	assert.False(t, s.Update("Kitchen", s.Begin(), []homeapi.Device{{ID: "late"}}, nil))
	assert.Empty(t, s.Snapshot().Devices)

	s.SetRoom("Garage")
	assert.Equal(t, "Garage", s.Snapshot().Room)
}

func TestStore_OlderRequestCannotOverwriteNewer(t *testing.T) {
	var s Store
	s.SetRoom("Kitchen")

	slow := s.Begin()
	fast := s.Begin()
	require.True(t, s.Update("Kitchen", fast, []homeapi.Device{{ID: "lamp", OnOff: homeapi.PowerOn}}, nil))

	assert.False(t, s.Update("Kitchen", slow, []homeapi.Device{{ID: "lamp", OnOff: homeapi.PowerOff}}, nil))
	snap := s.Snapshot()
	assert.Equal(t, fast, snap.Seq)
	assert.Equal(t, homeapi.PowerOn, snap.Devices[0].OnOff)

	assert.False(t, s.Update("Kitchen", slow, nil, errors.New("late failure")))
	assert.NoError(t, s.Snapshot().LastError)
}
