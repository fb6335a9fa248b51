package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/homedash/internal/homeapi"
)

// Snapshot represents the latest device data available to the UI.
type Snapshot struct {
	Room                string
	Devices             []homeapi.Device
	HasDevices          bool
	// Seq is the sequence number of the request that produced the data.
	Seq                 uint64
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
	SessionExpired      bool
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	// Now stamps LastUpdated. It defaults to time.Now.
	Now func() time.Time

	mu       sync.RWMutex
	snapshot Snapshot
	seq      uint64
}

// NewStore returns a store that reads time from now.
func NewStore(now func() time.Time) *Store {
	return &Store{Now: now}
}

// Begin reserves the sequence number for a request that is about to be
// sent. Numbers increase across rooms, so a result can be ordered against
// anything that happened after its request went out.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// SetRoom switches the watched room. Data for a previous room is dropped.
func (s *Store) SetRoom(room string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot.Room == room {
		return
	}
	s.snapshot = Snapshot{Room: room}
}

// Room returns the watched room, empty when none is open.
func (s *Store) Room() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Room
}

// Update records the result of the request numbered seq for room. Results
// for a room that is no longer watched, or from a request older than the one
// already recorded, are discarded and Update reports false. When err is
// non-nil the previous devices are kept but the error is recorded.
func (s *Store) Update(room string, seq uint64, devices []homeapi.Device, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if room != s.snapshot.Room || seq <= s.snapshot.Seq {
		return false
	}
	s.snapshot.Seq = seq
	s.snapshot.LastUpdated = s.now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		s.snapshot.SessionExpired = homeapi.IsSessionExpired(err)
		return true
	}

	s.snapshot.Devices = cloneDevices(devices)
	s.snapshot.HasDevices = true
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
	s.snapshot.SessionExpired = false
	return true
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Devices = cloneDevices(s.snapshot.Devices)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func cloneDevices(items []homeapi.Device) []homeapi.Device {
	if len(items) == 0 {
		return nil
	}
	dup := make([]homeapi.Device, len(items))
	copy(dup, items)
	return dup
}
