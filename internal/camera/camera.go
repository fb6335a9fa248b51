// Package camera drives pan commands for a camera feed while a direction is
// held.
package camera

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval is the repeat rate of a held direction.
const DefaultInterval = 100 * time.Millisecond

// Direction is a pan direction.
type Direction int

const (
	Up Direction = iota + 1
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return ""
	}
}

// Mover calls Move every Interval while a direction is pressed.
type Mover struct {
	Interval time.Duration
	Move     func(Direction)
	Logger   *zap.Logger

	mu     sync.Mutex
	active Direction
	cancel context.CancelFunc
	done   chan struct{}
	steps  int
}

// NewMover returns a Mover with the default interval.
func NewMover(move func(Direction), logger *zap.Logger) *Mover {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mover{Interval: DefaultInterval, Move: move, Logger: logger}
}

// Press starts repeating d. The first move fires immediately. Pressing a new
// direction replaces the current one; pressing the same one is a no-op.
func (m *Mover) Press(ctx context.Context, d Direction) {
	m.mu.Lock()
	if m.active == d && m.cancel != nil {
		m.mu.Unlock()
		return
	}
	stop := m.detachLocked()

	interval := m.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.active = d
	m.cancel = cancel
	m.done = done
	m.mu.Unlock()
	stop()

	m.logger().Debug("camera pan start", zap.Stringer("direction", d))
	go m.loop(runCtx, d, interval, done)
}

// Release stops the current direction and waits for the loop to exit.
func (m *Mover) Release() {
	m.mu.Lock()
	d := m.active
	stop := m.detachLocked()
	m.mu.Unlock()
	stop()
	if d != 0 {
		m.logger().Debug("camera pan stop", zap.Stringer("direction", d))
	}
}

// Active returns the held direction, if any.
func (m *Mover) Active() (Direction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active, m.active != 0
}

// Steps counts the moves issued since construction.
func (m *Mover) Steps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.steps
}

// detachLocked clears the running loop and returns a func that cancels it
// and waits for it to exit. The caller holds m.mu and must call the result
// after unlocking.
func (m *Mover) detachLocked() func() {
	cancel, done := m.cancel, m.done
	m.cancel = nil
	m.done = nil
	m.active = 0
	if cancel == nil {
		return func() {}
	}
	return func() {
		cancel()
		<-done
	}
}

func (m *Mover) loop(ctx context.Context, d Direction, interval time.Duration, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.step(ctx, d)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.step(ctx, d)
		}
	}
}

func (m *Mover) step(ctx context.Context, d Direction) {
	if ctx.Err() != nil {
		return
	}
	m.mu.Lock()
	m.steps++
	m.mu.Unlock()
	if m.Move != nil {
		m.Move(d)
	}
}

func (m *Mover) logger() *zap.Logger {
	if m.Logger == nil {
		return zap.NewNop()
	}
	return m.Logger
}
