package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/five82/homedash/internal/homeapi"
	"github.com/five82/homedash/internal/state"
)

const defaultPollInterval = 5 * time.Second

// StartPoller launches a background goroutine that refreshes the watched
// room's devices at a fixed cadence. It returns immediately. Failures are
// recorded in the store and wait for the next tick.
func StartPoller(ctx context.Context, store *state.Store, svc homeapi.DeviceService, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			refresh(ctx, store, svc, logger)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func refresh(ctx context.Context, store *state.Store, svc homeapi.DeviceService, logger *zap.Logger) {
	room := store.Room()
	if room == "" {
		return
	}
	seq := store.Begin()
	devices, err := svc.DevicesInRoom(ctx, room)
	if ctx.Err() != nil {
		return
	}
	if !store.Update(room, seq, devices, err) {
		logger.Debug("dropped outdated poll result", zap.String("room", room), zap.Uint64("seq", seq))
		return
	}
	if err != nil {
		logger.Warn("device poll failed", zap.String("room", room), zap.Error(err))
	}
}
