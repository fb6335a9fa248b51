package toggle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/five82/homedash/internal/homeapi"
)

// Backend performs the mutation and the authoritative re-fetch.
type Backend interface {
	SetState(ctx context.Context, id string, on bool) error
	FetchStates(ctx context.Context) (map[string]bool, error)
}

// RoomBackend adapts the REST client to one room's devices.
type RoomBackend struct {
	Service homeapi.DeviceService
	Room    string
}

func (b RoomBackend) SetState(ctx context.Context, id string, on bool) error {
	return b.Service.SetDeviceState(ctx, id, on)
}

func (b RoomBackend) FetchStates(ctx context.Context) (map[string]bool, error) {
	devices, err := b.Service.DevicesInRoom(ctx, b.Room)
	if err != nil {
		return nil, err
	}
	return homeapi.PowerStates(devices), nil
}

// Runner drives complete toggle cycles for callers that can block.
type Runner struct {
	Controller *Controller
	Backend    Backend
	// OnSessionExpired runs once per cycle that ends with a 401/403.
	OnSessionExpired func(error)
	Logger           *zap.Logger
}

// Toggle flips id, sends the mutation and reconciles. ctx is the owner's
// lifetime: once it is done, results are dropped as stale and the device is
// released. Queued toggles for the same id run before Toggle returns; the
// last resolution is returned.
func (r *Runner) Toggle(ctx context.Context, id string) (Resolution, error) {
	m, err := r.Controller.Begin(id)
	if err != nil {
		return Resolution{}, err
	}
	res := r.Execute(ctx, m)
	for res.Next != nil {
		res = r.Execute(ctx, *res.Next)
	}
	return res, nil
}

// Execute sends one already-begun mutation and resolves it.
func (r *Runner) Execute(ctx context.Context, m Mutation) Resolution {
	logger := r.logger().With(zap.String("device", m.ID), zap.Bool("desired", m.Desired))

	err := r.Backend.SetState(ctx, m.ID, m.Desired)
	if ctx.Err() != nil {
		return r.abandon(ctx, logger, m, false)
	}

	var fresh map[string]bool
	var refreshErr error
	if err == nil {
		fresh, refreshErr = r.Backend.FetchStates(ctx)
		if ctx.Err() != nil {
			return r.abandon(ctx, logger, m, true)
		}
	}

	res := r.Controller.Resolve(m, err, fresh)
	switch res.Outcome {
	case OutcomeConfirmed:
		if refreshErr != nil {
			res.Err = fmt.Errorf("refresh device states: %w", refreshErr)
			logger.Warn("toggle confirmed, refresh failed", zap.Error(refreshErr))
		} else {
			logger.Info("toggle confirmed")
		}
	case OutcomeSessionExpired:
		logger.Warn("session expired during toggle", zap.Error(err))
		if r.OnSessionExpired != nil {
			r.OnSessionExpired(err)
		}
	case OutcomeReverted:
		logger.Warn("toggle reverted", zap.Error(err))
	}
	return res
}

func (r *Runner) abandon(ctx context.Context, logger *zap.Logger, m Mutation, accepted bool) Resolution {
	r.Controller.Abandon(m, accepted)
	logger.Debug("toggle result discarded", zap.Bool("accepted", accepted), zap.Error(ctx.Err()))
	return Resolution{Mutation: m, Outcome: OutcomeStale, Err: ctx.Err()}
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}
