package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/five82/homedash/internal/calendar"
	"github.com/five82/homedash/internal/config"
	"github.com/five82/homedash/internal/homeapi"
	"github.com/five82/homedash/internal/i18n"
	"github.com/five82/homedash/internal/logging"
	"github.com/five82/homedash/internal/prefs"
	"github.com/five82/homedash/internal/session"
	"github.com/five82/homedash/internal/state"
	"github.com/five82/homedash/internal/toggle"
	"github.com/five82/homedash/internal/ui"
)

// Options configure the homedash application.
type Options struct {
	ConfigPath  string
	PrefsPath   string // empty uses ~/.config/homedash/prefs.toml
	SessionPath string // empty uses ~/.config/homedash/session.toml
	// Overrides carries flag and HOMEDASH_* values applied over the file.
	Overrides *viper.Viper
}

// Env is everything a command needs: loaded config, the session, the REST
// client and a logger.
type Env struct {
	Config  config.Config
	Logger  *zap.Logger
	Session *session.Session
	Client  *homeapi.Client
	Bundle  *i18n.Bundle

	closers []func() error
}

// Setup loads configuration and the session and builds shared services. A
// corrupt session file is logged and replaced by a fresh one.
func Setup(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Apply(opts.Overrides); err != nil {
		return nil, fmt.Errorf("apply overrides: %w", err)
	}

	logger, closeLog, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	env := &Env{Config: cfg, Logger: logger, closers: []func() error{closeLog}}

	sess, err := session.Load(opts.SessionPath)
	if err != nil {
		logger.Warn("session unreadable, starting fresh", zap.Error(err))
	}
	env.Session = sess

	env.Client, err = homeapi.NewClient(cfg.APIBase, sess, homeapi.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		_ = env.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}

	env.Bundle = i18n.Default()
	logger.Debug("environment ready",
		zap.String("api_base", cfg.APIBase),
		zap.String("language", sess.Language()),
		zap.Bool("logged_in", sess.LoggedIn()),
	)
	return env, nil
}

// Policy returns the configured overlapping-toggle policy.
func (e *Env) Policy() toggle.Policy {
	p, err := toggle.ParsePolicy(e.Config.TogglePolicy)
	if err != nil {
		e.Logger.Warn("unknown toggle policy, using reject", zap.String("policy", e.Config.TogglePolicy))
	}
	return p
}

// OpenPlanner opens the reminder database. When it cannot be opened the
// planner falls back to memory so the calendar still works for the session.
func (e *Env) OpenPlanner() *calendar.Planner {
	var store calendar.Store
	sqlStore, err := calendar.OpenSQLStore(e.Config.RemindersDB)
	if err != nil {
		e.Logger.Error("reminder database unavailable, keeping reminders in memory", zap.Error(err))
		store = calendar.NewMemoryStore()
	} else {
		e.closers = append(e.closers, sqlStore.Close)
		store = sqlStore
	}

	catalog := make([]calendar.Device, 0, len(e.Config.Devices))
	for _, d := range e.Config.Devices {
		catalog = append(catalog, calendar.Device{Name: d.Name, Type: d.Type})
	}
	return calendar.NewPlanner(store, catalog)
}

// Close releases resources in reverse order of acquisition.
func (e *Env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}

// Run boots the homedash TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	env, err := Setup(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	bundle := env.Bundle
	if len(env.Config.Locales) > 0 {
		if b, err := i18n.ForLanguages(env.Config.Locales); err == nil {
			bundle = b
		} else {
			env.Logger.Warn("configured locales unavailable, using defaults", zap.Error(err))
		}
	}

	store := state.NewStore(time.Now)
	StartPoller(ctx, store, env.Client, env.Config.PollInterval, env.Logger)

	userPrefs := prefs.Load(opts.PrefsPath)
	env.Logger.Info("starting dashboard", zap.String("theme", userPrefs.Theme))

	return ui.Run(ui.Options{
		Context:   ctx,
		Config:    env.Config,
		Service:   env.Client,
		Session:   env.Session,
		Store:     store,
		Planner:   env.OpenPlanner(),
		Bundle:    bundle,
		Policy:    env.Policy(),
		Logger:    env.Logger,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
	})
}
