package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/five82/homedash/internal/app"
	"github.com/five82/homedash/internal/config"
)

const (
	envPrefix = "homedash"

	flagConfig  = "config"
	flagSession = "session"
	flagPrefs   = "prefs"
)

var configFlags = map[string]string{
	config.KeyAPIBase:        "backend base URL",
	config.KeyRequestTimeout: "per-request timeout (e.g. 5s)",
	config.KeyPollInterval:   "device refresh interval (e.g. 5s)",
	config.KeyLogFile:        "log file path",
	config.KeyLogLevel:       "log level (debug, info, warn, error)",
	config.KeyRemindersDB:    "reminder database path",
	config.KeyTogglePolicy:   "overlapping toggle policy (reject or queue)",
}

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "homedash: load .env: %v\n", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root, err := newRootCommand(viper.New())
	if err != nil {
		fmt.Fprintf(os.Stderr, "homedash: %v\n", err)
		return 1
	}
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "homedash: %v\n", err)
		return 1
	}
	return 0
}

// cli carries the parsed global options shared by every subcommand.
type cli struct {
	loader      *viper.Viper
	configPath  string
	sessionPath string
	prefsPath   string
}

func (c *cli) options() app.Options {
	return app.Options{
		ConfigPath:  c.configPath,
		SessionPath: c.sessionPath,
		PrefsPath:   c.prefsPath,
		Overrides:   c.loader,
	}
}

func newRootCommand(loader *viper.Viper) (*cobra.Command, error) {
	c := &cli{loader: loader}
	root := &cobra.Command{
		Use:           "homedash",
		Short:         "Terminal dashboard for the smart-home backend",
		Long:          "homedash shows rooms, devices, cameras and reminders for a smart-home backend and lets you toggle devices and add users.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), c.options())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, flagConfig, "", "config file (default ~/.config/homedash/config.toml)")
	flags.StringVar(&c.sessionPath, flagSession, "", "session file (default ~/.config/homedash/session.toml)")
	flags.StringVar(&c.prefsPath, flagPrefs, "", "preferences file (default ~/.config/homedash/prefs.toml)")
	for _, key := range config.Keys() {
		flags.String(flagName(key), "", configFlags[key])
	}

	loader.SetEnvPrefix(envPrefix)
	loader.AutomaticEnv()
	for _, key := range config.Keys() {
		if err := bindFlag(loader, flags, key); err != nil {
			return nil, err
		}
	}

	root.AddCommand(
		newLoginCommand(c),
		newLogoutCommand(c),
		newLangCommand(c),
		newDevicesCommand(c),
		newToggleCommand(c),
		newAddUserCommand(c),
		newLogsCommand(c),
	)
	return root, nil
}

// flagName maps a config key such as api_base to --api-base.
func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

func bindFlag(loader *viper.Viper, flags *pflag.FlagSet, key string) error {
	flag := flags.Lookup(flagName(key))
	if flag == nil {
		return fmt.Errorf("flag %s not defined", flagName(key))
	}
	if err := loader.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("bind flag %s: %w", flag.Name, err)
	}
	return nil
}
