package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Room is a configured room shown in the rooms carousels.
type Room struct {
	Name  string `toml:"name"`
	Image string `toml:"image"`
}

// Camera is a configured camera feed.
type Camera struct {
	Name string `toml:"name"`
}

// Device is an entry of the reminder device catalog.
type Device struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// Config captures the dashboard's settings.
type Config struct {
	APIBase        string
	RequestTimeout time.Duration
	PollInterval   time.Duration
	LogFile        string
	LogLevel       string
	RemindersDB    string
	TogglePolicy   string
	Locales        []string
	Rooms          []Room
	Cameras        []Camera
	Devices        []Device
}

const (
	defaultConfigPath     = "~/.config/homedash/config.toml"
	defaultAPIBase        = "http://localhost:8080"
	defaultRequestTimeout = 5 * time.Second
	defaultPollInterval   = 5 * time.Second
	defaultLogFile        = "~/.local/share/homedash/homedash.log"
	defaultLogLevel       = "info"
	defaultRemindersDB    = "~/.local/share/homedash/reminders.db"
	defaultTogglePolicy   = "reject"
)

// Override keys shared by the TOML file, command-line flags and HOMEDASH_*
// environment variables.
const (
	KeyAPIBase        = "api_base"
	KeyRequestTimeout = "request_timeout"
	KeyPollInterval   = "poll_interval"
	KeyLogFile        = "log_file"
	KeyLogLevel       = "log_level"
	KeyRemindersDB    = "reminders_db"
	KeyTogglePolicy   = "toggle_policy"
)

// Keys lists every scalar key that Apply understands.
func Keys() []string {
	return []string{
		KeyAPIBase, KeyRequestTimeout, KeyPollInterval, KeyLogFile,
		KeyLogLevel, KeyRemindersDB, KeyTogglePolicy,
	}
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBase:        defaultAPIBase,
		RequestTimeout: defaultRequestTimeout,
		PollInterval:   defaultPollInterval,
		LogFile:        mustExpand(defaultLogFile),
		LogLevel:       defaultLogLevel,
		RemindersDB:    mustExpand(defaultRemindersDB),
		TogglePolicy:   defaultTogglePolicy,
		Locales:        []string{"en", "ms", "zh"},
		Rooms:          DefaultRooms(),
		Cameras:        []Camera{{Name: "Front Door"}, {Name: "Backyard"}, {Name: "Garage"}},
		Devices:        []Device{{Name: "xiaomi", Type: "vacuum"}, {Name: "Daikin", Type: "aircon"}},
	}
}

// DefaultRooms is the room list used when the config names none.
func DefaultRooms() []Room {
	return []Room{
		{Name: "Living Room", Image: "room1.jpg"},
		{Name: "Kitchen", Image: "room2.jpg"},
		{Name: "Bedroom", Image: "room3.jpg"},
		{Name: "Master", Image: "room4.jpg"},
		{Name: "Guest Room", Image: "room5.jpg"},
		{Name: "Office", Image: "room6.jpg"},
		{Name: "Garage", Image: "room7.jpg"},
		{Name: "Patio", Image: "room8.jpg"},
	}
}

// Load locates and parses the homedash config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBase        string   `toml:"api_base"`
		RequestTimeout string   `toml:"request_timeout"`
		PollInterval   string   `toml:"poll_interval"`
		LogFile        string   `toml:"log_file"`
		LogLevel       string   `toml:"log_level"`
		RemindersDB    string   `toml:"reminders_db"`
		TogglePolicy   string   `toml:"toggle_policy"`
		Locales        []string `toml:"locales"`
		Rooms          []Room   `toml:"rooms"`
		Cameras        []Camera `toml:"cameras"`
		Devices        []Device `toml:"devices"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	scalars := []struct{ key, value string }{
		{KeyAPIBase, raw.APIBase},
		{KeyRequestTimeout, raw.RequestTimeout},
		{KeyPollInterval, raw.PollInterval},
		{KeyLogFile, raw.LogFile},
		{KeyLogLevel, raw.LogLevel},
		{KeyRemindersDB, raw.RemindersDB},
		{KeyTogglePolicy, raw.TogglePolicy},
	}
	for _, kv := range scalars {
		if err := cfg.set(kv.key, kv.value); err != nil {
			return Config{}, err
		}
	}

	if locales := cleanList(raw.Locales); len(locales) > 0 {
		cfg.Locales = locales
	}
	if rooms := cleanRooms(raw.Rooms); len(rooms) > 0 {
		cfg.Rooms = rooms
	}
	if len(raw.Cameras) > 0 {
		cfg.Cameras = cleanCameras(raw.Cameras)
	}
	if len(raw.Devices) > 0 {
		cfg.Devices = cleanDevices(raw.Devices)
	}

	return cfg, nil
}

// Apply overlays every key v has a value for (flags, HOMEDASH_* environment)
// onto c.
func (c *Config) Apply(v *viper.Viper) error {
	if v == nil {
		return nil
	}
	for _, key := range Keys() {
		if !v.IsSet(key) {
			continue
		}
		if err := c.set(key, v.GetString(key)); err != nil {
			return err
		}
	}
	return nil
}

// set assigns a trimmed, non-empty value. Empty values keep the current one.
func (c *Config) set(key, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	switch key {
	case KeyAPIBase:
		c.APIBase = value
	case KeyRequestTimeout, KeyPollInterval:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("parse config: %s must be a positive duration, got %q", key, value)
		}
		if key == KeyRequestTimeout {
			c.RequestTimeout = d
		} else {
			c.PollInterval = d
		}
	case KeyLogFile:
		c.LogFile = mustExpand(value)
	case KeyLogLevel:
		level := strings.ToLower(value)
		if _, err := zapcore.ParseLevel(level); err != nil {
			return fmt.Errorf("parse config: log_level: %w", err)
		}
		c.LogLevel = level
	case KeyRemindersDB:
		c.RemindersDB = mustExpand(value)
	case KeyTogglePolicy:
		p := strings.ToLower(value)
		if p != "reject" && p != "queue" {
			return fmt.Errorf("parse config: toggle_policy must be reject or queue, got %q", value)
		}
		c.TogglePolicy = p
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// RoomNames lists configured room names in order.
func (c Config) RoomNames() []string {
	out := make([]string, 0, len(c.Rooms))
	for _, r := range c.Rooms {
		out = append(out, r.Name)
	}
	return out
}

func cleanRooms(rooms []Room) []Room {
	var out []Room
	for _, r := range rooms {
		r.Name = strings.TrimSpace(r.Name)
		r.Image = strings.TrimSpace(r.Image)
		if r.Name == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

func cleanCameras(cameras []Camera) []Camera {
	out := make([]Camera, 0, len(cameras))
	for _, c := range cameras {
		if c.Name = strings.TrimSpace(c.Name); c.Name != "" {
			out = append(out, c)
		}
	}
	return out
}

func cleanDevices(devices []Device) []Device {
	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		d.Name = strings.TrimSpace(d.Name)
		d.Type = strings.TrimSpace(d.Type)
		if d.Name != "" {
			out = append(out, d)
		}
	}
	return out
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) { return expandPath(path) }

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
