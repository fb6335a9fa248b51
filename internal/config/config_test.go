package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	require.NoError(t, err)

	assert.Equal(t, defaultAPIBase, cfg.APIBase)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, filepath.Join(home, ".local/share/homedash/homedash.log"), cfg.LogFile)
	assert.Equal(t, filepath.Join(home, ".local/share/homedash/reminders.db"), cfg.RemindersDB)
	assert.Equal(t, "reject", cfg.TogglePolicy)
	assert.Equal(t, []string{"en", "ms", "zh"}, cfg.Locales)
	assert.Len(t, cfg.Rooms, 8)
	assert.Equal(t, "Living Room", cfg.RoomNames()[0])
	assert.NotEmpty(t, cfg.Cameras)
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
api_base = "  http://hub.local:9000  "
request_timeout = "2s"
poll_interval = "30s"
log_file = "  ~/logs/dash.log  "
log_level = "DEBUG"
toggle_policy = "Queue"
locales = ["en", " ", "ms"]

[[rooms]]
name = " Den "
image = "den.jpg"

[[rooms]]
name = ""

[[cameras]]
name = "  Porch  "

[[cameras]]
name = "  "

[[devices]]
name = " Robot vacuum "
type = " cleaner "
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://hub.local:9000", cfg.APIBase)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, filepath.Join(home, "logs/dash.log"), cfg.LogFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "queue", cfg.TogglePolicy)
	assert.Equal(t, []string{"en", "ms"}, cfg.Locales)
	assert.Equal(t, []Room{{Name: "Den", Image: "den.jpg"}}, cfg.Rooms)
	assert.Equal(t, []Camera{{Name: "Porch"}}, cfg.Cameras)
	assert.Equal(t, []Device{{Name: "Robot vacuum", Type: "cleaner"}}, cfg.Devices)
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(writeConfig(t, `
api_base = "   "
poll_interval = ""
`))
	require.NoError(t, err)
	assert.Equal(t, defaultAPIBase, cfg.APIBase)
	assert.Equal(t, defaultPollInterval, cfg.PollInterval)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	for name, body := range map[string]string{
		"toml":     `api_base = [`,
		"duration": `poll_interval = "soon"`,
		"negative": `request_timeout = "-1s"`,
		"policy":   `toggle_policy = "latest"`,
		"level":    `log_level = "loud"`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "parse config")
		})
	}
}

func TestApply_OverridesOnlySetKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := Default()

	v := viper.New()
	v.Set(KeyAPIBase, "http://override:1")
	v.Set(KeyPollInterval, "1m")
	require.NoError(t, cfg.Apply(v))

	assert.Equal(t, "http://override:1", cfg.APIBase)
	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.Equal(t, defaultRequestTimeout, cfg.RequestTimeout)

	bad := viper.New()
	bad.Set(KeyTogglePolicy, "sometimes")
	require.Error(t, cfg.Apply(bad))
	require.NoError(t, cfg.Apply(nil))
}

func TestApply_ReadsEnvironment(t *testing.T) {
	t.Setenv("HOMEDASH_LOG_LEVEL", "warn")
	v := viper.New()
	v.SetEnvPrefix("homedash")
	for _, key := range Keys() {
		require.NoError(t, v.BindEnv(key))
	}

	cfg := Default()
	require.NoError(t, cfg.Apply(v))
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/a/b")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "a/b"), got)
	assert.True(t, strings.HasPrefix(got, home))
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	_, err := expandPath("   ")
	require.Error(t, err)
}
