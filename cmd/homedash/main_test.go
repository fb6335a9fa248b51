package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/homedash/internal/bulk"
	"github.com/five82/homedash/internal/config"
	"github.com/five82/homedash/internal/homeapi"
	"github.com/five82/homedash/internal/session"
)

type harness struct {
	dir     string
	session string
}

func newHarness(t *testing.T) harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	return harness{dir: dir, session: filepath.Join(dir, "session.toml")}
}

// execute runs the root command with the harness's files and returns stdout.
func (h harness) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root, err := newRootCommand(viper.New())
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	base := []string{
		"--config", filepath.Join(h.dir, "config.toml"),
		"--session", h.session,
		"--prefs", filepath.Join(h.dir, "prefs.toml"),
		"--log-file", filepath.Join(h.dir, "homedash.log"),
	}
	root.SetArgs(append(base, args...))
	err = root.Execute()
	return out.String(), err
}

func (h harness) loadSession(t *testing.T) *session.Session {
	t.Helper()
	sess, err := session.Load(h.session)
	require.NoError(t, err)
	return sess
}

type backend struct {
	mu      sync.Mutex
	status  int
	devices []homeapi.Device
	sets    []map[string]string
	users   []homeapi.NewUser
}

func (b *backend) serve(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.status != 0 {
			w.WriteHeader(b.status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/getDeviceRoom":
			_ = json.NewEncoder(w).Encode(b.devices)
		case "/api/OnOff":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			b.sets = append(b.sets, body)
			for i := range b.devices {
				if b.devices[i].ID == body["deviceid"] {
					b.devices[i].OnOff = body["state"]
				}
			}
		case "/api/registerUser":
			var user homeapi.NewUser
			_ = json.NewDecoder(r.Body).Decode(&user)
			if user.Username == "taken" {
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"message":"Username already exists"}`))
				return
			}
			b.users = append(b.users, user)
			_, _ = w.Write([]byte(`{"data":"User registered"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFlagName(t *testing.T) {
	assert.Equal(t, "api-base", flagName(config.KeyAPIBase))
	assert.Equal(t, "log-level", flagName(config.KeyLogLevel))
}

func TestFlagsAndEnvironmentOverrideConfig(t *testing.T) {
	t.Setenv("HOMEDASH_LOG_LEVEL", "debug")
	loader := viper.New()
	root, err := newRootCommand(loader)
	require.NoError(t, err)
	require.NoError(t, root.PersistentFlags().Set("api-base", "http://home.lan:9000"))
	require.NoError(t, root.PersistentFlags().Set("toggle-policy", "queue"))

	cfg := config.Default()
	require.NoError(t, cfg.Apply(loader))
	assert.Equal(t, "http://home.lan:9000", cfg.APIBase)
	assert.Equal(t, "queue", cfg.TogglePolicy)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, config.Default().PollInterval, cfg.PollInterval)
}

func TestLoginLangLogout(t *testing.T) {
	h := newHarness(t)

	_, err := h.execute(t, "login")
	require.Error(t, err)

	out, err := h.execute(t, "login", "--token", "  abc123  ")
	require.NoError(t, err)
	assert.Contains(t, out, "logged in")
	assert.Equal(t, "abc123", h.loadSession(t).Token())

	out, err = h.execute(t, "lang", "ms-MY")
	require.NoError(t, err)
	assert.Contains(t, out, "language set to ms")

	_, err = h.execute(t, "lang", "not a language")
	require.Error(t, err)

	_, err = h.execute(t, "logout")
	require.NoError(t, err)
	sess := h.loadSession(t)
	assert.False(t, sess.LoggedIn())
	assert.Equal(t, "ms", sess.Language())
}

func TestDevicesListsRoom(t *testing.T) {
	h := newHarness(t)
	b := &backend{devices: []homeapi.Device{
		{ID: "d1", Name: "Lamp", OnOff: "On"},
		{ID: "d2", Name: "Fan", OnOff: "Off"},
	}}
	server := b.serve(t)

	out, err := h.execute(t, "--api-base", server.URL, "devices", "Living Room")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Regexp(t, `d1\s+Lamp\s+On`, out)
	assert.Regexp(t, `d2\s+Fan\s+Off`, out)
}

func TestToggleFlipsDevice(t *testing.T) {
	h := newHarness(t)
	b := &backend{devices: []homeapi.Device{{ID: "d1", Name: "Lamp", OnOff: "Off"}}}
	server := b.serve(t)

	out, err := h.execute(t, "--api-base", server.URL, "toggle", "Living Room", "d1")
	require.NoError(t, err)
	assert.Contains(t, out, "d1 is On")
	require.Len(t, b.sets, 1)
	assert.Equal(t, "On", b.sets[0]["state"])

	_, err = h.execute(t, "--api-base", server.URL, "toggle", "Living Room", "missing")
	require.Error(t, err)
	assert.Len(t, b.sets, 1)
}

func TestExpiredSessionClearsCredentials(t *testing.T) {
	h := newHarness(t)
	_, err := h.execute(t, "login", "--token", "abc123")
	require.NoError(t, err)

	b := &backend{status: http.StatusUnauthorized}
	server := b.serve(t)

	_, err = h.execute(t, "--api-base", server.URL, "devices", "Kitchen")
	require.Error(t, err)
	assert.True(t, homeapi.IsSessionExpired(err))
	assert.False(t, h.loadSession(t).LoggedIn())
}

func TestAddUserReportsEveryRow(t *testing.T) {
	h := newHarness(t)
	b := &backend{}
	server := b.serve(t)

	out, err := h.execute(t, "--api-base", server.URL, "adduser",
		"--user", "alice:alice@example.com:pa:ss",
		"--user", "taken:taken@example.com:secret",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 users failed")
	assert.Contains(t, out, "row 1: ok: User registered")
	assert.Contains(t, out, "row 2: failed: Username already exists")
	require.Len(t, b.users, 1)
	assert.Equal(t, "pa:ss", b.users[0].Password)
}

func TestLogsFiltersTail(t *testing.T) {
	h := newHarness(t)
	body := "INFO toggle confirmed\nWARN toggle reverted\nINFO registered user\n"
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, "homedash.log"), []byte(body), 0o644))

	out, err := h.execute(t, "logs", "--grep", "TOGGLE", "-n", "2")
	require.NoError(t, err)
	assert.Equal(t, "WARN toggle reverted\n", out)
}

func TestFormFromUsers(t *testing.T) {
	form, err := formFromUsers([]string{"a:a@x.io:one", "b:b@x.io:two:three"})
	require.NoError(t, err)
	require.Equal(t, 2, form.Len())
	rows := form.Rows()
	assert.Equal(t, "a@x.io", rows[0].Get(bulk.FieldEmail))
	assert.Equal(t, "two:three", rows[1].Get(bulk.FieldPassword))

	_, err = formFromUsers(nil)
	require.Error(t, err)
	_, err = formFromUsers([]string{"just-a-name"})
	require.Error(t, err)
}
