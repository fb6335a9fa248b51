package homeapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "localhost:8080", u.Host)

	u, err = parseBaseURL("https://home.example.com:8443/path?x=1#frag")
	require.NoError(t, err)
	assert.Equal(t, "https://home.example.com:8443", u.String())

	u, err = parseBaseURL("10.0.0.2:8080")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.2:8080", u.String())
}

func TestClient_EndpointsBodiesAndHeaders(t *testing.T) {
	t.Parallel()

	type seen struct {
		method, auth, requestID, userAgent, contentType string
		body                                             map[string]string
	}
	got := map[string]seen{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		got[r.URL.Path] = seen{
			method:      r.Method,
			auth:        r.Header.Get("Authorization"),
			requestID:   r.Header.Get("X-Request-ID"),
			userAgent:   r.Header.Get("User-Agent"),
			contentType: r.Header.Get("Content-Type"),
			body:        body,
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/getDeviceRoom":
			_ = json.NewEncoder(w).Encode([]Device{
				{ID: "d1", Name: "Lamp", OnOff: "On"},
				{ID: "d2", Name: "Fan", OnOff: "Off"},
			})
		case "/api/OnOff":
			w.WriteHeader(http.StatusOK)
		case "/api/registerUser":
			_ = json.NewEncoder(w).Encode(map[string]string{"data": "User registered"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, StaticToken("tok-1"), WithTimeout(2*time.Second))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	devices, err := c.DevicesInRoom(ctx, " Kitchen ")
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, map[string]bool{"d1": true, "d2": false}, PowerStates(devices))

	require.NoError(t, c.SetDeviceState(ctx, "d2", true))

	msg, err := c.RegisterUser(ctx, NewUser{Username: "ana", Email: "ana@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "User registered", msg)

	room := got["/api/getDeviceRoom"]
	assert.Equal(t, http.MethodPost, room.method)
	assert.Equal(t, "Kitchen", room.body["roomName"])
	assert.Equal(t, "Bearer tok-1", room.auth)
	assert.NotEmpty(t, room.requestID)
	assert.True(t, strings.HasPrefix(room.userAgent, "homedash/"))
	assert.Equal(t, "application/json", room.contentType)

	onOff := got["/api/OnOff"]
	assert.Equal(t, http.MethodPut, onOff.method)
	assert.Equal(t, map[string]string{"deviceid": "d2", "state": "On"}, onOff.body)

	reg := got["/api/registerUser"]
	assert.Equal(t, http.MethodPost, reg.method)
	assert.Equal(t, "ana", reg.body["username"])
	assert.Equal(t, "pw", reg.body["password"])
}

func TestClient_TokenReadPerRequest(t *testing.T) {
	t.Parallel()

	var auth []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = append(auth, r.Header.Get("Authorization"))
	}))
	t.Cleanup(server.Close)

	src := &mutableToken{value: "a"}
	c, err := NewClient(server.URL, src)
	require.NoError(t, err)

	require.NoError(t, c.SetDeviceState(context.Background(), "d1", false))
	src.value = ""
	require.NoError(t, c.SetDeviceState(context.Background(), "d1", false))

	assert.Equal(t, []string{"Bearer a", ""}, auth)
}

func TestClient_ErrorClassification(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("X-Case") {
		case "403":
			w.WriteHeader(http.StatusForbidden)
		case "401":
			w.WriteHeader(http.StatusUnauthorized)
		case "json":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"Device not found"}`))
		case "text":
			http.Error(w, "You don't have access!", http.StatusBadRequest)
		case "garbage":
			_, _ = w.Write([]byte("{not-json"))
		}
	}))
	t.Cleanup(server.Close)

	call := func(tc string) error {
		h := &http.Client{Transport: headerTransport{key: "X-Case", value: tc}}
		c, err := NewClient(server.URL, StaticToken("t"), WithHTTPClient(h))
		require.NoError(t, err)
		_, err = c.DevicesInRoom(context.Background(), "Office")
		return err
	}

	for _, tc := range []string{"401", "403"} {
		err := call(tc)
		require.Error(t, err)
		assert.True(t, IsSessionExpired(err), "status %s should expire the session", tc)
	}

	err := call("json")
	require.Error(t, err)
	assert.False(t, IsSessionExpired(err))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Device not found", Message(err))

	err = call("text")
	assert.Equal(t, "You don't have access!", Message(err))

	err = call("garbage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_ValidatesArguments(t *testing.T) {
	c, err := NewClient("127.0.0.1:1", nil)
	require.NoError(t, err)

	_, err = c.DevicesInRoom(context.Background(), "  ")
	assert.Error(t, err)
	assert.Error(t, c.SetDeviceState(context.Background(), "", true))

	var nilClient *Client
	_, err = nilClient.RegisterUser(context.Background(), NewUser{})
	assert.Error(t, err)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Equal(t, "api /x returned status 500", Message(&APIError{Path: "/x", Status: 500}))
}

type mutableToken struct{ value string }

func (m *mutableToken) Token() string { return m.value }

type headerTransport struct{ key, value string }

func (h headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	clone := r.Clone(r.Context())
	clone.Header.Set(h.key, h.value)
	return http.DefaultTransport.RoundTrip(clone)
}
