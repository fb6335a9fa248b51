package homeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/xid"
)

// DeviceService defines the backend calls the dashboard makes.
// This interface is implemented by *Client and can be used for testing.
type DeviceService interface {
	DevicesInRoom(ctx context.Context, room string) ([]Device, error)
	SetDeviceState(ctx context.Context, deviceID string, on bool) error
	RegisterUser(ctx context.Context, user NewUser) (string, error)
}

// Ensure Client implements DeviceService at compile time.
var _ DeviceService = (*Client)(nil)

// TokenSource supplies the bearer credential at request time.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same value.
type StaticToken string

func (s StaticToken) Token() string { return string(s) }

// Client talks to the smart-home HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	tokens    TokenSource
}

const (
	defaultAPIBase   = "http://localhost:8080"
	defaultUserAgent = "homedash/0.1"
	requestTimeout   = 5 * time.Second

	pathRegisterUser = "/api/registerUser"
	pathDeviceRoom   = "/api/getDeviceRoom"
	pathOnOff        = "/api/OnOff"
)

// Option customises a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient builds a Client for the API rooted at apiBase. Tokens are read
// from tokens on every request so a re-login takes effect immediately.
func NewClient(apiBase string, tokens TokenSource, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiBase)
	if err != nil {
		return nil, err
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		tokens:    tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// DevicesInRoom lists the devices registered to a room.
func (c *Client) DevicesInRoom(ctx context.Context, room string) ([]Device, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	room = strings.TrimSpace(room)
	if room == "" {
		return nil, fmt.Errorf("room name required")
	}
	var devices []Device
	if err := c.do(ctx, http.MethodPost, pathDeviceRoom, roomRequest{RoomName: room}, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// SetDeviceState switches a device on or off.
func (c *Client) SetDeviceState(ctx context.Context, deviceID string, on bool) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(deviceID) == "" {
		return fmt.Errorf("device id required")
	}
	body := onOffRequest{DeviceID: deviceID, State: FormatPower(on)}
	return c.do(ctx, http.MethodPut, pathOnOff, body, nil)
}

// RegisterUser creates a user account and returns the backend's message.
func (c *Client) RegisterUser(ctx context.Context, user NewUser) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	var payload registerResponse
	if err := c.do(ctx, http.MethodPost, pathRegisterUser, user, &payload); err != nil {
		return "", err
	}
	return payload.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", xid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := strings.TrimSpace(c.tokens.Token()); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(path, resp)
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiBase string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBase)
	if trimmed == "" {
		trimmed = defaultAPIBase
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", apiBase, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
