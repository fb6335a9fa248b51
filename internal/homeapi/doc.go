// Package homeapi provides an HTTP client for the smart-home backend API.
//
// # Endpoints
//
//   - POST /api/getDeviceRoom: devices registered to a room
//   - PUT /api/OnOff: switch a device on or off
//   - POST /api/registerUser: create a household user
//
// Every request carries the bearer token read from a TokenSource at send
// time, an X-Request-ID for backend log correlation, and JSON headers.
//
// # Error Handling
//
// Non-2xx responses become *APIError. 401 and 403 unwrap to
// ErrSessionExpired, so callers branch with IsSessionExpired or errors.Is.
// Message extracts a displayable string, preferring a JSON "message" field
// over the raw body.
//
//	devices, err := client.DevicesInRoom(ctx, "Kitchen")
//	if homeapi.IsSessionExpired(err) {
//		sess.ClearCredentials()
//	}
package homeapi
