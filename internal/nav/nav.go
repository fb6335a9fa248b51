// Package nav tracks which dashboard view is showing.
package nav

import (
	"net/url"
	"strings"
	"sync"
)

// Route paths.
const (
	RouteHome     = "/"
	RouteLogin    = "/login"
	RouteRooms    = "/rooms"
	RouteCamera   = "/camera"
	RouteCalendar = "/calendar"
	RouteAddUser  = "/users/new"
	RouteLogs     = "/logs"

	roomDevicesPrefix = "/rooms/"
)

// RoomDevices returns the route of a room's device list.
func RoomDevices(room string) string {
	return roomDevicesPrefix + url.PathEscape(room)
}

// RoomFromRoute extracts the room name from a RoomDevices route.
func RoomFromRoute(route string) (string, bool) {
	if !strings.HasPrefix(route, roomDevicesPrefix) {
		return "", false
	}
	room, err := url.PathUnescape(strings.TrimPrefix(route, roomDevicesPrefix))
	if err != nil || room == "" {
		return "", false
	}
	return room, true
}

// Router is a history stack of routes. It is safe for concurrent use.
type Router struct {
	mu      sync.Mutex
	history []string
}

// NewRouter starts at initial, or RouteHome when empty.
func NewRouter(initial string) *Router {
	if initial == "" {
		initial = RouteHome
	}
	return &Router{history: []string{initial}}
}

// Current returns the active route.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history[len(r.history)-1]
}

// Navigate pushes route unless it is already current.
func (r *Router) Navigate(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.history[len(r.history)-1] == route {
		return
	}
	r.history = append(r.history, route)
}

// Replace swaps the active route without growing history.
func (r *Router) Replace(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history[len(r.history)-1] = route
}

// Back pops the active route and returns the new one. The root is never
// popped.
func (r *Router) Back() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) > 1 {
		r.history = r.history[:len(r.history)-1]
	}
	return r.history[len(r.history)-1]
}
