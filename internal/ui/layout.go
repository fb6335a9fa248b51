package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the sidebar collapses
	// to icons regardless of the user's choice.
	LayoutCompactWidth = 80

	SidebarWidth          = 20
	SidebarCollapsedWidth = 4
)

// Carousel steps per view.
const (
	HomeRoomsStep = 4
	RoomsStep     = 2
	CameraStep    = 1
)

// Log display limits.
const (
	// LogTailLimit is the number of trailing log lines loaded on first open.
	LogTailLimit = 500

	// LogBufferLimit is the maximum number of log lines kept in memory.
	LogBufferLimit = 2000
)

// Timing constants.
const (
	// DefaultUIInterval drives the UI tick: store snapshot, network sample
	// and log follow.
	DefaultUIInterval = time.Second

	// TransitionDuration is how long a carousel slide lasts before its
	// page change is committed.
	TransitionDuration = 250 * time.Millisecond

	// PanReleaseAfter releases a held camera direction once no key repeat
	// has arrived for this long.
	PanReleaseAfter = 300 * time.Millisecond

	// StatusTTL is how long a footer status message stays up.
	StatusTTL = 5 * time.Second
)

// Network widget range in Mbps.
const (
	NetworkMinMbps = 20
	NetworkMaxMbps = 50
)
