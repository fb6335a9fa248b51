// Package ui provides the terminal dashboard for homedash.
//
// # Architecture Overview
//
// The UI is a single Bubble Tea model. Every blocking call (REST requests,
// reminder storage, log file reads) runs inside a tea.Cmd and reports back
// as a message, so Update never blocks and each view's state only changes on
// the UI goroutine.
//
// # Views
//
//   - Home: a four-room carousel, the network speed widget and the selected device
//   - Rooms: the full room list, two per page
//   - Room devices: one room's devices with optimistic on/off toggling
//   - Camera: one feed per page and hold-to-pan controls
//   - Calendar: the reminder form, device favorites and saved reminders
//   - Add user: a multi-row form submitted as concurrent requests
//   - Login: paste an access token
//   - Logs: follows the application's own log file with search
//
// # Event Flow
//
//  1. Run builds the Model and starts the program with the caller's context
//  2. A one-second tick samples the network widget, expires the footer status
//     and folds the poller's latest state.Store snapshot into the open room
//  3. Carousel slides commit only when their transition message arrives
//  4. Toggle and submit results arrive as messages and are reconciled against
//     the view that issued them; results for a closed room are dropped
//  5. Any 401/403 clears the stored token and routes to the login view
//
// # Usage Example
//
//	err := ui.Run(ui.Options{
//		Context: ctx,
//		Config:  cfg,
//		Service: client,
//		Session: sess,
//		Store:   store,
//		Planner: planner,
//		Bundle:  bundle,
//		Logger:  logger,
//	})
//
// # Key Bindings
//
//   - 1-6, 0: Home, Rooms, Camera, Calendar, Add user, Logs, Login
//   - h/l or [/]: Previous/next carousel page
//   - enter: Open the highlighted room
//   - space: Toggle the highlighted device
//   - s: Mark the highlighted device as selected
//   - w/a/s/d: Pan the camera while held
//   - tab/shift+tab: Move between form fields
//   - ctrl+n / ctrl+s: Add a user row / submit
//   - /, n/N: Search logs and step through matches
//   - T, L, B: Cycle theme, language, collapse the sidebar
//   - esc: Back; ctrl+o: Log out; Q or ctrl+c: Quit
package ui
