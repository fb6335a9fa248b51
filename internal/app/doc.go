// Package app is the composition root for homedash.
//
// Setup loads the config file, applies flag and environment overrides,
// opens the log file, reads the session and builds the REST client. The
// headless commands in cmd/homedash use the resulting Env directly; Run
// additionally starts the device poller and the TUI.
//
// # Poller
//
// StartPoller refreshes the device list of whichever room the UI has open
// (state.Store.Room) on a fixed interval. With no room open it does
// nothing. Failures are recorded in the store and retried on the next tick
// only; there is no backoff and no early retry. Results for a room the user
// already left, or whose request started before a newer one, are dropped.
//
//	Run ─┬─ Setup ── config.Load, Config.Apply, logging.New, session.Load, homeapi.NewClient
//	     ├─ StartPoller ── every poll_interval: store.Begin, DevicesInRoom(store.Room()) → store.Update
//	     └─ ui.Run (blocks until quit)
package app
