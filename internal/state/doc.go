// Package state shares the open room's device list between the background
// poller and the UI.
//
// The poller is the single writer: it calls Store.Update with each fetch
// result. The UI reads with Store.Snapshot on its own tick. A failed fetch
// keeps the last good devices and records the error, so the view can keep
// showing data while flagging the API as offline after two failures in a row.
//
// The Store watches one room at a time. SetRoom drops the previous room's
// data, and an Update carrying a room that is no longer watched is ignored,
// which covers a slow fetch finishing after the user navigated away.
//
// Snapshots are copies. Mutating one never affects the Store.
package state
