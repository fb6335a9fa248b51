// Package logtail reads the tail of the homedash log file.
//
// Read returns the last N lines of a file in one pass using a ring buffer,
// so memory stays bounded by N regardless of file size. Follower builds on
// it for the Logs view: the first Poll returns the tail and each later Poll
// returns only the complete lines appended since, holding back a trailing
// partial line until its newline arrives. When the file shrinks (rotation or
// truncation) the Follower starts over and reports a reset.
//
// A missing file is not an error. The log file is created lazily by the
// logger, and the view simply shows nothing until it exists.
package logtail
