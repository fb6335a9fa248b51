// Package config loads the homedash configuration file.
//
// The file is TOML and lives at ~/.config/homedash/config.toml unless a path
// is given. A missing file is not an error: Default values are used so the
// dashboard runs without any setup. Empty or whitespace-only values keep the
// defaults, and ~ is expanded in every path field.
//
// Example:
//
//	api_base        = "http://localhost:8080"
//	request_timeout = "5s"
//	poll_interval   = "5s"
//	log_file        = "~/.local/share/homedash/homedash.log"
//	toggle_policy   = "reject"
//
//	[[rooms]]
//	name  = "Living Room"
//	image = "room1.jpg"
//
// Scalar keys can be overridden after loading with Config.Apply, which reads
// whatever a viper instance has bound (command-line flags and HOMEDASH_*
// environment variables in cmd/homedash).
package config
