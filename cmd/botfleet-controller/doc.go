// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Botfleet-controller creates a fleet of bots, logs them in to a grid
// in a staggered sequence, and keeps them acting there until an
// operator tells it otherwise.
//
// # Configuration
//
// Settings come from a YAML or JSONC file named by --config or
// BOTFLEET_CONFIG, merged over built-in defaults. Command-line flags
// override the file for the settings they name.
//
// # Operator surfaces
//
// When stdin is a terminal the controller runs an interactive console
// with line editing; log records are written through the console so
// they never tear the prompt. Ctrl-D asks to quit, which is refused
// while bots are connected. When stdin is not a terminal, commands
// are read line by line until EOF and the controller keeps running.
//
// The same commands are available remotely over the control socket
// (see the botfleet CLI), and the optional metrics listener serves
// prometheus metrics at /metrics.
//
// # Signals
//
// SIGINT and SIGTERM disconnect every bot, wait up to a grace period
// for the logouts, and exit.
package main
