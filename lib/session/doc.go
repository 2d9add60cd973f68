// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package session is the boundary between a bot and the grid protocol
// client that carries its login session.
//
// A [Dialer] logs a bot in and returns a [Session]; the session reports
// asynchronous events (simulator connections, region discovery, drops)
// to the [Handler] passed at dial time, from whatever goroutine the
// protocol client uses. Nothing in the fleet controller depends on a
// particular wire protocol: the simgrid subpackage provides an
// in-process grid for dry runs and tests, and wsgrid speaks a JSON
// envelope protocol over websockets.
//
// The package also owns the login-time parameters a bot carries:
// the start [Location] parsed from the operator's "start" setting, the
// [WearMode], and the per-bot session settings.
package session
