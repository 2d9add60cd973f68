// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package watch is the live fleet dashboard behind "botfleet watch".
//
// The [Model] is a bubbletea model that polls the controller's status
// at a fixed interval and renders one row per bot, coloured by
// connection state, with per-state totals underneath. Two keys drive
// the fleet directly: c connects every disconnected bot and d
// disconnects every connected one.
package watch
