// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bot

// State is a bot's connection state.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Disconnecting
)

// States lists every state in lifecycle order.
func States() []State {
	return []State{Disconnected, Connecting, Connected, Disconnecting}
}

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	case Disconnecting:
		return "Disconnecting"
	default:
		return "Unknown"
	}
}
