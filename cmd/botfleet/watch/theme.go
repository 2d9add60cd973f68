// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/botfleet/lib/bot"
)

// Theme is the dashboard colour palette, in ANSI 256-colour codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	HeaderForeground lipgloss.Color
	ErrorForeground  lipgloss.Color

	StateConnected     lipgloss.Color
	StateTransitioning lipgloss.Color
	StateDisconnected  lipgloss.Color
}

// DefaultTheme suits a dark 256-colour terminal.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	HeaderForeground: lipgloss.Color("255"),
	ErrorForeground:  lipgloss.Color("196"), // red

	StateConnected:     lipgloss.Color("114"), // green
	StateTransitioning: lipgloss.Color("220"), // amber
	StateDisconnected:  lipgloss.Color("245"), // gray
}

// StateColor returns the colour for a bot state name.
func (theme Theme) StateColor(state string) lipgloss.Color {
	switch state {
	case bot.Connected.String():
		return theme.StateConnected
	case bot.Connecting.String(), bot.Disconnecting.String():
		return theme.StateTransitioning
	case bot.Disconnected.String():
		return theme.StateDisconnected
	default:
		return theme.FaintText
	}
}
