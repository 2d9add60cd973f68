// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"fmt"
	"strings"
)

// WearMode controls how a bot handles its appearance at login.
type WearMode string

const (
	// WearNo leaves the agent's appearance untouched.
	WearNo WearMode = "no"
	// WearYes wears the outfit found in the agent's inventory.
	WearYes WearMode = "yes"
	// WearSave wears the inventory outfit and saves it as the
	// agent's appearance.
	WearSave WearMode = "save"
)

// ParseWearMode parses an operator wear setting. The empty string is
// WearNo.
func ParseWearMode(value string) (WearMode, error) {
	switch mode := WearMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "":
		return WearNo, nil
	case WearNo, WearYes, WearSave:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid wear mode %q (want no, yes, or save)", value)
	}
}
