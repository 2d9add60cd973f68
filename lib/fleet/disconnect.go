// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fleet

import (
	"fmt"

	"github.com/bureau-foundation/botfleet/lib/bot"
)

// DisconnectResult describes what Disconnect did.
type DisconnectResult struct {
	Requested int `cbor:"requested" json:"requested"`

	// Target is the connected count clamped by Requested.
	Target int `cbor:"target" json:"target"`

	// Disconnecting is the number of bots whose logout was started.
	Disconnecting int `cbor:"disconnecting" json:"disconnecting"`

	// AbortedConnect is true if a running connect sequence was
	// cancelled.
	AbortedConnect bool `cbor:"aborted_connect" json:"aborted_connect"`
}

// Disconnect aborts any running connect sequence and starts logging
// out up to count Connected bots, newest first. Logouts run in the
// background; their failures are logged by the bots and never reported
// here.
func (c *Controller) Disconnect(count int) (DisconnectResult, error) {
	if count < AllBots {
		return DisconnectResult{}, fmt.Errorf("%w: cannot disconnect %d bots", ErrInvalidCount, count)
	}

	c.registry.mu.Lock()
	c.registry.disconnectingBots = true

	result := DisconnectResult{Requested: count}
	if c.registry.cancelConnect != nil {
		c.registry.cancelConnect()
		result.AbortedConnect = true
	}

	result.Target = c.registry.countLocked(bot.Connected)
	if count != AllBots && count < result.Target {
		result.Target = count
	}

	for i := len(c.registry.bots) - 1; i >= 0 && result.Disconnecting < result.Target; i-- {
		if c.registry.bots[i].Disconnect() {
			result.Disconnecting++
		}
	}

	c.registry.disconnectingBots = false
	c.registry.mu.Unlock()

	c.logger.Info("disconnecting bots",
		"requested", count,
		"disconnecting", result.Disconnecting,
		"aborted_connect", result.AbortedConnect,
	)
	return result, nil
}
