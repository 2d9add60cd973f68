// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fleet

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/botfleet/lib/bot"
)

// ConnectResult describes a connect sequence that Connect started.
type ConnectResult struct {
	// Requested is the count the caller asked for (AllBots for all).
	Requested int `cbor:"requested" json:"requested"`

	// Target is the number of bots the sequence will try to connect.
	Target int `cbor:"target" json:"target"`

	// Done is closed when the sequence finishes or aborts.
	Done <-chan struct{} `cbor:"-" json:"-"`
}

var closedChannel = func() chan struct{} {
	channel := make(chan struct{})
	close(channel)
	return channel
}()

// Connect starts connecting up to count Disconnected bots in creation
// order, one every login delay. Each bot is tried at most once per
// sequence. It returns as soon as the sequence has
// started. Only one sequence runs at a time; a second Connect fails
// with ErrConnectInProgress and changes nothing.
func (c *Controller) Connect(count int) (ConnectResult, error) {
	if count < AllBots {
		return ConnectResult{}, fmt.Errorf("%w: cannot connect %d bots", ErrInvalidCount, count)
	}

	c.registry.mu.Lock()
	defer c.registry.mu.Unlock()

	if c.registry.connectingBots {
		return ConnectResult{}, ErrConnectInProgress
	}

	target := c.registry.countLocked(bot.Disconnected)
	if count != AllBots && count < target {
		target = count
	}
	result := ConnectResult{Requested: count, Target: target}
	if target == 0 {
		result.Done = closedChannel
		return result, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.registry.connectingBots = true
	c.registry.cancelConnect = cancel
	result.Done = done

	c.logger.Info("starting connect sequence", "target", target, "login_delay", c.loginDelay)
	go c.connectSequence(ctx, target, done)
	return result, nil
}

// connectSequence is the connect worker.
func (c *Controller) connectSequence(ctx context.Context, target int, done chan<- struct{}) {
	defer close(done)

	issued := 0
	cursor := 0
	aborted := false
	for issued < target {
		c.registry.mu.Lock()
		if c.registry.disconnectingBots || ctx.Err() != nil {
			c.registry.mu.Unlock()
			aborted = true
			break
		}
		var next *bot.Bot
		next, cursor = c.registry.nextDisconnectedLocked(cursor)
		if next == nil {
			c.registry.mu.Unlock()
			break
		}
		next.Connect()
		c.metrics.connectAttempts.Inc()
		c.registry.mu.Unlock()

		issued++
		c.logger.Debug("issued connect", "bot", next.Name(), "issued", issued, "target", target)
		if issued == target {
			break
		}

		select {
		case <-c.clock.After(c.loginDelay):
		case <-ctx.Done():
		}
	}

	c.registry.mu.Lock()
	c.registry.connectingBots = false
	if c.registry.cancelConnect != nil {
		c.registry.cancelConnect()
		c.registry.cancelConnect = nil
	}
	c.registry.mu.Unlock()

	if aborted {
		c.logger.Info("connect sequence aborted", "issued", issued, "target", target)
		c.notify(fmt.Sprintf("Connect sequence aborted after %d of %d bots", issued, target))
		return
	}
	c.logger.Info("connect sequence finished", "issued", issued, "target", target)
	c.notify(fmt.Sprintf("Connected %d bots", issued))
}
