// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fleet

import (
	"context"
	"errors"
	"fmt"

	"github.com/bureau-foundation/botfleet/lib/behavior"
	"github.com/bureau-foundation/botfleet/lib/bot"
	"github.com/bureau-foundation/botfleet/lib/session"
)

// PostureResult counts the bots a Sit or Stand reached.
type PostureResult struct {
	Acted   int `cbor:"acted"   json:"acted"`
	Skipped int `cbor:"skipped" json:"skipped"`
	Failed  int `cbor:"failed"  json:"failed"`
}

// Sit asks every bot with a live session to sit. Bots without a
// session are skipped.
func (c *Controller) Sit(ctx context.Context) PostureResult {
	return c.posture(ctx, "sit", (*bot.Bot).Sit)
}

// Stand asks every bot with a live session to stand.
func (c *Controller) Stand(ctx context.Context) PostureResult {
	return c.posture(ctx, "stand", (*bot.Bot).Stand)
}

func (c *Controller) posture(ctx context.Context, name string, action func(*bot.Bot, context.Context) error) PostureResult {
	var result PostureResult
	for _, member := range c.registry.Bots() {
		err := action(member, ctx)
		switch {
		case err == nil:
			result.Acted++
		case errors.Is(err, bot.ErrNotConnected):
			result.Skipped++
		default:
			result.Failed++
			c.logger.Warn("posture change failed", "action", name, "bot", member.Name(), "error", err)
		}
	}
	return result
}

// SetBots applies a session setting to every bot and its live session.
// It returns the number of bots updated.
func (c *Controller) SetBots(key string, value bool) (int, error) {
	if err := session.ValidateSetting(key); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnknownSetting, err)
	}
	updated := 0
	for _, member := range c.registry.Bots() {
		if err := member.Configure(key, value); err != nil {
			c.logger.Warn("applying setting failed", "bot", member.Name(), "key", key, "error", err)
			continue
		}
		updated++
	}
	c.logger.Info("applied setting", "key", key, "value", value, "bots", updated)
	return updated, nil
}

// AddBehavior gives the behavior selected by token to the bot at
// number, or to every bot when number is AllBots. Bots that already
// have it are left alone. It returns the number of bots changed.
func (c *Controller) AddBehavior(token string, number int) (int, error) {
	token = behavior.NormalizeToken(token)
	if !behavior.Known(token) {
		return 0, fmt.Errorf("%w: %q (known: %v)", ErrUnknownBehavior, token, behavior.KnownTokens())
	}
	targets, err := c.targets(number)
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, member := range targets {
		strategy, err := behavior.New(token)
		if err != nil {
			return changed, fmt.Errorf("%w: %w", ErrUnknownBehavior, err)
		}
		if member.AddBehavior(strategy) {
			changed++
		}
	}
	c.logger.Info("added behavior", "token", token, "bots", changed)
	return changed, nil
}

// RemoveBehavior takes the behavior selected by token away from the
// bot at number, or from every bot when number is AllBots. It returns
// the number of bots changed.
func (c *Controller) RemoveBehavior(token string, number int) (int, error) {
	token = behavior.NormalizeToken(token)
	if !behavior.Known(token) {
		return 0, fmt.Errorf("%w: %q (known: %v)", ErrUnknownBehavior, token, behavior.KnownTokens())
	}
	targets, err := c.targets(number)
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, member := range targets {
		if member.RemoveBehavior(token) {
			changed++
		}
	}
	c.logger.Info("removed behavior", "token", token, "bots", changed)
	return changed, nil
}

func (c *Controller) targets(number int) ([]*bot.Bot, error) {
	if number == AllBots {
		return c.registry.Bots(), nil
	}
	member, ok := c.registry.At(number)
	if !ok {
		return nil, fmt.Errorf("%w: no bot number %d (fleet has %d)", ErrBotNotFound, number, c.registry.Len())
	}
	return []*bot.Bot{member}, nil
}

// RequestShutdown closes Done if every bot is Disconnected. Otherwise
// it returns ErrBotsConnected and nothing changes.
func (c *Controller) RequestShutdown() error {
	c.registry.mu.Lock()
	live := len(c.registry.bots) - c.registry.countLocked(bot.Disconnected)
	c.registry.mu.Unlock()

	if live > 0 {
		return fmt.Errorf("%w: %d bots are not disconnected; disconnect them before shutting down", ErrBotsConnected, live)
	}
	c.shutdownOnce.Do(func() {
		c.logger.Info("shutdown requested")
		close(c.done)
	})
	return nil
}
