// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fleet

import (
	"fmt"
	"time"

	"github.com/bureau-foundation/botfleet/lib/behavior"
	"github.com/bureau-foundation/botfleet/lib/bot"
	"github.com/bureau-foundation/botfleet/lib/session"
)

// BotConfig is what CreateFleet needs to build a batch of bots.
type BotConfig struct {
	FirstName string

	// LastNameStem is the shared stem of last names. Each bot's last
	// name is "<stem>_<index>".
	LastNameStem string

	Password string
	LoginURI string

	// From is the index of the first bot ever created.
	From int

	// Start is a start location: "last", "home", or
	// "region[/x[/y[/z]]]".
	Start string

	// Wear is "no", "yes", or "save".
	Wear string

	// Behaviors is a comma-separated list of behavior tokens.
	Behaviors string

	// Settings override the default session settings.
	Settings map[string]bool

	// ActionInterval paces each bot's behavior loop. Zero disables it.
	ActionInterval time.Duration
}

// CreateFleet adds count bots to the registry. Bot indexes continue
// from the current registry size, so repeated calls never produce the
// same name twice. No bot is connected.
func (c *Controller) CreateFleet(count int, config BotConfig) ([]*bot.Bot, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: cannot create %d bots", ErrInvalidCount, count)
	}
	if config.FirstName == "" {
		return nil, fmt.Errorf("%w: first name is required", ErrInvalidConfig)
	}
	if config.LastNameStem == "" {
		return nil, fmt.Errorf("%w: last name stem is required", ErrInvalidConfig)
	}
	wear, err := session.ParseWearMode(config.Wear)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	for key := range config.Settings {
		if err := session.ValidateSetting(key); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnknownSetting, err)
		}
	}

	start := session.ParseLocation(config.Start)
	tokens, unknown := behavior.ParseTokens(config.Behaviors)
	if len(unknown) > 0 {
		c.logger.Warn("ignoring unknown behavior tokens",
			"unknown", unknown,
			"known", behavior.KnownTokens(),
		)
	}

	options := bot.Options{
		Dialer:       c.dialer,
		Clock:        c.clock,
		Logger:       c.logger,
		KnownRegions: c.regions.List,
	}

	c.registry.mu.Lock()
	created := make([]*bot.Bot, 0, count)
	for range count {
		index := config.From + len(c.registry.bots)
		member := bot.New(bot.Config{
			FirstName:      config.FirstName,
			LastName:       fmt.Sprintf("%s_%d", config.LastNameStem, index),
			Password:       config.Password,
			LoginURI:       config.LoginURI,
			Start:          start,
			Wear:           wear,
			Behaviors:      tokens,
			Settings:       config.Settings,
			ActionInterval: config.ActionInterval,
		}, options)
		member.Subscribe(c.observe)
		c.registry.bots = append(c.registry.bots, member)
		created = append(created, member)
	}
	total := len(c.registry.bots)
	c.registry.mu.Unlock()

	c.logger.Info("created bots",
		"count", count,
		"total", total,
		"start", start.String(),
		"wear", string(wear),
		"behaviors", tokens.String(),
	)
	return created, nil
}
