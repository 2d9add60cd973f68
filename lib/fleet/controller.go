// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fleet

import (
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/botfleet/lib/bot"
	"github.com/bureau-foundation/botfleet/lib/clock"
	"github.com/bureau-foundation/botfleet/lib/region"
	"github.com/bureau-foundation/botfleet/lib/session"
)

// AllBots, passed as a count, means "every eligible bot".
const AllBots = -1

// DefaultLoginDelay is the stagger between logins in a connect
// sequence.
const DefaultLoginDelay = 5 * time.Second

// ControlSurface receives operator-facing messages that are not the
// direct reply to a command, such as the outcome of a connect sequence
// that finishes long after the connect command returned.
type ControlSurface interface {
	Output(message string)
}

type discardSurface struct{}

func (discardSurface) Output(string) {}

// Options are the collaborators of a Controller.
type Options struct {
	// Dialer logs bots in. Required.
	Dialer session.Dialer

	// Clock times the connect stagger and bot behavior loops.
	// Defaults to the real clock.
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Surface receives asynchronous operator messages. Defaults to
	// discarding them.
	Surface ControlSurface

	// LoginDelay is the wait between successive logins of one connect
	// sequence. Zero selects DefaultLoginDelay; a negative value
	// disables the wait.
	LoginDelay time.Duration
}

// Controller owns the fleet. Safe for concurrent use.
type Controller struct {
	dialer     session.Dialer
	clock      clock.Clock
	logger     *slog.Logger
	surface    ControlSurface
	loginDelay time.Duration

	registry Registry
	regions  *region.Catalog
	metrics  *metrics

	shutdownOnce sync.Once
	done         chan struct{}
}

// New creates a Controller with an empty fleet.
func New(options Options) *Controller {
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Surface == nil {
		options.Surface = discardSurface{}
	}
	switch {
	case options.LoginDelay == 0:
		options.LoginDelay = DefaultLoginDelay
	case options.LoginDelay < 0:
		options.LoginDelay = 0
	}

	c := &Controller{
		dialer:     options.Dialer,
		clock:      options.Clock,
		logger:     options.Logger,
		surface:    options.Surface,
		loginDelay: options.LoginDelay,
		regions:    region.NewCatalog(),
		done:       make(chan struct{}),
	}
	c.metrics = newMetrics(c)
	return c
}

// Registry returns the controller's bot registry.
func (c *Controller) Registry() *Registry { return &c.registry }

// Done is closed once RequestShutdown succeeds.
func (c *Controller) Done() <-chan struct{} { return c.done }

// OnRegionDiscovered records a region reported by any bot. The first
// descriptor seen for a handle is kept.
func (c *Controller) OnRegionDiscovered(discovered region.Region) {
	if c.regions.Add(discovered) {
		c.logger.Info("discovered region",
			"region", discovered.Name,
			"handle", discovered.Handle,
			"x", discovered.X,
			"y", discovered.Y,
		)
	}
}

// observe is subscribed to every bot. It never touches the registry.
func (c *Controller) observe(event bot.Event) {
	switch event.Kind {
	case bot.EventRegionKnown:
		c.OnRegionDiscovered(event.Region)
	case bot.EventConnectFailed:
		c.metrics.connectFailures.Inc()
	case bot.EventDisconnected:
		c.metrics.disconnects.Inc()
		if event.Err != nil {
			c.logger.Warn("bot dropped by grid", "bot", event.Bot.Name(), "error", event.Err)
		}
	case bot.EventConnected:
		c.logger.Debug("bot connected", "bot", event.Bot.Name())
	}
}

func (c *Controller) notify(message string) {
	c.surface.Output(message)
}
