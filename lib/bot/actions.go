// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"context"
	"maps"

	"github.com/google/uuid"

	"github.com/bureau-foundation/botfleet/lib/behavior"
	"github.com/bureau-foundation/botfleet/lib/session"
)

// startLoopLocked starts the behavior loop for a newly connected bot.
// Caller holds mu.
func (b *Bot) startLoopLocked() {
	if b.config.ActionInterval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	b.stopLoop = func() {
		cancel()
		<-done
	}
	go b.runBehaviors(ctx, done)
}

// runBehaviors runs every behavior once per ActionInterval until ctx
// is cancelled.
func (b *Bot) runBehaviors(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.clock.After(b.config.ActionInterval):
		}

		b.mu.Lock()
		strategies := b.behaviors.Behaviors()
		b.mu.Unlock()

		for _, strategy := range strategies {
			if ctx.Err() != nil {
				return
			}
			if err := strategy.Act(ctx); err != nil {
				b.logger.Debug("behavior step failed", "behavior", strategy.Name(), "error", err)
			}
		}
	}
}

// AddBehavior binds strategy to the bot and adds it, unless a behavior
// with the same token is present.
func (b *Bot) AddBehavior(strategy behavior.Behavior) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.behaviors.Has(strategy.Token()) {
		return false
	}
	strategy.Initialize(b)
	return b.behaviors.Add(strategy)
}

// RemoveBehavior removes and closes the behavior selected by token.
func (b *Bot) RemoveBehavior(token string) bool {
	b.mu.Lock()
	removed, ok := b.behaviors.Remove(token)
	b.mu.Unlock()
	if ok {
		removed.Close()
	}
	return ok
}

// BehaviorNames returns the names of the bot's behaviors in order.
func (b *Bot) BehaviorNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.behaviors.Names()
}

// Sit sits the agent down.
func (b *Bot) Sit(ctx context.Context) error {
	live := b.Session()
	if live == nil {
		return ErrNotConnected
	}
	return live.Sit(ctx)
}

// Stand stands the agent up.
func (b *Bot) Stand(ctx context.Context) error {
	live := b.Session()
	if live == nil {
		return ErrNotConnected
	}
	return live.Stand(ctx)
}

// Configure changes a session setting. The value is kept for future
// logins and applied to the live session if there is one.
func (b *Bot) Configure(key string, value bool) error {
	if err := session.ValidateSetting(key); err != nil {
		return err
	}
	b.mu.Lock()
	b.settings[key] = value
	live := b.session
	b.mu.Unlock()

	if live == nil {
		return nil
	}
	return live.Configure(key, value)
}

// Snapshot is a consistent copy of a bot's observable state.
type Snapshot struct {
	FirstName      string
	LastName       string
	State          State
	Region         string
	SimulatorCount int
	Behaviors      []string
	Settings       map[string]bool
	AgentID        uuid.UUID
	Start          session.Location
}

// Snapshot returns the bot's state under its lock.
func (b *Bot) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		FirstName:      b.config.FirstName,
		LastName:       b.config.LastName,
		State:          b.state,
		Region:         b.currentRegion,
		SimulatorCount: b.simulators,
		Behaviors:      b.behaviors.Names(),
		Settings:       maps.Clone(b.settings),
		AgentID:        b.agentID,
		Start:          b.config.Start,
	}
}
