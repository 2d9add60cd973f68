// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fleet

import (
	"context"
	"sync"

	"github.com/bureau-foundation/botfleet/lib/bot"
)

// Registry is the ordered list of every bot the controller created,
// together with the connect and disconnect flags. Order is creation
// order, which is also numeric suffix order. Bots are never removed.
type Registry struct {
	mu   sync.Mutex
	bots []*bot.Bot

	// connectingBots is true while a connect worker runs.
	connectingBots bool

	// disconnectingBots is true while Disconnect walks the list.
	disconnectingBots bool

	// cancelConnect stops the running connect worker. Nil when no
	// worker runs.
	cancelConnect context.CancelFunc
}

// Len returns the number of bots.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bots)
}

// Bots returns a copy of the bot list.
func (r *Registry) Bots() []*bot.Bot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*bot.Bot(nil), r.bots...)
}

// At returns the bot at index in creation order.
func (r *Registry) At(index int) (*bot.Bot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.bots) {
		return nil, false
	}
	return r.bots[index], true
}

// Find returns the bot with the given first and last name.
func (r *Registry) Find(firstName, lastName string) (*bot.Bot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, candidate := range r.bots {
		if candidate.FirstName() == firstName && candidate.LastName() == lastName {
			return candidate, true
		}
	}
	return nil, false
}

// ConnectInProgress reports whether a connect worker is running.
func (r *Registry) ConnectInProgress() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connectingBots
}

func (r *Registry) countLocked(state bot.State) int {
	count := 0
	for _, member := range r.bots {
		if member.State() == state {
			count++
		}
	}
	return count
}

// nextDisconnectedLocked returns the first Disconnected bot at or
// after position from, and the position after it. A connect worker
// advances from so that a bot whose login has already failed is not
// picked a second time in the same sequence.
func (r *Registry) nextDisconnectedLocked(from int) (*bot.Bot, int) {
	for i := from; i < len(r.bots); i++ {
		if r.bots[i].State() == bot.Disconnected {
			return r.bots[i], i + 1
		}
	}
	return nil, len(r.bots)
}
