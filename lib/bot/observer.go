// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"maps"
	"slices"

	"github.com/bureau-foundation/botfleet/lib/region"
)

// EventKind identifies what happened to a bot.
type EventKind int

const (
	// EventConnected: login succeeded and the bot is Connected.
	EventConnected EventKind = iota

	// EventDisconnected: the bot returned to Disconnected after a
	// logout or a session ended by the grid. Err is set in the latter
	// case.
	EventDisconnected

	// EventConnectFailed: login failed and the bot is back to
	// Disconnected. Err is the login error.
	EventConnectFailed

	// EventRegionKnown: the bot's session learned about Region.
	EventRegionKnown
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventConnectFailed:
		return "connect-failed"
	case EventRegionKnown:
		return "region-known"
	default:
		return "unknown"
	}
}

// Event is delivered to observers.
type Event struct {
	Kind   EventKind
	Bot    *Bot
	Region region.Region
	Err    error
}

// Observer receives bot events. It must not call back into the bot's
// Connect or Disconnect synchronously.
type Observer func(Event)

// Subscribe registers observer and returns a function that removes it.
// Observers are called in the order they subscribed.
func (b *Bot) Subscribe(observer Observer) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextObserverID
	b.nextObserverID++
	b.observers[id] = observer
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.observers, id)
	}
}

func (b *Bot) emit(event Event) {
	event.Bot = b
	b.mu.Lock()
	observers := make([]Observer, 0, len(b.observers))
	for _, id := range slices.Sorted(maps.Keys(b.observers)) {
		observers = append(observers, b.observers[id])
	}
	b.mu.Unlock()

	for _, observer := range observers {
		observer(event)
	}
}
