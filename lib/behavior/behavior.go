// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package behavior

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bureau-foundation/botfleet/lib/region"
	"github.com/bureau-foundation/botfleet/lib/session"
)

// Actor is the view of a bot that behaviors act through.
type Actor interface {
	// Name is the bot's full name, for logging.
	Name() string

	// Session returns the bot's live session, or nil when the bot is
	// not connected.
	Session() session.Session

	// CurrentRegion is the name of the region the bot is in, or "" if
	// unknown.
	CurrentRegion() string

	// KnownRegions lists the regions the fleet has discovered.
	KnownRegions() []region.Region
}

// Behavior is one strategy run by a connected bot.
type Behavior interface {
	// Name is the human-readable strategy name ("Physics").
	Name() string

	// Token is the single-letter selector ("p").
	Token() string

	// Initialize binds the behavior to its bot. Called once, before
	// the first Act.
	Initialize(actor Actor)

	// Act performs one step. Called repeatedly while the bot is
	// connected.
	Act(ctx context.Context) error

	// Close releases anything the behavior holds. Called when the
	// behavior is removed from its bot.
	Close()
}

// Behavior tokens.
const (
	TokenCross    = "c"
	TokenGrabbing = "g"
	TokenNone     = "n"
	TokenPhysics  = "p"
	TokenTeleport = "t"
)

var constructors = map[string]func() Behavior{
	TokenCross:    func() Behavior { return &Cross{} },
	TokenGrabbing: func() Behavior { return &Grabbing{} },
	TokenNone:     func() Behavior { return None{} },
	TokenPhysics:  func() Behavior { return &Physics{} },
	TokenTeleport: func() Behavior { return &Teleport{} },
}

// New returns a fresh instance of the behavior selected by token.
func New(token string) (Behavior, error) {
	constructor, ok := constructors[NormalizeToken(token)]
	if !ok {
		return nil, fmt.Errorf("unknown behavior %q (known: %s)", token, strings.Join(KnownTokens(), ", "))
	}
	return constructor(), nil
}

// Known reports whether token selects a behavior.
func Known(token string) bool {
	_, ok := constructors[NormalizeToken(token)]
	return ok
}

// KnownTokens returns every valid token in sorted order.
func KnownTokens() []string {
	tokens := make([]string, 0, len(constructors))
	for token := range constructors {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// NormalizeToken returns token in the form sets store: trimmed and
// lowercased.
func NormalizeToken(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}
