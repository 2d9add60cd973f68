// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bureau-foundation/botfleet/lib/region"
)

// ErrLoginFailed is wrapped by Dialer implementations when the grid
// rejects the credentials (as opposed to a transport failure).
var ErrLoginFailed = errors.New("login failed")

// Vector is a position or displacement in region-local meters.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// LoginParams is everything a Dialer needs to log one bot in.
type LoginParams struct {
	FirstName string
	LastName  string
	Password  string
	LoginURI  string
	Start     Location
	Wear      WearMode

	// Settings are the bot's session flags at login time. See
	// [DefaultSettings] for the recognized keys.
	Settings map[string]bool
}

// Handler receives asynchronous notifications from a live session.
// Implementations must be safe to call from any goroutine.
type Handler interface {
	// SimulatorConnected reports that the session attached to the
	// simulator hosting region. Fired once at login and again on every
	// region crossing or teleport.
	SimulatorConnected(region region.Region)

	// RegionKnown reports a region the session learned about, whether
	// or not the agent is in it.
	RegionKnown(region region.Region)

	// Disconnected reports that the grid or the transport ended the
	// session. It is not called for a Logout the bot initiated.
	Disconnected(err error)
}

// Session is one logged-in agent on the grid.
type Session interface {
	// AgentID is the grid-assigned identity of the agent.
	AgentID() uuid.UUID

	Sit(ctx context.Context) error
	Stand(ctx context.Context) error

	// Move applies a displacement to the agent's position.
	Move(ctx context.Context, delta Vector) error

	// Teleport moves the agent to position in the named region.
	Teleport(ctx context.Context, regionName string, position Vector) error

	// Grab touches an object near the agent.
	Grab(ctx context.Context) error

	// Configure changes a session setting on the live session.
	Configure(key string, value bool) error

	// Settings returns a snapshot of the live session settings.
	Settings() map[string]bool

	// Logout ends the session. The Handler is not notified.
	Logout(ctx context.Context) error
}

// Dialer logs bots in.
type Dialer interface {
	Dial(ctx context.Context, params LoginParams, handler Handler) (Session, error)
}

// Session setting keys.
const (
	// SettingSendAgentUpdates controls whether the session streams
	// agent position updates to the simulator.
	SettingSendAgentUpdates = "SEND_AGENT_UPDATES"

	// SettingRequestObjectTextures controls whether the session asks
	// the simulator for textures of objects it sees.
	SettingRequestObjectTextures = "REQUEST_OBJECT_TEXTURES"
)

// DefaultSettings returns a fresh map of every recognized setting at
// its default value.
func DefaultSettings() map[string]bool {
	return map[string]bool{
		SettingSendAgentUpdates:      true,
		SettingRequestObjectTextures: true,
	}
}

// ValidateSetting reports an error if key is not a recognized setting.
func ValidateSetting(key string) error {
	if _, ok := DefaultSettings()[key]; !ok {
		return fmt.Errorf("unknown session setting %q", key)
	}
	return nil
}
