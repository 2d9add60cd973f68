// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package simgrid is an in-process grid that implements
// [session.Dialer] without a network. Logins take a configurable
// latency on the injected clock, selected accounts can be made to
// fail, and agents can walk across region borders and teleport between
// the configured regions. The controller uses it for dry runs; tests
// use it to drive real bot lifecycles deterministically.
package simgrid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/botfleet/lib/clock"
	"github.com/bureau-foundation/botfleet/lib/region"
	"github.com/bureau-foundation/botfleet/lib/session"
)

// ErrKicked is passed to [session.Handler.Disconnected] when the grid
// ends a session with [Grid.Kick].
var ErrKicked = errors.New("kicked by grid")

// errClosed is returned by session methods after Logout or a kick.
var errClosed = errors.New("session closed")

// Options configures a Grid.
type Options struct {
	// Regions are the regions the grid hosts. When empty the grid hosts
	// a single region named "Sandbox" at grid coordinates 1000,1000.
	Regions []region.Region

	// LoginLatency is how long each Dial waits on Clock before
	// completing.
	LoginLatency time.Duration

	// FailLogins lists full names ("First Last") whose logins are
	// rejected.
	FailLogins []string

	// Clock defaults to the real clock.
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Grid is the simulated grid. Safe for concurrent use.
type Grid struct {
	clock   clock.Clock
	logger  *slog.Logger
	latency time.Duration
	regions []region.Region

	mu       sync.Mutex
	failing  map[string]bool
	sessions map[uuid.UUID]*Session
	logins   int
}

// New creates a Grid.
func New(options Options) *Grid {
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	regions := append([]region.Region(nil), options.Regions...)
	if len(regions) == 0 {
		regions = []region.Region{region.New("Sandbox", 1000, 1000)}
	}

	failing := make(map[string]bool, len(options.FailLogins))
	for _, name := range options.FailLogins {
		failing[name] = true
	}

	return &Grid{
		clock:    options.Clock,
		logger:   options.Logger,
		latency:  options.LoginLatency,
		regions:  regions,
		failing:  failing,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Dial logs an agent in. It waits LoginLatency on the grid's clock,
// rejects accounts listed in FailLogins, and places the agent in its
// requested start region (or the first region when the requested one
// is not hosted here). Before returning it reports the start simulator
// and every hosted region to handler.
func (g *Grid) Dial(ctx context.Context, params session.LoginParams, handler session.Handler) (session.Session, error) {
	if g.latency > 0 {
		select {
		case <-g.clock.After(g.latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	fullName := params.FirstName + " " + params.LastName
	g.mu.Lock()
	g.logins++
	if g.failing[fullName] {
		g.mu.Unlock()
		return nil, fmt.Errorf("%w: account %q rejected by simulated grid", session.ErrLoginFailed, fullName)
	}

	start := g.regions[0]
	position := session.Vector{X: session.DefaultStartX, Y: session.DefaultStartY}
	if params.Start.Kind == session.LocationRegion {
		if hosted, ok := g.regionByNameLocked(params.Start.Region); ok {
			start = hosted
			position = session.Vector{
				X: float64(params.Start.X),
				Y: float64(params.Start.Y),
				Z: float64(params.Start.Z),
			}
		}
	}

	settings := session.DefaultSettings()
	for key, value := range params.Settings {
		settings[key] = value
	}

	agent := &Session{
		grid:     g,
		id:       uuid.New(),
		name:     fullName,
		handler:  handler,
		region:   start,
		position: position,
		settings: settings,
	}
	g.sessions[agent.id] = agent
	g.mu.Unlock()

	g.logger.Debug("simulated login",
		"agent", fullName,
		"agent_id", agent.id,
		"region", start.Name,
	)

	handler.SimulatorConnected(start)
	for _, hosted := range g.regions {
		handler.RegionKnown(hosted)
	}
	return agent, nil
}

// Kick ends the named agent's session from the grid side, as a
// simulator crash or an administrator would. It reports whether such
// a session existed.
func (g *Grid) Kick(fullName string) bool {
	g.mu.Lock()
	var target *Session
	for id, agent := range g.sessions {
		if agent.name == fullName {
			target = agent
			delete(g.sessions, id)
			break
		}
	}
	g.mu.Unlock()

	if target == nil {
		return false
	}
	target.close()
	target.handler.Disconnected(ErrKicked)
	return true
}

// SessionCount returns the number of live sessions.
func (g *Grid) SessionCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sessions)
}

// LoginCount returns the number of login attempts, successful or not,
// that reached the grid.
func (g *Grid) LoginCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.logins
}

// Find returns the live session of the named agent.
func (g *Grid) Find(fullName string) (*Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, agent := range g.sessions {
		if agent.name == fullName {
			return agent, true
		}
	}
	return nil, false
}

func (g *Grid) regionByNameLocked(name string) (region.Region, bool) {
	for _, hosted := range g.regions {
		if hosted.Name == name {
			return hosted, true
		}
	}
	return region.Region{}, false
}

func (g *Grid) regionAt(x, y uint32) (region.Region, bool) {
	for _, hosted := range g.regions {
		if hosted.X == x && hosted.Y == y {
			return hosted, true
		}
	}
	return region.Region{}, false
}

func (g *Grid) regionByName(name string) (region.Region, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.regionByNameLocked(name)
}

func (g *Grid) remove(id uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.sessions, id)
}
