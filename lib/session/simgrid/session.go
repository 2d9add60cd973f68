// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package simgrid

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"

	"github.com/bureau-foundation/botfleet/lib/region"
	"github.com/bureau-foundation/botfleet/lib/session"
)

// regionWidth is the side length of a region in meters.
const regionWidth = 256

// Session is one agent logged in to a Grid.
type Session struct {
	grid    *Grid
	id      uuid.UUID
	name    string
	handler session.Handler

	mu       sync.Mutex
	closed   bool
	region   region.Region
	position session.Vector
	sitting  bool
	grabs    int
	settings map[string]bool
}

var _ session.Session = (*Session)(nil)

// AgentID returns the agent's identity.
func (s *Session) AgentID() uuid.UUID { return s.id }

// Sit sits the agent down.
func (s *Session) Sit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	s.sitting = true
	return nil
}

// Stand stands the agent up.
func (s *Session) Stand(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	s.sitting = false
	return nil
}

// Move displaces the agent. Walking off a region edge crosses into the
// neighbouring region when the grid hosts one; otherwise the agent
// stops at the edge.
func (s *Session) Move(ctx context.Context, delta session.Vector) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errClosed
	}

	x := s.position.X + delta.X
	y := s.position.Y + delta.Y
	z := max(s.position.Z+delta.Z, 0)

	gridX, localX := wrap(s.region.X, x)
	gridY, localY := wrap(s.region.Y, y)

	var crossed *region.Region
	if gridX != s.region.X || gridY != s.region.Y {
		if neighbour, ok := s.grid.regionAt(gridX, gridY); ok {
			s.region = neighbour
			x, y = localX, localY
			crossed = &neighbour
		} else {
			x = clamp(x)
			y = clamp(y)
		}
	}
	s.position = session.Vector{X: x, Y: y, Z: z}
	s.mu.Unlock()

	if crossed != nil {
		s.handler.SimulatorConnected(*crossed)
	}
	return nil
}

// Teleport moves the agent to position in the named region.
func (s *Session) Teleport(ctx context.Context, regionName string, position session.Vector) error {
	destination, ok := s.grid.regionByName(regionName)
	if !ok {
		return fmt.Errorf("teleport to %q: region not hosted by simulated grid", regionName)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errClosed
	}
	s.region = destination
	s.position = position
	s.sitting = false
	s.mu.Unlock()

	s.handler.SimulatorConnected(destination)
	return nil
}

// Grab touches an object near the agent.
func (s *Session) Grab(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	s.grabs++
	return nil
}

// Configure changes one session setting.
func (s *Session) Configure(key string, value bool) error {
	if err := session.ValidateSetting(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	s.settings[key] = value
	return nil
}

// Settings returns a snapshot of the session settings.
func (s *Session) Settings() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.settings)
}

// Logout ends the session. Logging out twice is not an error.
func (s *Session) Logout(ctx context.Context) error {
	s.close()
	s.grid.remove(s.id)
	return nil
}

// Region returns the region the agent is in.
func (s *Session) Region() region.Region {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.region
}

// Position returns the agent's region-local position.
func (s *Session) Position() session.Vector {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// Sitting reports whether the agent is seated.
func (s *Session) Sitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sitting
}

// Grabs returns how many times the agent has grabbed.
func (s *Session) Grabs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grabs
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// wrap converts a region-local coordinate that may have left the
// region into the grid coordinate of the region it lands in and the
// local coordinate within that region.
func wrap(grid uint32, local float64) (uint32, float64) {
	switch {
	case local < 0:
		if grid == 0 {
			return grid, local
		}
		return grid - 1, local + regionWidth
	case local >= regionWidth:
		return grid + 1, local - regionWidth
	default:
		return grid, local
	}
}

func clamp(local float64) float64 {
	return min(max(local, 0), regionWidth-1)
}
