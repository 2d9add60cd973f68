// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package behavior

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/bureau-foundation/botfleet/lib/session"
)

// errNotConnected is returned by Act when the actor has no session.
// The bot loop stops acting once the session is gone, so this only
// surfaces in a narrow window around disconnection.
var errNotConnected = errors.New("bot is not connected")

// base holds the actor binding and random source every strategy uses.
type base struct {
	actor  Actor
	random *rand.Rand
}

func (b *base) Initialize(actor Actor) {
	b.actor = actor
	b.random = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func (b *base) Close() {}

func (b *base) session() (session.Session, error) {
	if b.actor == nil {
		return nil, errNotConnected
	}
	current := b.actor.Session()
	if current == nil {
		return nil, errNotConnected
	}
	return current, nil
}

// None keeps the bot logged in without doing anything.
type None struct{}

func (None) Name() string                  { return "None" }
func (None) Token() string                 { return TokenNone }
func (None) Initialize(Actor)              {}
func (None) Act(ctx context.Context) error { return nil }
func (None) Close()                        {}

// Physics makes short random moves and the occasional jump.
type Physics struct {
	base
}

func (*Physics) Name() string  { return "Physics" }
func (*Physics) Token() string { return TokenPhysics }

func (p *Physics) Act(ctx context.Context) error {
	current, err := p.session()
	if err != nil {
		return err
	}
	delta := session.Vector{
		X: p.random.Float64()*10 - 5,
		Y: p.random.Float64()*10 - 5,
	}
	if p.random.IntN(4) == 0 {
		delta.Z = 2
	}
	return current.Move(ctx, delta)
}

// Grabbing touches nearby objects.
type Grabbing struct {
	base
}

func (*Grabbing) Name() string  { return "Grabbing" }
func (*Grabbing) Token() string { return TokenGrabbing }

func (g *Grabbing) Act(ctx context.Context) error {
	current, err := g.session()
	if err != nil {
		return err
	}
	return current.Grab(ctx)
}

// Teleport hops to a random known region other than the current one.
type Teleport struct {
	base
}

func (*Teleport) Name() string  { return "Teleport" }
func (*Teleport) Token() string { return TokenTeleport }

// teleportArrival is where Teleport lands within the destination.
var teleportArrival = session.Vector{X: 128, Y: 128, Z: 25}

func (t *Teleport) Act(ctx context.Context) error {
	current, err := t.session()
	if err != nil {
		return err
	}

	here := t.actor.CurrentRegion()
	var candidates []string
	for _, known := range t.actor.KnownRegions() {
		if known.Name != here {
			candidates = append(candidates, known.Name)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	destination := candidates[t.random.IntN(len(candidates))]
	return current.Teleport(ctx, destination, teleportArrival)
}

// Cross walks in one compass direction until the bot changes region,
// then turns around, so it repeatedly crosses the same border.
type Cross struct {
	base
	direction  session.Vector
	lastRegion string
}

func (*Cross) Name() string  { return "Cross" }
func (*Cross) Token() string { return TokenCross }

// crossStride is how far Cross walks per step.
const crossStride = 32

var compass = []session.Vector{
	{X: crossStride},
	{X: -crossStride},
	{Y: crossStride},
	{Y: -crossStride},
}

func (c *Cross) Initialize(actor Actor) {
	c.base.Initialize(actor)
	c.direction = compass[c.random.IntN(len(compass))]
}

func (c *Cross) Act(ctx context.Context) error {
	current, err := c.session()
	if err != nil {
		return err
	}

	here := c.actor.CurrentRegion()
	if c.lastRegion != "" && here != c.lastRegion {
		c.direction = session.Vector{X: -c.direction.X, Y: -c.direction.Y}
	}
	c.lastRegion = here
	return current.Move(ctx, c.direction)
}
