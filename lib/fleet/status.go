// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fleet

import (
	"github.com/google/uuid"

	"github.com/bureau-foundation/botfleet/lib/bot"
	"github.com/bureau-foundation/botfleet/lib/region"
)

// BotStatus is one row of the fleet status table.
type BotStatus struct {
	// Number is the bot's position in creation order, as accepted by
	// AddBehavior and RemoveBehavior.
	Number         int    `cbor:"number"          json:"number"`
	FirstName      string `cbor:"first_name"      json:"first_name"`
	LastName       string `cbor:"last_name"       json:"last_name"`
	Region         string `cbor:"region"          json:"region"`
	State          string `cbor:"state"           json:"state"`
	SimulatorCount int    `cbor:"simulator_count" json:"simulator_count"`
}

// StateTotal counts bots in one state.
type StateTotal struct {
	State string `cbor:"state" json:"state"`
	Count int    `cbor:"count" json:"count"`
}

// FleetStatus is a point-in-time view of the whole fleet.
type FleetStatus struct {
	Bots []BotStatus `cbor:"bots" json:"bots"`

	// Totals has one entry per state, in lifecycle order, including
	// states no bot is in.
	Totals []StateTotal `cbor:"totals" json:"totals"`

	ConnectInProgress bool `cbor:"connect_in_progress" json:"connect_in_progress"`
	RegionCount       int  `cbor:"region_count"        json:"region_count"`
}

// BotDetail is the full view of one bot.
type BotDetail struct {
	BotStatus
	Behaviors []string        `cbor:"behaviors"          json:"behaviors"`
	Settings  map[string]bool `cbor:"settings"           json:"settings"`
	AgentID   string          `cbor:"agent_id,omitempty" json:"agent_id,omitempty"`
	Start     string          `cbor:"start"              json:"start"`
}

func statusOf(number int, snapshot bot.Snapshot) BotStatus {
	return BotStatus{
		Number:         number,
		FirstName:      snapshot.FirstName,
		LastName:       snapshot.LastName,
		Region:         snapshot.Region,
		State:          snapshot.State.String(),
		SimulatorCount: snapshot.SimulatorCount,
	}
}

// Status snapshots every bot under the registry lock.
func (c *Controller) Status() FleetStatus {
	c.registry.mu.Lock()
	snapshots := make([]bot.Snapshot, len(c.registry.bots))
	for i, member := range c.registry.bots {
		snapshots[i] = member.Snapshot()
	}
	connecting := c.registry.connectingBots
	c.registry.mu.Unlock()

	status := FleetStatus{
		Bots:              make([]BotStatus, len(snapshots)),
		ConnectInProgress: connecting,
		RegionCount:       c.regions.Len(),
	}
	counts := make(map[bot.State]int)
	for i, snapshot := range snapshots {
		status.Bots[i] = statusOf(i, snapshot)
		counts[snapshot.State]++
	}
	for _, state := range bot.States() {
		status.Totals = append(status.Totals, StateTotal{State: state.String(), Count: counts[state]})
	}
	return status
}

// BotDetail returns the full view of the named bot.
func (c *Controller) BotDetail(firstName, lastName string) (BotDetail, error) {
	c.registry.mu.Lock()
	number := -1
	var snapshot bot.Snapshot
	for i, member := range c.registry.bots {
		if member.FirstName() == firstName && member.LastName() == lastName {
			number = i
			snapshot = member.Snapshot()
			break
		}
	}
	c.registry.mu.Unlock()

	if number < 0 {
		return BotDetail{}, &botNotFoundError{name: firstName + " " + lastName}
	}

	detail := BotDetail{
		BotStatus: statusOf(number, snapshot),
		Behaviors: snapshot.Behaviors,
		Settings:  snapshot.Settings,
		Start:     snapshot.Start.String(),
	}
	if snapshot.AgentID != uuid.Nil {
		detail.AgentID = snapshot.AgentID.String()
	}
	return detail, nil
}

// Regions lists the discovered regions, sorted by name.
func (c *Controller) Regions() []region.Region {
	return c.regions.List()
}

type botNotFoundError struct {
	name string
}

func (e *botNotFoundError) Error() string { return "no bot named " + e.name }
func (e *botNotFoundError) Unwrap() error { return ErrBotNotFound }
