// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wsgrid

import (
	"encoding/json"

	"github.com/bureau-foundation/botfleet/lib/region"
	"github.com/bureau-foundation/botfleet/lib/session"
)

// Envelope types.
const (
	TypeLogin     = "login"
	TypeLogout    = "logout"
	TypeSit       = "sit"
	TypeStand     = "stand"
	TypeMove      = "move"
	TypeTeleport  = "teleport"
	TypeGrab      = "grab"
	TypeConfigure = "configure"

	TypeReply     = "reply"
	TypeSimulator = "simulator"
	TypeRegion    = "region"
	TypeKicked    = "kicked"
)

// Envelope is one websocket text message.
type Envelope struct {
	Type    string          `json:"type"`
	Seq     uint64          `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// LoginRequest is the payload of a login envelope.
type LoginRequest struct {
	ClientID  string          `json:"client_id"`
	FirstName string          `json:"first"`
	LastName  string          `json:"last"`
	Password  string          `json:"password"`
	LoginURI  string          `json:"login_uri,omitempty"`
	Start     string          `json:"start"`
	Wear      string          `json:"wear"`
	Settings  map[string]bool `json:"settings,omitempty"`
}

// LoginReply is the payload of the reply to a login.
type LoginReply struct {
	AgentID string        `json:"agent_id"`
	Region  region.Region `json:"region"`
}

// MoveRequest is the payload of a move envelope.
type MoveRequest struct {
	Delta session.Vector `json:"delta"`
}

// TeleportRequest is the payload of a teleport envelope.
type TeleportRequest struct {
	Region   string         `json:"region"`
	Position session.Vector `json:"position"`
}

// ConfigureRequest is the payload of a configure envelope.
type ConfigureRequest struct {
	Key   string `json:"key"`
	Value bool   `json:"value"`
}

// RegionEvent is the payload of simulator and region events.
type RegionEvent struct {
	Region region.Region `json:"region"`
}

// KickedEvent is the payload of a kicked event.
type KickedEvent struct {
	Reason string `json:"reason"`
}
