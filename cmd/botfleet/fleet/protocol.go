// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fleet

import (
	"context"

	"github.com/bureau-foundation/botfleet/lib/control"
	fleetcore "github.com/bureau-foundation/botfleet/lib/fleet"
)

// Control socket actions.
const (
	ActionStatus         = "status"
	ActionConnect        = "connect"
	ActionDisconnect     = "disconnect"
	ActionSit            = "sit"
	ActionStand          = "stand"
	ActionShowBots       = "show-bots"
	ActionShowRegions    = "show-regions"
	ActionShowBot        = "show-bot"
	ActionSetBots        = "set-bots"
	ActionAddBehavior    = "add-behavior"
	ActionRemoveBehavior = "remove-behavior"
	ActionShutdown       = "shutdown"
)

type countRequest struct {
	Count int `cbor:"count"`
}

type botRequest struct {
	FirstName string `cbor:"first_name"`
	LastName  string `cbor:"last_name"`
}

type setBotsRequest struct {
	Key   string `cbor:"key"`
	Value bool   `cbor:"value"`
}

type behaviorRequest struct {
	Token  string `cbor:"token"`
	Number int    `cbor:"number"`
}

// updatedResponse is the reply of actions that change some bots.
type updatedResponse struct {
	Bots int `cbor:"bots"`
}

// Register exposes operator's operations as control socket actions.
// show-bots and status both return the full FleetStatus.
func Register(server *control.Server, operator Operator) {
	status := func(ctx context.Context, _ []byte) (any, error) {
		return operator.Status(ctx)
	}
	server.Handle(ActionStatus, status)
	server.Handle(ActionShowBots, status)

	server.Handle(ActionConnect, func(ctx context.Context, raw []byte) (any, error) {
		var request countRequest
		if err := control.Decode(raw, &request); err != nil {
			return nil, err
		}
		return operator.Connect(ctx, request.Count)
	})
	server.Handle(ActionDisconnect, func(ctx context.Context, raw []byte) (any, error) {
		var request countRequest
		if err := control.Decode(raw, &request); err != nil {
			return nil, err
		}
		return operator.Disconnect(ctx, request.Count)
	})
	server.Handle(ActionSit, func(ctx context.Context, _ []byte) (any, error) {
		return operator.Sit(ctx)
	})
	server.Handle(ActionStand, func(ctx context.Context, _ []byte) (any, error) {
		return operator.Stand(ctx)
	})
	server.Handle(ActionShowRegions, func(ctx context.Context, _ []byte) (any, error) {
		return operator.Regions(ctx)
	})
	server.Handle(ActionShowBot, func(ctx context.Context, raw []byte) (any, error) {
		var request botRequest
		if err := control.Decode(raw, &request); err != nil {
			return nil, err
		}
		return operator.BotDetail(ctx, request.FirstName, request.LastName)
	})
	server.Handle(ActionSetBots, func(ctx context.Context, raw []byte) (any, error) {
		var request setBotsRequest
		if err := control.Decode(raw, &request); err != nil {
			return nil, err
		}
		updated, err := operator.SetBots(ctx, request.Key, request.Value)
		return updatedResponse{Bots: updated}, err
	})
	server.Handle(ActionAddBehavior, func(ctx context.Context, raw []byte) (any, error) {
		var request behaviorRequest
		if err := control.Decode(raw, &request); err != nil {
			return nil, err
		}
		changed, err := operator.AddBehavior(ctx, request.Token, request.Number)
		return updatedResponse{Bots: changed}, err
	})
	server.Handle(ActionRemoveBehavior, func(ctx context.Context, raw []byte) (any, error) {
		var request behaviorRequest
		if err := control.Decode(raw, &request); err != nil {
			return nil, err
		}
		changed, err := operator.RemoveBehavior(ctx, request.Token, request.Number)
		return updatedResponse{Bots: changed}, err
	})
	server.Handle(ActionShutdown, func(ctx context.Context, _ []byte) (any, error) {
		return nil, operator.Shutdown(ctx)
	})
}

// ServerOptions returns control server options that carry fleet error
// codes to remote callers.
func ServerOptions(options control.ServerOptions) control.ServerOptions {
	options.ErrorCode = fleetcore.Code
	return options
}
