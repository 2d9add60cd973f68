// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fleet

import (
	"context"

	fleetcore "github.com/bureau-foundation/botfleet/lib/fleet"
	"github.com/bureau-foundation/botfleet/lib/region"
)

// Operator is the set of fleet operations available to an operator.
// Errors wrap the lib/fleet sentinels so callers can classify them
// with errors.Is regardless of transport.
type Operator interface {
	Status(ctx context.Context) (fleetcore.FleetStatus, error)
	Connect(ctx context.Context, count int) (fleetcore.ConnectResult, error)
	Disconnect(ctx context.Context, count int) (fleetcore.DisconnectResult, error)
	Sit(ctx context.Context) (fleetcore.PostureResult, error)
	Stand(ctx context.Context) (fleetcore.PostureResult, error)
	Regions(ctx context.Context) ([]region.Region, error)
	BotDetail(ctx context.Context, firstName, lastName string) (fleetcore.BotDetail, error)
	SetBots(ctx context.Context, key string, value bool) (int, error)
	AddBehavior(ctx context.Context, token string, number int) (int, error)
	RemoveBehavior(ctx context.Context, token string, number int) (int, error)
	Shutdown(ctx context.Context) error
}

// OperatorSource produces the Operator a command runs against. A
// source that also implements cli.FlagBinder contributes its flags to
// every command.
type OperatorSource interface {
	Operator() (Operator, error)
}

// Static is an OperatorSource that always returns the same Operator.
func Static(operator Operator) OperatorSource {
	return staticSource{operator: operator}
}

type staticSource struct {
	operator Operator
}

func (s staticSource) Operator() (Operator, error) { return s.operator, nil }

// Local adapts an in-process controller to Operator.
func Local(controller *fleetcore.Controller) Operator {
	return &localOperator{controller: controller}
}

type localOperator struct {
	controller *fleetcore.Controller
}

func (l *localOperator) Status(context.Context) (fleetcore.FleetStatus, error) {
	return l.controller.Status(), nil
}

func (l *localOperator) Connect(_ context.Context, count int) (fleetcore.ConnectResult, error) {
	return l.controller.Connect(count)
}

func (l *localOperator) Disconnect(_ context.Context, count int) (fleetcore.DisconnectResult, error) {
	return l.controller.Disconnect(count)
}

func (l *localOperator) Sit(ctx context.Context) (fleetcore.PostureResult, error) {
	return l.controller.Sit(ctx), nil
}

func (l *localOperator) Stand(ctx context.Context) (fleetcore.PostureResult, error) {
	return l.controller.Stand(ctx), nil
}

func (l *localOperator) Regions(context.Context) ([]region.Region, error) {
	return l.controller.Regions(), nil
}

func (l *localOperator) BotDetail(_ context.Context, firstName, lastName string) (fleetcore.BotDetail, error) {
	return l.controller.BotDetail(firstName, lastName)
}

func (l *localOperator) SetBots(_ context.Context, key string, value bool) (int, error) {
	return l.controller.SetBots(key, value)
}

func (l *localOperator) AddBehavior(_ context.Context, token string, number int) (int, error) {
	return l.controller.AddBehavior(token, number)
}

func (l *localOperator) RemoveBehavior(_ context.Context, token string, number int) (int, error) {
	return l.controller.RemoveBehavior(token, number)
}

func (l *localOperator) Shutdown(context.Context) error {
	return l.controller.RequestShutdown()
}
