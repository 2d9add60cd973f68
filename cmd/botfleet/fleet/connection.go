// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fleet

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/botfleet/cmd/botfleet/cli"
	"github.com/bureau-foundation/botfleet/lib/config"
	"github.com/bureau-foundation/botfleet/lib/control"
	fleetcore "github.com/bureau-foundation/botfleet/lib/fleet"
	"github.com/bureau-foundation/botfleet/lib/region"
)

// SocketEnvironmentVariable overrides the default control socket path.
const SocketEnvironmentVariable = "BOTFLEET_SOCKET"

// Connection is an OperatorSource reaching botfleet-controller over
// its control socket. It contributes a --socket flag to every command.
type Connection struct {
	SocketPath string
}

// DefaultSocketPath returns $BOTFLEET_SOCKET, or the socket path of
// the default configuration.
func DefaultSocketPath() string {
	if path := os.Getenv(SocketEnvironmentVariable); path != "" {
		return path
	}
	return config.Default().Control.Socket
}

// AddFlags registers --socket.
func (c *Connection) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&c.SocketPath, "socket", DefaultSocketPath(),
		"botfleet-controller control socket (env "+SocketEnvironmentVariable+")")
}

// Operator returns a remote operator for the configured socket.
func (c *Connection) Operator() (Operator, error) {
	if c.SocketPath == "" {
		return nil, cli.Validation("--socket is required")
	}
	return Remote(control.NewClient(c.SocketPath)), nil
}

// Remote returns an Operator that forwards every operation to client.
func Remote(client *control.Client) Operator {
	return &remoteOperator{client: client}
}

type remoteOperator struct {
	client *control.Client
}

// call performs action and converts failures: server errors become
// fleet errors by code, transport errors become transient.
func (r *remoteOperator) call(ctx context.Context, action string, fields map[string]any, result any) error {
	err := r.client.Call(ctx, action, fields, result)
	if err == nil {
		return nil
	}
	var serverError *control.Error
	if errors.As(err, &serverError) {
		return fleetcore.FromCode(serverError.Code, serverError.Message)
	}
	return cli.Transient("cannot reach botfleet-controller: %w", err)
}

func (r *remoteOperator) Status(ctx context.Context) (fleetcore.FleetStatus, error) {
	var status fleetcore.FleetStatus
	err := r.call(ctx, ActionStatus, nil, &status)
	return status, err
}

func (r *remoteOperator) Connect(ctx context.Context, count int) (fleetcore.ConnectResult, error) {
	var result fleetcore.ConnectResult
	err := r.call(ctx, ActionConnect, map[string]any{"count": count}, &result)
	return result, err
}

func (r *remoteOperator) Disconnect(ctx context.Context, count int) (fleetcore.DisconnectResult, error) {
	var result fleetcore.DisconnectResult
	err := r.call(ctx, ActionDisconnect, map[string]any{"count": count}, &result)
	return result, err
}

func (r *remoteOperator) Sit(ctx context.Context) (fleetcore.PostureResult, error) {
	var result fleetcore.PostureResult
	err := r.call(ctx, ActionSit, nil, &result)
	return result, err
}

func (r *remoteOperator) Stand(ctx context.Context) (fleetcore.PostureResult, error) {
	var result fleetcore.PostureResult
	err := r.call(ctx, ActionStand, nil, &result)
	return result, err
}

func (r *remoteOperator) Regions(ctx context.Context) ([]region.Region, error) {
	var regions []region.Region
	err := r.call(ctx, ActionShowRegions, nil, &regions)
	return regions, err
}

func (r *remoteOperator) BotDetail(ctx context.Context, firstName, lastName string) (fleetcore.BotDetail, error) {
	var detail fleetcore.BotDetail
	err := r.call(ctx, ActionShowBot, map[string]any{
		"first_name": firstName,
		"last_name":  lastName,
	}, &detail)
	return detail, err
}

func (r *remoteOperator) SetBots(ctx context.Context, key string, value bool) (int, error) {
	var response updatedResponse
	err := r.call(ctx, ActionSetBots, map[string]any{"key": key, "value": value}, &response)
	return response.Bots, err
}

func (r *remoteOperator) AddBehavior(ctx context.Context, token string, number int) (int, error) {
	var response updatedResponse
	err := r.call(ctx, ActionAddBehavior, map[string]any{"token": token, "number": number}, &response)
	return response.Bots, err
}

func (r *remoteOperator) RemoveBehavior(ctx context.Context, token string, number int) (int, error) {
	var response updatedResponse
	err := r.call(ctx, ActionRemoveBehavior, map[string]any{"token": token, "number": number}, &response)
	return response.Bots, err
}

func (r *remoteOperator) Shutdown(ctx context.Context) error {
	return r.call(ctx, ActionShutdown, nil, nil)
}
