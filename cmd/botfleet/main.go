// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Command botfleet operates a running botfleet-controller through its
// control socket.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/botfleet/cmd/botfleet/cli"
	"github.com/bureau-foundation/botfleet/cmd/botfleet/credential"
	"github.com/bureau-foundation/botfleet/cmd/botfleet/fleet"
	"github.com/bureau-foundation/botfleet/cmd/botfleet/watch"
	"github.com/bureau-foundation/botfleet/lib/process"
	"github.com/bureau-foundation/botfleet/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return root().Execute(ctx, os.Args[1:])
}

func root() *cli.Command {
	connection := &fleet.Connection{}
	subcommands := fleet.Commands(connection, os.Stdout)
	subcommands = append(subcommands, credential.Commands(os.Stdin, os.Stdout)...)
	subcommands = append(subcommands,
		watch.Command(connection),
		&cli.Command{
			Name:    "version",
			Summary: "Print version information",
			Run: func(context.Context, []string) error {
				version.Print(os.Stdout, "botfleet")
				return nil
			},
		},
	)
	return &cli.Command{
		Name:    "botfleet",
		Summary: "Operate a bot fleet controller",
		Description: `botfleet sends operator commands to a running botfleet-controller
over its control socket. The socket defaults to $BOTFLEET_SOCKET, then
$XDG_RUNTIME_DIR/botfleet.sock.`,
		Subcommands: subcommands,
		Examples: []cli.Example{
			{Description: "Connect ten more bots", Command: "botfleet connect 10"},
			{Description: "List bots as JSON", Command: "botfleet show bots --json"},
			{Description: "Watch the fleet live", Command: "botfleet watch"},
			{Description: "Seal a bot password", Command: "botfleet seal -r $(botfleet keygen ~/.config/botfleet/fleet.key | cut -d' ' -f3)"},
		},
	}
}
