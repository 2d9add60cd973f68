// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/botfleet/cmd/botfleet/cli"
	"github.com/bureau-foundation/botfleet/cmd/botfleet/fleet"
)

type watchParams struct {
	Interval time.Duration `flag:"interval" default:"1s" desc:"status poll interval"`
}

// Command returns the "watch" command, which runs the dashboard
// against the controller reached through source.
func Command(source fleet.OperatorSource) *cli.Command {
	var params watchParams
	return &cli.Command{
		Name:    "watch",
		Summary: "Live dashboard of bot states",
		Usage:   "botfleet watch [--interval 1s] [--socket path]",
		Description: `Show every bot with its region and connection state, refreshed
continuously. Press c to connect all bots, d to disconnect all bots,
and q to quit.`,
		Flags: func() *pflag.FlagSet {
			flagSet := cli.FlagsFromParams("watch", &params)
			if binder, ok := source.(cli.FlagBinder); ok {
				binder.AddFlags(flagSet)
			}
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 0 {
				return cli.Validation("watch takes no arguments")
			}
			if params.Interval <= 0 {
				return cli.Validation("--interval must be positive")
			}
			operator, err := source.Operator()
			if err != nil {
				return err
			}
			program := tea.NewProgram(NewModel(operator, params.Interval),
				tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := program.Run(); err != nil {
				return cli.Internal("dashboard: %w", err)
			}
			return nil
		},
	}
}
