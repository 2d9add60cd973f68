// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fleet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/botfleet/cmd/botfleet/cli"
	fleetcore "github.com/bureau-foundation/botfleet/lib/fleet"
)

// Commands returns the operator command tree. Output is written to
// out.
func Commands(source OperatorSource, out io.Writer) []*cli.Command {
	c := &commands{source: source, out: out}
	return []*cli.Command{
		c.statusCommand(),
		c.connectCommand(),
		c.disconnectCommand(),
		c.postureCommand("sit", "Make every connected bot sit", "sat", Operator.Sit),
		c.postureCommand("stand", "Make every connected bot stand", "stood", Operator.Stand),
		c.showCommand(),
		c.setCommand(),
		c.behaviourCommand("add", "Give a behaviour to one bot or all bots", Operator.AddBehavior),
		c.behaviourCommand("remove", "Take a behaviour from one bot or all bots", Operator.RemoveBehavior),
		c.shutdownCommand("shutdown"),
		c.shutdownCommand("quit"),
	}
}

type commands struct {
	source OperatorSource
	out    io.Writer
}

// flags builds a command's flag set from params plus the source's
// connection flags, if it has any.
func (c *commands) flags(name string, params any) func() *pflag.FlagSet {
	return func() *pflag.FlagSet {
		flagSet := cli.FlagsFromParams(name, params)
		if binder, ok := c.source.(cli.FlagBinder); ok {
			binder.AddFlags(flagSet)
		}
		return flagSet
	}
}

func (c *commands) operator() (Operator, error) {
	operator, err := c.source.Operator()
	if err != nil {
		return nil, toolError(err)
	}
	return operator, nil
}

func (c *commands) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *commands) statusCommand() *cli.Command {
	var params struct{ cli.JSONOutput }
	return &cli.Command{
		Name:    "status",
		Summary: "Summarize fleet state",
		Usage:   "status [--json]",
		Flags:   c.flags("status", &params),
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 0 {
				return cli.Validation("status takes no arguments")
			}
			operator, err := c.operator()
			if err != nil {
				return err
			}
			status, err := operator.Status(ctx)
			if err != nil {
				return toolError(err)
			}
			if done, err := params.EmitJSON(c.out, status); done {
				return err
			}
			c.printf("%d bots, %d regions known\n", len(status.Bots), status.RegionCount)
			c.printTotals(status.Totals)
			if status.ConnectInProgress {
				c.printf("A connect sequence is in progress\n")
			}
			return nil
		},
	}
}

func (c *commands) connectCommand() *cli.Command {
	var params struct{}
	return &cli.Command{
		Name:    "connect",
		Summary: "Connect disconnected bots, one per login delay",
		Usage:   "connect [n]",
		Description: `Start connecting up to n disconnected bots (all of them if n is
omitted), in creation order. Logins are spaced by the configured login
delay. The command returns immediately; "show bots" tracks progress.`,
		Flags: c.flags("connect", &params),
		Run: func(ctx context.Context, args []string) error {
			count, err := parseCount("connect", args)
			if err != nil {
				return err
			}
			operator, err := c.operator()
			if err != nil {
				return err
			}
			result, err := operator.Connect(ctx, count)
			if err != nil {
				return toolError(err)
			}
			if result.Target == 0 {
				c.printf("No disconnected bots to connect\n")
				return nil
			}
			c.printf("Connecting %d bots\n", result.Target)
			return nil
		},
	}
}

func (c *commands) disconnectCommand() *cli.Command {
	var params struct{}
	return &cli.Command{
		Name:    "disconnect",
		Summary: "Disconnect connected bots, newest first",
		Usage:   "disconnect [n]",
		Description: `Log out up to n connected bots (all of them if n is omitted), most
recently created first. A running connect sequence is aborted.`,
		Flags: c.flags("disconnect", &params),
		Run: func(ctx context.Context, args []string) error {
			count, err := parseCount("disconnect", args)
			if err != nil {
				return err
			}
			operator, err := c.operator()
			if err != nil {
				return err
			}
			result, err := operator.Disconnect(ctx, count)
			if err != nil {
				return toolError(err)
			}
			if result.AbortedConnect {
				c.printf("Aborted the running connect sequence\n")
			}
			c.printf("Disconnecting %d bots\n", result.Disconnecting)
			return nil
		},
	}
}

func (c *commands) postureCommand(name, summary, pastTense string, action func(Operator, context.Context) (fleetcore.PostureResult, error)) *cli.Command {
	var params struct{}
	return &cli.Command{
		Name:    name,
		Summary: summary,
		Usage:   name,
		Flags:   c.flags(name, &params),
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 0 {
				return cli.Validation("%s takes no arguments", name)
			}
			operator, err := c.operator()
			if err != nil {
				return err
			}
			result, err := action(operator, ctx)
			if err != nil {
				return toolError(err)
			}
			c.printf("%d bots %s", result.Acted, pastTense)
			if result.Skipped > 0 {
				c.printf(", %d not connected", result.Skipped)
			}
			if result.Failed > 0 {
				c.printf(", %d failed", result.Failed)
			}
			c.printf("\n")
			return nil
		},
	}
}

func (c *commands) showCommand() *cli.Command {
	return &cli.Command{
		Name:    "show",
		Summary: "Show regions, bots, or one bot",
		Subcommands: []*cli.Command{
			c.showRegionsCommand(),
			c.showBotsCommand(),
			c.showBotCommand(),
		},
	}
}

func (c *commands) showRegionsCommand() *cli.Command {
	var params struct{ cli.JSONOutput }
	return &cli.Command{
		Name:    "regions",
		Summary: "List regions discovered by any bot",
		Usage:   "show regions [--json]",
		Flags:   c.flags("regions", &params),
		Run: func(ctx context.Context, args []string) error {
			operator, err := c.operator()
			if err != nil {
				return err
			}
			regions, err := operator.Regions(ctx)
			if err != nil {
				return toolError(err)
			}
			if done, err := params.EmitJSON(c.out, regions); done {
				return err
			}
			table := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(table, "NAME\tHANDLE\tX\tY\n")
			for _, known := range regions {
				fmt.Fprintf(table, "%s\t%s\t%d\t%d\n", known.Name, known.Handle, known.X, known.Y)
			}
			return table.Flush()
		},
	}
}

func (c *commands) showBotsCommand() *cli.Command {
	var params struct{ cli.JSONOutput }
	return &cli.Command{
		Name:    "bots",
		Summary: "List every bot with its region and connection state",
		Usage:   "show bots [--json]",
		Flags:   c.flags("bots", &params),
		Run: func(ctx context.Context, args []string) error {
			operator, err := c.operator()
			if err != nil {
				return err
			}
			status, err := operator.Status(ctx)
			if err != nil {
				return toolError(err)
			}
			if done, err := params.EmitJSON(c.out, status); done {
				return err
			}
			table := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(table, "#\tNAME\tREGION\tSTATE\tSIMULATORS\n")
			for _, row := range status.Bots {
				fmt.Fprintf(table, "%d\t%s %s\t%s\t%s\t%d\n",
					row.Number, row.FirstName, row.LastName, orDash(row.Region), row.State, row.SimulatorCount)
			}
			if err := table.Flush(); err != nil {
				return err
			}
			c.printf("\n")
			c.printTotals(status.Totals)
			return nil
		},
	}
}

func (c *commands) showBotCommand() *cli.Command {
	var params struct{ cli.JSONOutput }
	return &cli.Command{
		Name:    "bot",
		Summary: "Show one bot in detail",
		Usage:   "show bot <first> <last> [--json]",
		Flags:   c.flags("bot", &params),
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return cli.Validation("usage: show bot <first> <last>")
			}
			operator, err := c.operator()
			if err != nil {
				return err
			}
			detail, err := operator.BotDetail(ctx, args[0], args[1])
			if errors.Is(err, fleetcore.ErrBotNotFound) {
				return cli.NotFound("no bot found named %s %s", args[0], args[1])
			}
			if err != nil {
				return toolError(err)
			}
			if done, err := params.EmitJSON(c.out, detail); done {
				return err
			}
			table := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(table, "Name:\t%s %s\n", detail.FirstName, detail.LastName)
			fmt.Fprintf(table, "Number:\t%d\n", detail.Number)
			fmt.Fprintf(table, "State:\t%s\n", detail.State)
			fmt.Fprintf(table, "Region:\t%s\n", orDash(detail.Region))
			fmt.Fprintf(table, "Simulators:\t%d\n", detail.SimulatorCount)
			fmt.Fprintf(table, "Agent:\t%s\n", orDash(detail.AgentID))
			fmt.Fprintf(table, "Start:\t%s\n", detail.Start)
			fmt.Fprintf(table, "Behaviours:\t%s\n", joinOrDash(detail.Behaviors))
			for _, key := range sortedKeys(detail.Settings) {
				fmt.Fprintf(table, "Setting %s:\t%t\n", key, detail.Settings[key])
			}
			return table.Flush()
		},
	}
}

func (c *commands) setCommand() *cli.Command {
	var params struct{}
	return &cli.Command{
		Name:    "set",
		Summary: "Change settings",
		Subcommands: []*cli.Command{
			{
				Name:    "bots",
				Summary: "Set a session flag on every bot",
				Usage:   "set bots <key> <true|false>",
				Flags:   c.flags("bots", &params),
				Run: func(ctx context.Context, args []string) error {
					if len(args) != 2 {
						return cli.Validation("usage: set bots <key> <true|false>")
					}
					value, err := strconv.ParseBool(args[1])
					if err != nil {
						return cli.Validation("set bots: %q is not true or false", args[1])
					}
					operator, err := c.operator()
					if err != nil {
						return err
					}
					updated, err := operator.SetBots(ctx, args[0], value)
					if err != nil {
						return toolError(err)
					}
					c.printf("Set %s to %t on %d bots\n", args[0], value, updated)
					return nil
				},
			},
		},
	}
}

func (c *commands) behaviourCommand(verb, summary string, action func(Operator, context.Context, string, int) (int, error)) *cli.Command {
	var params struct{}
	return &cli.Command{
		Name:    verb,
		Summary: summary,
		Subcommands: []*cli.Command{
			{
				Name:    "behaviour",
				Summary: summary,
				Usage:   verb + " behaviour <token> [<bot-number>]",
				Flags:   c.flags("behaviour", &params),
				Run: func(ctx context.Context, args []string) error {
					if len(args) < 1 || len(args) > 2 {
						return cli.Validation("usage: %s behaviour <token> [<bot-number>]", verb)
					}
					number := fleetcore.AllBots
					if len(args) == 2 {
						parsed, err := strconv.Atoi(args[1])
						if err != nil || parsed < 0 {
							return cli.Validation("%s behaviour: %q is not a bot number", verb, args[1])
						}
						number = parsed
					}
					operator, err := c.operator()
					if err != nil {
						return err
					}
					changed, err := action(operator, ctx, args[0], number)
					if err != nil {
						return toolError(err)
					}
					c.printf("Changed behaviour %s on %d bots\n", args[0], changed)
					return nil
				},
			},
		},
	}
}

func (c *commands) shutdownCommand(name string) *cli.Command {
	var params struct{}
	return &cli.Command{
		Name:    name,
		Summary: "Stop the controller once every bot is disconnected",
		Usage:   name,
		Flags:   c.flags(name, &params),
		Run: func(ctx context.Context, args []string) error {
			operator, err := c.operator()
			if err != nil {
				return err
			}
			if err := operator.Shutdown(ctx); err != nil {
				return toolError(err)
			}
			c.printf("Shutting down\n")
			return nil
		},
	}
}

func (c *commands) printTotals(totals []fleetcore.StateTotal) {
	for _, total := range totals {
		c.printf("%s: %d\n", total.State, total.Count)
	}
}

// parseCount parses the optional bot count of connect and disconnect.
func parseCount(command string, args []string) (int, error) {
	switch len(args) {
	case 0:
		return fleetcore.AllBots, nil
	case 1:
		count, err := strconv.Atoi(args[0])
		if err != nil || count < 0 {
			return 0, cli.Validation("%s: %q is not a bot count", command, args[0])
		}
		return count, nil
	default:
		return 0, cli.Validation("usage: %s [n]", command)
	}
}

// toolError categorizes an operator error.
func toolError(err error) error {
	var existing *cli.ToolError
	if errors.As(err, &existing) {
		return err
	}
	switch {
	case errors.Is(err, fleetcore.ErrInvalidCount),
		errors.Is(err, fleetcore.ErrInvalidConfig),
		errors.Is(err, fleetcore.ErrUnknownBehavior),
		errors.Is(err, fleetcore.ErrUnknownSetting):
		return &cli.ToolError{Category: cli.CategoryValidation, Err: err}
	case errors.Is(err, fleetcore.ErrBotNotFound):
		return &cli.ToolError{Category: cli.CategoryNotFound, Err: err}
	case errors.Is(err, fleetcore.ErrConnectInProgress),
		errors.Is(err, fleetcore.ErrBotsConnected):
		return &cli.ToolError{Category: cli.CategoryConflict, Err: err}
	default:
		return &cli.ToolError{Category: cli.CategoryInternal, Err: err}
	}
}
