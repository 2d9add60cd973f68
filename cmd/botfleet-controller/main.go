// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/botfleet/cmd/botfleet/cli"
	"github.com/bureau-foundation/botfleet/lib/config"
	"github.com/bureau-foundation/botfleet/lib/process"
	"github.com/bureau-foundation/botfleet/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}

// flags are the command-line overrides. Each is applied only when set
// on the command line.
type flags struct {
	ConfigPath     string  `flag:"config,c" desc:"config file (YAML, or JSONC with a .json/.jsonc extension); env BOTFLEET_CONFIG"`
	ShowVersion    bool    `flag:"version" desc:"print version information and exit"`
	Count          int     `flag:"bots,n" desc:"number of bots to create"`
	FirstName      string  `flag:"first" desc:"first name shared by every bot"`
	LastName       string  `flag:"last" desc:"last name stem; bots are <last>_<n>"`
	Password       string  `flag:"password" desc:"bot account password"`
	LoginURI       string  `flag:"login-uri" desc:"grid login URI"`
	From           int     `flag:"from" desc:"number of the first bot"`
	Start          string  `flag:"start,s" desc:"start location: last, home, or region[/x[/y[/z]]]"`
	Wear           string  `flag:"wear" desc:"appearance handling: no, yes, or save"`
	Behaviors      string  `flag:"behaviors,b" desc:"comma-separated behaviour tokens (c, g, n, p, t)"`
	ActionInterval string  `flag:"action-interval" desc:"pause between behaviour rounds"`
	LoginDelay     string  `flag:"login-delay" desc:"stagger between logins of a connect sequence"`
	ConnectOnStart bool    `flag:"connect" desc:"connect every bot at startup"`
	Driver         string  `flag:"grid" desc:"grid driver: simulated or websocket"`
	GridURL        string  `flag:"grid-url" desc:"websocket gateway URL"`
	MessageRate    float64 `flag:"message-rate" desc:"messages per second per bot session (websocket grid)"`
	Socket         string  `flag:"socket" desc:"control socket path"`
	MetricsListen  string  `flag:"metrics-listen" desc:"address for the prometheus endpoint (empty disables it)"`
	LogLevel       string  `flag:"log-level" desc:"debug, info, warn, or error"`
	LogFormat      string  `flag:"log-format" desc:"auto, text, or json"`
}

func run(args []string) error {
	var values flags
	flagSet := cli.FlagsFromParams("botfleet-controller", &values)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if values.ShowVersion {
		version.Print(os.Stdout, "botfleet-controller")
		return nil
	}
	if flagSet.NArg() != 0 {
		return fmt.Errorf("unexpected arguments: %v", flagSet.Args())
	}

	cfg, err := loadConfig(values.ConfigPath)
	if err != nil {
		return err
	}
	applyOverrides(cfg, flagSet, &values)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	if err := cfg.UnsealPassword(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	daemon, err := newDaemon(cfg, daemonOptions{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr})
	if err != nil {
		return err
	}
	return daemon.run(ctx)
}

// loadConfig reads path, or $BOTFLEET_CONFIG, or falls back to the
// defaults when neither is set.
func loadConfig(path string) (*config.Config, error) {
	switch {
	case path != "":
		return config.LoadFile(path)
	case os.Getenv(config.EnvironmentVariable) != "":
		return config.Load()
	default:
		return config.Default(), nil
	}
}

func applyOverrides(cfg *config.Config, flagSet *pflag.FlagSet, values *flags) {
	set := func(name string) bool { return flagSet.Changed(name) }

	if set("bots") {
		cfg.Bots.Count = values.Count
	}
	if set("first") {
		cfg.Bots.FirstName = values.FirstName
	}
	if set("last") {
		cfg.Bots.LastName = values.LastName
	}
	if set("password") {
		cfg.Bots.Password = values.Password
	}
	if set("login-uri") {
		cfg.Bots.LoginURI = values.LoginURI
	}
	if set("from") {
		cfg.Bots.From = values.From
	}
	if set("start") {
		cfg.Bots.Start = values.Start
	}
	if set("wear") {
		cfg.Bots.Wear = values.Wear
	}
	if set("behaviors") {
		cfg.Bots.Behaviors = values.Behaviors
	}
	if set("action-interval") {
		cfg.Bots.ActionInterval = values.ActionInterval
	}
	if set("login-delay") {
		cfg.Connect.LoginDelay = values.LoginDelay
	}
	if set("connect") {
		cfg.Connect.ConnectOnStart = values.ConnectOnStart
	}
	if set("grid") {
		cfg.Grid.Driver = values.Driver
	}
	if set("grid-url") {
		cfg.Grid.URL = values.GridURL
	}
	if set("message-rate") {
		cfg.Grid.MessageRate = values.MessageRate
	}
	if set("socket") {
		cfg.Control.Socket = values.Socket
	}
	if set("metrics-listen") {
		cfg.Metrics.Listen = values.MetricsListen
	}
	if set("log-level") {
		cfg.Logging.Level = values.LogLevel
	}
	if set("log-format") {
		cfg.Logging.Format = values.LogFormat
	}
}
