// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/botfleet/cmd/botfleet/cli"
	fleetcmd "github.com/bureau-foundation/botfleet/cmd/botfleet/fleet"
	"github.com/bureau-foundation/botfleet/lib/bot"
	"github.com/bureau-foundation/botfleet/lib/clock"
	"github.com/bureau-foundation/botfleet/lib/config"
	"github.com/bureau-foundation/botfleet/lib/control"
	fleetcore "github.com/bureau-foundation/botfleet/lib/fleet"
	"github.com/bureau-foundation/botfleet/lib/region"
	"github.com/bureau-foundation/botfleet/lib/session"
	"github.com/bureau-foundation/botfleet/lib/session/simgrid"
	"github.com/bureau-foundation/botfleet/lib/session/wsgrid"
)

const (
	// shutdownGrace bounds the wait for logouts after a signal.
	shutdownGrace = 10 * time.Second

	drainPollInterval = 100 * time.Millisecond
)

// daemonOptions carries the process's standard streams and test hooks.
type daemonOptions struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Clock defaults to the real clock.
	Clock clock.Clock

	// Dialer replaces the configured grid driver.
	Dialer session.Dialer

	// Listening, if set, receives the metrics listener's address.
	Listening func(metrics net.Addr)
}

type daemon struct {
	config     *config.Config
	clock      clock.Clock
	logger     *slog.Logger
	console    *console
	controller *fleetcore.Controller
	server     *control.Server
	listening  func(net.Addr)
}

func newDaemon(cfg *config.Config, options daemonOptions) (*daemon, error) {
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	level, err := cli.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	console := openConsole(options.Stdin, options.Stdout)
	logOutput, format := options.Stderr, cfg.Logging.Format
	if console.interactive {
		logOutput = console
		if format == "auto" {
			format = "text"
		}
	}
	logger := cli.NewLogger(logOutput, format, level)

	dialer := options.Dialer
	if dialer == nil {
		dialer, err = newDialer(cfg, options.Clock, logger)
		if err != nil {
			console.close()
			return nil, err
		}
	}

	loginDelay := cfg.LoginDelay()
	if loginDelay == 0 {
		// A configured zero means no stagger, not the controller default.
		loginDelay = -1
	}
	controller := fleetcore.New(fleetcore.Options{
		Dialer:     dialer,
		Clock:      options.Clock,
		Logger:     logger,
		Surface:    console,
		LoginDelay: loginDelay,
	})
	console.bind(fleetcmd.Commands(fleetcmd.Static(fleetcmd.Local(controller)), console), controller.Done())

	server := control.NewServer(cfg.Control.Socket, fleetcmd.ServerOptions(control.ServerOptions{Logger: logger}))
	fleetcmd.Register(server, fleetcmd.Local(controller))

	return &daemon{
		config:     cfg,
		clock:      options.Clock,
		logger:     logger,
		console:    console,
		controller: controller,
		server:     server,
		listening:  options.Listening,
	}, nil
}

// newDialer builds the configured grid driver.
func newDialer(cfg *config.Config, clk clock.Clock, logger *slog.Logger) (session.Dialer, error) {
	switch cfg.Grid.Driver {
	case config.DriverWebsocket:
		return wsgrid.New(wsgrid.Options{
			URL:          cfg.Grid.URL,
			MessageRate:  cfg.Grid.MessageRate,
			MessageBurst: cfg.Grid.MessageBurst,
			Logger:       logger,
		})
	case config.DriverSimulated:
		regions := make([]region.Region, 0, len(cfg.Grid.Simulated.Regions))
		for _, configured := range cfg.Grid.Simulated.Regions {
			regions = append(regions, region.New(configured.Name, configured.X, configured.Y))
		}
		return simgrid.New(simgrid.Options{
			Regions:      regions,
			LoginLatency: cfg.LoginLatency(),
			FailLogins:   cfg.Grid.Simulated.FailLogins,
			Clock:        clk,
			Logger:       logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown grid driver %q", cfg.Grid.Driver)
	}
}

// run creates the fleet and serves until shutdown is requested or ctx
// is cancelled.
func (d *daemon) run(ctx context.Context) error {
	defer d.console.close()

	bots := d.config.Bots
	if bots.Count > 0 {
		_, err := d.controller.CreateFleet(bots.Count, fleetcore.BotConfig{
			FirstName:      bots.FirstName,
			LastNameStem:   bots.LastName,
			Password:       bots.Password,
			LoginURI:       bots.LoginURI,
			From:           bots.From,
			Start:          bots.Start,
			Wear:           bots.Wear,
			Behaviors:      bots.Behaviors,
			Settings:       bots.Settings,
			ActionInterval: d.config.ActionInterval(),
		})
		if err != nil {
			return fmt.Errorf("creating fleet: %w", err)
		}
	}

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, groupCtx := errgroup.WithContext(serveCtx)

	group.Go(func() error { return d.server.Serve(groupCtx) })
	if d.config.Metrics.Listen != "" {
		listener, err := net.Listen("tcp", d.config.Metrics.Listen)
		if err != nil {
			cancel()
			group.Wait()
			return fmt.Errorf("metrics listener: %w", err)
		}
		group.Go(func() error { return d.serveMetrics(groupCtx, listener) })
	}

	if d.config.Connect.ConnectOnStart {
		if _, err := d.controller.Connect(fleetcore.AllBots); err != nil {
			d.logger.Warn("connect on start failed", "error", err)
		}
	}

	d.logger.Info("botfleet-controller running",
		"bots", d.controller.Registry().Len(),
		"grid", d.config.Grid.Driver,
		"socket", d.config.Control.Socket,
	)
	go d.console.run(groupCtx)

	select {
	case <-d.controller.Done():
		d.logger.Info("shutting down")
	case <-groupCtx.Done():
		if ctx.Err() != nil {
			d.logger.Info("signal received; disconnecting every bot")
			d.drain()
		}
	}

	cancel()
	return group.Wait()
}

// drain disconnects every bot and waits up to shutdownGrace for the
// logouts to finish.
func (d *daemon) drain() {
	if _, err := d.controller.Disconnect(fleetcore.AllBots); err != nil {
		d.logger.Warn("disconnecting fleet", "error", err)
		return
	}
	deadline := d.clock.Now().Add(shutdownGrace)
	for {
		live := 0
		for _, member := range d.controller.Registry().Bots() {
			if member.State() != bot.Disconnected {
				live++
			}
		}
		if live == 0 {
			return
		}
		if !d.clock.Now().Before(deadline) {
			d.logger.Warn("bots still live after shutdown grace", "bots", live)
			return
		}
		d.clock.Sleep(drainPollInterval)
	}
}

// serveMetrics serves the fleet collector, plus Go runtime and
// process metrics, on listener until ctx is cancelled.
func (d *daemon) serveMetrics(ctx context.Context, listener net.Listener) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		d.controller.Collector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	d.logger.Info("metrics listening", "address", listener.Addr().String())
	if d.listening != nil {
		d.listening(listener.Addr())
	}
	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

