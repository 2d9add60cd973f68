// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/bureau-foundation/botfleet/cmd/botfleet/cli"
)

func TestConsole_ExecutesLinesUntilEOF(t *testing.T) {
	var out bytes.Buffer
	console := newPlainConsole(strings.NewReader("ping one two\n\n   \nbogus\nping\n"), &out)

	var calls [][]string
	console.bind([]*cli.Command{
		{
			Name: "ping",
			Run: func(_ context.Context, args []string) error {
				calls = append(calls, args)
				console.Output("pong")
				return nil
			},
		},
	}, make(chan struct{}))

	console.run(context.Background())

	if len(calls) != 2 || strings.Join(calls[0], " ") != "one two" || len(calls[1]) != 0 {
		t.Errorf("calls = %v, want [[one two] []]", calls)
	}
	output := out.String()
	if strings.Count(output, "pong\n") != 2 {
		t.Errorf("output = %q, want two pongs", output)
	}
	if !strings.Contains(output, `error: unknown command "bogus"`) {
		t.Errorf("output = %q, want an unknown command error", output)
	}
	if console.interactive {
		t.Error("a reader that is not a terminal produced an interactive console")
	}
}

func TestConsole_StopsAfterShutdown(t *testing.T) {
	var out bytes.Buffer
	console := newPlainConsole(strings.NewReader("quit\nping\n"), &out)

	done := make(chan struct{})
	pinged := false
	console.bind([]*cli.Command{
		{Name: "quit", Run: func(context.Context, []string) error { close(done); return nil }},
		{Name: "ping", Run: func(context.Context, []string) error { pinged = true; return nil }},
	}, done)

	console.run(context.Background())
	if pinged {
		t.Error("console kept executing commands after shutdown")
	}
}

func TestConsole_HelpListsCommands(t *testing.T) {
	var out bytes.Buffer
	console := newPlainConsole(strings.NewReader("help\n"), &out)
	console.bind([]*cli.Command{
		{Name: "connect", Summary: "Connect disconnected bots"},
	}, make(chan struct{}))

	console.run(context.Background())
	if !strings.Contains(out.String(), "Connect disconnected bots") {
		t.Errorf("help output = %q", out.String())
	}
}
