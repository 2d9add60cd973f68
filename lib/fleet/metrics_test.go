// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fleet

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/bureau-foundation/botfleet/lib/bot"
	"github.com/bureau-foundation/botfleet/lib/session/simgrid"
	"github.com/bureau-foundation/botfleet/lib/testutil"
)

func TestMetrics(t *testing.T) {
	f := newFixture(t, simgrid.Options{FailLogins: []string{"Test Bot_0"}}, -1)
	f.create(t, 3)

	result, err := f.controller.Connect(AllBots)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireClosed(t, result.Done, timeout, "connect")
	f.waitStates(t, map[bot.State]int{bot.Connected: 2, bot.Disconnected: 1})
	f.await(t, func() bool {
		return promtestutil.ToFloat64(f.controller.metrics.connectFailures) == 1
	}, "connect failure counted")

	if got := promtestutil.ToFloat64(f.controller.metrics.connectAttempts); got != 3 {
		t.Errorf("connect attempts = %v, want 3", got)
	}

	registry := prometheus.NewPedanticRegistry()
	if err := registry.Register(f.controller.Collector()); err != nil {
		t.Fatalf("registering collector: %v", err)
	}

	expected := `
# HELP botfleet_bots Number of bots in each connection state.
# TYPE botfleet_bots gauge
botfleet_bots{state="Connected"} 2
botfleet_bots{state="Connecting"} 0
botfleet_bots{state="Disconnected"} 1
botfleet_bots{state="Disconnecting"} 0
# HELP botfleet_regions_known Number of distinct regions discovered by the fleet.
# TYPE botfleet_regions_known gauge
botfleet_regions_known 1
`
	if err := promtestutil.GatherAndCompare(registry, strings.NewReader(expected),
		"botfleet_bots", "botfleet_regions_known"); err != nil {
		t.Error(err)
	}

	if _, err := f.controller.Disconnect(AllBots); err != nil {
		t.Fatal(err)
	}
	f.waitStates(t, map[bot.State]int{bot.Disconnected: 3})
	f.await(t, func() bool {
		return promtestutil.ToFloat64(f.controller.metrics.disconnects) == 2
	}, "disconnects counted")
}
