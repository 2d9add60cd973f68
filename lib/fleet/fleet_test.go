// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fleet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/botfleet/lib/bot"
	"github.com/bureau-foundation/botfleet/lib/clock"
	"github.com/bureau-foundation/botfleet/lib/region"
	"github.com/bureau-foundation/botfleet/lib/session/simgrid"
	"github.com/bureau-foundation/botfleet/lib/testutil"
)

const (
	timeout    = 5 * time.Second
	loginDelay = time.Second
)

// recordingSurface collects asynchronous operator messages.
type recordingSurface struct {
	mu       sync.Mutex
	messages []string
}

func (s *recordingSurface) Output(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
}

func (s *recordingSurface) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

type fixture struct {
	clock      *clock.FakeClock
	grid       *simgrid.Grid
	surface    *recordingSurface
	controller *Controller
}

func newFixture(t *testing.T, gridOptions simgrid.Options, delay time.Duration) *fixture {
	t.Helper()
	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	gridOptions.Clock = fake
	grid := simgrid.New(gridOptions)
	surface := &recordingSurface{}
	controller := New(Options{
		Dialer:     grid,
		Clock:      fake,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Surface:    surface,
		LoginDelay: delay,
	})
	return &fixture{clock: fake, grid: grid, surface: surface, controller: controller}
}

func testBotConfig() BotConfig {
	return BotConfig{
		FirstName:    "Test",
		LastNameStem: "Bot",
		Password:     "secret",
		Start:        "last",
		Behaviors:    "n",
	}
}

func (f *fixture) create(t *testing.T, count int) []*bot.Bot {
	t.Helper()
	bots, err := f.controller.CreateFleet(count, testBotConfig())
	if err != nil {
		t.Fatalf("CreateFleet(%d): %v", count, err)
	}
	return bots
}

// connectAll connects every bot with no stagger and waits for all of
// them to be Connected.
func (f *fixture) connectAll(t *testing.T) {
	t.Helper()
	result, err := f.controller.Connect(AllBots)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	testutil.RequireClosed(t, result.Done, timeout, "connect sequence")
	f.waitStates(t, map[bot.State]int{bot.Connected: f.controller.Registry().Len()})
}

func (f *fixture) waitStates(t *testing.T, want map[bot.State]int) {
	t.Helper()
	f.await(t, func() bool {
		counts := stateCounts(f.controller.Registry().Bots())
		for state, count := range want {
			if counts[state] != count {
				return false
			}
		}
		return true
	}, "waiting for states %v", want)
}

// await waits for condition, re-evaluating it after every event from
// any registered bot. The controller subscribes to each bot when it
// creates it, so by the time an event reaches this observer the
// controller has already applied it.
func (f *fixture) await(t *testing.T, condition func() bool, msgAndArgs ...any) {
	t.Helper()
	changes := make(chan struct{}, 1)
	for _, member := range f.controller.Registry().Bots() {
		unsubscribe := member.Subscribe(func(bot.Event) {
			select {
			case changes <- struct{}{}:
			default:
			}
		})
		defer unsubscribe()
	}
	testutil.AwaitCondition(t, changes, timeout, condition, msgAndArgs...)
}

func stateCounts(bots []*bot.Bot) map[bot.State]int {
	counts := make(map[bot.State]int)
	for _, member := range bots {
		counts[member.State()]++
	}
	return counts
}

func states(bots []*bot.Bot) []bot.State {
	result := make([]bot.State, len(bots))
	for i, member := range bots {
		result[i] = member.State()
	}
	return result
}

func TestCreateFleetNames(t *testing.T) {
	for _, size := range []int{0, 1, 5, 12} {
		t.Run(fmt.Sprint(size), func(t *testing.T) {
			f := newFixture(t, simgrid.Options{}, loginDelay)
			config := testBotConfig()
			config.From = 3

			bots, err := f.controller.CreateFleet(size, config)
			if err != nil {
				t.Fatal(err)
			}
			if len(bots) != size || f.controller.Registry().Len() != size {
				t.Fatalf("created %d, registry has %d, want %d", len(bots), f.controller.Registry().Len(), size)
			}
			for i, member := range bots {
				if want := fmt.Sprintf("Bot_%d", 3+i); member.LastName() != want {
					t.Errorf("bot %d last name = %q, want %q", i, member.LastName(), want)
				}
				if member.State() != bot.Disconnected {
					t.Errorf("bot %d state = %v, want Disconnected", i, member.State())
				}
			}
		})
	}
}

func TestCreateFleetContinuesNumbering(t *testing.T) {
	f := newFixture(t, simgrid.Options{}, loginDelay)
	f.create(t, 2)
	second := f.create(t, 2)

	if second[0].LastName() != "Bot_2" || second[1].LastName() != "Bot_3" {
		t.Errorf("second batch = %s, %s; want Bot_2, Bot_3", second[0].LastName(), second[1].LastName())
	}
	seen := map[string]bool{}
	for _, member := range f.controller.Registry().Bots() {
		if seen[member.Name()] {
			t.Errorf("duplicate name %q", member.Name())
		}
		seen[member.Name()] = true
	}
	if f.grid.LoginCount() != 0 {
		t.Error("CreateFleet opened sessions")
	}
}

func TestCreateFleetValidation(t *testing.T) {
	tests := []struct {
		name   string
		count  int
		mutate func(*BotConfig)
		want   error
	}{
		{name: "negative count", count: -1, want: ErrInvalidCount},
		{name: "no first name", count: 1, mutate: func(c *BotConfig) { c.FirstName = "" }, want: ErrInvalidConfig},
		{name: "no stem", count: 1, mutate: func(c *BotConfig) { c.LastNameStem = "" }, want: ErrInvalidConfig},
		{name: "bad wear", count: 1, mutate: func(c *BotConfig) { c.Wear = "sometimes" }, want: ErrInvalidConfig},
		{name: "bad setting", count: 1, mutate: func(c *BotConfig) { c.Settings = map[string]bool{"NOPE": true} }, want: ErrUnknownSetting},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newFixture(t, simgrid.Options{}, loginDelay)
			config := testBotConfig()
			if test.mutate != nil {
				test.mutate(&config)
			}
			if _, err := f.controller.CreateFleet(test.count, config); !errors.Is(err, test.want) {
				t.Errorf("CreateFleet error = %v, want %v", err, test.want)
			}
			if f.controller.Registry().Len() != 0 {
				t.Error("failed CreateFleet added bots")
			}
		})
	}
}

func TestCreateFleetBehaviors(t *testing.T) {
	f := newFixture(t, simgrid.Options{}, loginDelay)
	config := testBotConfig()
	config.Behaviors = "p,g,p"
	bots, err := f.controller.CreateFleet(2, config)
	if err != nil {
		t.Fatal(err)
	}
	for _, member := range bots {
		if got := strings.Join(member.BehaviorNames(), ","); got != "Physics,Grabbing" {
			t.Errorf("%s behaviors = %s, want Physics,Grabbing", member.Name(), got)
		}
	}

	config.Behaviors = "z"
	bots, err = f.controller.CreateFleet(1, config)
	if err != nil {
		t.Fatal(err)
	}
	if names := bots[0].BehaviorNames(); len(names) != 0 {
		t.Errorf("unknown token produced behaviors %v", names)
	}
}

func TestConnectStaggered(t *testing.T) {
	f := newFixture(t, simgrid.Options{}, loginDelay)
	f.create(t, 3)

	result, err := f.controller.Connect(AllBots)
	if err != nil {
		t.Fatal(err)
	}
	if result.Target != 3 {
		t.Fatalf("Target = %d, want 3", result.Target)
	}

	for issued := 1; issued < 3; issued++ {
		f.clock.WaitForTimers(1)
		f.await(t, func() bool { return f.grid.LoginCount() == issued },
			"logins before stagger %d", issued)
		f.clock.Advance(loginDelay)
	}
	testutil.RequireClosed(t, result.Done, timeout, "connect sequence")
	f.waitStates(t, map[bot.State]int{bot.Connected: 3})

	if f.controller.Registry().ConnectInProgress() {
		t.Error("connect flag still set after sequence finished")
	}
	if messages := f.surface.all(); len(messages) != 1 || messages[0] != "Connected 3 bots" {
		t.Errorf("surface messages = %q, want [Connected 3 bots]", messages)
	}
	if f.clock.PendingCount() != 0 {
		t.Errorf("worker left %d timers pending after the last bot", f.clock.PendingCount())
	}
}

func TestConnectCount(t *testing.T) {
	f := newFixture(t, simgrid.Options{}, -1)
	f.create(t, 4)

	result, err := f.controller.Connect(2)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireClosed(t, result.Done, timeout, "first sequence")
	f.waitStates(t, map[bot.State]int{bot.Connected: 2, bot.Disconnected: 2})

	got := states(f.controller.Registry().Bots())
	want := []bot.State{bot.Connected, bot.Connected, bot.Disconnected, bot.Disconnected}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("states = %v, want oldest two connected: %v", got, want)
		}
	}

	// Asking for more than remain connects only the remainder.
	result, err = f.controller.Connect(10)
	if err != nil {
		t.Fatal(err)
	}
	if result.Target != 2 {
		t.Errorf("Target = %d, want 2", result.Target)
	}
	testutil.RequireClosed(t, result.Done, timeout, "second sequence")
	f.waitStates(t, map[bot.State]int{bot.Connected: 4})

	// Nothing left: an immediately finished sequence.
	result, err = f.controller.Connect(AllBots)
	if err != nil {
		t.Fatal(err)
	}
	if result.Target != 0 {
		t.Errorf("Target = %d, want 0", result.Target)
	}
	testutil.RequireClosed(t, result.Done, timeout, "empty sequence")

	if _, err := f.controller.Connect(-2); !errors.Is(err, ErrInvalidCount) {
		t.Errorf("Connect(-2) error = %v, want ErrInvalidCount", err)
	}
}

func TestConnectRejectedWhileInProgress(t *testing.T) {
	f := newFixture(t, simgrid.Options{}, loginDelay)
	f.create(t, 3)

	first, err := f.controller.Connect(AllBots)
	if err != nil {
		t.Fatal(err)
	}
	f.clock.WaitForTimers(1)
	f.waitStates(t, map[bot.State]int{bot.Connected: 1, bot.Disconnected: 2})

	before := states(f.controller.Registry().Bots())
	if _, err := f.controller.Connect(AllBots); !errors.Is(err, ErrConnectInProgress) {
		t.Fatalf("second Connect error = %v, want ErrConnectInProgress", err)
	}
	after := states(f.controller.Registry().Bots())
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("rejected Connect changed states: %v -> %v", before, after)
		}
	}
	if f.grid.LoginCount() != 1 {
		t.Errorf("LoginCount() = %d, want 1", f.grid.LoginCount())
	}

	if _, err := f.controller.Disconnect(0); err != nil {
		t.Fatal(err)
	}
	testutil.RequireClosed(t, first.Done, timeout, "aborted sequence")
}

func TestDisconnectAbortsConnect(t *testing.T) {
	f := newFixture(t, simgrid.Options{}, loginDelay)
	f.create(t, 5)

	result, err := f.controller.Connect(AllBots)
	if err != nil {
		t.Fatal(err)
	}
	f.clock.WaitForTimers(1)
	f.clock.Advance(loginDelay)
	f.clock.WaitForTimers(1)
	f.waitStates(t, map[bot.State]int{bot.Connected: 2, bot.Disconnected: 3})

	disconnect, err := f.controller.Disconnect(0)
	if err != nil {
		t.Fatal(err)
	}
	if !disconnect.AbortedConnect {
		t.Error("Disconnect did not report aborting the sequence")
	}
	testutil.RequireClosed(t, result.Done, timeout, "aborted sequence")

	// The worker's abandoned stagger timer may still fire; it must not
	// lead to more logins.
	f.clock.Advance(10 * loginDelay)

	if f.grid.LoginCount() != 2 {
		t.Errorf("LoginCount() = %d, want 2", f.grid.LoginCount())
	}
	got := states(f.controller.Registry().Bots())
	want := []bot.State{bot.Connected, bot.Connected, bot.Disconnected, bot.Disconnected, bot.Disconnected}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("states = %v, want %v (issued connects kept)", got, want)
		}
	}
	if f.controller.Registry().ConnectInProgress() {
		t.Error("connect flag still set after abort")
	}
	if messages := f.surface.all(); len(messages) != 1 || messages[0] != "Connect sequence aborted after 2 of 5 bots" {
		t.Errorf("surface messages = %q", messages)
	}

	// A new sequence may start once the aborted one has exited.
	if _, err := f.controller.Connect(1); err != nil {
		t.Errorf("Connect after abort: %v", err)
	}
}

func TestDisconnectNewestFirst(t *testing.T) {
	f := newFixture(t, simgrid.Options{}, -1)
	f.create(t, 5)
	f.connectAll(t)

	result, err := f.controller.Disconnect(2)
	if err != nil {
		t.Fatal(err)
	}
	if result.Target != 2 || result.Disconnecting != 2 {
		t.Fatalf("result = %+v, want target and disconnecting 2", result)
	}
	f.waitStates(t, map[bot.State]int{bot.Connected: 3, bot.Disconnected: 2})

	got := states(f.controller.Registry().Bots())
	want := []bot.State{bot.Connected, bot.Connected, bot.Connected, bot.Disconnected, bot.Disconnected}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("states = %v, want newest two disconnected: %v", got, want)
		}
	}

	result, err = f.controller.Disconnect(AllBots)
	if err != nil {
		t.Fatal(err)
	}
	if result.Disconnecting != 3 {
		t.Errorf("Disconnecting = %d, want 3", result.Disconnecting)
	}
	f.waitStates(t, map[bot.State]int{bot.Disconnected: 5})
	// Bots log out before they report Disconnected.
	if got := f.grid.SessionCount(); got != 0 {
		t.Errorf("grid still holds %d sessions", got)
	}
}

func TestRegionDiscoveryIdempotent(t *testing.T) {
	f := newFixture(t, simgrid.Options{}, loginDelay)
	handle := region.HandleFromGrid(1000, 1000)

	f.controller.OnRegionDiscovered(region.Region{Handle: handle, Name: "First", X: 1000, Y: 1000})
	f.controller.OnRegionDiscovered(region.Region{Handle: handle, Name: "Second", X: 1000, Y: 1000})

	regions := f.controller.Regions()
	if len(regions) != 1 || regions[0].Name != "First" {
		t.Errorf("Regions() = %+v, want only First", regions)
	}
}

func TestRegionsFromBots(t *testing.T) {
	f := newFixture(t, simgrid.Options{Regions: []region.Region{
		region.New("West", 1000, 1000),
		region.New("East", 1001, 1000),
	}}, -1)
	f.create(t, 3)
	f.connectAll(t)

	regions := f.controller.Regions()
	if len(regions) != 2 || regions[0].Name != "East" || regions[1].Name != "West" {
		t.Errorf("Regions() = %+v, want East and West", regions)
	}
	if status := f.controller.Status(); status.RegionCount != 2 {
		t.Errorf("RegionCount = %d, want 2", status.RegionCount)
	}
}

func TestShutdown(t *testing.T) {
	f := newFixture(t, simgrid.Options{}, -1)
	f.create(t, 2)
	f.connectAll(t)

	err := f.controller.RequestShutdown()
	if !errors.Is(err, ErrBotsConnected) {
		t.Fatalf("RequestShutdown error = %v, want ErrBotsConnected", err)
	}
	if !strings.Contains(err.Error(), "2 bots") {
		t.Errorf("refusal %q does not give the count", err)
	}
	select {
	case <-f.controller.Done():
		t.Fatal("Done closed despite refusal")
	default:
	}

	if _, err := f.controller.Disconnect(AllBots); err != nil {
		t.Fatal(err)
	}
	f.waitStates(t, map[bot.State]int{bot.Disconnected: 2})

	if err := f.controller.RequestShutdown(); err != nil {
		t.Fatalf("RequestShutdown: %v", err)
	}
	testutil.RequireClosed(t, f.controller.Done(), timeout, "shutdown")
	if err := f.controller.RequestShutdown(); err != nil {
		t.Errorf("second RequestShutdown: %v", err)
	}
}

func TestStatus(t *testing.T) {
	f := newFixture(t, simgrid.Options{}, -1)

	status := f.controller.Status()
	if len(status.Totals) != 4 {
		t.Fatalf("Totals = %+v, want one entry per state", status.Totals)
	}
	for _, total := range status.Totals {
		if total.Count != 0 {
			t.Errorf("empty fleet has %d %s", total.Count, total.State)
		}
	}

	f.create(t, 3)
	result, err := f.controller.Connect(1)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireClosed(t, result.Done, timeout, "connect")
	f.waitStates(t, map[bot.State]int{bot.Connected: 1})

	status = f.controller.Status()
	if len(status.Bots) != 3 {
		t.Fatalf("Bots = %d, want 3", len(status.Bots))
	}
	first := status.Bots[0]
	if first.State != "Connected" || first.Region != "Sandbox" || first.SimulatorCount != 1 || first.Number != 0 {
		t.Errorf("first bot status = %+v", first)
	}
	want := map[string]int{"Disconnected": 2, "Connecting": 0, "Connected": 1, "Disconnecting": 0}
	for _, total := range status.Totals {
		if total.Count != want[total.State] {
			t.Errorf("total %s = %d, want %d", total.State, total.Count, want[total.State])
		}
	}
}

func TestBotDetail(t *testing.T) {
	f := newFixture(t, simgrid.Options{}, -1)
	config := testBotConfig()
	config.Behaviors = "g,t"
	config.Start = "Sandbox/10/20"
	if _, err := f.controller.CreateFleet(2, config); err != nil {
		t.Fatal(err)
	}

	detail, err := f.controller.BotDetail("Test", "Bot_1")
	if err != nil {
		t.Fatal(err)
	}
	if detail.Number != 1 || detail.State != "Disconnected" {
		t.Errorf("detail = %+v", detail.BotStatus)
	}
	if strings.Join(detail.Behaviors, ",") != "Grabbing,Teleport" {
		t.Errorf("Behaviors = %v", detail.Behaviors)
	}
	if detail.Start != "region/Sandbox/10/20/0" {
		t.Errorf("Start = %q", detail.Start)
	}
	if detail.AgentID != "" {
		t.Errorf("AgentID = %q before login", detail.AgentID)
	}
	if len(detail.Settings) == 0 {
		t.Error("no settings reported")
	}

	if _, err := f.controller.BotDetail("Test", "Bot_9"); !errors.Is(err, ErrBotNotFound) {
		t.Errorf("BotDetail(missing) error = %v, want ErrBotNotFound", err)
	}
}

func TestSitStand(t *testing.T) {
	f := newFixture(t, simgrid.Options{}, -1)
	f.create(t, 3)
	result, err := f.controller.Connect(2)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireClosed(t, result.Done, timeout, "connect")
	f.waitStates(t, map[bot.State]int{bot.Connected: 2})

	sit := f.controller.Sit(context.Background())
	if sit.Acted != 2 || sit.Skipped != 1 || sit.Failed != 0 {
		t.Errorf("Sit = %+v, want 2 acted 1 skipped", sit)
	}
	agent, _ := f.grid.Find("Test Bot_0")
	if !agent.Sitting() {
		t.Error("Bot_0 not sitting")
	}
	stand := f.controller.Stand(context.Background())
	if stand.Acted != 2 {
		t.Errorf("Stand = %+v, want 2 acted", stand)
	}
	if agent.Sitting() {
		t.Error("Bot_0 still sitting")
	}
}

func TestSetBots(t *testing.T) {
	f := newFixture(t, simgrid.Options{}, -1)
	f.create(t, 3)

	if _, err := f.controller.SetBots("NOPE", true); !errors.Is(err, ErrUnknownSetting) {
		t.Errorf("SetBots(NOPE) error = %v, want ErrUnknownSetting", err)
	}
	updated, err := f.controller.SetBots("SEND_AGENT_UPDATES", false)
	if err != nil {
		t.Fatal(err)
	}
	if updated != 3 {
		t.Errorf("updated = %d, want 3", updated)
	}
	detail, _ := f.controller.BotDetail("Test", "Bot_2")
	if detail.Settings["SEND_AGENT_UPDATES"] {
		t.Error("setting not applied")
	}
}

func TestAddRemoveBehavior(t *testing.T) {
	f := newFixture(t, simgrid.Options{}, -1)
	bots := f.create(t, 3)

	changed, err := f.controller.AddBehavior("g", 1)
	if err != nil || changed != 1 {
		t.Fatalf("AddBehavior(g, 1) = %d, %v", changed, err)
	}
	if names := bots[1].BehaviorNames(); strings.Join(names, ",") != "None,Grabbing" {
		t.Errorf("bot 1 behaviors = %v", names)
	}

	changed, err = f.controller.AddBehavior("g", AllBots)
	if err != nil || changed != 2 {
		t.Errorf("AddBehavior(g, all) = %d, %v; want 2 (one already had it)", changed, err)
	}

	changed, err = f.controller.RemoveBehavior("n", AllBots)
	if err != nil || changed != 3 {
		t.Errorf("RemoveBehavior(n, all) = %d, %v", changed, err)
	}
	for _, member := range bots {
		if names := member.BehaviorNames(); strings.Join(names, ",") != "Grabbing" {
			t.Errorf("%s behaviors = %v, want [Grabbing]", member.Name(), names)
		}
	}

	// Tokens are matched the way they are parsed from config.
	changed, err = f.controller.AddBehavior(" P", AllBots)
	if err != nil || changed != 3 {
		t.Errorf("AddBehavior( P, all) = %d, %v; want 3", changed, err)
	}
	changed, err = f.controller.RemoveBehavior("P ", AllBots)
	if err != nil || changed != 3 {
		t.Errorf("RemoveBehavior(P , all) = %d, %v; want 3", changed, err)
	}
	for _, member := range bots {
		if names := member.BehaviorNames(); strings.Join(names, ",") != "Grabbing" {
			t.Errorf("%s behaviors after upper-case remove = %v, want [Grabbing]", member.Name(), names)
		}
	}

	if _, err := f.controller.AddBehavior("q", AllBots); !errors.Is(err, ErrUnknownBehavior) {
		t.Errorf("AddBehavior(q) error = %v, want ErrUnknownBehavior", err)
	}
	if _, err := f.controller.RemoveBehavior("g", 7); !errors.Is(err, ErrBotNotFound) {
		t.Errorf("RemoveBehavior(g, 7) error = %v, want ErrBotNotFound", err)
	}
}

func TestErrorCodes(t *testing.T) {
	for _, sentinel := range []error{
		ErrConnectInProgress, ErrBotNotFound, ErrBotsConnected,
		ErrInvalidCount, ErrInvalidConfig, ErrUnknownBehavior, ErrUnknownSetting,
	} {
		wrapped := fmt.Errorf("context: %w", sentinel)
		code := Code(wrapped)
		if code == "" {
			t.Errorf("no code for %v", sentinel)
			continue
		}
		rebuilt := FromCode(code, wrapped.Error())
		if !errors.Is(rebuilt, sentinel) || rebuilt.Error() != wrapped.Error() {
			t.Errorf("FromCode(%q) = %v, does not match %v", code, rebuilt, sentinel)
		}
	}
	if Code(errors.New("other")) != "" {
		t.Error("plain error has a code")
	}
	if err := FromCode("bogus", "message"); err.Error() != "message" {
		t.Errorf("FromCode(bogus) = %v", err)
	}
}
