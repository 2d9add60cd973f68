// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/botfleet/lib/behavior"
	"github.com/bureau-foundation/botfleet/lib/clock"
	"github.com/bureau-foundation/botfleet/lib/region"
	"github.com/bureau-foundation/botfleet/lib/session"
)

// ErrNotConnected is returned by session actions on a bot that has no
// live session.
var ErrNotConnected = errors.New("bot is not connected")

var errSessionDropped = errors.New("connection lost")

// loginTimeout bounds one login attempt.
const loginTimeout = 2 * time.Minute

// Config is the identity and per-bot settings of one bot.
type Config struct {
	FirstName string
	LastName  string
	Password  string
	LoginURI  string
	Start     session.Location
	Wear      session.WearMode

	// Behaviors selects the strategies the bot is created with.
	Behaviors behavior.TokenSet

	// Settings are the session flags sent at login. Nil selects
	// session.DefaultSettings.
	Settings map[string]bool

	// ActionInterval is the pause between behavior rounds while
	// connected. Zero disables the behavior loop.
	ActionInterval time.Duration
}

// Options are the collaborators a bot needs.
type Options struct {
	Dialer session.Dialer

	// Clock paces the behavior loop. Defaults to the real clock.
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// KnownRegions lists the regions the fleet has discovered, for
	// behaviors that travel. May be nil.
	KnownRegions func() []region.Region
}

// Bot is one simulated client. Safe for concurrent use.
type Bot struct {
	config       Config
	dialer       session.Dialer
	clock        clock.Clock
	logger       *slog.Logger
	knownRegions func() []region.Region

	mu             sync.Mutex
	state          State
	session        session.Session
	agentID        uuid.UUID
	simulators     int
	currentRegion  string
	behaviors      *behavior.Set
	settings       map[string]bool
	stopLoop       func()
	dropped        error
	attempt        int
	observers      map[int]Observer
	nextObserverID int
}

// New creates a Disconnected bot. Its behaviors are built fresh from
// config.Behaviors and bound to the bot.
func New(config Config, options Options) *Bot {
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	settings := session.DefaultSettings()
	for key, value := range config.Settings {
		settings[key] = value
	}

	b := &Bot{
		config:       config,
		dialer:       options.Dialer,
		clock:        options.Clock,
		knownRegions: options.KnownRegions,
		state:        Disconnected,
		behaviors:    behavior.NewSet(config.Behaviors),
		settings:     settings,
		observers:    make(map[int]Observer),
	}
	b.logger = options.Logger.With("bot", b.Name())
	for _, strategy := range b.behaviors.Behaviors() {
		strategy.Initialize(b)
	}
	return b
}

// FirstName returns the bot's first name.
func (b *Bot) FirstName() string { return b.config.FirstName }

// LastName returns the bot's last name.
func (b *Bot) LastName() string { return b.config.LastName }

// Name returns "First Last".
func (b *Bot) Name() string { return b.config.FirstName + " " + b.config.LastName }

// State returns the current connection state.
func (b *Bot) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Session returns the live session, or nil.
func (b *Bot) Session() session.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session
}

// CurrentRegion returns the name of the region the bot's agent is in,
// or "" when not known.
func (b *Bot) CurrentRegion() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentRegion
}

// KnownRegions returns the fleet's discovered regions.
func (b *Bot) KnownRegions() []region.Region {
	if b.knownRegions == nil {
		return nil
	}
	return b.knownRegions()
}

// Connect starts logging in. It returns false without doing anything
// unless the bot is Disconnected. On true the bot is already
// Connecting when Connect returns.
func (b *Bot) Connect() bool {
	b.mu.Lock()
	if b.state != Disconnected {
		b.mu.Unlock()
		return false
	}
	b.state = Connecting
	b.dropped = nil
	b.attempt++
	handler := sessionHandler{bot: b, attempt: b.attempt}
	params := session.LoginParams{
		FirstName: b.config.FirstName,
		LastName:  b.config.LastName,
		Password:  b.config.Password,
		LoginURI:  b.config.LoginURI,
		Start:     b.config.Start,
		Wear:      b.config.Wear,
		Settings:  maps.Clone(b.settings),
	}
	b.mu.Unlock()

	go b.login(params, handler)
	return true
}

func (b *Bot) login(params session.LoginParams, handler sessionHandler) {
	ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
	defer cancel()

	b.logger.Info("logging in", "start", params.Start.String())
	live, err := b.dialer.Dial(ctx, params, handler)
	if err != nil {
		b.mu.Lock()
		b.clearSessionLocked()
		b.mu.Unlock()

		b.logger.Warn("login failed", "error", err)
		b.emit(Event{Kind: EventConnectFailed, Err: err})
		return
	}

	b.mu.Lock()
	if dropped := b.dropped; dropped != nil {
		b.clearSessionLocked()
		b.mu.Unlock()

		go b.discard(live)
		b.logger.Warn("session ended by grid during login", "error", dropped)
		b.emit(Event{Kind: EventDisconnected, Err: fmt.Errorf("session ended by grid: %w", dropped)})
		return
	}
	b.state = Connected
	b.session = live
	b.agentID = live.AgentID()
	b.startLoopLocked()
	b.mu.Unlock()

	b.logger.Info("connected", "agent_id", live.AgentID())
	b.emit(Event{Kind: EventConnected})
}

// Disconnect starts logging out. It returns false without doing
// anything unless the bot is Connected. On true the bot is already
// Disconnecting when Disconnect returns. Logout errors are logged and
// the bot still ends up Disconnected.
func (b *Bot) Disconnect() bool {
	b.mu.Lock()
	if b.state != Connected {
		b.mu.Unlock()
		return false
	}
	b.state = Disconnecting
	live := b.session
	stop := b.stopLoop
	b.stopLoop = nil
	b.mu.Unlock()

	go b.logout(live, stop)
	return true
}

func (b *Bot) logout(live session.Session, stop func()) {
	if stop != nil {
		stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
	defer cancel()
	if err := live.Logout(ctx); err != nil {
		b.logger.Warn("logout failed", "error", err)
	}

	b.mu.Lock()
	b.clearSessionLocked()
	b.mu.Unlock()

	b.logger.Info("disconnected")
	b.emit(Event{Kind: EventDisconnected})
}

// discard releases a session the grid already ended.
func (b *Bot) discard(live session.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
	defer cancel()
	if err := live.Logout(ctx); err != nil {
		b.logger.Debug("releasing dropped session", "error", err)
	}
}

// clearSessionLocked returns the bot to Disconnected. Caller holds mu.
func (b *Bot) clearSessionLocked() {
	b.state = Disconnected
	b.dropped = nil
	b.session = nil
	b.simulators = 0
	b.currentRegion = ""
}

// sessionHandler routes session callbacks to the bot. attempt ties it
// to one Connect so a stale session cannot end a newer one.
type sessionHandler struct {
	bot     *Bot
	attempt int
}

func (h sessionHandler) SimulatorConnected(r region.Region) {
	h.bot.mu.Lock()
	h.bot.simulators++
	h.bot.currentRegion = r.Name
	h.bot.mu.Unlock()

	h.bot.logger.Debug("simulator connected", "region", r.Name)
	h.bot.emit(Event{Kind: EventRegionKnown, Region: r})
}

func (h sessionHandler) RegionKnown(r region.Region) {
	h.bot.emit(Event{Kind: EventRegionKnown, Region: r})
}

func (h sessionHandler) Disconnected(err error) {
	b := h.bot
	b.mu.Lock()
	if b.attempt != h.attempt {
		b.mu.Unlock()
		return
	}
	switch b.state {
	case Connecting:
		// Dial has not returned yet; login sees this and backs out.
		if err == nil {
			err = errSessionDropped
		}
		b.dropped = err
		b.mu.Unlock()
		return
	case Connected:
	default:
		// A logout we started is already tearing the session down.
		b.mu.Unlock()
		return
	}
	stop := b.stopLoop
	b.stopLoop = nil
	b.clearSessionLocked()
	b.mu.Unlock()

	if stop != nil {
		go stop()
	}
	b.logger.Warn("session ended by grid", "error", err)
	b.emit(Event{Kind: EventDisconnected, Err: fmt.Errorf("session ended by grid: %w", err)})
}
