// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wsgrid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/bureau-foundation/botfleet/lib/session"
)

// Default pacing for outbound envelopes on one connection.
const (
	DefaultMessageRate  = 20
	DefaultMessageBurst = 5
)

const defaultHandshakeTimeout = 10 * time.Second

// Options configures a Dialer.
type Options struct {
	// URL is the gateway's websocket endpoint ("ws://host:port/grid").
	URL string

	// MessageRate is the sustained number of envelopes per second one
	// session may send. Zero selects DefaultMessageRate.
	MessageRate float64

	// MessageBurst is the token bucket depth. Zero selects
	// DefaultMessageBurst.
	MessageBurst int

	// HandshakeTimeout bounds the websocket upgrade. Zero selects ten
	// seconds.
	HandshakeTimeout time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Dialer logs bots in through a websocket gateway.
type Dialer struct {
	url    string
	limit  rate.Limit
	burst  int
	dialer *websocket.Dialer
	logger *slog.Logger
}

var _ session.Dialer = (*Dialer)(nil)

// New returns a Dialer for options.URL.
func New(options Options) (*Dialer, error) {
	if options.URL == "" {
		return nil, errors.New("wsgrid: URL is required")
	}
	if options.MessageRate <= 0 {
		options.MessageRate = DefaultMessageRate
	}
	if options.MessageBurst <= 0 {
		options.MessageBurst = DefaultMessageBurst
	}
	if options.HandshakeTimeout <= 0 {
		options.HandshakeTimeout = defaultHandshakeTimeout
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Dialer{
		url:   options.URL,
		limit: rate.Limit(options.MessageRate),
		burst: options.MessageBurst,
		dialer: &websocket.Dialer{
			HandshakeTimeout: options.HandshakeTimeout,
		},
		logger: options.Logger,
	}, nil
}

// Dial opens a websocket to the gateway and logs the bot in. The
// connection is closed if the login is rejected. handler receives the
// start simulator before Dial returns.
func (d *Dialer) Dial(ctx context.Context, params session.LoginParams, handler session.Handler) (session.Session, error) {
	conn, _, err := d.dialer.DialContext(ctx, d.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing grid gateway %s: %w", d.url, err)
	}

	s := newSession(conn, handler, rate.NewLimiter(d.limit, d.burst), d.logger)
	go s.readLoop()

	request := LoginRequest{
		ClientID:  uuid.NewString(),
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Password:  params.Password,
		LoginURI:  params.LoginURI,
		Start:     params.Start.LoginString(),
		Wear:      string(params.Wear),
		Settings:  params.Settings,
	}
	var reply LoginReply
	if err := s.call(ctx, TypeLogin, request, &reply); err != nil {
		s.shutdown()
		var rejected *replyError
		if errors.As(err, &rejected) {
			return nil, fmt.Errorf("%w: %s", session.ErrLoginFailed, rejected.message)
		}
		return nil, fmt.Errorf("logging in %s %s: %w", params.FirstName, params.LastName, err)
	}

	agentID, err := uuid.Parse(reply.AgentID)
	if err != nil {
		s.shutdown()
		return nil, fmt.Errorf("gateway returned invalid agent id %q: %w", reply.AgentID, err)
	}
	s.agentID = agentID

	settings := session.DefaultSettings()
	for key, value := range params.Settings {
		settings[key] = value
	}
	s.settings = settings

	handler.SimulatorConnected(reply.Region)
	s.markReady()
	return s, nil
}

// replyError is a request the gateway answered with an error.
type replyError struct {
	requestType string
	message     string
}

func (e *replyError) Error() string {
	return fmt.Sprintf("gateway rejected %s: %s", e.requestType, e.message)
}

func decodePayload(raw json.RawMessage, into any) error {
	if into == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, into)
}
