// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wsgrid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/bureau-foundation/botfleet/lib/session"
)

var errConnectionClosed = errors.New("grid connection closed")

// logoutGrace bounds how long Logout waits for the gateway to
// acknowledge before closing the socket anyway.
const logoutGrace = 2 * time.Second

type wsSession struct {
	conn    *websocket.Conn
	handler session.Handler
	limiter *rate.Limiter
	logger  *slog.Logger
	agentID uuid.UUID

	writeMu sync.Mutex

	mu       sync.Mutex
	nextSeq  uint64
	pending  map[uint64]chan Envelope
	closed   bool
	closing  bool
	ready    bool
	done     chan struct{}
	settings map[string]bool
}

func newSession(conn *websocket.Conn, handler session.Handler, limiter *rate.Limiter, logger *slog.Logger) *wsSession {
	return &wsSession{
		conn:    conn,
		handler: handler,
		limiter: limiter,
		logger:  logger,
		pending: make(map[uint64]chan Envelope),
		done:    make(chan struct{}),
	}
}

func (s *wsSession) AgentID() uuid.UUID { return s.agentID }

func (s *wsSession) Sit(ctx context.Context) error   { return s.call(ctx, TypeSit, nil, nil) }
func (s *wsSession) Stand(ctx context.Context) error { return s.call(ctx, TypeStand, nil, nil) }
func (s *wsSession) Grab(ctx context.Context) error  { return s.call(ctx, TypeGrab, nil, nil) }

func (s *wsSession) Move(ctx context.Context, delta session.Vector) error {
	return s.call(ctx, TypeMove, MoveRequest{Delta: delta}, nil)
}

func (s *wsSession) Teleport(ctx context.Context, regionName string, position session.Vector) error {
	return s.call(ctx, TypeTeleport, TeleportRequest{Region: regionName, Position: position}, nil)
}

// Configure records the setting locally and forwards it to the
// gateway. Forwarding is best effort and bounded by logoutGrace.
func (s *wsSession) Configure(key string, value bool) error {
	if err := session.ValidateSetting(key); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), logoutGrace)
	defer cancel()
	if err := s.call(ctx, TypeConfigure, ConfigureRequest{Key: key, Value: value}, nil); err != nil {
		return err
	}
	s.mu.Lock()
	s.settings[key] = value
	s.mu.Unlock()
	return nil
}

func (s *wsSession) Settings() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.settings)
}

// Logout asks the gateway to end the session and closes the socket.
// The handler is not told about the resulting disconnection.
func (s *wsSession) Logout(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closing = true
	s.mu.Unlock()

	logoutCtx, cancel := context.WithTimeout(ctx, logoutGrace)
	defer cancel()
	err := s.call(logoutCtx, TypeLogout, nil, nil)
	s.shutdown()
	if err != nil && !errors.Is(err, errConnectionClosed) {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *wsSession) markReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
}

// call sends one request and waits for its reply. result, when
// non-nil, receives the reply payload.
func (s *wsSession) call(ctx context.Context, requestType string, payload any, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	var raw json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", requestType, err)
		}
		raw = encoded
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errConnectionClosed
	}
	s.nextSeq++
	seq := s.nextSeq
	reply := make(chan Envelope, 1)
	s.pending[seq] = reply
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, seq)
		s.mu.Unlock()
	}()

	if err := s.write(Envelope{Type: requestType, Seq: seq, Payload: raw}); err != nil {
		return err
	}

	select {
	case envelope := <-reply:
		if envelope.Error != "" {
			return &replyError{requestType: requestType, message: envelope.Error}
		}
		if err := decodePayload(envelope.Payload, result); err != nil {
			return fmt.Errorf("decoding %s reply: %w", requestType, err)
		}
		return nil
	case <-s.done:
		return errConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *wsSession) write(envelope Envelope) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(envelope); err != nil {
		return fmt.Errorf("writing %s: %w", envelope.Type, err)
	}
	return nil
}

// readLoop dispatches replies and events until the connection ends.
// A connection that ends without a Logout is reported to the handler.
func (s *wsSession) readLoop() {
	var cause error
	for {
		var envelope Envelope
		if err := s.conn.ReadJSON(&envelope); err != nil {
			cause = err
			break
		}

		switch envelope.Type {
		case TypeReply:
			s.mu.Lock()
			reply, ok := s.pending[envelope.Seq]
			s.mu.Unlock()
			if ok {
				reply <- envelope
			}
		case TypeSimulator, TypeRegion:
			var event RegionEvent
			if err := json.Unmarshal(envelope.Payload, &event); err != nil {
				s.logger.Warn("discarding malformed region event", "error", err)
				continue
			}
			if envelope.Type == TypeSimulator {
				s.handler.SimulatorConnected(event.Region)
			} else {
				s.handler.RegionKnown(event.Region)
			}
		case TypeKicked:
			var event KickedEvent
			if err := json.Unmarshal(envelope.Payload, &event); err != nil {
				s.logger.Warn("malformed kick event", "error", err)
				event.Reason = "reason unreadable"
			}
			cause = fmt.Errorf("kicked by grid: %s", event.Reason)
		default:
			s.logger.Debug("ignoring unknown envelope", "type", envelope.Type)
		}
		if cause != nil {
			break
		}
	}

	s.mu.Lock()
	report := s.ready && !s.closing && !s.closed
	s.mu.Unlock()
	s.shutdown()
	if report {
		s.handler.Disconnected(cause)
	}
}

func (s *wsSession) shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()
	s.conn.Close()
}
