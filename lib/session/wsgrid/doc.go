// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package wsgrid implements [session.Dialer] against a grid gateway
// that speaks JSON envelopes over a websocket.
//
// Each bot holds its own websocket connection. Requests carry a
// sequence number and are answered by a "reply" envelope with the same
// sequence; the gateway also pushes unsolicited "simulator", "region",
// and "kicked" events. Outbound envelopes on a connection are paced by
// a token bucket so a fleet of bots cannot flood the gateway.
//
// Wire format:
//
//	{"type":"login","seq":1,"payload":{"first":"Test","last":"Bot_0",...}}
//	{"type":"reply","seq":1,"payload":{"agent_id":"...","region":{...}}}
//	{"type":"reply","seq":2,"error":"no such region"}
//	{"type":"simulator","payload":{"region":{...}}}
//	{"type":"kicked","payload":{"reason":"..."}}
package wsgrid
