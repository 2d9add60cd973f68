// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package control implements the operator control protocol: CBOR
// request-response over a Unix socket, one request per connection.
//
// A request is a CBOR map with an "action" field plus action-specific
// fields. The response is {ok, error, code, data}: data carries the
// handler's result on success, error and code describe a failure.
// Codes are assigned by the server's [ServerOptions].ErrorCode so that
// clients can rebuild typed errors without the protocol knowing about
// them.
//
// On Linux the server only accepts peers running as its own user,
// checked with SO_PEERCRED. The socket file is also created 0600.
package control
