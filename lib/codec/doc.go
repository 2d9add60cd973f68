// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration shared by the control
// socket server and its clients. Both sides encode with Core
// Deterministic Encoding and decode untyped maps as map[string]any so
// request fields can be inspected before they are bound to a typed
// struct.
package codec
