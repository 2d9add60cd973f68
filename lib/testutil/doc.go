// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive], [RequireClosed], and [AwaitCondition] wrap the
// timeout safety valve (a select bounded by wall-clock time) so
// individual tests never call time.After directly. Everything a test
// actually measures runs on a fake clock; these timeouts only stop a
// broken test from hanging.
//
// [SocketDir] creates a short temporary directory for Unix domain
// sockets, whose paths are limited to 108 bytes.
//
// All helpers call t.Fatalf on failure.
package testutil
