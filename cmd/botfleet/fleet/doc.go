// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fleet is the operator command tree for a bot fleet.
//
// The same commands drive the interactive console inside
// botfleet-controller and the remote botfleet CLI. Both talk to an
// [Operator]: the console wraps the in-process controller with
// [Local], the CLI reaches the daemon's control socket through
// [Connection]. [Register] exposes any Operator on a control server,
// which is how the daemon serves the remote CLI.
package fleet
