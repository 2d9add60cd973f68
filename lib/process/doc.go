// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the binary entrypoint error handler. It is
// one of the few places that writes to stderr directly, for errors
// that may occur before the structured logger exists.
package process
