// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package credential implements the keygen and seal commands, which
// produce the identity file and sealed password a controller config
// uses instead of a plaintext bot password.
package credential
