// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts bot account passwords with age so a fleet
// config can be committed without the password in it.
//
// An operator generates an x25519 identity once with [GenerateIdentity]
// and [WriteIdentity], seals the password to the identity's recipient
// with [Seal], and puts the result in bots.sealed_password. The
// controller reads the identity file with [LoadIdentity] and recovers
// the password with [Open]. Identities and opened passwords live in
// [secret.Buffer] values.
package sealed
