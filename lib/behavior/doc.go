// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package behavior defines the pluggable strategies a connected bot
// runs, and the per-bot [Set] that holds them.
//
// Strategies are selected by single-letter tokens from the operator's
// behavior string ("p,g" selects Physics and Grabbing). Tokens are
// collected into a [TokenSet], which has set semantics: repeating a
// token has no effect. [NewSet] builds fresh instances for one bot;
// behaviors keep per-bot state and are never shared between bots.
//
//	c  Cross     walk back and forth across a region border
//	g  Grabbing  touch nearby objects
//	n  None      do nothing (keeps the session idle)
//	p  Physics   random short movements
//	t  Teleport  teleport between known regions
package behavior
