// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fleet is the bot fleet controller: it creates bots, connects
// them to the grid in a staggered sequence, disconnects them newest
// first, tracks the regions they discover, and reports status.
//
// # Locking
//
// The [Registry] holds the ordered bot list and the two transient
// flags (connecting, disconnecting) under one mutex. Every structural
// read or write of the list, and every check or change of a flag,
// happens under that mutex. A bot's own state is guarded by the bot's
// mutex; the registry lock may be held while taking a bot lock, never
// the reverse. The region [region.Catalog] has its own mutex, disjoint
// from both.
//
// No lock is held across a sleep or a blocking grid call.
// [bot.Bot.Connect] and [bot.Bot.Disconnect] only flip state and start
// a goroutine, so the controller calls them under the registry lock;
// Sit, Stand, and the other session actions are issued after the lock
// is released.
//
// # Connect sequences
//
// [Controller.Connect] starts at most one worker goroutine. The worker
// connects one Disconnected bot at a time and waits the login delay on
// the injected clock between bots. [Controller.Disconnect] cancels a
// running sequence under the registry lock, so the worker sees the
// abort at its next check even if it is in the middle of its wait.
// Connects already issued are left alone.
package fleet
