// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bot wraps one grid session with a connection state machine,
// a set of behaviors, and observer notifications.
//
// A Bot moves through four states:
//
//	Disconnected --Connect--> Connecting --login ok--> Connected
//	     ^                        |                        |
//	     +------login failed------+                   Disconnect
//	     |                                                 v
//	     +--------------logout done------------------ Disconnecting
//
// [Bot.Connect] and [Bot.Disconnect] make their state transition
// synchronously and return immediately; the login or logout runs on
// its own goroutine. A caller that has just seen Connect return true
// can rely on the bot no longer being Disconnected, which is what lets
// the fleet controller pick the next bot without double-connecting.
// A session ended by the grid moves a Connected bot straight to
// Disconnected.
//
// Observers registered with [Bot.Subscribe] are called outside the
// bot's lock, on whichever goroutine caused the event.
package bot
