// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the injectable time source used by the fleet
// controller, the bot behavior loop, and the simulated grid.
//
// Production code holds a Clock field and calls Now, After, or Sleep on
// it instead of the time package. Real() is the standard library
// behavior. Fake() is a deterministic clock that only moves when the
// test calls Advance, which is what makes the staggered connect
// sequence testable without real sleeps:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	controller := fleet.New(fleet.Options{Clock: fake, ...})
//	controller.Connect(fleet.AllBots)
//	fake.WaitForTimers(1)           // worker is parked in its stagger delay
//	fake.Advance(loginDelay)        // release it for the next bot
//
// WaitForTimers closes the race between a goroutine registering a
// timer and the test advancing past it.
package clock
