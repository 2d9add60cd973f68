// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fleet

import "errors"

var (
	// ErrConnectInProgress: Connect was called while a connect
	// sequence is running.
	ErrConnectInProgress = errors.New("a connect sequence is already in progress")

	// ErrBotNotFound: no bot matches the given name or number.
	ErrBotNotFound = errors.New("bot not found")

	// ErrBotsConnected: shutdown refused because bots are still live.
	ErrBotsConnected = errors.New("bots are still connected")

	// ErrInvalidCount: a bot count below zero (other than AllBots).
	ErrInvalidCount = errors.New("invalid bot count")

	// ErrInvalidConfig: CreateFleet was given an unusable BotConfig.
	ErrInvalidConfig = errors.New("invalid bot configuration")

	ErrUnknownBehavior = errors.New("unknown behavior")
	ErrUnknownSetting  = errors.New("unknown setting")
)

// Error codes carried across the control socket.
const (
	CodeConnectInProgress = "connect-in-progress"
	CodeBotNotFound       = "not-found"
	CodeBotsConnected     = "bots-connected"
	CodeInvalidCount      = "invalid-count"
	CodeInvalidConfig     = "invalid-config"
	CodeUnknownBehavior   = "unknown-behavior"
	CodeUnknownSetting    = "unknown-setting"
)

var codes = []struct {
	code     string
	sentinel error
}{
	{CodeConnectInProgress, ErrConnectInProgress},
	{CodeBotNotFound, ErrBotNotFound},
	{CodeBotsConnected, ErrBotsConnected},
	{CodeInvalidCount, ErrInvalidCount},
	{CodeInvalidConfig, ErrInvalidConfig},
	{CodeUnknownBehavior, ErrUnknownBehavior},
	{CodeUnknownSetting, ErrUnknownSetting},
}

// Code returns the wire code of the fleet error wrapped by err, or ""
// if err wraps none of them.
func Code(err error) string {
	for _, entry := range codes {
		if errors.Is(err, entry.sentinel) {
			return entry.code
		}
	}
	return ""
}

// FromCode rebuilds an error received over the wire. The result reads
// as message and matches the sentinel for code under errors.Is. An
// unrecognized code yields a plain error.
func FromCode(code, message string) error {
	for _, entry := range codes {
		if entry.code == code {
			return &codedError{sentinel: entry.sentinel, message: message}
		}
	}
	return errors.New(message)
}

type codedError struct {
	sentinel error
	message  string
}

func (e *codedError) Error() string { return e.message }
func (e *codedError) Unwrap() error { return e.sentinel }
