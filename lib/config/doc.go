// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the bot fleet controller's configuration.
//
// Configuration comes from a single file named by:
//   - the --config flag passed to the command, or
//   - the BOTFLEET_CONFIG environment variable.
//
// Files ending in .json or .jsonc are parsed as JSON with comments and
// trailing commas allowed; anything else is parsed as YAML. Values not
// present in the file keep the [Default] values. ${VAR} and
// ${VAR:-default} references in path fields are expanded after
// loading.
//
// Durations are written as Go duration strings ("5s", "250ms") and
// checked by [Config.Validate], which reports every problem at once.
//
// A bot password can be kept out of the file by sealing it with
// "botfleet seal" and setting bots.sealed_password and
// bots.identity_file; [Config.UnsealPassword] recovers it.
package config
