// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework shared by the botfleet operator
// CLI and the interactive console inside botfleet-controller.
//
// A [Command] tree is dispatched by [Command.Execute]: the first
// positional argument selects a subcommand, flags are parsed with
// pflag, and unknown names get an edit-distance suggestion. Parameter
// structs bind their flags from struct tags via [FlagsFromParams].
//
// Commands report failures as [ToolError] values carrying an
// [ErrorCategory], so a caller can tell bad input from a refused
// operation without reading message text.
package cli
