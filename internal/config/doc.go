// SPDX-License-Identifier: MPL-2.0

// Package config loads realmake configuration.
//
// Sources are layered by Viper in increasing precedence: built-in defaults,
// the project file realmake.cue (validated against the embedded #Config CUE
// schema), then REALMAKE_* environment variables. Command-line flags are
// applied by the CLI on top of the loaded Config.
package config
