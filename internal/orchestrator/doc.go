// SPDX-License-Identifier: MPL-2.0

// Package orchestrator drives a whole build invocation.
//
// A Project is discovered once from the directory layout: the main realm is
// required, the test realm is optional. Run visits the realms in dependency
// order and, for each, assembles external modules and runs the builder chain;
// it then launches the test engine for realms containing tests, documents the
// main realm and logs a summary. Every failure aborts the invocation with
// exit code 1.
package orchestrator
