// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// Parsing follows three steps: compile the embedded schema, compile the user
// data and unify it with a root definition of the schema, then validate and
// decode. Errors are reported as <file>: <json-path>: <message>.
package cueutil
