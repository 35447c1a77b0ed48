// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and Markdown guidance for build
// failures.
//
// An ActionableError carries the failed operation, the resource involved and
// remediation hints. An Issue is a catalog entry of longer Markdown guidance
// keyed by Id, rendered with glamour when the CLI runs in debug mode.
package issue
