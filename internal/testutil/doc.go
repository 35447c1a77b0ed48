// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers for tests: Must* filesystem helpers that
// fail the test on error, a Project fixture builder for convention-based
// source layouts, a FakeRunner that records tool invocations and emulates
// their filesystem effects, and a FakeClock.
package testutil
