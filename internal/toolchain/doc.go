// SPDX-License-Identifier: MPL-2.0

// Package toolchain locates and runs the external tools a build drives.
//
// Tools are treated as opaque executables: they consume an argument list and
// report an exit code. Executables are resolved from the configured JDK home
// (<home>/bin) first and from PATH otherwise. A Runner never interprets the
// exit code; the caller decides whether non-zero is fatal. The platform's
// feature version is detected from the compiler's version banner.
package toolchain
