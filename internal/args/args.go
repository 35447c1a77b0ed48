// SPDX-License-Identifier: MPL-2.0

// Package args assembles command-line argument lists for the tools invoked
// during a build (javac, jar, javadoc, jdeps and the test launcher).
package args

import (
	"fmt"
	"os"
	"strings"
)

// Args is an ordered command-line argument list. The zero value is an empty
// list ready to use; every method appends and returns the receiver so calls
// can be chained.
type Args struct {
	list []string
}

// New creates an argument list seeded with the given arguments.
func New(initial ...string) *Args {
	return &Args{list: append([]string(nil), initial...)}
}

// With appends the string form of each argument.
func (a *Args) With(arguments ...any) *Args {
	for _, argument := range arguments {
		a.list = append(a.list, fmt.Sprint(argument))
	}
	return a
}

// WithIf appends the arguments only when condition holds.
func (a *Args) WithIf(condition bool, arguments ...any) *Args {
	if !condition {
		return a
	}
	return a.With(arguments...)
}

// WithPaths appends key followed by paths joined with the platform's path
// list separator. Paths are kept in order; duplicates are not collapsed.
func (a *Args) WithPaths(key string, paths []string) *Args {
	return a.With(key, JoinPaths(paths))
}

// WithEach appends every element of arguments.
func (a *Args) WithEach(arguments []string) *Args {
	a.list = append(a.list, arguments...)
	return a
}

// Len returns the number of arguments.
func (a *Args) Len() int { return len(a.list) }

// Strings returns a copy of the argument list.
func (a *Args) Strings() []string {
	return append([]string(nil), a.list...)
}

// String renders the list the way it is logged.
func (a *Args) String() string {
	return "[" + strings.Join(a.list, ", ") + "]"
}

// JoinPaths joins paths with the platform's path list separator.
func JoinPaths(paths []string) string {
	return strings.Join(paths, string(os.PathListSeparator))
}
