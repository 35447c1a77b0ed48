// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/invowk/realmake/internal/toolchain"
	"github.com/invowk/realmake/pkg/types"
)

// FakeRunner is a toolchain.Runner that records every invocation instead of
// starting processes. Successful runs emulate the filesystem effect the real
// tool would have: jar creates the --file archive, javac and javadoc create
// their -d directory (javac in module mode also one directory per module),
// and "-version" prints Banner.
type FakeRunner struct {
	mu    sync.Mutex
	calls []toolchain.Invocation
	codes map[string]types.ExitCode

	// Banner is printed for "-version" calls.
	Banner string
	// Missing tools fail as if not installed.
	Missing map[string]bool
}

// NewFakeRunner creates a runner whose tools all succeed.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		codes:   make(map[string]types.ExitCode),
		Banner:  "javac 17.0.2",
		Missing: make(map[string]bool),
	}
}

// Fail makes every later run of tool exit with code.
func (f *FakeRunner) Fail(tool string, code types.ExitCode) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[tool] = code
	return f
}

// Run implements toolchain.Runner.
func (f *FakeRunner) Run(_ context.Context, inv toolchain.Invocation) (types.ExitCode, error) {
	f.mu.Lock()
	inv.Args = slices.Clone(inv.Args)
	f.calls = append(f.calls, inv)
	code := f.codes[inv.Tool]
	missing := f.Missing[inv.Tool]
	f.mu.Unlock()

	if missing {
		return types.ExitToolNotFound, &toolchain.ToolNotFoundError{Tool: inv.Tool}
	}
	if code != types.ExitSuccess {
		return code, nil
	}
	if err := f.emulate(inv); err != nil {
		return types.ExitFailure, err
	}
	return types.ExitSuccess, nil
}

func (f *FakeRunner) emulate(inv toolchain.Invocation) error {
	if slices.Contains(inv.Args, "-version") {
		if inv.Stdout != nil {
			_, _ = io.WriteString(inv.Stdout, f.Banner+"\n")
		}
		return nil
	}
	switch inv.Tool {
	case toolchain.Jar:
		if file := valueOf(inv.Args, "--file"); file != "" {
			if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
				return err
			}
			return os.WriteFile(file, []byte(fmt.Sprint(inv.Args)), 0o644)
		}
	case toolchain.Javac, toolchain.Javadoc:
		dir := valueOf(inv.Args, "-d")
		if dir == "" {
			return nil
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		if inv.Tool == toolchain.Javac && slices.Contains(inv.Args, "--module-source-path") {
			for _, module := range strings.Split(valueOf(inv.Args, "--module"), ",") {
				if err := os.MkdirAll(filepath.Join(dir, module), 0o755); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// valueOf returns the argument following key.
func valueOf(args []string, key string) string {
	i := slices.Index(args, key)
	if i < 0 || i+1 >= len(args) {
		return ""
	}
	return args[i+1]
}

// Calls returns every recorded invocation in order.
func (f *FakeRunner) Calls() []toolchain.Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallsOf returns the recorded invocations of tool.
func (f *FakeRunner) CallsOf(tool string) []toolchain.Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []toolchain.Invocation
	for _, call := range f.calls {
		if call.Tool == tool {
			out = append(out, call)
		}
	}
	return out
}

// Tools returns the tool names of all invocations in order.
func (f *FakeRunner) Tools() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.calls))
	for _, call := range f.calls {
		names = append(names, call.Tool)
	}
	return names
}

// ArgValue returns the argument following key in args, or "".
func ArgValue(args []string, key string) string { return valueOf(args, key) }
