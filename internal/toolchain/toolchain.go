// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"

	"github.com/invowk/realmake/pkg/types"
)

const (
	// Javac is the compiler.
	Javac = "javac"
	// Jar is the archiver.
	Jar = "jar"
	// Javadoc is the documentation generator.
	Javadoc = "javadoc"
	// Jdeps is the dependency analysis tool.
	Jdeps = "jdeps"
	// Java is the launcher used to start the test engine.
	Java = "java"
)

var (
	// ErrToolNotFound is the sentinel error wrapped by ToolNotFoundError.
	ErrToolNotFound = errors.New("tool not found")
	// ErrToolInvocation is the sentinel error matched by ToolInvocationError.
	ErrToolInvocation = errors.New("tool invocation failed")
)

type (
	// Invocation describes one synchronous tool run.
	Invocation struct {
		// Tool is the logical tool name, e.g. "javac".
		Tool string
		// Args are passed verbatim, without shell interpretation.
		Args []string
		// Dir is the working directory; empty means the current directory.
		Dir string
		// Stdin, Stdout and Stderr are wired to the child process. nil
		// values are connected to the null device.
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Runner runs a tool to completion and reports its exit code. The error
	// is non-nil only when the tool could not be started at all.
	Runner interface {
		Run(ctx context.Context, inv Invocation) (types.ExitCode, error)
	}

	// ExecRunner runs tools as child processes.
	ExecRunner struct {
		// Home is the JDK root; tools are looked up in Home/bin when set.
		Home string
		// lookPath is exec.LookPath, replaceable in tests.
		lookPath func(string) (string, error)
	}

	// ToolNotFoundError is returned when no executable exists for a tool.
	ToolNotFoundError struct {
		Tool string
		Home string
	}

	// ToolInvocationError reports a tool that returned a non-zero exit code
	// or could not be started.
	ToolInvocationError struct {
		Tool  string
		Code  types.ExitCode
		Cause error
	}
)

// NewExecRunner creates a runner resolving tools from home (may be empty).
func NewExecRunner(home string) *ExecRunner {
	return &ExecRunner{Home: home, lookPath: exec.LookPath}
}

// Error implements the error interface.
func (e *ToolNotFoundError) Error() string {
	if e.Home != "" {
		return fmt.Sprintf("tool %q not found in %s", e.Tool, filepath.Join(e.Home, "bin"))
	}
	return fmt.Sprintf("tool %q not found on PATH", e.Tool)
}

// Unwrap returns ErrToolNotFound for errors.Is() compatibility.
func (e *ToolNotFoundError) Unwrap() error { return ErrToolNotFound }

// Error implements the error interface.
func (e *ToolInvocationError) Error() string {
	msg := fmt.Sprintf("tool '%s' execution failed with error code: %d", e.Tool, e.Code)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *ToolInvocationError) Unwrap() error { return e.Cause }

// Is matches ErrToolInvocation.
func (e *ToolInvocationError) Is(target error) bool { return target == ErrToolInvocation }

// Resolve returns the executable path for tool.
func (r *ExecRunner) Resolve(tool string) (string, error) {
	name := tool
	if goruntime.GOOS == "windows" {
		name += ".exe"
	}
	if r.Home != "" {
		path := filepath.Join(r.Home, "bin", name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
		return "", &ToolNotFoundError{Tool: tool, Home: r.Home}
	}
	lookPath := r.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(name)
	if err != nil {
		return "", &ToolNotFoundError{Tool: tool}
	}
	return path, nil
}

// Run starts the tool and blocks until it exits. There is no timeout.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) (types.ExitCode, error) {
	path, err := r.Resolve(inv.Tool)
	if err != nil {
		return types.ExitToolNotFound, err
	}

	cmd := exec.CommandContext(ctx, path, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Stdin = inv.Stdin
	cmd.Stdout = inv.Stdout
	cmd.Stderr = inv.Stderr

	return exitCodeOf(cmd.Run())
}

// exitCodeOf maps the result of exec.Cmd.Run to an exit code. Normal
// termination with a non-zero status is not an error.
func exitCodeOf(err error) (types.ExitCode, error) {
	if err == nil {
		return types.ExitSuccess, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := types.ExitCode(exitErr.ExitCode())
		if validateErr := code.Validate(); validateErr != nil {
			// Killed by a signal: ExitCode() reports -1.
			return types.ExitFailure, nil
		}
		return code, nil
	}
	return types.ExitFailure, fmt.Errorf("failed to start process: %w", err)
}
