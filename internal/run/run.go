// SPDX-License-Identifier: MPL-2.0

// Package run holds the per-invocation build context: the logging threshold,
// the start instant used for duration reporting, the normal and diagnostic
// output sinks, and the tool runner. A Run is created once per invocation and
// passed explicitly to every orchestration step.
package run

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/invowk/realmake/internal/args"
	"github.com/invowk/realmake/internal/toolchain"
	"github.com/invowk/realmake/pkg/types"

	"github.com/charmbracelet/log"
)

type (
	// Run is the build context of one invocation.
	Run struct {
		threshold log.Level
		out       io.Writer
		err       io.Writer
		in        io.Reader
		outLog    *log.Logger
		errLog    *log.Logger
		start     time.Time
		now       func() time.Time
		runner    toolchain.Runner
	}

	// Option customizes a Run.
	Option func(*Run)
)

// WithRunner sets the tool runner. The default runs tools from PATH.
func WithRunner(runner toolchain.Runner) Option {
	return func(r *Run) { r.runner = runner }
}

// WithClock replaces time.Now for the start instant and duration reporting.
func WithClock(now func() time.Time) Option {
	return func(r *Run) { r.now = now }
}

// WithStdin sets the input stream inherited by launched processes.
func WithStdin(in io.Reader) Option {
	return func(r *Run) { r.in = in }
}

// New creates a Run writing DEBUG and INFO messages to out and WARN and
// ERROR messages to err. The threshold is DEBUG when debug is set, INFO
// otherwise.
func New(debug bool, out, err io.Writer, opts ...Option) *Run {
	threshold := log.InfoLevel
	if debug {
		threshold = log.DebugLevel
	}
	r := &Run{
		threshold: threshold,
		out:       out,
		err:       err,
		in:        os.Stdin,
		now:       time.Now,
		runner:    toolchain.NewExecRunner(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.outLog = newLogger(out, threshold)
	r.errLog = newLogger(err, threshold)
	r.start = r.now()
	return r
}

func newLogger(w io.Writer, threshold log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           threshold,
		ReportTimestamp: false,
	})
}

// Debug reports whether the threshold admits DEBUG messages.
func (r *Run) Debug() bool { return r.threshold <= log.DebugLevel }

// Threshold returns the logging threshold.
func (r *Run) Threshold() log.Level { return r.threshold }

// Out returns the normal output sink.
func (r *Run) Out() io.Writer { return r.out }

// Err returns the diagnostic output sink.
func (r *Run) Err() io.Writer { return r.err }

// Start returns the instant the Run was created.
func (r *Run) Start() time.Time { return r.start }

// Duration returns the wall-clock time elapsed since Start.
func (r *Run) Duration() time.Duration { return r.now().Sub(r.start) }

// Log writes a formatted message unless the threshold suppresses it.
// Levels below WARN go to the normal sink, the others to the diagnostic sink.
func (r *Run) Log(level log.Level, format string, a ...any) {
	if level < r.threshold {
		return
	}
	if level < log.WarnLevel {
		r.outLog.Logf(level, format, a...)
		return
	}
	r.errLog.Logf(level, format, a...)
}

// Logw writes msg with structured key/value pairs, routed like Log.
func (r *Run) Logw(level log.Level, msg string, keyvals ...any) {
	if level < r.threshold {
		return
	}
	if level < log.WarnLevel {
		r.outLog.Log(level, msg, keyvals...)
		return
	}
	r.errLog.Log(level, msg, keyvals...)
}

// Debugf logs at DEBUG.
func (r *Run) Debugf(format string, a ...any) { r.Log(log.DebugLevel, format, a...) }

// Infof logs at INFO.
func (r *Run) Infof(format string, a ...any) { r.Log(log.InfoLevel, format, a...) }

// Warnf logs at WARN.
func (r *Run) Warnf(format string, a ...any) { r.Log(log.WarnLevel, format, a...) }

// Errorf logs at ERROR.
func (r *Run) Errorf(format string, a ...any) { r.Log(log.ErrorLevel, format, a...) }

// Tool runs the named tool with the given arguments and blocks until it
// exits. A non-zero exit code is returned as a *toolchain.ToolInvocationError.
func (r *Run) Tool(ctx context.Context, name string, a *args.Args) error {
	r.Debugf("Running tool '%s' with: %s", name, a)
	code, err := r.runner.Run(ctx, toolchain.Invocation{
		Tool:   name,
		Args:   a.Strings(),
		Stdout: r.out,
		Stderr: r.err,
	})
	if err != nil || !code.IsSuccess() {
		return &toolchain.ToolInvocationError{Tool: name, Code: code, Cause: err}
	}
	r.Debugf("Tool '%s' successfully executed.", name)
	return nil
}

// Launch starts the named program in a child process that inherits this
// Run's input and output streams and waits for it without a timeout. The
// exit code is returned as is; err is set only when the process could not
// be started.
func (r *Run) Launch(ctx context.Context, name string, a *args.Args) (types.ExitCode, error) {
	return r.runner.Run(ctx, toolchain.Invocation{
		Tool:   name,
		Args:   a.Strings(),
		Stdin:  r.in,
		Stdout: r.out,
		Stderr: r.err,
	})
}

// Runner returns the tool runner.
func (r *Run) Runner() toolchain.Runner { return r.runner }
