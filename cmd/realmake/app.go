// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/invowk/realmake/internal/config"
	"github.com/invowk/realmake/internal/fetch"
	"github.com/invowk/realmake/internal/run"
	"github.com/invowk/realmake/internal/toolchain"
)

const defaultGuidanceStyle = "auto"

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives it and delegates through its fields.
	App struct {
		Config        ConfigProvider
		NewRunner     func(javaHome string) toolchain.Runner
		Fetcher       *fetch.Fetcher
		guidanceStyle string
		stdin         io.Reader
		stdout        io.Writer
		stderr        io.Writer
	}

	// Dependencies are the injection points for NewApp. Nil fields get
	// production defaults.
	Dependencies struct {
		Config    ConfigProvider
		NewRunner func(javaHome string) toolchain.Runner
		Fetcher   *fetch.Fetcher
		// GuidanceStyle is the glamour style of remediation guidance.
		GuidanceStyle string
		Stdin         io.Reader
		Stdout        io.Writer
		Stderr        io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}
)

// NewApp creates an App, filling unset dependencies with defaults.
func NewApp(deps Dependencies) (*App, error) {
	app := &App{
		Config:        deps.Config,
		NewRunner:     deps.NewRunner,
		Fetcher:       deps.Fetcher,
		guidanceStyle: deps.GuidanceStyle,
		stdin:         deps.Stdin,
		stdout:        deps.Stdout,
		stderr:        deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.NewRunner == nil {
		app.NewRunner = func(javaHome string) toolchain.Runner { return toolchain.NewExecRunner(javaHome) }
	}
	if app.Fetcher == nil {
		app.Fetcher = fetch.New()
	}
	if app.guidanceStyle == "" {
		app.guidanceStyle = defaultGuidanceStyle
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app, nil
}

// newRun creates the build context of one invocation.
func (app *App) newRun(cfg *config.Config) *run.Run {
	return run.New(cfg.Debug, app.stdout, app.stderr,
		run.WithRunner(app.NewRunner(cfg.Java.Home)),
		run.WithStdin(app.stdin),
	)
}
