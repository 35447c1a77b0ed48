// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/invowk/realmake/internal/config"
	"github.com/invowk/realmake/internal/orchestrator"
	"github.com/invowk/realmake/pkg/types"

	"github.com/spf13/cobra"
)

func runBuild(cmd *cobra.Command, app *App, flags *rootFlagValues, args []string) error {
	dir := projectDir(args)
	cfg, _, err := loadConfig(cmd, app, flags, dir)
	if err != nil {
		return err
	}
	if flags.watch {
		return runWatchMode(cmd, app, flags, cfg, dir, args)
	}
	if code := buildOnce(cmd.Context(), app, cfg, dir, args); !code.IsSuccess() {
		return &ExitError{Code: code}
	}
	return nil
}

// buildOnce performs one full invocation. Failures are reported to the
// diagnostic sink before the exit code is returned.
func buildOnce(ctx context.Context, app *App, cfg *config.Config, dir string, args []string) types.ExitCode {
	r := app.newRun(cfg)
	r.Debugf("%s - %s", config.AppName, getVersionString())
	r.Debugf("  args = %v", args)

	opts, err := orchestrator.OptionsFromConfig(cfg)
	if err != nil {
		r.Errorf("Build failed: %s", err)
		return types.ExitFailure
	}
	opts.GuidanceStyle = app.guidanceStyle

	project, err := orchestrator.New(dir, opts, orchestrator.WithFetcher(app.Fetcher))
	if err != nil {
		r.Errorf("Build failed: %s", err)
		fmt.Fprintln(r.Err(), formatErrorForDisplay(err, r.Debug()))
		return types.ExitFailure
	}
	return project.Run(ctx, r)
}

// loadConfig loads the configuration of dir and applies explicitly set flags.
func loadConfig(cmd *cobra.Command, app *App, flags *rootFlagValues, dir string) (*config.Config, string, error) {
	cfg, path, err := app.Config.Load(cmd.Context(), config.LoadOptions{
		ConfigFilePath: flags.configPath,
		ProjectDir:     dir,
	})
	if err != nil {
		return nil, "", err
	}

	changed := cmd.Flags().Changed
	if changed("debug") {
		cfg.Debug = flags.debug
	}
	if changed("dry-run") {
		cfg.DryRun = flags.dryRun
	}
	if changed("offline") {
		cfg.Offline = flags.offline
	}
	if changed("project-name") {
		cfg.Project.Name = flags.projectName
	}
	if changed("project-version") {
		cfg.Project.Version = flags.projectVersion
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func projectDir(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return filepath.Clean(args[0])
}
