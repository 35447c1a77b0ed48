// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/invowk/realmake/internal/config"
	"github.com/invowk/realmake/internal/fetch"
	"github.com/invowk/realmake/internal/realm"
	"github.com/invowk/realmake/internal/watch"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// errWatchDryRun rejects the combination of watch mode and dry runs.
var errWatchDryRun = errors.New("--watch and --dry-run cannot be used together")

// watchPatterns selects the files that affect a build: every realm source
// candidate, the library descriptors and the project configuration.
func watchPatterns() []string {
	var patterns []string
	for _, name := range []string{realm.Main, realm.Test} {
		for _, candidate := range realm.SourceCandidates(name) {
			patterns = append(patterns, filepath.ToSlash(candidate)+"/**")
		}
	}
	return append(patterns, realm.LibDir+"/**/"+fetch.DescriptorFileName, config.ConfigFileName)
}

// runWatchMode builds once, then rebuilds the whole project after every
// debounced change until the context is canceled. Configuration is reloaded
// before each build.
func runWatchMode(cmd *cobra.Command, app *App, flags *rootFlagValues, cfg *config.Config, dir string, args []string) error {
	if cfg.DryRun {
		return errWatchDryRun
	}

	rebuild := func(ctx context.Context, _ []string) error {
		current, _, err := loadConfig(cmd, app, flags, dir)
		if err != nil {
			fmt.Fprintln(app.stderr, WarningStyle.Render("!")+" "+formatErrorForDisplay(err, false))
			return nil
		}
		buildOnce(ctx, app, current, dir, args)
		fmt.Fprintf(app.stdout, "\n%s Watching for changes...\n\n", markerStyle.Render("→"))
		return nil
	}

	fmt.Fprintf(app.stdout, "%s Watch mode: initial build of %s\n", markerStyle.Render("→"), dir)
	if err := rebuild(cmd.Context(), nil); err != nil {
		return err
	}

	level := log.InfoLevel
	if cfg.Debug {
		level = log.DebugLevel
	}
	w, err := watch.New(watch.Config{
		BaseDir:  dir,
		Patterns: watchPatterns(),
		Ignore:   cfg.Watch.Ignore,
		Debounce: cfg.Watch.Debounce,
		OnChange: rebuild,
		Logger:   log.NewWithOptions(app.stderr, log.Options{Level: level}),
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	return w.Run(cmd.Context())
}
