// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the realmake command tree.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/invowk/realmake/internal/issue"
	"github.com/invowk/realmake/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags. Flags only override the
// configuration when set explicitly.
type rootFlagValues struct {
	configPath     string
	debug          bool
	dryRun         bool
	offline        bool
	watch          bool
	projectName    string
	projectVersion string
}

// NewRootCommand builds the command tree. The root command builds the
// project in the given directory, or the working directory.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}
	rootCmd := &cobra.Command{
		Use:   "realmake [project-dir]",
		Short: "Build, test and document modular Java projects",
		Long: TitleStyle.Render("realmake") + SubtitleStyle.Render(" - a zero-configuration build driver for modular Java projects") + `

realmake discovers the realms of a project from its directory layout
(src/main/java, src/test/java), fetches the external modules listed in
lib/**/module-uri.properties, compiles and packages every module, runs
the test realm through the JUnit platform launcher and documents the
main realm.

` + SubtitleStyle.Render("Examples:") + `
  realmake                  Build the project in the working directory
  realmake --dry-run        Show the discovered model without running tools
  realmake --watch          Rebuild whenever sources change
  realmake realms           List realms, modules and module paths
  realmake config show      Show the effective configuration`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, app, flags, args)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default is <project-dir>/realmake.cue)")
	pf.BoolVar(&flags.debug, "debug", false, "log at DEBUG level and analyse packaged modules")
	pf.BoolVar(&flags.dryRun, "dry-run", false, "discover and log the project model without running tools")
	pf.BoolVar(&flags.offline, "offline", false, "never download external modules")
	pf.StringVar(&flags.projectName, "project-name", "", "project name (default is the project directory name)")
	pf.StringVar(&flags.projectVersion, "project-version", "", "project version (default is 1.0.0-SNAPSHOT)")
	rootCmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "rebuild when project files change")

	rootCmd.AddCommand(newRealmsCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

// Execute runs the command tree and exits with the resulting code.
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(int(types.ExitFailure))
	}
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(int(types.ExitFailure))
	}
}

// handleError prints errors that were not reported by the build itself.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	if errors.As(err, new(*issue.ActionableError)) {
		fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, false))
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

// formatErrorForDisplay formats an error for user display. Actionable errors
// render their suggestions, and in verbose mode the error chain.
func formatErrorForDisplay(err error, verbose bool) string {
	return issue.Describe(err, verbose)
}
