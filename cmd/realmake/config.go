// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/invowk/realmake/internal/config"
	"github.com/invowk/realmake/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `realmake config` command tree.
func newConfigCommand(app *App, flags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect realmake configuration",
		Long: `Inspect realmake configuration.

Configuration is layered from built-in defaults, the project file
realmake.cue (or the file given with --config), REALMAKE_* environment
variables and explicitly set flags.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show [project-dir]",
		Short: "Show the effective configuration as CUE",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(cmd, app, flags, projectDir(args))
			if err != nil {
				if rendered, renderErr := issue.Get(issue.ConfigLoadFailedId).Render(app.guidanceStyle); renderErr == nil {
					fmt.Fprint(app.stderr, rendered)
				}
				return err
			}
			source := SubtitleStyle.Render("(using defaults)")
			if path != "" {
				source = path
			}
			fmt.Fprintf(app.stdout, "// %s: %s\n", KeyStyle.Render("Config file"), source)
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})
	return cfgCmd
}
