// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/invowk/realmake/internal/orchestrator"
	"github.com/invowk/realmake/internal/realm"

	"github.com/spf13/cobra"
)

func newRealmsCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "realms [project-dir]",
		Short: "List the discovered realms, modules and module paths",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := projectDir(args)
			cfg, _, err := loadConfig(cmd, app, flags, dir)
			if err != nil {
				return err
			}
			opts, err := orchestrator.OptionsFromConfig(cfg)
			if err != nil {
				return err
			}
			project, err := orchestrator.New(dir, opts)
			if err != nil {
				return err
			}
			renderRealms(app.stdout, project)
			return nil
		},
	}
}

func renderRealms(w io.Writer, project *orchestrator.Project) {
	opts := project.Options()
	fmt.Fprintln(w, TitleStyle.Render("Realms")+SubtitleStyle.Render(fmt.Sprintf(" of %s %s", opts.Project, opts.Version)))
	fmt.Fprintln(w)
	for _, r := range project.Realms() {
		fmt.Fprintf(w, "  %s %s\n", KeyStyle.Render(r.Name()), filepath.ToSlash(r.Source()))
		fmt.Fprintf(w, "    %s %s\n", SubtitleStyle.Render("modules:"), strings.Join(r.Modules(), ", "))
		for _, phase := range realm.Phases() {
			fmt.Fprintf(w, "    %s %s\n", SubtitleStyle.Render(phase.String()+":"), renderPath(project.Home(), r.ModulePath(phase)))
		}
	}
}

func renderPath(home string, paths []string) string {
	if len(paths) == 0 {
		return SubtitleStyle.Render("(empty)")
	}
	rel := make([]string, 0, len(paths))
	for _, p := range paths {
		if r, err := filepath.Rel(home, p); err == nil {
			p = r
		}
		rel = append(rel, filepath.ToSlash(p))
	}
	return strings.Join(rel, string(filepath.ListSeparator))
}
