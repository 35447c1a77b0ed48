// SPDX-License-Identifier: MPL-2.0

package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/invowk/realmake/internal/run"
	"github.com/invowk/realmake/internal/scan"

	"github.com/pelletier/go-toml/v2"
)

// ReportFileName is the build report written below the work directory.
const ReportFileName = "build-report.toml"

type (
	// Report records the outcome of a successful build.
	Report struct {
		Project  string        `toml:"project"`
		Version  string        `toml:"version"`
		Release  int           `toml:"release"`
		Duration int64         `toml:"duration_ms"`
		Realms   []RealmReport `toml:"realm"`
	}

	// RealmReport describes one built realm.
	RealmReport struct {
		Name     string   `toml:"name"`
		Source   string   `toml:"source"`
		Modules  []string `toml:"modules"`
		Archives []string `toml:"archives,omitempty"`
	}
)

func (p *Project) report(r *run.Run, release int) (*Report, error) {
	rep := &Report{
		Project:  p.opts.Project,
		Version:  p.opts.Version,
		Release:  release,
		Duration: r.Duration().Milliseconds(),
	}
	for _, rl := range p.realms {
		jars, err := scan.ListArchives(rl.PackagedModules(), rl.PackagedSources(), rl.PackagedJavadoc())
		if err != nil {
			return nil, err
		}
		archives := make([]string, 0, len(jars))
		for _, jar := range jars {
			rel, err := filepath.Rel(p.home, jar)
			if err != nil {
				rel = jar
			}
			archives = append(archives, filepath.ToSlash(rel))
		}
		rep.Realms = append(rep.Realms, RealmReport{
			Name:     rl.Name(),
			Source:   filepath.ToSlash(rl.Source()),
			Modules:  rl.Modules(),
			Archives: archives,
		})
	}
	return rep, nil
}

// Write stores the report at path.
func (rep *Report) Write(path string) error {
	data, err := toml.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encode build report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write build report: %w", err)
	}
	return nil
}

// ReadReport loads a report written by Write.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read build report: %w", err)
	}
	var rep Report
	if err := toml.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("decode build report: %w", err)
	}
	return &rep, nil
}
