// SPDX-License-Identifier: MPL-2.0

package orchestrator

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/invowk/realmake/internal/fetch"
	"github.com/invowk/realmake/internal/issue"
	"github.com/invowk/realmake/internal/realm"
	"github.com/invowk/realmake/internal/run"
	"github.com/invowk/realmake/internal/scan"
)

// assemble downloads the external modules listed by the descriptor files in
// the library directories of rl. Each artifact lands next to its descriptor.
func (p *Project) assemble(ctx context.Context, r *run.Run, rl *realm.Realm) error {
	r.Debugf("Assembling assets for %s realm...", rl.Name())
	downloaded := 0
	for _, candidate := range rl.LibraryCandidates() {
		if !scan.IsDir(candidate) {
			continue
		}
		descriptors, err := scan.ListNamed(candidate, fetch.DescriptorFileName)
		if err != nil {
			return err
		}
		for _, path := range descriptors {
			entries, err := fetch.ReadDescriptors(path, p.home)
			if err != nil {
				return err
			}
			dir := filepath.Dir(path)
			r.Debugf("Resolving %d modules in %s", len(entries), dir)
			for _, entry := range entries {
				r.Debugf(" o %s", entry.URI)
				if _, err := p.fetcher.Download(ctx, p.opts.Offline, dir, entry.URI); err != nil {
					return err
				}
				downloaded++
			}
		}
	}
	r.Debugf("Downloaded %d modules.", downloaded)
	r.Debugf("Assembled assets for %s realm.", rl.Name())
	return nil
}

func (p *Project) wrapAssembly(rl *realm.Realm, err error) error {
	ec := issue.NewErrorContext().
		WithOperation("assemble assets").
		WithResource(rl.Name()).
		Wrap(err)
	if errors.Is(err, fetch.ErrOfflineMissingArtifact) {
		ec.WithSuggestion("Run once without --offline to populate the library directories")
	}
	return ec.BuildError()
}
