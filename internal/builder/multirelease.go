// SPDX-License-Identifier: MPL-2.0

package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/invowk/realmake/internal/args"
	"github.com/invowk/realmake/internal/realm"
	"github.com/invowk/realmake/internal/scan"
	"github.com/invowk/realmake/internal/toolchain"

	"github.com/charmbracelet/log"
)

// moduleRelease is the first release that compiles with module semantics.
const moduleRelease = 9

// MultiRelease builds modules whose immediate subdirectories are all
// release layers named java-<N>. Each layer is compiled for its release and
// packaged into one multi-release archive: the base (lowest) layer as the
// default entries, every higher layer under its release section.
type MultiRelease struct {
	s Settings
}

// NewMultiRelease creates the multi-release builder.
func NewMultiRelease(s Settings) *MultiRelease { return &MultiRelease{s: s} }

// Name implements Builder.
func (b *MultiRelease) Name() string { return "multi-release" }

// Build builds every eligible pending module one at a time.
func (b *MultiRelease) Build(ctx context.Context, pending []string) ([]string, error) {
	var built []string
	for _, module := range pending {
		ok, err := b.build(ctx, module)
		if err != nil {
			return nil, err
		}
		if ok {
			built = append(built, module)
		}
	}
	return built, nil
}

func (b *MultiRelease) build(ctx context.Context, module string) (bool, error) {
	names, err := scan.ListDirectoryNames(filepath.Join(b.s.Realm.SourceDir(), module))
	if err != nil {
		return false, err
	}
	layers, err := ParseLayers(module, names)
	if err != nil {
		var mixed *MixedLayoutError
		if errors.As(err, &mixed) {
			b.s.Run.Logw(log.WarnLevel, "Not a multi-release module, leaving it to the next builder",
				"realm", b.s.Realm.Name(), "module", module, "reason", err)
			return false, nil
		}
		return false, err
	}
	if layers == nil {
		return false, nil
	}

	base := layers.Base()
	if base > b.s.Release {
		return false, fmt.Errorf("module %s: base release %d is above the platform feature version %d",
			module, base, b.s.Release)
	}
	b.s.Run.Debugf("Building multi-release module: %s (releases %d..%d)", module, base, b.s.Release)
	for release := base; release <= b.s.Release; release++ {
		if err := b.compile(ctx, module, base, release); err != nil {
			return false, err
		}
	}
	if b.s.Realm.CompileOnly() {
		return true, nil
	}
	if err := b.jarModule(ctx, module, base); err != nil {
		return false, fmt.Errorf("building module %s failed: %w", module, err)
	}
	if err := b.jarSources(ctx, module, base); err != nil {
		return false, fmt.Errorf("building module %s failed: %w", module, err)
	}
	return true, nil
}

func (b *MultiRelease) layerDir(module string, release int) string {
	return filepath.Join(b.s.Realm.SourceDir(), module, layerName(release))
}

func (b *MultiRelease) compile(ctx context.Context, module string, base, release int) error {
	r := b.s.Realm
	source := b.layerDir(module, release)
	if !scan.IsDir(source) {
		b.s.Run.Debugf("Skipping %s, no source path exists: %s", layerName(release), source)
		return nil
	}
	destination := r.CompiledRelease(release)
	javac := b.s.javac().With("--release", release)

	if release < moduleRelease {
		files, err := scan.ListSourceFiles(source)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			if release == base {
				return &EmptyBaseLayerError{Module: module, Source: source}
			}
			b.s.Run.Debugf("Skipping %s, no source files found: %s", layerName(release), source)
			return nil
		}
		javac.With("-d", filepath.Join(destination, module)).WithEach(files)
		return b.s.Run.Tool(ctx, toolchain.Javac, javac)
	}

	javac.With("-d", destination).With("--module-version", b.s.Version)
	if modulePath := r.ModulePath(realm.PhaseCompile); len(modulePath) > 0 {
		javac.WithPaths("--module-path", modulePath)
	}
	javac.With("--module-source-path", args.JoinPaths([]string{
		filepath.Join(r.SourceDir(), "*", layerName(release)),
		r.SourceDir(),
	}))
	if release > base {
		javac.With("--patch-module", module+"="+filepath.Join(r.CompiledRelease(base), module))
	}
	javac.With("--module", module)
	return b.s.Run.Tool(ctx, toolchain.Javac, javac)
}

func (b *MultiRelease) jarModule(ctx context.Context, module string, base int) error {
	r := b.s.Realm
	if err := os.MkdirAll(r.PackagedModules(), 0o755); err != nil {
		return err
	}
	file := filepath.Join(r.PackagedModules(), b.s.archiveName(module, ""))
	jar := b.s.jar(file).With("-C", filepath.Join(r.CompiledRelease(base), module), ".")
	for release := base + 1; release <= b.s.Release; release++ {
		classes := filepath.Join(r.CompiledRelease(release), module)
		if !scan.IsDir(classes) {
			continue
		}
		jar.With("--release", release, "-C", classes, ".")
	}
	return b.s.Run.Tool(ctx, toolchain.Jar, jar)
}

func (b *MultiRelease) jarSources(ctx context.Context, module string, base int) error {
	r := b.s.Realm
	if err := os.MkdirAll(r.PackagedSources(), 0o755); err != nil {
		return err
	}
	file := filepath.Join(r.PackagedSources(), b.s.archiveName(module, "-sources"))
	jar := b.s.jar(file).With("-C", b.layerDir(module, base), ".")
	for release := base + 1; release <= b.s.Release; release++ {
		layer := b.layerDir(module, release)
		if !scan.IsDir(layer) {
			continue
		}
		jar.With("--release", release, "-C", layer, ".")
	}
	return b.s.Run.Tool(ctx, toolchain.Jar, jar)
}

func layerName(release int) string { return "java-" + strconv.Itoa(release) }
