// SPDX-License-Identifier: MPL-2.0

package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invowk/realmake/internal/realm"
	"github.com/invowk/realmake/internal/scan"
	"github.com/invowk/realmake/internal/toolchain"
)

// Default builds modules laid out as <source>/<module>/module-info.java. It
// claims every pending module and compiles them in one compiler call.
type Default struct {
	s Settings
}

// NewDefault creates the default builder.
func NewDefault(s Settings) *Default { return &Default{s: s} }

// Name implements Builder.
func (b *Default) Name() string { return "default" }

// Build compiles all pending modules and, unless the realm is compile-only,
// packages a binary and a sources archive per module.
func (b *Default) Build(ctx context.Context, pending []string) ([]string, error) {
	r := b.s.Realm
	b.s.Run.Debugf("Building %d module(s): %v", len(pending), pending)

	javac := b.s.javac().
		With("-d", r.CompiledModules()).
		With("--module-version", b.s.Version).
		With("--module-source-path", r.SourceDir()).
		With("--module", strings.Join(pending, ","))
	var modulePath []string
	if scan.Exists(r.PackagedModules()) {
		modulePath = append(modulePath, r.PackagedModules())
	}
	modulePath = append(modulePath, r.ModulePath(realm.PhaseCompile)...)
	if len(modulePath) > 0 {
		javac.WithPaths("--module-path", modulePath)
	}
	if err := b.s.Run.Tool(ctx, toolchain.Javac, javac); err != nil {
		return nil, err
	}

	if r.CompileOnly() {
		return pending, nil
	}
	for _, module := range pending {
		if err := b.jarModule(ctx, module); err != nil {
			return nil, fmt.Errorf("building module %s failed: %w", module, err)
		}
		if err := b.jarSources(ctx, module); err != nil {
			return nil, fmt.Errorf("building module %s failed: %w", module, err)
		}
	}
	return pending, nil
}

func (b *Default) jarModule(ctx context.Context, module string) error {
	r := b.s.Realm
	if err := os.MkdirAll(r.PackagedModules(), 0o755); err != nil {
		return err
	}
	file := filepath.Join(r.PackagedModules(), b.s.archiveName(module, ""))
	jar := b.s.jar(file).With("-C", filepath.Join(r.CompiledModules(), module), ".")
	return b.s.Run.Tool(ctx, toolchain.Jar, jar)
}

func (b *Default) jarSources(ctx context.Context, module string) error {
	r := b.s.Realm
	if err := os.MkdirAll(r.PackagedSources(), 0o755); err != nil {
		return err
	}
	file := filepath.Join(r.PackagedSources(), b.s.archiveName(module, "-sources"))
	jar := b.s.jar(file).With("-C", filepath.Join(r.SourceDir(), module), ".")
	return b.s.Run.Tool(ctx, toolchain.Jar, jar)
}
