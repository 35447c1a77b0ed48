// SPDX-License-Identifier: MPL-2.0

package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invowk/realmake/internal/args"
	"github.com/invowk/realmake/internal/builder"
	"github.com/invowk/realmake/internal/issue"
	"github.com/invowk/realmake/internal/realm"
	"github.com/invowk/realmake/internal/run"
	"github.com/invowk/realmake/internal/scan"
	"github.com/invowk/realmake/internal/toolchain"
)

// firstDocumentedRelease is the lowest layer release whose sources join the
// documentation module source path.
const firstDocumentedRelease = 7

// buildRealms builds the realms in order. A realm without a source root ends
// the step early; the realms after it are not built.
func (p *Project) buildRealms(ctx context.Context, r *run.Run, release int) error {
	for _, rl := range p.realms {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !scan.IsDir(rl.SourceDir()) {
			r.Warnf("Source path of %s realm not found: %s", rl.Name(), rl.SourceDir())
			return nil
		}
		if err := rl.RequireModules(); err != nil {
			return issue.NewErrorContext().
				WithOperation("build realm").
				WithResource(rl.Name()).
				WithSuggestion(fmt.Sprintf("Add a module directory below %s", rl.SourceDir())).
				Wrap(err).
				BuildError()
		}
		if err := p.assemble(ctx, r, rl); err != nil {
			return p.wrapAssembly(rl, err)
		}
		settings := builder.Settings{
			Run:          r,
			Realm:        rl,
			Version:      p.opts.Version,
			Release:      release,
			JavacOptions: p.opts.JavacOptions,
		}
		if err := builder.BuildAll(ctx, rl, builder.Chain(settings)); err != nil {
			return issue.WrapWithContext(err, "build realm", rl.Name())
		}
	}
	return nil
}

// junit launches the test engine once per realm containing tests.
func (p *Project) junit(ctx context.Context, r *run.Run) error {
	for _, rl := range p.realms {
		if !rl.ContainsTests() {
			continue
		}
		if !scan.IsDir(rl.CompiledModules()) {
			r.Debugf("Skipping JUnit of %s realm, nothing was compiled: %s", rl.Name(), rl.CompiledModules())
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		modulePath := append([]string{rl.CompiledModules()}, rl.ModulePath(realm.PhaseRuntime)...)
		a := args.New().
			WithPaths("--module-path", modulePath).
			With("--add-modules", strings.Join(rl.Modules(), ",")).
			WithEach(p.opts.TestJavaOptions).
			With("--module", p.opts.EngineModule).
			With("--fail-if-no-tests").
			With("--reports-dir", rl.ReportsDir()).
			With("--scan-modules")
		r.Infof("JUnit: %s", a)

		code, err := r.Launch(ctx, toolchain.Java, a)
		if err != nil {
			err = &toolchain.ToolInvocationError{Tool: toolchain.Java, Code: code, Cause: err}
			return issue.WrapWithContext(err, "launch test engine", rl.Name())
		}
		if !code.IsSuccess() {
			return issue.NewErrorContext().
				WithOperation("run tests").
				WithResource(rl.Name()).
				WithSuggestion(fmt.Sprintf("Inspect the reports in %s", rl.ReportsDir())).
				Wrap(&TestRunFailureError{Realm: rl.Name(), Code: code}).
				BuildError()
		}
	}
	return nil
}

// document generates the API documentation of rl and archives it.
func (p *Project) document(ctx context.Context, r *run.Run, release int) error {
	rl := p.main
	if !scan.IsDir(rl.SourceDir()) || len(rl.Modules()) == 0 {
		return nil
	}
	sourcePath := []string{rl.SourceDir()}
	for n := firstDocumentedRelease; n <= release; n++ {
		sourcePath = append(sourcePath, filepath.Join(rl.SourceDir(), "*", fmt.Sprintf("java-%d", n)))
	}
	compile := rl.ModulePath(realm.PhaseCompile)

	javadoc := args.New(
		"-encoding", "UTF-8",
		"-quiet",
		"-windowtitle", p.opts.Project+" "+p.opts.Version,
		"-d", rl.CompiledJavadoc(),
	).
		WithPaths("--module-source-path", sourcePath).
		With("--module", strings.Join(rl.Modules(), ",")).
		WithIf(len(compile) > 0, "--module-path", args.JoinPaths(compile)).
		WithEach(p.opts.JavadocOptions)
	if err := r.Tool(ctx, toolchain.Javadoc, javadoc); err != nil {
		return err
	}

	if err := os.MkdirAll(rl.PackagedJavadoc(), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", rl.PackagedJavadoc(), err)
	}
	file := filepath.Join(rl.PackagedJavadoc(), p.opts.Project+"-"+p.opts.Version+"-javadoc.jar")
	jar := args.New().
		WithIf(r.Debug(), "--verbose").
		With("--create", "--file", file, "-C", rl.CompiledJavadoc(), ".")
	return r.Tool(ctx, toolchain.Jar, jar)
}

// summary logs the packaged archives of the main realm and records the
// build report. In debug mode the dependency analyser runs on them.
func (p *Project) summary(ctx context.Context, r *run.Run, release int) (*Report, error) {
	rl := p.main
	jars, err := scan.ListArchives(rl.PackagedModules())
	if err != nil {
		return nil, err
	}
	for _, jar := range jars {
		r.Infof("  -> %s", filepath.Base(jar))
	}

	if r.Debug() && len(jars) > 0 {
		modulePath := append([]string{rl.PackagedModules()}, rl.ModulePath(realm.PhaseRuntime)...)
		jdeps := args.New().
			WithPaths("--module-path", modulePath).
			With("--add-modules", strings.Join(rl.Modules(), ",")).
			With("--multi-release", "base").
			With("-summary")
		if err := r.Tool(ctx, toolchain.Jdeps, jdeps); err != nil {
			return nil, err
		}
	}

	report, err := p.report(r, release)
	if err != nil {
		return nil, err
	}
	if err := report.Write(filepath.Join(p.home, realm.WorkDir, ReportFileName)); err != nil {
		return nil, err
	}
	return report, nil
}
