// SPDX-License-Identifier: MPL-2.0

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/invowk/realmake/internal/config"
	"github.com/invowk/realmake/internal/fetch"
	"github.com/invowk/realmake/internal/issue"
	"github.com/invowk/realmake/internal/realm"
	"github.com/invowk/realmake/internal/run"
	"github.com/invowk/realmake/internal/toolchain"
	"github.com/invowk/realmake/pkg/types"
)

type (
	// Options are the tunable inputs of one invocation.
	Options struct {
		Project string
		Version string
		DryRun  bool
		Offline bool
		// Release is the platform feature version; 0 detects it from the compiler.
		Release         int
		JavacOptions    []string
		JavadocOptions  []string
		TestJavaOptions []string
		EngineModule    string
		// GuidanceStyle is the glamour style used to render remediation
		// guidance after a failure in debug mode. Empty disables guidance.
		GuidanceStyle string
	}

	// Option customizes a Project.
	Option func(*Project)

	// Project is the discovered model of one project root.
	Project struct {
		home    string
		opts    Options
		main    *realm.Realm
		realms  []*realm.Realm
		skipped []error
		fetcher *fetch.Fetcher
	}
)

// WithFetcher replaces the artifact fetcher.
func WithFetcher(f *fetch.Fetcher) Option {
	return func(p *Project) { p.fetcher = f }
}

// OptionsFromConfig converts a loaded configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	javac, err := config.SplitOptions(cfg.Tools.JavacOptions)
	if err != nil {
		return Options{}, fmt.Errorf("tools.javac_options: %w", err)
	}
	javadoc, err := config.SplitOptions(cfg.Tools.JavadocOptions)
	if err != nil {
		return Options{}, fmt.Errorf("tools.javadoc_options: %w", err)
	}
	java, err := config.SplitOptions(cfg.Test.JavaOptions)
	if err != nil {
		return Options{}, fmt.Errorf("test.java_options: %w", err)
	}
	return Options{
		Project:         cfg.Project.Name,
		Version:         cfg.Project.Version,
		DryRun:          cfg.DryRun,
		Offline:         cfg.Offline,
		Release:         cfg.Java.Release,
		JavacOptions:    javac,
		JavadocOptions:  javadoc,
		TestJavaOptions: java,
		EngineModule:    cfg.Test.EngineModule,
	}, nil
}

// New discovers the realms below home. The main realm must exist; a missing
// test realm is recorded and skipped.
func New(home string, opts Options, options ...Option) (*Project, error) {
	abs, err := filepath.Abs(home)
	if err != nil {
		return nil, fmt.Errorf("resolve project home: %w", err)
	}
	if opts.Version == "" {
		opts.Version = config.DefaultVersion
	}
	if opts.Project == "" {
		opts.Project = filepath.Base(abs)
	}
	if opts.EngineModule == "" {
		opts.EngineModule = config.DefaultEngineModule
	}
	p := &Project{home: abs, opts: opts, fetcher: fetch.New()}
	for _, o := range options {
		o(p)
	}

	mainRealm, err := realm.Of(realm.Main, abs)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("discover main realm").
			WithResource(abs).
			WithSuggestion("Create src/main/java/<module>/module-info.java").
			Wrap(err).
			BuildError()
	}
	p.main = mainRealm
	discovered := []*realm.Realm{mainRealm}

	testRealm, err := realm.Of(realm.Test, abs, mainRealm)
	switch {
	case err == nil:
		discovered = append(discovered, testRealm)
	case errors.Is(err, realm.ErrRealmNotFound):
		p.skipped = append(p.skipped, err)
	default:
		return nil, err
	}

	if p.realms, err = realm.Order(discovered...); err != nil {
		return nil, issue.WrapWithContext(err, "order realms", abs)
	}
	return p, nil
}

// Home returns the absolute project root.
func (p *Project) Home() string { return p.home }

// Options returns the effective options.
func (p *Project) Options() Options { return p.opts }

// Realms returns the realms in build order.
func (p *Project) Realms() []*realm.Realm { return append([]*realm.Realm(nil), p.realms...) }

// Run performs the invocation and returns its exit code. Failures are logged
// with their error chain to the diagnostic sink.
func (p *Project) Run(ctx context.Context, r *run.Run) types.ExitCode {
	p.overview(r)
	if p.opts.DryRun {
		r.Infof("Dry-run ends here.")
		return types.ExitSuccess
	}

	if _, err := p.Build(ctx, r); err != nil {
		p.fail(r, err)
		return types.ExitFailure
	}
	r.Infof("Build successful after %d ms.", r.Duration().Milliseconds())
	return types.ExitSuccess
}

// overview logs the discovered model. Dry runs log it at INFO.
func (p *Project) overview(r *run.Run) {
	logf := r.Debugf
	if p.opts.DryRun {
		logf = r.Infof
	}
	logf("Building project '%s', version %s...", p.opts.Project, p.opts.Version)
	logf("  home = %s", p.home)
	for i, rl := range p.realms {
		logf("  realms[%d] = %s", i, rl)
	}
	for _, err := range p.skipped {
		r.Debugf("Skipped optional realm: %v", err)
	}
	if !config.IsSemanticVersion(p.opts.Version) {
		r.Warnf("Project version %q is not a semantic version", p.opts.Version)
	}
}

func (p *Project) fail(r *run.Run, err error) {
	r.Errorf("Build failed: %s", err)
	fmt.Fprintln(r.Err(), chain(err))
	if !r.Debug() || p.opts.GuidanceStyle == "" {
		return
	}
	if id, ok := guidance(err); ok {
		if rendered, renderErr := issue.Get(id).Render(p.opts.GuidanceStyle); renderErr == nil {
			fmt.Fprint(r.Err(), rendered)
		}
	}
}

// chain renders the numbered error chain. Actionable errors contribute
// their suggestions.
func chain(err error) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(true)
	}
	return issue.WrapWithContext(err, "build", "").Format(true)
}

// Build runs every stage and returns the build report.
func (p *Project) Build(ctx context.Context, r *run.Run) (*Report, error) {
	release, err := p.featureVersion(ctx, r)
	if err != nil {
		return nil, err
	}
	r.Debugf("  java = %d", release)

	if err := p.buildRealms(ctx, r, release); err != nil {
		return nil, err
	}
	if err := p.junit(ctx, r); err != nil {
		return nil, err
	}
	if err := p.document(ctx, r, release); err != nil {
		return nil, issue.WrapWithContext(err, "document realm", p.main.Name())
	}
	report, err := p.summary(ctx, r, release)
	if err != nil {
		return nil, issue.WrapWithContext(err, "summarize realm", p.main.Name())
	}
	return report, nil
}

func (p *Project) featureVersion(ctx context.Context, r *run.Run) (int, error) {
	if p.opts.Release > 0 {
		return p.opts.Release, nil
	}
	release, err := toolchain.DetectFeatureVersion(ctx, r.Runner())
	if err != nil {
		return 0, issue.NewErrorContext().
			WithOperation("detect platform feature version").
			WithSuggestion("Set java.release in realmake.cue or REALMAKE_JAVA_RELEASE").
			Wrap(err).
			BuildError()
	}
	return release, nil
}
