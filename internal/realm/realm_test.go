// SPDX-License-Identifier: MPL-2.0

package realm_test

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/invowk/realmake/internal/realm"
	"github.com/invowk/realmake/internal/testutil"
)

func TestOfProbesSourceCandidates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		dirs   []string
		source string
	}{
		{name: "src realm java", dirs: []string{"src/main/java/a", "src/main/b", "main/c"}, source: "src/main/java"},
		{name: "src realm", dirs: []string{"src/main/b", "main/c"}, source: "src/main"},
		{name: "bare realm", dirs: []string{"main/c"}, source: "main"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := testutil.NewProject(t)
			for _, d := range tt.dirs {
				p.Dir(d)
			}
			r, err := realm.Of(realm.Main, p.Home)
			if err != nil {
				t.Fatalf("Of() error = %v", err)
			}
			if r.Source() != filepath.FromSlash(tt.source) {
				t.Errorf("Source() = %q, want %q", r.Source(), tt.source)
			}
		})
	}
}

func TestOfNotFound(t *testing.T) {
	t.Parallel()

	_, err := realm.Of(realm.Test, t.TempDir())
	if !errors.Is(err, realm.ErrRealmNotFound) {
		t.Fatalf("Of() error = %v, want ErrRealmNotFound", err)
	}
	var nf *realm.NotFoundError
	if !errors.As(err, &nf) || nf.Name != realm.Test || len(nf.Candidates) != 3 {
		t.Errorf("NotFoundError = %+v", nf)
	}
}

func TestModulesAreSorted(t *testing.T) {
	t.Parallel()

	p := testutil.NewProject(t).Module("main", "zeta").Module("main", "alpha").Module("main", "mid")
	p.File("src/main/java/README.md", "not a module")

	r, err := realm.Of(realm.Main, p.Home)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"alpha", "mid", "zeta"}; !slices.Equal(r.Modules(), want) {
		t.Errorf("Modules() = %v, want %v", r.Modules(), want)
	}
	if err := r.RequireModules(); err != nil {
		t.Errorf("RequireModules() = %v", err)
	}
}

func TestEmptyModuleSet(t *testing.T) {
	t.Parallel()

	p := testutil.NewProject(t).Dir("src/main/java")
	r, err := realm.Of(realm.Main, p.Home)
	if err != nil {
		t.Fatalf("Of() error = %v", err)
	}
	if err := r.RequireModules(); !errors.Is(err, realm.ErrEmptyModuleSet) {
		t.Fatalf("RequireModules() = %v, want ErrEmptyModuleSet", err)
	}
}

func TestLayout(t *testing.T) {
	t.Parallel()

	p := testutil.NewProject(t).Module("main", "a")
	r, err := realm.Of(realm.Main, p.Home)
	if err != nil {
		t.Fatal(err)
	}

	work := p.Path("work", "main")
	checks := map[string]string{
		"Target":               r.Target(),
		"CompiledModules":      r.CompiledModules(),
		"CompiledJavadoc":      r.CompiledJavadoc(),
		"CompiledMultiRelease": r.CompiledMultiRelease(),
		"CompiledRelease(11)":  r.CompiledRelease(11),
		"PackagedModules":      r.PackagedModules(),
		"PackagedSources":      r.PackagedSources(),
		"PackagedJavadoc":      r.PackagedJavadoc(),
		"ReportsDir":           r.ReportsDir(),
	}
	want := map[string]string{
		"Target":               work,
		"CompiledModules":      filepath.Join(work, "compiled", "modules"),
		"CompiledJavadoc":      filepath.Join(work, "compiled", "javadoc"),
		"CompiledMultiRelease": filepath.Join(work, "compiled", "multi-release"),
		"CompiledRelease(11)":  filepath.Join(work, "compiled", "multi-release", "java-11"),
		"PackagedModules":      filepath.Join(work, "modules"),
		"PackagedSources":      filepath.Join(work, "sources"),
		"PackagedJavadoc":      filepath.Join(work, "javadoc"),
		"ReportsDir":           filepath.Join(work, "junit-reports"),
	}
	for name, got := range checks {
		if got != want[name] {
			t.Errorf("%s = %q, want %q", name, got, want[name])
		}
	}
	if r.CompileOnly() || r.ContainsTests() {
		t.Error("main realm must package and contain no tests")
	}
	if r.String() != "Realm{name=main, source=src/main/java}" {
		t.Errorf("String() = %q", r.String())
	}
}

func TestModulePathOrdering(t *testing.T) {
	t.Parallel()

	p := testutil.NewProject(t).
		Module("main", "a").
		Module("test", "check").
		Dir("lib/main").
		Dir("lib/main-runtime-only").
		Dir("lib/test").
		Dir("lib/test-compile-only")

	mainRealm, err := realm.Of(realm.Main, p.Home)
	if err != nil {
		t.Fatal(err)
	}
	testRealm, err := realm.Of(realm.Test, p.Home, mainRealm)
	if err != nil {
		t.Fatal(err)
	}

	lib := func(name string) string { return p.Path("lib", name) }

	if got, want := mainRealm.ModulePath(realm.PhaseCompile), []string{lib("main")}; !slices.Equal(got, want) {
		t.Errorf("main compile = %v, want %v", got, want)
	}
	if got, want := mainRealm.ModulePath(realm.PhaseRuntime), []string{lib("main"), lib("main-runtime-only")}; !slices.Equal(got, want) {
		t.Errorf("main runtime = %v, want %v", got, want)
	}

	wantCompile := []string{lib("test"), lib("test-compile-only"), mainRealm.PackagedModules(), lib("main")}
	if got := testRealm.ModulePath(realm.PhaseCompile); !slices.Equal(got, wantCompile) {
		t.Errorf("test compile = %v, want %v", got, wantCompile)
	}
	wantRuntime := []string{lib("test"), mainRealm.PackagedModules(), lib("main"), lib("main-runtime-only")}
	if got := testRealm.ModulePath(realm.PhaseRuntime); !slices.Equal(got, wantRuntime) {
		t.Errorf("test runtime = %v, want %v", got, wantRuntime)
	}
	if !testRealm.CompileOnly() || !testRealm.ContainsTests() {
		t.Error("test realm must be compile-only and contain tests")
	}
}

func TestModulePathKeepsDuplicates(t *testing.T) {
	t.Parallel()

	p := testutil.NewProject(t).Module("main", "a").Module("api", "x").Module("it", "y").Dir("lib/main")
	mainRealm, _ := realm.Of(realm.Main, p.Home)
	api, _ := realm.Of("api", p.Home, mainRealm)
	it, err := realm.Of("it", p.Home, mainRealm, api)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		mainRealm.PackagedModules(), p.Path("lib", "main"),
		api.PackagedModules(), mainRealm.PackagedModules(), p.Path("lib", "main"),
	}
	if got := it.ModulePath(realm.PhaseCompile); !slices.Equal(got, want) {
		t.Errorf("ModulePath() = %v, want %v", got, want)
	}
}

func TestLibraryCandidates(t *testing.T) {
	t.Parallel()

	p := testutil.NewProject(t).Module("main", "a")
	r, _ := realm.Of(realm.Main, p.Home)
	want := []string{p.Path("lib", "main"), p.Path("lib", "main-compile-only"), p.Path("lib", "main-runtime-only")}
	if got := r.LibraryCandidates(); !slices.Equal(got, want) {
		t.Errorf("LibraryCandidates() = %v, want %v", got, want)
	}
}

func TestPhaseValidate(t *testing.T) {
	t.Parallel()

	for _, p := range realm.Phases() {
		if err := p.Validate(); err != nil {
			t.Errorf("%s.Validate() = %v", p, err)
		}
	}
	if err := realm.Phase("link").Validate(); !errors.Is(err, realm.ErrInvalidPhase) {
		t.Errorf("Validate(link) = %v, want ErrInvalidPhase", err)
	}
}
