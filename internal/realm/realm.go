// SPDX-License-Identifier: MPL-2.0

// Package realm models a named source scope (main, test) of a project: its
// modules, where its sources live, where its outputs go and which module
// path each build phase sees.
package realm

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/invowk/realmake/internal/scan"
)

const (
	// Main is the production realm.
	Main = "main"
	// Test is the test realm. It requires Main.
	Test = "test"

	// PhaseCompile selects the compile module path.
	PhaseCompile Phase = "compile"
	// PhaseRuntime selects the runtime module path.
	PhaseRuntime Phase = "runtime"

	// WorkDir is the target root below the project home.
	WorkDir = "work"
	// LibDir is the library root below the project home.
	LibDir = "lib"
)

var (
	// ErrRealmNotFound is the sentinel error wrapped by NotFoundError.
	ErrRealmNotFound = errors.New("realm not found")
	// ErrEmptyModuleSet is the sentinel error wrapped by EmptyModuleSetError.
	ErrEmptyModuleSet = errors.New("empty module set")
	// ErrRealmCycle is returned by Order when realm requirements form a cycle.
	ErrRealmCycle = errors.New("realm cycle")
	// ErrInvalidPhase is the sentinel error wrapped by InvalidPhaseError.
	ErrInvalidPhase = errors.New("invalid phase")
)

type (
	// Phase names a build phase with its own module path.
	Phase string

	// InvalidPhaseError is returned when a Phase value is not recognized.
	InvalidPhaseError struct {
		Value Phase
	}

	// NotFoundError is returned when none of the conventional source roots
	// of a realm exists.
	NotFoundError struct {
		Name       string
		Home       string
		Candidates []string
	}

	// EmptyModuleSetError is returned when a realm's source root has no
	// module directories.
	EmptyModuleSetError struct {
		Name   string
		Source string
	}

	// Realm is immutable after Of returns.
	Realm struct {
		name     string
		home     string
		source   string
		modules  []string
		required []*Realm
		paths    map[Phase][]string

		target               string
		compiledModules      string
		compiledJavadoc      string
		compiledMultiRelease string
		packagedModules      string
		packagedSources      string
		packagedJavadoc      string
	}
)

func (e *InvalidPhaseError) Error() string {
	return fmt.Sprintf("invalid phase %q (valid: compile, runtime)", e.Value)
}

func (e *InvalidPhaseError) Unwrap() error { return ErrInvalidPhase }

// Validate returns an error if the phase is not recognized.
func (p Phase) Validate() error {
	switch p {
	case PhaseCompile, PhaseRuntime:
		return nil
	default:
		return &InvalidPhaseError{Value: p}
	}
}

func (p Phase) String() string { return string(p) }

// Phases lists every phase in a fixed order.
func Phases() []Phase { return []Phase{PhaseCompile, PhaseRuntime} }

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("couldn't find module source path of realm %q in %s (tried %s)",
		e.Name, e.Home, strings.Join(e.Candidates, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrRealmNotFound }

func (e *EmptyModuleSetError) Error() string {
	return fmt.Sprintf("no modules found in source path of realm %q: %s", e.Name, e.Source)
}

func (e *EmptyModuleSetError) Unwrap() error { return ErrEmptyModuleSet }

// SourceCandidates returns the conventional source roots of a realm, in
// lookup order, relative to the project home.
func SourceCandidates(name string) []string {
	return []string{
		filepath.Join("src", name, "java"),
		filepath.Join("src", name),
		name,
	}
}

// Of locates the source root of the named realm below home and computes its
// layout and module paths. Modules are the sorted names of the source root's
// immediate subdirectories; an empty set is not an error here (see
// RequireModules).
func Of(name, home string, required ...*Realm) (*Realm, error) {
	candidates := SourceCandidates(name)
	sourceDir, ok := scan.FindFirstDirectory(home, candidates...)
	if !ok {
		return nil, &NotFoundError{Name: name, Home: home, Candidates: candidates}
	}
	source, err := filepath.Rel(home, sourceDir)
	if err != nil {
		source = sourceDir
	}
	modules, err := scan.ListDirectoryNames(sourceDir)
	if err != nil {
		return nil, err
	}

	r := &Realm{
		name:     name,
		home:     home,
		source:   source,
		modules:  modules,
		required: slices.Clone(required),
	}
	r.layout(filepath.Join(home, WorkDir))
	r.paths = map[Phase][]string{
		PhaseCompile: modulePath(name, home, PhaseCompile, required),
		PhaseRuntime: modulePath(name, home, PhaseRuntime, required),
	}
	return r, nil
}

func (r *Realm) layout(targetRoot string) {
	r.target = filepath.Join(targetRoot, r.name)
	compiled := filepath.Join(r.target, "compiled")
	r.compiledModules = filepath.Join(compiled, "modules")
	r.compiledJavadoc = filepath.Join(compiled, "javadoc")
	r.compiledMultiRelease = filepath.Join(compiled, "multi-release")
	r.packagedModules = filepath.Join(r.target, "modules")
	r.packagedSources = filepath.Join(r.target, "sources")
	r.packagedJavadoc = filepath.Join(r.target, "javadoc")
}

// modulePath lists the realm's own existing library directories followed by,
// for each required realm in order, its packaged modules directory and its
// module path for the same phase. Duplicates are kept.
func modulePath(name, home string, phase Phase, required []*Realm) []string {
	var result []string
	for _, candidate := range []string{name, name + "-" + string(phase) + "-only"} {
		lib := filepath.Join(home, LibDir, candidate)
		if scan.IsDir(lib) {
			result = append(result, lib)
		}
	}
	for _, req := range required {
		result = append(result, req.packagedModules)
		result = append(result, req.paths[phase]...)
	}
	return result
}

// Name returns the logical realm name.
func (r *Realm) Name() string { return r.name }

// Home returns the project root.
func (r *Realm) Home() string { return r.home }

// Source returns the source root relative to Home.
func (r *Realm) Source() string { return r.source }

// SourceDir returns the absolute source root.
func (r *Realm) SourceDir() string { return filepath.Join(r.home, r.source) }

// Modules returns a copy of the sorted module names.
func (r *Realm) Modules() []string { return slices.Clone(r.modules) }

// Required returns the realms this realm depends on, in declaration order.
func (r *Realm) Required() []*Realm { return slices.Clone(r.required) }

// RequireModules fails with *EmptyModuleSetError when the realm has no modules.
func (r *Realm) RequireModules() error {
	if len(r.modules) == 0 {
		return &EmptyModuleSetError{Name: r.name, Source: r.source}
	}
	return nil
}

// ModulePath returns a copy of the module path of phase. An unknown phase
// yields nil.
func (r *Realm) ModulePath(phase Phase) []string { return slices.Clone(r.paths[phase]) }

// LibraryCandidates returns the realm's own library directories, existing
// or not: lib/<realm>, lib/<realm>-compile-only and lib/<realm>-runtime-only.
func (r *Realm) LibraryCandidates() []string {
	libs := []string{filepath.Join(r.home, LibDir, r.name)}
	for _, phase := range Phases() {
		libs = append(libs, filepath.Join(r.home, LibDir, r.name+"-"+string(phase)+"-only"))
	}
	return libs
}

// CompileOnly reports whether packaging is skipped for this realm.
func (r *Realm) CompileOnly() bool { return r.name == Test }

// ContainsTests reports whether the realm's modules are run by the test launcher.
func (r *Realm) ContainsTests() bool { return r.name == Test }

// Target returns work/<realm>.
func (r *Realm) Target() string { return r.target }

// CompiledModules returns work/<realm>/compiled/modules.
func (r *Realm) CompiledModules() string { return r.compiledModules }

// CompiledJavadoc returns work/<realm>/compiled/javadoc.
func (r *Realm) CompiledJavadoc() string { return r.compiledJavadoc }

// CompiledMultiRelease returns work/<realm>/compiled/multi-release.
func (r *Realm) CompiledMultiRelease() string { return r.compiledMultiRelease }

// CompiledRelease returns work/<realm>/compiled/multi-release/java-<release>.
func (r *Realm) CompiledRelease(release int) string {
	return filepath.Join(r.compiledMultiRelease, fmt.Sprintf("java-%d", release))
}

// PackagedModules returns work/<realm>/modules.
func (r *Realm) PackagedModules() string { return r.packagedModules }

// PackagedSources returns work/<realm>/sources.
func (r *Realm) PackagedSources() string { return r.packagedSources }

// PackagedJavadoc returns work/<realm>/javadoc.
func (r *Realm) PackagedJavadoc() string { return r.packagedJavadoc }

// ReportsDir returns work/<realm>/junit-reports.
func (r *Realm) ReportsDir() string { return filepath.Join(r.target, "junit-reports") }

// String renders the realm the way dry runs log it.
func (r *Realm) String() string {
	return fmt.Sprintf("Realm{name=%s, source=%s}", r.name, filepath.ToSlash(r.source))
}
