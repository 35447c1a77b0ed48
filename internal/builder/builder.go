// SPDX-License-Identifier: MPL-2.0

// Package builder compiles and packages the modules of a realm.
//
// Builders are tried in priority order. Each claims the pending modules it
// knows how to build and returns the ones it built; the rest go to the next
// builder. Modules left over after every builder ran fail the build with
// *UnbuildableModulesError, so a partial build never passes silently.
package builder

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/invowk/realmake/internal/args"
	"github.com/invowk/realmake/internal/realm"
	"github.com/invowk/realmake/internal/run"
)

// ErrUnbuildableModules is the sentinel error wrapped by UnbuildableModulesError.
var ErrUnbuildableModules = errors.New("unbuildable modules")

type (
	// Builder builds a subset of the pending modules and returns the modules
	// it built. Modules it does not claim are left for the next builder.
	Builder interface {
		Name() string
		Build(ctx context.Context, pending []string) ([]string, error)
	}

	// Settings are shared by the builders of one realm.
	Settings struct {
		Run   *run.Run
		Realm *realm.Realm
		// Version is passed as --module-version and names the archives.
		Version string
		// Release is the platform feature version.
		Release int
		// JavacOptions are appended to every compiler call.
		JavacOptions []string
	}

	// UnbuildableModulesError names the modules no builder claimed.
	UnbuildableModulesError struct {
		Realm   string
		Modules []string
	}
)

func (e *UnbuildableModulesError) Error() string {
	return fmt.Sprintf("pending module list of realm %q is not empty: [%s]", e.Realm, strings.Join(e.Modules, ", "))
}

func (e *UnbuildableModulesError) Unwrap() error { return ErrUnbuildableModules }

// Chain returns the builders of s in priority order: multi-release first,
// since its eligibility test is stricter, then the default builder.
func Chain(s Settings) []Builder {
	return []Builder{NewMultiRelease(s), NewDefault(s)}
}

// BuildAll runs builders over the realm's modules until none are pending.
func BuildAll(ctx context.Context, r *realm.Realm, builders []Builder) error {
	pending := r.Modules()
	for _, b := range builders {
		if len(pending) == 0 {
			return nil
		}
		built, err := b.Build(ctx, slices.Clone(pending))
		if err != nil {
			return err
		}
		pending = slices.DeleteFunc(pending, func(m string) bool { return slices.Contains(built, m) })
	}
	if len(pending) > 0 {
		return &UnbuildableModulesError{Realm: r.Name(), Modules: pending}
	}
	return nil
}

// javac starts a compiler argument list with the options every compile gets.
func (s Settings) javac() *args.Args {
	return args.New("-encoding", "UTF-8", "-Xlint").WithEach(s.JavacOptions)
}

// jar starts an archiver argument list creating file.
func (s Settings) jar(file string) *args.Args {
	return args.New().WithIf(s.Run.Debug(), "--verbose").With("--create", "--file", file)
}

func (s Settings) archiveName(module, suffix string) string {
	return module + "-" + s.Version + suffix + ".jar"
}
