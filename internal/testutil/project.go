// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"fmt"
	"path/filepath"
	"testing"
)

// Project builds a project tree below a temporary directory.
type Project struct {
	t    testing.TB
	Home string
}

// NewProject creates an empty project in t.TempDir().
func NewProject(t testing.TB) *Project {
	t.Helper()
	return &Project{t: t, Home: t.TempDir()}
}

// Path joins elements below Home.
func (p *Project) Path(elem ...string) string {
	return filepath.Join(append([]string{p.Home}, elem...)...)
}

// File writes a file below Home.
func (p *Project) File(rel, content string) *Project {
	p.t.Helper()
	MustWriteFile(p.t, p.Path(filepath.FromSlash(rel)), content)
	return p
}

// Dir creates a directory below Home.
func (p *Project) Dir(rel string) *Project {
	p.t.Helper()
	MustMkdirAll(p.t, p.Path(filepath.FromSlash(rel)), 0o755)
	return p
}

// Module creates a flat module src/<realm>/java/<name> with a module
// descriptor and one class.
func (p *Project) Module(realm, name string) *Project {
	p.t.Helper()
	root := "src/" + realm + "/java/" + name
	p.File(root+"/module-info.java", fmt.Sprintf("module %s {}\n", name))
	p.File(root+"/"+name+"/Main.java", fmt.Sprintf("package %s;\nclass Main {}\n", name))
	return p
}

// MultiReleaseModule creates src/<realm>/java/<name>/java-<N> for every
// release, each with one class. Releases of 9 and above get a module
// descriptor.
func (p *Project) MultiReleaseModule(realm, name string, releases ...int) *Project {
	p.t.Helper()
	root := "src/" + realm + "/java/" + name
	for _, release := range releases {
		layer := fmt.Sprintf("%s/java-%d", root, release)
		p.File(layer+"/"+name+"/Version.java", fmt.Sprintf("package %s;\nclass Version { int v = %d; }\n", name, release))
		if release >= 9 {
			p.File(layer+"/module-info.java", fmt.Sprintf("module %s {}\n", name))
		}
	}
	return p
}
