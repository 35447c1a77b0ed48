// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Id identifies a catalog entry.
type Id int

const (
	RealmNotFoundId Id = iota + 1
	EmptyModuleSetId
	UnbuildableModulesId
	ToolNotFoundId
	ToolInvocationFailedId
	TestRunFailedId
	OfflineArtifactMissingId
	ConfigLoadFailedId
	RealmCycleId
)

type (
	// MarkdownMsg is Markdown guidance text.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is a catalog entry of remediation guidance.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		extLinks []HttpLink
	}
)

func (i *Issue) Id() Id { return i.id }

func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

func (i *Issue) ExtLinks() []HttpLink { return slices.Clone(i.extLinks) }

// Render renders the guidance with the given glamour style ("dark", "light",
// "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	realmNotFoundIssue = &Issue{
		id: RealmNotFoundId,
		mdMsg: `
# Realm source directory not found

No source root exists for the realm. It is searched for in this order:

1. ` + "`src/<realm>/java`" + `
2. ` + "`src/<realm>`" + `
3. ` + "`<realm>`" + `

## Things you can try
- Run the build from the project root.
- Create ` + "`src/main/java/<module>/module-info.java`" + ` for at least one module.`,
	}

	emptyModuleSetIssue = &Issue{
		id: EmptyModuleSetId,
		mdMsg: `
# Realm contains no modules

The realm's source root exists but has no subdirectories. Every subdirectory of
the source root is treated as one module.`,
	}

	unbuildableModulesIssue = &Issue{
		id: UnbuildableModulesId,
		mdMsg: `
# Some modules were not claimed by any builder

A module is built by the multi-release builder when all of its subdirectories
are named ` + "`java-N`" + `, and by the default builder otherwise. Check for
modules mixing ` + "`java-N`" + ` layers with plain package directories.`,
	}

	toolNotFoundIssue = &Issue{
		id: ToolNotFoundId,
		mdMsg: `
# JDK tool not found

The tools ` + "`javac`, `jar`, `javadoc`, `jdeps`" + ` and ` + "`java`" + ` are looked up
in ` + "`$JAVA_HOME/bin`" + ` (or ` + "`java.home`" + ` in ` + "`realmake.cue`" + `) and then in ` + "`PATH`" + `.

## Things you can try
~~~
$ export JAVA_HOME=/path/to/jdk
$ realmake --debug
~~~`,
		extLinks: []HttpLink{"https://jdk.java.net/"},
	}

	toolInvocationFailedIssue = &Issue{
		id: ToolInvocationFailedId,
		mdMsg: `
# A JDK tool reported an error

The tool's own output above describes the problem. Re-run with ` + "`--debug`" + ` to
see the full argument list of every tool invocation.`,
	}

	testRunFailedIssue = &Issue{
		id: TestRunFailedId,
		mdMsg: `
# Tests failed

The JUnit Platform console launcher exited with a non-zero code. Reports are
written to ` + "`work/test/junit-reports`" + `.`,
		extLinks: []HttpLink{"https://junit.org/junit5/docs/current/user-guide/#running-tests-console-launcher"},
	}

	offlineArtifactMissingIssue = &Issue{
		id: OfflineArtifactMissingId,
		mdMsg: `
# Artifact missing in offline mode

An external module declared in ` + "`module-uri.properties`" + ` has never been
downloaded. Run once without ` + "`--offline`" + ` to populate the library directory.`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Configuration could not be loaded

` + "`realmake.cue`" + ` must satisfy the ` + "`#Config`" + ` schema. Run
` + "`realmake config show`" + ` to print the effective configuration.`,
	}

	realmCycleIssue = &Issue{
		id: RealmCycleId,
		mdMsg: `
# Realm requirements form a cycle

A realm can only require realms that are built before it.`,
	}

	issues = map[Id]*Issue{
		realmNotFoundIssue.id:          realmNotFoundIssue,
		emptyModuleSetIssue.id:         emptyModuleSetIssue,
		unbuildableModulesIssue.id:     unbuildableModulesIssue,
		toolNotFoundIssue.id:           toolNotFoundIssue,
		toolInvocationFailedIssue.id:   toolInvocationFailedIssue,
		testRunFailedIssue.id:          testRunFailedIssue,
		offlineArtifactMissingIssue.id: offlineArtifactMissingIssue,
		configLoadFailedIssue.id:       configLoadFailedIssue,
		realmCycleIssue.id:             realmCycleIssue,
	}
)

// Values returns every catalog entry in Id order.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
