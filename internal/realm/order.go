// SPDX-License-Identifier: MPL-2.0

package realm

import (
	"errors"
	"fmt"

	"github.com/invowk/realmake/internal/dag"
)

// Order returns realms and their transitive requirements so that every
// realm follows the realms it requires. Realms are identified by name; the
// first occurrence of a name wins.
func Order(realms ...*Realm) ([]*Realm, error) {
	g := dag.New()
	byName := make(map[string]*Realm)

	var visit func(r *Realm)
	visit = func(r *Realm) {
		if _, seen := byName[r.name]; seen {
			return
		}
		byName[r.name] = r
		g.AddNode(r.name)
		for _, req := range r.required {
			visit(req)
			g.AddEdge(req.name, r.name)
		}
	}
	for _, r := range realms {
		visit(r)
	}

	names, err := g.TopologicalSort()
	if err != nil {
		var cycle *dag.CycleError
		if errors.As(err, &cycle) {
			return nil, fmt.Errorf("%w: %w", ErrRealmCycle, cycle)
		}
		return nil, err
	}

	ordered := make([]*Realm, 0, len(names))
	for _, name := range names {
		ordered = append(ordered, byName[name])
	}
	return ordered, nil
}
