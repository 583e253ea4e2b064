package modtree

import (
	"sort"
	"strings"

	"nameres/internal/engine/ast"
	"nameres/internal/engine/diag"
)

// Build turns a unit's flat module list into a tree. Every `mod` entry
// in a module claims one child: the first module with that name, in
// declaration order, not yet claimed by anyone. Module names only need
// to be unique among siblings, so `a::utils` and `b::utils` coexist.
// Duplicate sibling names, claims with no module left to satisfy them,
// and `mod` cycles are reported to the bag; the builder keeps going and
// returns the largest consistent tree it can.
func Build(unit *ast.Unit, bag *diag.Bag) *Tree {
	t := &Tree{
		unitName: unit.Name,
		nodes:    []node{{name: unit.Name, parent: NoModule, children: map[string]ModuleID{}}},
		paths:    newPathTrie(),
	}

	n := len(unit.Modules)
	instances := make(map[string][]int, n)
	for i := range unit.Modules {
		m := &unit.Modules[i]
		instances[m.Name] = append(instances[m.Name], i)
	}

	// Resolve `mod` claims to parent edges before attaching anything.
	// claimedBy[i] is the index of the module that claimed module i.
	claimedBy := make([]int, n)
	for i := range claimedBy {
		claimedBy[i] = -1
	}

	for i := range unit.Modules {
		parent := &unit.Modules[i]
		seen := make(map[string]bool, len(parent.Mods))
		for _, childName := range parent.Mods {
			if seen[childName] {
				bag.Add(diag.New(diag.DuplicateModuleName, "module `%s` declares child `%s` twice", parent.Name, childName).
					WithModule(parent.Name).
					WithLocation(parent.Location))
				continue
			}
			seen[childName] = true

			j := claimInstance(instances[childName], claimedBy, i)
			switch {
			case j >= 0:
				claimedBy[j] = i
			case len(instances[childName]) == 0:
				bag.Add(diag.New(diag.UnknownModule, "module `%s` declares unknown child module `%s`", parent.Name, childName).
					WithModule(parent.Name).
					WithLocation(parent.Location))
			default:
				bag.Add(diag.New(diag.DuplicateModuleName, "module `%s` claims `%s`, but every module of that name already belongs to another parent", parent.Name, childName).
					WithModule(parent.Name).
					WithLocation(parent.Location))
			}
		}
	}

	// Unclaimed modules are root children, so their names clash at the
	// root scope. The later declaration is reported and dropped, along
	// with everything it claimed.
	dropped := make([]bool, n)
	rootSeen := make(map[string]int)
	for i := range unit.Modules {
		if claimedBy[i] != -1 {
			continue
		}
		m := &unit.Modules[i]
		if first, ok := rootSeen[m.Name]; ok {
			bag.Add(diag.New(diag.DuplicateModuleName, "module `%s` declared more than once at the unit root", m.Name).
				WithModule(m.Name).
				WithLocation(m.Location).
				WithNoteAt(unit.Modules[first].Location, "previous declaration here"))
			dropped[i] = true
			continue
		}
		rootSeen[m.Name] = i
	}
	for changed := true; changed; {
		changed = false
		for i := range unit.Modules {
			if dropped[i] || claimedBy[i] == -1 {
				continue
			}
			if dropped[claimedBy[i]] {
				dropped[i] = true
				changed = true
			}
		}
	}

	// Attach from the root down. Claimed modules attach once their
	// parent is placed; whatever never places sits on a `mod` cycle.
	placed := make([]ModuleID, n)
	for i := range placed {
		placed[i] = NoModule
	}

	var rootKids []int
	for i := range unit.Modules {
		if claimedBy[i] == -1 && !dropped[i] {
			rootKids = append(rootKids, i)
		}
	}
	sort.Slice(rootKids, func(a, b int) bool {
		return unit.Modules[rootKids[a]].Name < unit.Modules[rootKids[b]].Name
	})
	for _, i := range rootKids {
		placed[i] = t.attach(RootID, &unit.Modules[i])
	}

	for progress := true; progress; {
		progress = false
		for i := range unit.Modules {
			if dropped[i] || claimedBy[i] == -1 || placed[i] != NoModule {
				continue
			}
			if placed[claimedBy[i]] == NoModule {
				continue
			}
			placed[i] = t.attach(placed[claimedBy[i]], &unit.Modules[i])
			progress = true
		}
	}

	var stranded []string
	for i := range unit.Modules {
		if dropped[i] || placed[i] != NoModule {
			continue
		}
		stranded = append(stranded, unit.Modules[i].Name)
	}
	if len(stranded) > 0 {
		sort.Strings(stranded)
		bag.Add(diag.New(diag.CyclicModuleGraph, "cyclic `mod` declarations strand modules: %s", strings.Join(stranded, ", ")).
			WithModule(unit.Name))
	}

	return t
}

// claimInstance picks the first unclaimed module among the candidates.
// A module never claims itself, so a child sharing its parent's name
// resolves to a different instance.
func claimInstance(candidates []int, claimedBy []int, self int) int {
	for _, c := range candidates {
		if c != self && claimedBy[c] == -1 {
			return c
		}
	}
	return -1
}

func (t *Tree) attach(parent ModuleID, src *ast.Module) ModuleID {
	id := ModuleID(len(t.nodes))
	t.nodes = append(t.nodes, node{
		name:     src.Name,
		parent:   parent,
		children: map[string]ModuleID{},
		src:      src,
	})
	t.nodes[parent].children[src.Name] = id
	t.paths.Put(t.Path(id), id)
	return id
}
