package modtree

import (
	"sort"
	"strings"

	"nameres/internal/engine/ast"

	"github.com/dghubble/trie"
)

// ModuleID addresses a module node in the tree's arena. IDs are dense
// and stable for the lifetime of the tree.
type ModuleID int

const (
	// RootID is always the compilation unit's root module.
	RootID ModuleID = 0
	// NoModule marks the absence of a module reference.
	NoModule ModuleID = -1
)

type node struct {
	name     string
	parent   ModuleID
	children map[string]ModuleID
	src      *ast.Module // nil for the synthetic root
}

// Tree is the compilation unit's module tree: an arena of nodes with
// parent pointers and per-node child-name maps, plus a path trie for
// qualified lookups. Trees are built once and never mutated afterward,
// so reads need no locking.
type Tree struct {
	unitName string
	nodes    []node
	paths    *trie.PathTrie
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) valid(id ModuleID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Name returns the bare name of a module. The root answers with the
// unit name.
func (t *Tree) Name(id ModuleID) string {
	if !t.valid(id) {
		return ""
	}
	return t.nodes[id].name
}

// Parent returns a module's parent, or false for the root.
func (t *Tree) Parent(id ModuleID) (ModuleID, bool) {
	if !t.valid(id) || id == RootID {
		return NoModule, false
	}
	return t.nodes[id].parent, true
}

// Child resolves one `mod` child by bare name.
func (t *Tree) Child(id ModuleID, name string) (ModuleID, bool) {
	if !t.valid(id) {
		return NoModule, false
	}
	child, ok := t.nodes[id].children[name]
	return child, ok
}

// Children returns child names in sorted order.
func (t *Tree) Children(id ModuleID) []string {
	if !t.valid(id) {
		return nil
	}
	names := make([]string, 0, len(t.nodes[id].children))
	for name := range t.nodes[id].children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source returns the parser output backing the module, nil for the root.
func (t *Tree) Source(id ModuleID) *ast.Module {
	if !t.valid(id) {
		return nil
	}
	return t.nodes[id].src
}

// Path renders the module's qualified path from the root, e.g. "a::b".
// The root itself renders as the unit name.
func (t *Tree) Path(id ModuleID) string {
	if !t.valid(id) {
		return ""
	}
	if id == RootID {
		return t.unitName
	}
	var segs []string
	for cur := id; cur != RootID; cur = t.nodes[cur].parent {
		segs = append(segs, t.nodes[cur].name)
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return strings.Join(segs, ast.Separator)
}

// ByPath resolves a root-relative qualified path like "a::b" through the
// path trie. The empty path answers with the root.
func (t *Tree) ByPath(path string) (ModuleID, bool) {
	if path == "" {
		return RootID, true
	}
	v := t.paths.Get(path)
	if v == nil {
		return NoModule, false
	}
	return v.(ModuleID), true
}

// Navigate walks a path's module segments starting from the module the
// path appears in and returns the target module. The terminal name is
// not consumed here. On failure the offending segment is returned:
// "super" when the climb runs past the root, otherwise the child name
// that does not exist under the module walked so far.
func (t *Tree) Navigate(from ModuleID, p ast.Path) (ModuleID, string, bool) {
	cur := from
	switch {
	case p.Root == ast.RootSuper:
		for i := 0; i < p.Super; i++ {
			parent, ok := t.Parent(cur)
			if !ok {
				return NoModule, "super", false
			}
			cur = parent
		}
	case p.Root == ast.RootSelf:
		// Explicit self, or a bare name with no segments to walk.
	default:
		cur = RootID
	}
	for _, seg := range p.Segments {
		child, ok := t.Child(cur, seg)
		if !ok {
			return cur, seg, false
		}
		cur = child
	}
	return cur, "", true
}

// Modules returns every module ID in arena order (root first).
func (t *Tree) Modules() []ModuleID {
	ids := make([]ModuleID, len(t.nodes))
	for i := range t.nodes {
		ids[i] = ModuleID(i)
	}
	return ids
}

// pathSegmenter splits trie keys on the surface path separator without
// allocating. "a::b::c" yields "a", "b", "c".
func pathSegmenter(path string, start int) (segment string, next int) {
	if len(path) == 0 || start < 0 || start > len(path)-1 {
		return "", -1
	}
	end := strings.Index(path[start:], ast.Separator)
	if end == -1 {
		return path[start:], -1
	}
	return path[start : start+end], start + end + len(ast.Separator)
}

func newPathTrie() *trie.PathTrie {
	return trie.NewPathTrieWithConfig(&trie.PathTrieConfig{
		Segmenter: pathSegmenter,
	})
}
