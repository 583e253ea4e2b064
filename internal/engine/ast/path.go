package ast

import (
	"fmt"
	"strings"
)

// Separator joins path segments in surface syntax, e.g. a::b::Name.
const Separator = "::"

// PathRoot says where a qualified path starts walking the module tree.
type PathRoot int

const (
	// RootUnit anchors the path at the compilation unit's root module.
	// Plain multi-segment paths (no leading keyword) also resolve here.
	RootUnit PathRoot = iota
	// RootSelf anchors the path at the module containing the use-site.
	RootSelf
	// RootSuper anchors the path at an ancestor of the containing module,
	// one level up per leading `super` segment.
	RootSuper
)

func (r PathRoot) String() string {
	switch r {
	case RootUnit:
		return "unit"
	case RootSelf:
		return "self"
	case RootSuper:
		return "super"
	default:
		return "invalid"
	}
}

// Path is a parsed surface path: zero or more module segments ending in a
// bare name. A path with no segments and no explicit root keyword is a
// bare reference and resolves through the local-then-import order instead
// of a tree walk.
type Path struct {
	Root     PathRoot
	Explicit bool // a root keyword (unit/self/super) was written
	Super    int  // number of leading super segments, Root == RootSuper
	Segments []string
	Name     string
}

// Bare reports whether the path is a single unqualified identifier.
func (p Path) Bare() bool {
	return !p.Explicit && len(p.Segments) == 0
}

func (p Path) String() string {
	var parts []string
	switch {
	case p.Explicit && p.Root == RootUnit:
		parts = append(parts, "unit")
	case p.Root == RootSelf && p.Explicit:
		parts = append(parts, "self")
	case p.Root == RootSuper:
		for i := 0; i < p.Super; i++ {
			parts = append(parts, "super")
		}
	}
	parts = append(parts, p.Segments...)
	parts = append(parts, p.Name)
	return strings.Join(parts, Separator)
}

// ParsePath parses surface text like `a::b::Name`, `self::Name`,
// `super::super::a::Name`, or a bare `Name`. Leading `unit`, `self`, and
// `super` keywords select the root; `super` may repeat. Keywords are only
// recognized in leading position.
func ParsePath(raw string) (Path, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Path{}, fmt.Errorf("empty path")
	}

	segs := strings.Split(trimmed, Separator)
	for _, seg := range segs {
		if strings.TrimSpace(seg) == "" {
			return Path{}, fmt.Errorf("path %q has an empty segment", raw)
		}
	}

	p := Path{Root: RootUnit}
	switch segs[0] {
	case "unit":
		p.Explicit = true
		segs = segs[1:]
	case "self":
		p.Root = RootSelf
		p.Explicit = true
		segs = segs[1:]
	case "super":
		p.Root = RootSuper
		p.Explicit = true
		for len(segs) > 0 && segs[0] == "super" {
			p.Super++
			segs = segs[1:]
		}
	}

	if len(segs) == 0 {
		return Path{}, fmt.Errorf("path %q has no terminal name", raw)
	}
	for _, seg := range segs {
		switch seg {
		case "unit", "self", "super":
			return Path{}, fmt.Errorf("path %q uses keyword %q in non-leading position", raw, seg)
		}
	}

	p.Name = segs[len(segs)-1]
	if rest := segs[:len(segs)-1]; len(rest) > 0 {
		// Keep single-name paths canonical: Segments is nil, never an
		// empty slice, so parsed paths compare and key consistently.
		p.Segments = rest
	}
	if !p.Explicit && len(p.Segments) == 0 {
		// Bare identifier; root is self by definition of the lookup order.
		p.Root = RootSelf
	}
	return p, nil
}

// MustParsePath is ParsePath for static paths in tests and fixtures.
func MustParsePath(raw string) Path {
	p, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}
	return p
}
