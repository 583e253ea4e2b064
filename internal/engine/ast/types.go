package ast

// Location points at a spot in a source file. Locations come from the
// upstream parser and are carried through resolution untouched so that
// diagnostics can reference the original source.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) IsZero() bool {
	return l.File == "" && l.Line == 0 && l.Column == 0
}

type ItemKind int

const (
	KindStruct ItemKind = iota
	KindFunction
	KindAlias
	KindTrait
	KindConst
)

func (k ItemKind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindFunction:
		return "fn"
	case KindAlias:
		return "alias"
	case KindTrait:
		return "trait"
	case KindConst:
		return "const"
	default:
		return "unknown"
	}
}

// Item is a top-level declaration inside a module: a struct, function,
// type alias, trait, or constant.
type Item struct {
	Name     string
	Kind     ItemKind
	Fields   []string // struct/trait member names, informational only
	Location Location
}

// UseDecl is a `use path::Name;` statement. The path is kept both parsed
// and as written, so collision diagnostics can echo the original text.
type UseDecl struct {
	Path     Path
	Raw      string
	Location Location
}

// Ref is a recorded use-site: an identifier occurrence somewhere in the
// module body that later phases need resolved to a declaration.
type Ref struct {
	Path     Path
	Raw      string
	Location Location
}

// Module is one module's worth of parser output: its declared child
// modules, top-level items, imports, and recorded use-sites.
type Module struct {
	Name     string
	Mods     []string // child module names, one per `mod child;`
	Items    []Item
	Uses     []UseDecl
	Refs     []Ref
	Location Location
}

// Unit is a whole compilation unit. The root module is implicit: modules
// not claimed as a child by any `mod` declaration hang off the root.
type Unit struct {
	Name    string
	Modules []Module
}
