package symbols

import (
	"testing"

	"nameres/internal/engine/ast"
	"nameres/internal/engine/modtree"
)

func decl(module modtree.ModuleID, path, name string, kind ast.ItemKind) *Declaration {
	return &Declaration{Module: module, ModulePath: path, Name: name, Kind: kind}
}

func TestTable_DeclareAndLookup(t *testing.T) {
	tab := NewTable(1)

	d := decl(1, "app::types", "Config", ast.KindStruct)
	if got, ok := tab.Declare(d); !ok || got != d {
		t.Fatalf("Declare(Config) = (%v, %v), want inserted", got, ok)
	}

	res := tab.Lookup("Config")
	if res.State != LookupUnique {
		t.Fatalf("Lookup(Config).State = %v, want LookupUnique", res.State)
	}
	if res.Decl != d {
		t.Errorf("Lookup(Config).Decl = %v, want %v", res.Decl, d)
	}

	if res := tab.Lookup("Missing"); res.State != LookupNotFound {
		t.Errorf("Lookup(Missing).State = %v, want LookupNotFound", res.State)
	}
}

func TestTable_DuplicateSameKind(t *testing.T) {
	tab := NewTable(1)

	first := decl(1, "app", "Config", ast.KindStruct)
	second := decl(1, "app", "Config", ast.KindStruct)

	tab.Declare(first)
	got, ok := tab.Declare(second)
	if ok {
		t.Fatal("second Declare(Config struct) inserted, want rejected")
	}
	if got != first {
		t.Errorf("Declare returned %v, want the first declaration", got)
	}
	if res := tab.Lookup("Config"); res.Decl != first {
		t.Errorf("Lookup returned %v, want first declaration to win", res.Decl)
	}
}

func TestTable_SameNameDifferentKinds(t *testing.T) {
	tab := NewTable(2)

	s := decl(2, "lib", "Parse", ast.KindStruct)
	f := decl(2, "lib", "Parse", ast.KindFunction)
	if _, ok := tab.Declare(s); !ok {
		t.Fatal("Declare(Parse struct) rejected")
	}
	if _, ok := tab.Declare(f); !ok {
		t.Fatal("Declare(Parse fn) rejected, want distinct kinds to coexist")
	}

	res := tab.Lookup("Parse")
	if res.State != LookupAmbiguous {
		t.Fatalf("Lookup(Parse).State = %v, want LookupAmbiguous", res.State)
	}
	if len(res.Candidates) != 2 {
		t.Errorf("len(Candidates) = %d, want 2", len(res.Candidates))
	}

	if d, ok := tab.LookupKind("Parse", ast.KindFunction); !ok || d != f {
		t.Errorf("LookupKind(Parse, fn) = (%v, %v), want the fn declaration", d, ok)
	}
}

func TestDeclaration_Identity(t *testing.T) {
	a := decl(1, "contract_a_types", "VeryCommonNameStruct", ast.KindStruct)
	b := decl(2, "another_lib", "VeryCommonNameStruct", ast.KindStruct)
	c := decl(1, "contract_a_types", "VeryCommonNameStruct", ast.KindStruct)

	if a.Same(b) {
		t.Error("declarations in different modules compare equal")
	}
	if !a.Same(c) {
		t.Error("declarations with identical (module, name, kind) compare unequal")
	}
	if a.QualifiedPath() != "contract_a_types::VeryCommonNameStruct" {
		t.Errorf("QualifiedPath() = %q", a.QualifiedPath())
	}
}

func TestImportScope_ShadowAndOrder(t *testing.T) {
	scope := NewImportScope()

	old := &ImportBinding{Name: "Thing", Decl: decl(1, "a", "Thing", ast.KindStruct)}
	repl := &ImportBinding{Name: "Thing", Decl: decl(2, "b", "Thing", ast.KindStruct)}
	scope.Bind(old)
	scope.Bind(repl)
	scope.Bind(&ImportBinding{Name: "Alpha", Decl: decl(3, "c", "Alpha", ast.KindConst)})

	if got, ok := scope.Get("Thing"); !ok || got != repl {
		t.Errorf("Get(Thing) = (%v, %v), want the later binding", got, ok)
	}
	names := scope.Names()
	want := []string{"Alpha", "Thing"}
	if len(names) != len(want) || names[0] != want[0] || names[1] != want[1] {
		t.Errorf("Names() = %v, want %v", names, want)
	}
}
