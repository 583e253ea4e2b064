package symbols

import (
	"sort"

	"nameres/internal/engine/ast"
)

// ImportBinding records one resolved use declaration: the bare name it
// introduces into the importing module and the declaration it targets.
type ImportBinding struct {
	Name     string
	Decl     *Declaration
	Use      ast.UseDecl
	Location ast.Location
}

// ImportScope is the set of names a module gains through its use
// declarations. It sits behind the module's own table during bare-name
// lookup: local declarations shadow imported ones.
type ImportScope struct {
	bindings map[string]*ImportBinding
}

func NewImportScope() *ImportScope {
	return &ImportScope{bindings: make(map[string]*ImportBinding)}
}

// Bind records a binding, replacing any previous one under the same
// name. Collision policy lives with the import pass, not here.
func (s *ImportScope) Bind(b *ImportBinding) {
	s.bindings[b.Name] = b
}

func (s *ImportScope) Get(name string) (*ImportBinding, bool) {
	b, ok := s.bindings[name]
	return b, ok
}

func (s *ImportScope) Len() int {
	return len(s.bindings)
}

// Names returns bound names in sorted order.
func (s *ImportScope) Names() []string {
	names := make([]string, 0, len(s.bindings))
	for name := range s.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bindings returns all bindings ordered by name.
func (s *ImportScope) Bindings() []*ImportBinding {
	out := make([]*ImportBinding, 0, len(s.bindings))
	for _, name := range s.Names() {
		out = append(out, s.bindings[name])
	}
	return out
}
