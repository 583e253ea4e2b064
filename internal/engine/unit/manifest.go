// Package unit loads compilation-unit manifests: the serialized parser
// output the resolution passes consume. A manifest is a TOML file
// listing modules with their child claims, items, use declarations,
// and recorded use-sites.
package unit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"nameres/internal/engine/ast"
)

type Manifest struct {
	Unit    string          `toml:"unit"`
	Modules []ModuleSection `toml:"module"`
}

type ModuleSection struct {
	Name string        `toml:"name"`
	Mods []string      `toml:"mods"`
	Line int           `toml:"line"`
	Item []ItemSection `toml:"item"`
	Use  []PathSection `toml:"use"`
	Ref  []PathSection `toml:"ref"`
}

type ItemSection struct {
	Name   string   `toml:"name"`
	Kind   string   `toml:"kind"`
	Fields []string `toml:"fields"`
	Line   int      `toml:"line"`
	Col    int      `toml:"col"`
}

type PathSection struct {
	Path string `toml:"path"`
	Line int    `toml:"line"`
	Col  int    `toml:"col"`
}

// Load reads and validates a manifest, returning the unit the passes
// operate on. Surface paths are parsed here so that a malformed path is
// a load error, not a resolution diagnostic.
func Load(path string) (*ast.Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, fmt.Errorf("decode manifest %q: %w", path, err)
	}

	applyDefaults(&m, path)

	if err := validateModules(&m); err != nil {
		return nil, fmt.Errorf("manifest %q: %w", path, err)
	}

	return convert(&m, path)
}

func applyDefaults(m *Manifest, path string) {
	if strings.TrimSpace(m.Unit) == "" {
		base := filepath.Base(path)
		m.Unit = strings.TrimSuffix(base, filepath.Ext(base))
	}
}

func validateModules(m *Manifest) error {
	if len(m.Modules) == 0 {
		return fmt.Errorf("no module blocks")
	}
	for _, mod := range m.Modules {
		name := strings.TrimSpace(mod.Name)
		if name == "" {
			return fmt.Errorf("module block without a name")
		}
		if strings.Contains(name, ast.Separator) {
			return fmt.Errorf("module name %q must be a bare identifier", name)
		}
		// Repeated names are legal here: modules under different
		// parents may share a bare name. Sibling clashes are reported
		// by the tree builder, not the loader.

		for _, item := range mod.Item {
			if strings.TrimSpace(item.Name) == "" {
				return fmt.Errorf("module %q has an item without a name", name)
			}
			if _, err := parseKind(item.Kind); err != nil {
				return fmt.Errorf("module %q item %q: %w", name, item.Name, err)
			}
		}
	}
	return nil
}

func convert(m *Manifest, path string) (*ast.Unit, error) {
	unit := &ast.Unit{Name: m.Unit}
	for _, mod := range m.Modules {
		out := ast.Module{
			Name:     strings.TrimSpace(mod.Name),
			Mods:     mod.Mods,
			Location: ast.Location{File: path, Line: mod.Line},
		}
		for _, item := range mod.Item {
			kind, err := parseKind(item.Kind)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, ast.Item{
				Name:     item.Name,
				Kind:     kind,
				Fields:   item.Fields,
				Location: ast.Location{File: path, Line: item.Line, Column: item.Col},
			})
		}
		for _, use := range mod.Use {
			p, err := ast.ParsePath(use.Path)
			if err != nil {
				return nil, fmt.Errorf("module %q use: %w", out.Name, err)
			}
			out.Uses = append(out.Uses, ast.UseDecl{
				Path:     p,
				Raw:      use.Path,
				Location: ast.Location{File: path, Line: use.Line, Column: use.Col},
			})
		}
		for _, ref := range mod.Ref {
			p, err := ast.ParsePath(ref.Path)
			if err != nil {
				return nil, fmt.Errorf("module %q ref: %w", out.Name, err)
			}
			out.Refs = append(out.Refs, ast.Ref{
				Path:     p,
				Raw:      ref.Path,
				Location: ast.Location{File: path, Line: ref.Line, Column: ref.Col},
			})
		}
		unit.Modules = append(unit.Modules, out)
	}
	return unit, nil
}

func parseKind(raw string) (ast.ItemKind, error) {
	switch strings.TrimSpace(raw) {
	case "struct", "":
		// Structs dominate manifests; an omitted kind means struct.
		return ast.KindStruct, nil
	case "fn":
		return ast.KindFunction, nil
	case "alias":
		return ast.KindAlias, nil
	case "trait":
		return ast.KindTrait, nil
	case "const":
		return ast.KindConst, nil
	default:
		return 0, fmt.Errorf("unknown item kind %q", raw)
	}
}
