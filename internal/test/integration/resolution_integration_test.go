package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nameres/internal/app"
	"nameres/internal/core/config"
	"nameres/internal/engine/ast"
	"nameres/internal/engine/resolve"
)

// Two modules declare a struct with the same name. The consumer imports
// one directly and names the other by qualified path. Both use-sites
// must resolve, to different declarations, with zero diagnostics.
func TestVeryCommonNameScenario(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Enabled = true
	cfg.Store.Path = filepath.Join(t.TempDir(), "res.db")

	appInstance, err := app.New(cfg, nil)
	require.NoError(t, err)
	defer appInstance.Close()

	out, err := appInstance.RunManifest(context.Background(), filepath.Join("testdata", "very_common_name.toml"))
	require.NoError(t, err)

	require.True(t, out.Bag.Empty(), "expected zero diagnostics, got %v", out.Bag.Items())
	require.Len(t, out.Resolved, 2)

	byLine := make(map[int]resolve.ResolvedUse, len(out.Resolved))
	for _, r := range out.Resolved {
		byLine[r.Ref.Location.Line] = r
	}

	imported, ok := byLine[25]
	require.True(t, ok, "bare reference at line 25 missing from results")
	qualified, ok := byLine[26]
	require.True(t, ok, "qualified reference at line 26 missing from results")

	assert.Equal(t, "contract_a_types", imported.Decl.ModulePath)
	assert.Equal(t, "another_lib", qualified.Decl.ModulePath)
	assert.Equal(t, "VeryCommonNameStruct", imported.Decl.Name)
	assert.Equal(t, "VeryCommonNameStruct", qualified.Decl.Name)
	assert.False(t, imported.Decl.Same(qualified.Decl),
		"use-sites with the same surface name must keep distinct identities")

	// Ad-hoc queries after the batch answer from the same frozen state.
	consumer, ok := out.Tree.ByPath("consumer")
	require.True(t, ok)
	res := out.Resolver.Resolve(consumer, ast.Ref{
		Path: ast.MustParsePath("another_lib::VeryCommonNameStruct"),
		Raw:  "another_lib::VeryCommonNameStruct",
	})
	require.True(t, res.OK(), "post-batch query failed: %v", res.Diag)
	assert.True(t, res.Decl.Same(qualified.Decl))

	// The store answered with both declarations and the recorded sites.
	require.NotEmpty(t, out.RunID)
	store, err := resolve.OpenStore(cfg.Store.Path, cfg.Project)
	require.NoError(t, err)
	defer store.Close()

	decls := store.LookupDeclarations("VeryCommonNameStruct")
	assert.Len(t, decls, 2)

	rec, found := store.LookupResolution(filepath.Join("testdata", "very_common_name.toml"), 26, 9)
	require.True(t, found)
	assert.Equal(t, "another_lib", rec.TargetModule)
}

// Re-running the same unit produces the same resolution set and the
// same diagnostics count.
func TestBatchIdempotence(t *testing.T) {
	appInstance, err := app.New(config.Default(), nil)
	require.NoError(t, err)
	defer appInstance.Close()

	first, err := appInstance.RunManifest(context.Background(), filepath.Join("testdata", "very_common_name.toml"))
	require.NoError(t, err)
	second, err := appInstance.RunManifest(context.Background(), filepath.Join("testdata", "very_common_name.toml"))
	require.NoError(t, err)

	require.Equal(t, len(first.Resolved), len(second.Resolved))
	for i := range first.Resolved {
		a, b := first.Resolved[i], second.Resolved[i]
		assert.Equal(t, a.Decl.ModulePath, b.Decl.ModulePath)
		assert.Equal(t, a.Decl.Name, b.Decl.Name)
		assert.Equal(t, a.Decl.Kind, b.Decl.Kind)
	}
	assert.Equal(t, first.Bag.Count(), second.Bag.Count())
}
