package cli

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func declNames(result *LoadResult) []string {
	names := make([]string, len(result.Decls))
	for i, d := range result.Decls {
		names[i] = d.Name
	}
	return names
}

func TestLoadSourcesDirectory(t *testing.T) {
	result, errs := LoadSources(context.Background(), []string{sourcesDir}, LoadModeCollectAll)
	require.Empty(t, errs)

	assert.Equal(t, 3, result.FileCount)
	// Lexical file order: colors.yaml, geometry.rs, units.cue.
	assert.Equal(t, []string{"Rgb", "Vec2", "Point", "Meters", "Seconds"}, declNames(result))
}

func TestLoadSourcesRustDerivesNarrowed(t *testing.T) {
	result, errs := LoadSources(context.Background(), []string{filepath.Join(sourcesDir, "geometry.rs")}, LoadModeFailFast)
	require.Empty(t, errs)

	require.Len(t, result.Decls, 3, "Label derives no operator and is skipped")
	assert.Equal(t, []string{"Mul", "Div"}, result.Decls[0].Derives)
	assert.Equal(t, []string{"Mul"}, result.Decls[1].Derives)
	assert.Equal(t, []string{"Rem"}, result.Decls[2].Derives)
}

func TestLoadSourcesNotFound(t *testing.T) {
	result, errs := LoadSources(context.Background(), []string{"/nonexistent/path"}, LoadModeCollectAll)
	assert.Nil(t, result)
	require.Len(t, errs, 1)

	var loadErr *LoadError
	require.True(t, errors.As(errs[0], &loadErr))
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadSourcesNoFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "nothing here")

	_, errs := LoadSources(context.Background(), []string{dir}, LoadModeCollectAll)
	require.Len(t, errs, 1)

	var loadErr *LoadError
	require.True(t, errors.As(errs[0], &loadErr))
	assert.Equal(t, ErrCodeNoFiles, loadErr.Code)
}

func TestLoadSourcesUnsupportedFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "notes.txt", "nothing here")

	_, errs := LoadSources(context.Background(), []string{path}, LoadModeCollectAll)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "unsupported file type")
}

func TestLoadSourcesCollectAllVersusFailFast(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.rs", "#[derive(Mul)] struct Broken(f32")
	writeFile(t, dir, "b.yaml", "records:\n  - name: Bad\n    fields: [{type: \"Vec<\"}]\n")
	writeFile(t, dir, "c.cue", `record: Ok: {fields: [{type: "f32"}], derive: ["Mul"]}`)

	result, errs := LoadSources(context.Background(), []string{dir}, LoadModeCollectAll)
	require.Len(t, errs, 2)
	assert.Equal(t, []string{"Ok"}, declNames(result))

	var loadErr *LoadError
	require.True(t, errors.As(errs[0], &loadErr))
	assert.Equal(t, ErrCodeParseFailed, loadErr.Code)
	assert.Equal(t, filepath.Join(dir, "a.rs"), loadErr.Pos.File)

	_, errs = LoadSources(context.Background(), []string{dir}, LoadModeFailFast)
	assert.Len(t, errs, 1)
}
