package cli

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looking-glass-station/shapr3d-backup/internal/catalog"
	"github.com/looking-glass-station/shapr3d-backup/internal/config"
	"github.com/looking-glass-station/shapr3d-backup/internal/errors"
)

func exportFixture(t *testing.T) string {
	t.Helper()
	return catalog.WriteFixture(t, []catalog.FixtureProject{
		{
			ID:    "a1",
			Title: "Bike",
			Revisions: []catalog.FixtureRevision{
				{ID: 1, Workspace: []byte("bike v1")},
				{ID: 2, Workspace: []byte("bike v2"), Thumbnail: catalog.FixtureJPEG([]byte("img"))},
			},
		},
		{
			ID:        "b2",
			Title:     "Old",
			Trashed:   true,
			Revisions: []catalog.FixtureRevision{{ID: 1, Workspace: []byte("old v1")}},
		},
	})
}

func TestRunExportEndToEnd(t *testing.T) {
	srcRoot := exportFixture(t)
	exportDir := t.TempDir()

	cfg := config.Config{
		ExportDir:        exportDir,
		IncludeTempState: true,
		AddRevision:      false,
		Jobs:             1,
		SourceRoot:       srcRoot,
	}
	require.NoError(t, cfg.Validate())
	require.NoError(t, runExport(context.Background(), cfg, false))

	for _, rel := range []string{
		filepath.Join("Current", "Bike_a1", "Bike_a1.shapr"),
		filepath.Join("Current", "Bike_a1", "thumbnail.jpg"),
		filepath.Join("Trashed", "Old_b2", "Old_b2.shapr"),
	} {
		_, err := os.Stat(filepath.Join(exportDir, rel))
		assert.NoError(t, err, rel)
	}

	// Second run must leave everything in place
	before, err := os.Stat(filepath.Join(exportDir, "Current", "Bike_a1", "Bike_a1.shapr"))
	require.NoError(t, err)
	require.NoError(t, runExport(context.Background(), cfg, false))
	after, err := os.Stat(filepath.Join(exportDir, "Current", "Bike_a1", "Bike_a1.shapr"))
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestRunExportExcludesTempStateByDefault(t *testing.T) {
	srcRoot := exportFixture(t)
	exportDir := t.TempDir()

	cfg := config.Config{ExportDir: exportDir, AddRevision: false, Jobs: 1, SourceRoot: srcRoot}
	require.NoError(t, runExport(context.Background(), cfg, false))

	_, err := os.Stat(filepath.Join(exportDir, "Trashed"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunExportDryRun(t *testing.T) {
	srcRoot := exportFixture(t)
	exportDir := t.TempDir()

	cfg := config.Config{ExportDir: exportDir, IncludeTempState: true, AddRevision: true, Jobs: 1, SourceRoot: srcRoot}
	require.NoError(t, runExport(context.Background(), cfg, true))

	entries, err := os.ReadDir(exportDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "dry run must not write")
}

func TestRunExportMissingCatalog(t *testing.T) {
	cfg := config.Config{ExportDir: t.TempDir(), Jobs: 1, SourceRoot: t.TempDir()}
	err := runExport(context.Background(), cfg, false)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeCatalogMissing))
}

func TestResolveSourceRoot(t *testing.T) {
	srcRoot := exportFixture(t)

	// Direct package root
	got, err := resolveSourceRoot(config.Config{SourceRoot: srcRoot})
	require.NoError(t, err)
	assert.Equal(t, srcRoot, got)

	// A parent directory is searched for the package
	parent := t.TempDir()
	pkg := filepath.Join(parent, "Shapr3D.Shapr3D_test")
	storage := filepath.Join(pkg, "LocalState", "storage")
	require.NoError(t, os.MkdirAll(storage, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(storage, catalog.CatalogFile), []byte("db"), 0644))

	got, err = resolveSourceRoot(config.Config{SourceRoot: parent})
	require.NoError(t, err)
	assert.Equal(t, pkg, got)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(errors.ErrCatalogBusy("db")))
	assert.Equal(t, 2, ExitCode(errors.ErrCatalogCorrupt("db", "no such table")))
	assert.Equal(t, 2, ExitCode(errors.ErrCatalogMissing("/root")))
	assert.Equal(t, 1, ExitCode(errors.ErrConfigInvalid("export_dir", "required")))
	assert.Equal(t, 1, ExitCode(stderrors.New("anything else")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "longe…", truncate("longer than that", 6))

	// Multibyte titles must stay valid UTF-8 at the cut point
	got := truncate("Stuhl Möbel für draußen", 10)
	assert.Equal(t, "Stuhl Möb…", got)
	assert.True(t, utf8.ValidString(got))
}
