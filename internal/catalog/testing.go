package catalog

// Test fixtures for packages that need a realistic Shapr3D source tree.
// WriteFixture builds a throwaway package root (catalog + blob files)
// with the same schema the Reader queries, so catalog, blob, and export
// tests all run against the real SQLite driver instead of mocks.

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// FixtureRevision seeds one revision row plus its blob files.
type FixtureRevision struct {
	ID        int64
	CreatedAt time.Time

	// Workspace is the package payload written to the blob store.
	Workspace []byte

	// Thumbnail, when non-nil, is written as a resource blob and
	// referenced from the revision's properties JSON.
	Thumbnail []byte

	// DanglingThumbnail references a resource blob without writing it,
	// to exercise the missing-blob path.
	DanglingThumbnail bool

	// DanglingWorkspace references a workspace payload without writing it.
	DanglingWorkspace bool
}

// FixtureProject seeds one project row and its revisions.
type FixtureProject struct {
	ID        string
	Title     string
	Folder    string
	Trashed   bool
	Revisions []FixtureRevision
}

// WriteFixture materializes projects as a Shapr3D package root under a
// temp directory and returns the root path. Cleanup is handled by
// t.TempDir.
func WriteFixture(t testing.TB, projects []FixtureProject) string {
	t.Helper()

	root := t.TempDir()
	storageDir := filepath.Join(root, "LocalState", "storage")
	if err := os.MkdirAll(storageDir, 0755); err != nil {
		t.Fatalf("create storage dir: %v", err)
	}

	db, err := sql.Open("sqlite", "file:"+filepath.Join(storageDir, CatalogFile))
	if err != nil {
		t.Fatalf("open fixture catalog: %v", err)
	}
	defer func() { _ = db.Close() }()

	for _, stmt := range []string{
		`CREATE TABLE projects (
			project_id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			folder_path TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE trash (
			project_id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			folder_path TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE revisions (
			project_id TEXT NOT NULL,
			revision_id INTEGER NOT NULL,
			created_at TEXT NOT NULL DEFAULT '',
			workspace_ref TEXT NOT NULL DEFAULT '',
			properties TEXT NOT NULL DEFAULT '{}',
			PRIMARY KEY (project_id, revision_id)
		)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("create fixture schema: %v", err)
		}
	}

	for _, p := range projects {
		table := "projects"
		if p.Trashed {
			table = "trash"
		}
		if _, err := db.Exec(
			fmt.Sprintf("INSERT INTO %s (project_id, title, folder_path) VALUES (?, ?, ?)", table),
			p.ID, p.Title, p.Folder,
		); err != nil {
			t.Fatalf("insert project %s: %v", p.ID, err)
		}

		for _, rev := range p.Revisions {
			wsRef := filepath.ToSlash(filepath.Join("LocalState", "projects", p.ID, fmt.Sprintf("rev-%d", rev.ID), "workspace"))
			if !rev.DanglingWorkspace {
				writeBlob(t, root, wsRef, rev.Workspace)
			}

			props := map[string]string{}
			if rev.Thumbnail != nil || rev.DanglingThumbnail {
				thumbRef := filepath.ToSlash(filepath.Join("LocalState", "storage", "resources", fmt.Sprintf("%s-%d-thumb", p.ID, rev.ID)))
				props["thumbnailDark"] = thumbRef
				if !rev.DanglingThumbnail {
					writeBlob(t, root, thumbRef, rev.Thumbnail)
				}
			}
			propsJSON, err := json.Marshal(props)
			if err != nil {
				t.Fatalf("marshal properties: %v", err)
			}

			createdAt := rev.CreatedAt
			if createdAt.IsZero() {
				createdAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(rev.ID) * time.Hour)
			}
			if _, err := db.Exec(
				"INSERT INTO revisions (project_id, revision_id, created_at, workspace_ref, properties) VALUES (?, ?, ?, ?, ?)",
				p.ID, rev.ID, createdAt.Format(time.RFC3339), wsRef, string(propsJSON),
			); err != nil {
				t.Fatalf("insert revision %s/%d: %v", p.ID, rev.ID, err)
			}
		}
	}

	return root
}

// FixtureJPEG wraps payload in a minimal JPEG frame with leading and
// trailing junk, the shape thumbnails take inside resource blobs.
func FixtureJPEG(payload []byte) []byte {
	blob := []byte("binaryheader\x00\x01")
	blob = append(blob, 0xFF, 0xD8)
	blob = append(blob, payload...)
	blob = append(blob, 0xFF, 0xD9)
	blob = append(blob, []byte("trailer")...)
	return blob
}

func writeBlob(t testing.TB, root, ref string, data []byte) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create blob dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write blob %s: %v", ref, err)
	}
}
