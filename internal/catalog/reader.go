package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/looking-glass-station/shapr3d-backup/internal/errors"
)

// Reader is a short-lived read-only session against one catalog file.
// It is not safe for concurrent use; the underlying store assumes one
// reader at a time.
type Reader struct {
	db   *sql.DB
	path string
}

// Open opens the catalog at path in read-only mode. It never takes a
// write lock, so the desktop app is never blocked by an export run.
func Open(path string) (*Reader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.ErrCatalogMissing(path).WithCause(err)
	}

	// mode=ro keeps us from ever writing. No busy timeout is configured,
	// so a writer lock surfaces immediately as SQLITE_BUSY instead of
	// stalling behind the desktop app.
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, classify(path, err)
	}

	return &Reader{db: db, path: path}, nil
}

// Close releases the catalog session.
func (r *Reader) Close() error {
	return r.db.Close()
}

// Path returns the catalog file path.
func (r *Reader) Path() string {
	return r.path
}

// ListProjects returns every active project, plus trashed ones when
// includeTrashed is set. Ordering is stable across calls within a run:
// active before trashed, each partition sorted by project ID. Projects
// without any revision rows are dropped, since there is nothing to
// export for them.
func (r *Reader) ListProjects(ctx context.Context, includeTrashed bool) ([]Project, error) {
	revs, err := r.loadRevisions(ctx)
	if err != nil {
		return nil, err
	}

	projects, err := r.loadPartition(ctx, "projects", StatusActive, revs)
	if err != nil {
		return nil, err
	}

	if includeTrashed {
		trashed, err := r.loadPartition(ctx, "trash", StatusTrashed, revs)
		if err != nil {
			return nil, err
		}
		projects = append(projects, trashed...)
	}

	return projects, nil
}

func (r *Reader) loadPartition(ctx context.Context, table string, status Status, revs map[string][]Revision) ([]Project, error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("SELECT project_id, IFNULL(title, ''), IFNULL(folder_path, '') FROM %s ORDER BY project_id", table))
	if err != nil {
		return nil, classify(r.path, err)
	}
	defer func() { _ = rows.Close() }()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Title, &p.FolderPath); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		p.Status = status
		p.Title = strings.TrimSpace(p.Title)
		if p.Title == "" {
			// Trashed projects often lose their metadata row; keep the
			// ID visible in the title like the desktop app does.
			if status == StatusTrashed {
				p.Title = "Temp_" + p.ID
			} else {
				p.Title = p.ID
			}
		}
		p.Revisions = revs[p.ID]
		if len(p.Revisions) == 0 {
			continue
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(r.path, err)
	}
	return projects, nil
}

func (r *Reader) loadRevisions(ctx context.Context) (map[string][]Revision, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT project_id, revision_id, IFNULL(created_at, ''), IFNULL(workspace_ref, ''), IFNULL(properties, '{}') FROM revisions ORDER BY project_id, revision_id")
	if err != nil {
		return nil, classify(r.path, err)
	}
	defer func() { _ = rows.Close() }()

	revs := make(map[string][]Revision)
	for rows.Next() {
		var (
			projectID string
			rev       Revision
			createdAt string
			props     string
		)
		if err := rows.Scan(&projectID, &rev.ID, &createdAt, &rev.PackageRef, &props); err != nil {
			return nil, fmt.Errorf("scan revision row: %w", err)
		}
		rev.CreatedAt = parseTimestamp(createdAt)
		rev.ThumbnailRef = thumbnailRef(props)
		revs[projectID] = append(revs[projectID], rev)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(r.path, err)
	}

	// ORDER BY already gives chronological order per project, but revision
	// IDs assigned by older app versions are not guaranteed monotonic with
	// time, so sort by timestamp with ID as tiebreaker.
	for _, rs := range revs {
		sort.SliceStable(rs, func(i, j int) bool {
			if !rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
				return rs[i].CreatedAt.Before(rs[j].CreatedAt)
			}
			return rs[i].ID < rs[j].ID
		})
	}
	return revs, nil
}

// thumbnailRef extracts the preview reference from a revision's
// properties JSON. The dark variant wins when both are present, matching
// what the desktop app shows by default.
func thumbnailRef(props string) string {
	if ref := gjson.Get(props, "thumbnailDark"); ref.Exists() && ref.String() != "" {
		return ref.String()
	}
	return gjson.Get(props, "thumbnailLight").String()
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// classify maps driver errors onto the catalog error taxonomy. Busy means
// the desktop app holds the write lock and the caller may retry; a schema
// mismatch means the store format changed and retrying is pointless.
func classify(path string, err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy"):
		return errors.ErrCatalogBusy(path).WithCause(err)
	case strings.Contains(msg, "no such table") || strings.Contains(msg, "no such column"):
		return errors.ErrCatalogCorrupt(path, err.Error())
	case strings.Contains(msg, "not a database") || strings.Contains(msg, "malformed"):
		return errors.ErrCatalogCorrupt(path, err.Error())
	default:
		return fmt.Errorf("query catalog: %w", err)
	}
}
