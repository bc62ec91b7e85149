// Package catalog reads project and revision metadata from Shapr3D's
// embedded SQLite store. The catalog is owned by the desktop app and is
// strictly read-only to this tool.
package catalog

import "time"

// Status is a project's catalog partition.
type Status string

const (
	// StatusActive marks a live project.
	StatusActive Status = "active"
	// StatusTrashed marks a deleted-but-retained project.
	StatusTrashed Status = "trashed"
)

// Project is one logical design project with its revision history.
type Project struct {
	ID         string
	Title      string
	FolderPath string
	Status     Status

	// Revisions in chronological order, newest last. Always non-empty
	// for projects returned by a Reader.
	Revisions []Revision
}

// Latest returns the newest revision.
func (p Project) Latest() Revision {
	return p.Revisions[len(p.Revisions)-1]
}

// Revision is one saved state of a project. Refs are paths relative to
// the Shapr3D package root, resolved by the blob store.
type Revision struct {
	ID        int64
	CreatedAt time.Time

	// PackageRef points at the workspace payload for this revision.
	PackageRef string

	// ThumbnailRef points at the resource blob holding the preview
	// image; empty when the revision has no thumbnail.
	ThumbnailRef string
}
