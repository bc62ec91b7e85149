// Package export turns catalog projects into files under the backup
// directory: deterministic target naming, an upfront plan, and an
// executor that materializes planned items atomically.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/looking-glass-station/shapr3d-backup/internal/catalog"
)

// Subdirectories of the export root, one per catalog partition.
const (
	CurrentDir = "Current"
	TrashedDir = "Trashed"
)

// ThumbnailFile is the preview image name inside a project folder.
const ThumbnailFile = "thumbnail.jpg"

// PackageExt is the native package extension.
const PackageExt = ".shapr"

// Namer derives output paths from project identity and status. The
// mapping from (project ID, status) to folder is injective: the folder
// name always carries the project ID, so two projects sharing a display
// name never collide, and an unchanged catalog reproduces byte-identical
// paths on every run.
type Namer struct {
	// Root is the export directory all paths live under.
	Root string
}

// FolderFor returns the project's folder under the export root.
func (n Namer) FolderFor(p catalog.Project) string {
	dir := CurrentDir
	if p.Status == catalog.StatusTrashed {
		dir = TrashedDir
	}
	return filepath.Join(n.Root, dir, baseName(p))
}

// PackagePath returns the target path for one revision's package file.
// When withRevision is set the revision number is embedded in the file
// name, so each historical revision gets its own target.
func (n Namer) PackagePath(p catalog.Project, rev catalog.Revision, withRevision bool) string {
	name := baseName(p)
	if withRevision && rev.ID > 0 {
		name = fmt.Sprintf("%s [rev-%d]", name, rev.ID)
	}
	return filepath.Join(n.FolderFor(p), name+PackageExt)
}

// ThumbnailPath returns the preview image path in the project folder.
func (n Namer) ThumbnailPath(p catalog.Project) string {
	return filepath.Join(n.FolderFor(p), ThumbnailFile)
}

func baseName(p catalog.Project) string {
	return Sanitize(p.Title) + "_" + Sanitize(p.ID)
}

// reserved covers path separators and the characters Windows refuses in
// file names.
const reserved = `/\:*?"<>|`

// Sanitize maps a display name to a valid filesystem entry. Reserved
// and control characters become underscores; trailing dots and spaces,
// which Windows strips silently, are trimmed so the name round-trips.
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || strings.ContainsRune(reserved, r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	s := strings.Trim(b.String(), " .")
	if s == "" {
		return "untitled"
	}
	return s
}
