// Package blob resolves catalog references into readable byte sources.
// Payloads live on disk under the Shapr3D package root, alongside but
// separate from the catalog itself.
package blob

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/looking-glass-station/shapr3d-backup/internal/catalog"
	"github.com/looking-glass-station/shapr3d-backup/internal/errors"
)

// ErrNoThumbnail reports that a revision simply has no thumbnail. This
// is a normal outcome, distinct from a referenced-but-missing blob.
var ErrNoThumbnail = stderrors.New("revision has no thumbnail")

// Store reads blobs referenced by catalog revisions. Refs are paths
// relative to the package root; anything escaping the root is rejected.
type Store struct {
	root string
}

// NewStore returns a store rooted at the Shapr3D package directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// OpenPackage opens the workspace payload for a revision.
func (s *Store) OpenPackage(rev catalog.Revision) (io.ReadCloser, error) {
	if rev.PackageRef == "" {
		return nil, errors.ErrBlobMissing(fmt.Sprintf("revision %d has no package reference", rev.ID))
	}
	return s.open(rev.PackageRef)
}

// OpenThumbnail opens the resource blob holding a revision's preview
// image. Returns ErrNoThumbnail when the revision has none; a reference
// that cannot be resolved is a BlobMissing error.
func (s *Store) OpenThumbnail(rev catalog.Revision) (io.ReadCloser, error) {
	if rev.ThumbnailRef == "" {
		return nil, ErrNoThumbnail
	}
	return s.open(rev.ThumbnailRef)
}

func (s *Store) open(ref string) (io.ReadCloser, error) {
	path := filepath.Join(s.root, filepath.FromSlash(ref))

	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, errors.ErrBlobMissing(ref)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrBlobMissing(ref)
		}
		return nil, fmt.Errorf("open blob %s: %w", ref, err)
	}
	return f, nil
}
