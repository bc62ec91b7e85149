package catalog

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/looking-glass-station/shapr3d-backup/internal/errors"
)

// CatalogFile is the catalog's file name inside the storage directory.
const CatalogFile = "projectStorage.db"

// packagePattern matches the Shapr3D app package directory anywhere
// under the Windows Packages tree.
const packagePattern = "**/Shapr3D.Shapr3D*"

// DefaultPackagesRoot returns the Windows per-user Packages directory
// that holds store-app data.
func DefaultPackagesRoot() (string, error) {
	if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
		return filepath.Join(dir, "Packages"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "AppData", "Local", "Packages"), nil
}

// Locate finds the Shapr3D package root under root and returns it.
// The package root is the directory whose LocalState/storage holds the
// catalog; all blob refs in the catalog are relative to it.
func Locate(root string) (string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), packagePattern)
	if err != nil {
		return "", errors.ErrCatalogMissing(root).WithCause(err)
	}
	sort.Strings(matches)

	for _, m := range matches {
		candidate := filepath.Join(root, filepath.FromSlash(m))
		if fi, err := os.Stat(candidate); err != nil || !fi.IsDir() {
			continue
		}
		if _, err := os.Stat(CatalogPath(candidate)); err == nil {
			return candidate, nil
		}
	}
	return "", errors.ErrCatalogMissing(root)
}

// CatalogPath returns the catalog file path under a package root.
func CatalogPath(packageRoot string) string {
	return filepath.Join(packageRoot, "LocalState", "storage", CatalogFile)
}

// IsPackageRoot reports whether dir holds a catalog, whatever it is
// named. Lets --source-root point straight at a copied package root.
func IsPackageRoot(dir string) bool {
	_, err := os.Stat(CatalogPath(dir))
	return err == nil
}
