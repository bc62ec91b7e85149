package export

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
)

// packageMetadata is the .metadata entry embedded in every exported
// package, mirroring what the desktop app writes so re-imports resolve
// back to the same cloud project.
type packageMetadata struct {
	RemoteID         string `json:"remoteID"`
	RevisionID       int64  `json:"revisionID"`
	LocalChangeCount int    `json:"localChangeCount"`
}

// WritePackage streams a revision's workspace payload into w as a
// native .shapr archive: the workspace itself, a .metadata JSON entry,
// and an empty .export_log.
func WritePackage(w io.Writer, workspace io.Reader, projectID string, revisionID int64) error {
	zw := zip.NewWriter(w)

	if _, err := zw.Create(".export_log"); err != nil {
		return fmt.Errorf("create .export_log entry: %w", err)
	}

	meta, err := json.MarshalIndent(packageMetadata{
		RemoteID:   projectID,
		RevisionID: revisionID,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	metaEntry, err := zw.Create(".metadata")
	if err != nil {
		return fmt.Errorf("create .metadata entry: %w", err)
	}
	if _, err := metaEntry.Write(meta); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	wsEntry, err := zw.Create("workspace")
	if err != nil {
		return fmt.Errorf("create workspace entry: %w", err)
	}
	if _, err := io.Copy(wsEntry, workspace); err != nil {
		return fmt.Errorf("copy workspace: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}
