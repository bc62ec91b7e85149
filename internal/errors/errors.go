// Package errors provides structured error types for shaprbackup.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Code represents a unique error code.
type Code string

// Error codes for shaprbackup.
const (
	// Catalog errors
	CodeCatalogBusy    Code = "CATALOG_BUSY"
	CodeCatalogCorrupt Code = "CATALOG_CORRUPT"
	CodeCatalogMissing Code = "CATALOG_MISSING"

	// Per-item errors
	CodeBlobMissing Code = "BLOB_MISSING"
	CodeWriteFailed Code = "WRITE_FAILED"

	// Config errors
	CodeConfigInvalid Code = "CONFIG_INVALID"
)

// fatalCodes lists codes that abort the whole run. Everything else is
// isolated to the item it occurred on.
var fatalCodes = map[Code]bool{
	CodeCatalogBusy:    true,
	CodeCatalogCorrupt: true,
	CodeCatalogMissing: true,
	CodeConfigInvalid:  true,
}

// ExportError is the structured error type for shaprbackup.
type ExportError struct {
	Code  Code   `json:"code"`
	What  string `json:"what"`
	Why   string `json:"why,omitempty"`
	Fix   string `json:"fix,omitempty"`
	Cause error  `json:"-"`
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	var b strings.Builder
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString(": ")
		b.WriteString(e.Why)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *ExportError) Unwrap() error {
	return e.Cause
}

// UserMessage returns a user-friendly message for CLI output.
func (e *ExportError) UserMessage() string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString("\n\nWhy: ")
		b.WriteString(e.Why)
	}
	if e.Fix != "" {
		b.WriteString("\n\nFix: ")
		b.WriteString(e.Fix)
	}
	return b.String()
}

// Fatal reports whether the error should abort the whole run rather
// than just the item it occurred on.
func (e *ExportError) Fatal() bool {
	return fatalCodes[e.Code]
}

// Is reports whether target is an ExportError with the same code.
func (e *ExportError) Is(target error) bool {
	t, ok := target.(*ExportError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause.
func (e *ExportError) WithCause(err error) *ExportError {
	return &ExportError{
		Code:  e.Code,
		What:  e.What,
		Why:   e.Why,
		Fix:   e.Fix,
		Cause: err,
	}
}

// --- Error constructors ---

// ErrCatalogBusy returns an error for a catalog locked by the desktop app.
func ErrCatalogBusy(path string) *ExportError {
	return &ExportError{
		Code: CodeCatalogBusy,
		What: "catalog is locked by another process",
		Why:  fmt.Sprintf("Shapr3D appears to be holding a write lock on %s", path),
		Fix:  "Close Shapr3D (or wait for a sync to finish) and re-run the export",
	}
}

// ErrCatalogCorrupt returns an error for a catalog missing required
// tables or columns.
func ErrCatalogCorrupt(path, detail string) *ExportError {
	return &ExportError{
		Code: CodeCatalogCorrupt,
		What: "catalog has an unexpected schema",
		Why:  fmt.Sprintf("%s: %s", path, detail),
		Fix:  "The Shapr3D storage format may have changed; update shaprbackup",
	}
}

// ErrCatalogMissing returns an error when no catalog can be found.
func ErrCatalogMissing(root string) *ExportError {
	return &ExportError{
		Code: CodeCatalogMissing,
		What: "no Shapr3D catalog found",
		Why:  fmt.Sprintf("No projectStorage.db under %s", root),
		Fix:  "Point --source-root at the Shapr3D package directory, or run on the machine where Shapr3D is installed",
	}
}

// ErrBlobMissing returns an error for a referenced blob that is absent
// from the content store.
func ErrBlobMissing(ref string) *ExportError {
	return &ExportError{
		Code: CodeBlobMissing,
		What: fmt.Sprintf("blob %s is referenced but missing", ref),
		Why:  "The catalog references a payload that is not present in the resource store",
		Fix:  "Open the project in Shapr3D once so it re-downloads its data, then re-run",
	}
}

// ErrWriteFailed returns an error for a failed target write.
func ErrWriteFailed(path string, cause error) *ExportError {
	return &ExportError{
		Code:  CodeWriteFailed,
		What:  fmt.Sprintf("writing %s failed", path),
		Fix:   "Check free space and permissions on the export directory",
		Cause: cause,
	}
}

// ErrConfigInvalid returns an error for invalid configuration.
func ErrConfigInvalid(field, reason string) *ExportError {
	return &ExportError{
		Code: CodeConfigInvalid,
		What: fmt.Sprintf("invalid configuration: %s", field),
		Why:  reason,
	}
}

// AsExportError attempts to convert an error to an ExportError.
// Returns nil if the error is not an ExportError.
func AsExportError(err error) *ExportError {
	var ee *ExportError
	if stderrors.As(err, &ee) {
		return ee
	}
	return nil
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	ee := AsExportError(err)
	return ee != nil && ee.Code == code
}

// Wrap wraps a generic error into an ExportError with unknown code.
func Wrap(err error, what string) *ExportError {
	return &ExportError{
		Code:  Code("UNKNOWN"),
		What:  what,
		Cause: err,
	}
}
