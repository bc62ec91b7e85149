package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestExportErrorMessage(t *testing.T) {
	err := ErrCatalogBusy("/tmp/projectStorage.db")
	msg := err.Error()
	if !strings.Contains(msg, "locked") {
		t.Errorf("message missing lock hint: %q", msg)
	}
	if !strings.Contains(msg, "/tmp/projectStorage.db") {
		t.Errorf("message missing path: %q", msg)
	}
}

func TestExportErrorCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := ErrWriteFailed("/backup/Current/Bike_a1/Bike_a1.shapr", cause)

	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("cause not included in message: %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("Unwrap chain does not reach cause")
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", ErrBlobMissing("resources/abc"))
	if !stderrors.Is(err, &ExportError{Code: CodeBlobMissing}) {
		t.Error("Is should match on code through wrapping")
	}
	if stderrors.Is(err, &ExportError{Code: CodeWriteFailed}) {
		t.Error("Is should not match a different code")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("list projects: %w", ErrCatalogCorrupt("db", "no such table: projects"))
	if !HasCode(err, CodeCatalogCorrupt) {
		t.Error("HasCode should find CATALOG_CORRUPT through wrapping")
	}
	if HasCode(err, CodeCatalogBusy) {
		t.Error("HasCode matched wrong code")
	}
	if HasCode(stderrors.New("plain"), CodeCatalogBusy) {
		t.Error("HasCode matched a non-ExportError")
	}
}

func TestFatal(t *testing.T) {
	if !ErrCatalogCorrupt("db", "x").Fatal() {
		t.Error("catalog corruption should be fatal")
	}
	if ErrBlobMissing("ref").Fatal() {
		t.Error("missing blob should not be fatal")
	}
	if ErrWriteFailed("p", nil).Fatal() {
		t.Error("write failure should not be fatal")
	}
}

func TestUserMessage(t *testing.T) {
	msg := ErrCatalogMissing("/home/user").UserMessage()
	for _, want := range []string{"Error:", "Why:", "Fix:"} {
		if !strings.Contains(msg, want) {
			t.Errorf("UserMessage missing %q section:\n%s", want, msg)
		}
	}
}
