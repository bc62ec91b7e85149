// Package main provides the entry point for the shaprbackup CLI.
package main

import (
	"fmt"
	"os"

	"github.com/looking-glass-station/shapr3d-backup/internal/cli"
	"github.com/looking-glass-station/shapr3d-backup/internal/errors"
)

func main() {
	err := cli.Execute()
	if err != nil {
		if ee := errors.AsExportError(err); ee != nil {
			fmt.Fprintln(os.Stderr, ee.UserMessage())
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	os.Exit(cli.ExitCode(err))
}
