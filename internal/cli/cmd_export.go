package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/looking-glass-station/shapr3d-backup/internal/blob"
	"github.com/looking-glass-station/shapr3d-backup/internal/catalog"
	"github.com/looking-glass-station/shapr3d-backup/internal/config"
	"github.com/looking-glass-station/shapr3d-backup/internal/export"
)

// newExportCmd creates the export command
func newExportCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export projects into the backup directory",
		Long: `Export native .shapr packages from local Shapr3D storage.

Active projects land under Current/, trashed ones (with
--include-tempstate) under Trashed/. Each project gets its own folder,
named after its title and ID so projects with the same name never
collide, with the package file plus an extracted thumbnail.jpg.

A package already present in the backup directory is skipped without
being re-read, so reruns are cheap. The first run over a large library
will take a while.

Examples:
  shaprbackup export --export-dir D:\Backup\shapr
  shaprbackup export --export-dir D:\Backup\shapr --include-tempstate
  shaprbackup export --export-dir D:\Backup\shapr --add-revision=false
  shaprbackup export --export-dir D:\Backup\shapr --dry-run`,
		// Binding happens at run time: only the executing command's
		// flags may own the shared viper keys.
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd,
				"export_dir", "export-dir",
				"include_tempstate", "include-tempstate",
				"add_revision", "add-revision",
				"jobs", "jobs",
				"source_root", "source-root",
			)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromViper(viper.GetViper())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runExport(ctx, cfg, dryRun)
		},
	}

	flags := cmd.Flags()
	flags.String("export-dir", "", "destination directory for exports (required)")
	flags.Bool("include-tempstate", false, "include TempState (trashed) projects")
	flags.Bool("add-revision", true, "export every revision, not just the latest")
	flags.Int("jobs", 1, "number of concurrent exports")
	flags.String("source-root", "", "Shapr3D package root (default: auto-detect)")
	flags.BoolVar(&dryRun, "dry-run", false, "print the plan without writing anything")

	return cmd
}

func runExport(ctx context.Context, cfg config.Config, dryRun bool) error {
	root, err := resolveSourceRoot(cfg)
	if err != nil {
		return err
	}

	reader, err := catalog.Open(catalog.CatalogPath(root))
	if err != nil {
		return err
	}
	defer reader.Close()

	projects, err := reader.ListProjects(ctx, cfg.IncludeTempState)
	if err != nil {
		return err
	}

	namer := export.Namer{Root: cfg.ExportDir}
	plan := export.Plan(projects, namer, export.Options{AddRevision: cfg.AddRevision})

	if dryRun {
		printPlan(plan)
		return nil
	}

	showProgress := verbose || isatty.IsTerminal(os.Stdout.Fd())
	exec := &export.Executor{
		Store: blob.NewStore(root),
		Jobs:  cfg.Jobs,
		Report: func(res export.Result) {
			reportItem(res, showProgress)
		},
	}

	summary, runErr := exec.Run(ctx, plan)
	fmt.Printf("Done. Exported %d, skipped %d, failed %d (run %s).\n",
		summary.Exported, summary.Skipped, summary.Failed, summary.RunID)

	if runErr != nil {
		fmt.Fprintln(os.Stderr, "Interrupted; already exported packages are intact.")
	}
	// Per-item failures are already reported; the run itself succeeded.
	return nil
}

// resolveSourceRoot picks the Shapr3D package root: an explicit
// source_root wins, otherwise the Windows Packages tree is searched.
func resolveSourceRoot(cfg config.Config) (string, error) {
	if cfg.SourceRoot != "" {
		if catalog.IsPackageRoot(cfg.SourceRoot) {
			return cfg.SourceRoot, nil
		}
		return catalog.Locate(cfg.SourceRoot)
	}
	packages, err := catalog.DefaultPackagesRoot()
	if err != nil {
		return "", err
	}
	return catalog.Locate(packages)
}

func printPlan(plan []export.PlanItem) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ACTION\tPROJECT\tREV\tTARGET")
	for _, item := range plan {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			item.Action, item.Project.Title, item.Revision.ID, item.PackagePath)
	}
	w.Flush()
}

func reportItem(res export.Result, showProgress bool) {
	switch res.Outcome {
	case export.OutcomeExported:
		if showProgress {
			fmt.Printf("Exported: %s\n", res.Item.PackagePath)
		}
	case export.OutcomeSkipped:
		if showProgress && verbose {
			fmt.Printf("Skip (exists): %s\n", res.Item.PackagePath)
		}
	case export.OutcomeFailed:
		fmt.Fprintf(os.Stderr, "Failed: %s: %v\n", filepath.Base(res.Item.PackagePath), res.Err)
	}
	if res.Warning != nil {
		fmt.Fprintf(os.Stderr, "Warning: %s: %v\n", res.Item.Project.Title, res.Warning)
	}
}
