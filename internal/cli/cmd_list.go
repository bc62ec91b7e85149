package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/looking-glass-station/shapr3d-backup/internal/catalog"
	"github.com/looking-glass-station/shapr3d-backup/internal/config"
)

// newListCmd creates the list command
func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects in the local catalog",
		Long: `List the projects shaprbackup can see, without exporting anything.

Example:
  shaprbackup list
  shaprbackup list --include-tempstate`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd,
				"include_tempstate", "include-tempstate",
				"source_root", "source-root",
			)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromViper(viper.GetViper())
			if err != nil {
				return err
			}

			root, err := resolveSourceRoot(cfg)
			if err != nil {
				return err
			}

			reader, err := catalog.Open(catalog.CatalogPath(root))
			if err != nil {
				return err
			}
			defer reader.Close()

			projects, err := reader.ListProjects(cmd.Context(), cfg.IncludeTempState)
			if err != nil {
				return err
			}

			if len(projects) == 0 {
				fmt.Println("No projects found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tREVISIONS\tTITLE")
			for _, p := range projects {
				status := "current"
				if p.Status == catalog.StatusTrashed {
					status = "trashed"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", p.ID, status, len(p.Revisions), truncate(p.Title, 50))
			}
			w.Flush()
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Bool("include-tempstate", false, "include TempState (trashed) projects")
	flags.String("source-root", "", "Shapr3D package root (default: auto-detect)")

	return cmd
}

// truncate shortens s to max display runes. Cutting by rune, not byte,
// keeps multibyte titles valid UTF-8 at the cut point.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
