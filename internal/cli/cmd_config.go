package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/looking-glass-station/shapr3d-backup/internal/config"
)

// newConfigCmd creates the config command
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage shaprbackup configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a starter config file with default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfgFile
			if path == "" {
				var err error
				path, err = config.DefaultPath()
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Println("Wrote", path)
			return nil
		},
	})

	return cmd
}
