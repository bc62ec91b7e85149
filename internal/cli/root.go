// Package cli implements the shaprbackup command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/looking-glass-station/shapr3d-backup/internal/config"
	"github.com/looking-glass-station/shapr3d-backup/internal/errors"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shaprbackup",
	Short: "Incremental backup of Shapr3D projects",
	Long: `shaprbackup exports native .shapr packages from Shapr3D's local
storage into a backup directory, with extracted thumbnails.

Exports are incremental and idempotent: a package already present in the
backup directory is never re-read or re-written, so repeated runs only
pick up what is new.

Quick start:
  shaprbackup export --export-dir D:\Backup\shapr
  shaprbackup list
  shaprbackup export --export-dir D:\Backup\shapr --include-tempstate

Note: this only covers projects synced to this desktop. Files created on
an iPad that never synced here cannot be exported.`,
	SilenceUsage: true,
	// main prints structured errors itself, with fix hints
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// ExitCode maps an Execute error to the process exit code. Catalog-level
// failures get a distinct code so scripted callers can retry later;
// per-item failures never surface here, the run still exits zero.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if ee := errors.AsExportError(err); ee != nil {
		switch ee.Code {
		case errors.CodeCatalogBusy, errors.CodeCatalogCorrupt, errors.CodeCatalogMissing:
			return 2
		}
	}
	return 1
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.shaprbackup/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// bindFlags binds a command's flags onto viper keys, given as
// (key, flag-name) pairs.
func bindFlags(cmd *cobra.Command, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		flag := cmd.Flags().Lookup(pairs[i+1])
		if flag == nil {
			return fmt.Errorf("unknown flag %q", pairs[i+1])
		}
		if err := viper.BindPFlag(pairs[i], flag); err != nil {
			return fmt.Errorf("bind flag %q: %w", pairs[i+1], err)
		}
	}
	return nil
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("$HOME/" + config.ConfigDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
