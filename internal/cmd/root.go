// Package cmd implements the vtsession command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abdullathedruid/vtsession/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "vtsession",
	Short: "Run terminal sessions inside a terminal",
	Long: `vtsession hosts one or more terminal sessions in a single window.

Each session runs a program behind a connector (a pseudo-terminal or a
tmux control-mode client), interprets its output into a screen buffer and
redraws only what changed. Run without a subcommand to start the
interactive host.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRun,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default <data_dir>/config.yaml)")
	addRunFlags(rootCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func loadConfig() (*config.Config, error) {
	return config.LoadFile(configPath)
}

func configFile(cfg *config.Config) string {
	if configPath != "" {
		return configPath
	}
	return cfg.ConfigFile()
}
