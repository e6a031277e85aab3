package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdullathedruid/vtsession/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vtsession %s\n", version.Short())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
