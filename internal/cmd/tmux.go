package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdullathedruid/vtsession/internal/tmux"
)

var tmuxLsCmd = &cobra.Command{
	Use:   "tmux-ls",
	Short: "List tmux sessions that run --tmux can attach to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listTmux(cmd, tmux.NewClient())
	},
}

func init() {
	rootCmd.AddCommand(tmuxLsCmd)
}

func listTmux(cmd *cobra.Command, client tmux.Client) error {
	sessions, err := client.ListSessions()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "no tmux sessions")
		return nil
	}
	for _, s := range sessions {
		attached := ""
		if s.Attached {
			attached = " (attached)"
		}
		fmt.Fprintf(out, "%-20s %3dx%-3d %d windows  %s%s\n",
			s.Name, s.Width, s.Height, s.WindowCount, s.Created.Format("2006-01-02 15:04"), attached)
	}
	return nil
}
