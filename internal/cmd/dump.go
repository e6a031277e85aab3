package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/abdullathedruid/vtsession/internal/debug"
	"github.com/abdullathedruid/vtsession/internal/terminal"
)

var (
	dumpCols    int
	dumpRows    int
	dumpTimeout time.Duration
	dumpInput   string
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] -- COMMAND [ARGS...]",
	Short: "Run a command headless and print its final screen",
	Long: `Run a command under a pseudo-terminal without a display, then print the
session's debug dump: size, cursor, damage, parser statistics and the grid.

The command runs until it exits or --timeout passes. --input is pasted into
the session after a short delay, for driving interactive programs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().IntVar(&dumpCols, "cols", 0, "Columns (default from config)")
	dumpCmd.Flags().IntVar(&dumpRows, "rows", 0, "Rows (default from config)")
	dumpCmd.Flags().DurationVar(&dumpTimeout, "timeout", 5*time.Second, "Stop waiting after this long")
	dumpCmd.Flags().StringVar(&dumpInput, "input", "", "Text to paste into the session")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cols, rows := cfg.Cols, cfg.Rows
	if dumpCols > 0 {
		cols = dumpCols
	}
	if dumpRows > 0 {
		rows = dumpRows
	}

	conn, err := terminal.StartPTY(terminal.Command{
		Path: args[0],
		Args: args[1:],
		Env:  []string{"TERM=" + cfg.Term},
	}, cols, rows)
	if err != nil {
		return err
	}
	h, err := newHeadless(cfg, conn, cols, rows)
	if err != nil {
		return err
	}
	defer h.close()

	if err := h.paste(dumpInput, 200*time.Millisecond); err != nil {
		return err
	}
	h.wait(dumpTimeout)
	return debug.New(h.s).Dump(cmd.OutOrStdout())
}
