package cmd

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"

	"github.com/abdullathedruid/vtsession/internal/debug"
	"github.com/abdullathedruid/vtsession/internal/terminal"
	"github.com/abdullathedruid/vtsession/internal/tmux"
)

var (
	replayCols       int
	replayRows       int
	replayPane       string
	replayHistory    int
	replayScrollback bool
)

var replayCmd = &cobra.Command{
	Use:   "replay [FILE|-]",
	Short: "Interpret a recorded byte stream and print the result",
	Long: `Feed a recorded terminal byte stream through a session and print its
debug dump. The stream is read from FILE, from stdin when FILE is "-", or
captured from a tmux pane with --tmux-pane.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().IntVar(&replayCols, "cols", 0, "Columns (default from config)")
	replayCmd.Flags().IntVar(&replayRows, "rows", 0, "Rows (default from config)")
	replayCmd.Flags().StringVar(&replayPane, "tmux-pane", "", "Capture the stream from this tmux session")
	replayCmd.Flags().IntVar(&replayHistory, "history", 0, "Lines of tmux history to capture")
	replayCmd.Flags().BoolVar(&replayScrollback, "scrollback", false, "Also print the scrollback after the dump")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, name, err := replayInput(cmd, args)
	if err != nil {
		return err
	}

	conn, far := terminal.NewPipe(name)
	h, err := newHeadless(cfg, conn, replayCols, replayRows)
	if err != nil {
		return err
	}
	defer h.close()

	go func() {
		far.Write(data)
		far.Close()
	}()
	if !h.wait(10 * time.Second) {
		return errors.New("replay did not finish")
	}

	in := debug.New(h.s)
	out := cmd.OutOrStdout()
	if err := in.Dump(out); err != nil {
		return err
	}
	if replayScrollback {
		for _, line := range in.History() {
			if _, err := io.WriteString(out, line+"\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

func replayInput(cmd *cobra.Command, args []string) ([]byte, string, error) {
	if replayPane != "" {
		out, err := tmux.NewClient().CapturePane(replayPane, replayHistory)
		if err != nil {
			return nil, "", err
		}
		// capture-pane separates lines with bare newlines.
		return bytes.ReplaceAll(out, []byte("\n"), []byte("\r\n")), replayPane, nil
	}
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, "", errors.WrapPrefix(err, "read stdin", 0)
		}
		return data, "stdin", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, "", errors.WrapPrefix(err, "read replay file", 0)
	}
	return data, args[0], nil
}
