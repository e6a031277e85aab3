package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"

	"github.com/abdullathedruid/vtsession/internal/config"
	"github.com/abdullathedruid/vtsession/internal/host"
	"github.com/abdullathedruid/vtsession/internal/terminal"
	"github.com/abdullathedruid/vtsession/internal/tmux"
)

var (
	runTmuxSession string
	runLogFile     string
	runDebug       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive host",
	Long: `Start the interactive host.

New sessions run the configured shell under a pseudo-terminal. With --tmux,
sessions attach to tmux sessions instead (NAME, NAME-2, ...), creating them
when they do not exist.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func addRunFlags(c *cobra.Command) {
	c.Flags().StringVar(&runTmuxSession, "tmux", "", "Attach sessions to tmux sessions with this base name")
	c.Flags().StringVar(&runLogFile, "log-file", "", "Log file (default <data_dir>/vtsession.log)")
	c.Flags().BoolVar(&runDebug, "debug", false, "Log at debug level")
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	logger, closeLog, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	sp := &spawner{cfg: cfg, base: runTmuxSession, log: logger}
	if runTmuxSession != "" {
		client := tmux.NewClient()
		if v, err := client.Version(); err != nil {
			return fmt.Errorf("tmux not available: %w", err)
		} else if !tmux.AtLeast(v, 2, 9) {
			logger.Warn("tmux may not support control mode resize", "version", v)
		}
		sp.tmux = client
	}

	app, err := host.New(host.Options{
		Config:     cfg,
		ConfigPath: configFile(cfg),
		Spawn:      sp.spawn,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	logger.Info("starting", "config", configFile(cfg), "tmux", runTmuxSession)
	return app.Run(cmd.Context())
}

func openLog(cfg *config.Config) (*slog.Logger, func(), error) {
	path := runLogFile
	if path == "" {
		path = cfg.LogFile()
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, errors.WrapPrefix(err, "open log file", 0)
	}
	level := slog.LevelInfo
	if runDebug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { f.Close() }, nil
}

// spawner opens connectors for the host. It runs on the gocui main loop,
// so n needs no locking.
type spawner struct {
	cfg  *config.Config
	tmux tmux.Client
	base string
	n    int
	log  *slog.Logger
}

func (s *spawner) spawn(cols, rows int) (terminal.Connector, error) {
	if s.tmux == nil {
		p, err := terminal.StartPTY(shellCommand(s.cfg), cols, rows)
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	s.n++
	name := s.base
	if s.n > 1 {
		name = fmt.Sprintf("%s-%d", s.base, s.n)
	}
	if !s.tmux.HasSession(name) {
		dir, _ := os.Getwd()
		argv := append([]string{s.cfg.Shell}, s.cfg.ShellArgs...)
		if err := s.tmux.CreateSession(name, dir, cols, rows, argv); err != nil {
			return nil, err
		}
		s.log.Info("created tmux session", "name", name)
	}
	t, err := terminal.StartTmux(name, cols, rows)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func shellCommand(cfg *config.Config) terminal.Command {
	return terminal.Command{
		Path: cfg.Shell,
		Args: cfg.ShellArgs,
		Env:  []string{"TERM=" + cfg.Term},
	}
}
