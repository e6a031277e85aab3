// Package tmux wraps the tmux commands used to find, create and attach to
// sessions that the control-mode connector talks to.
package tmux

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/go-errors/errors"
)

// Session represents a tmux session.
type Session struct {
	Name        string
	Path        string
	Created     time.Time
	Attached    bool
	WindowCount int
	Width       int
	Height      int
}

// Client provides tmux operations.
type Client interface {
	// ListSessions returns all tmux sessions.
	ListSessions() ([]Session, error)
	// HasSession checks if a session exists.
	HasSession(name string) bool
	// CreateSession creates a detached session running command in dir.
	// An empty command runs the default shell.
	CreateSession(name, dir string, cols, rows int, command []string) error
	// KillSession kills the specified session.
	KillSession(name string) error
	// CapturePane returns the visible pane contents with escape sequences
	// preserved, preceded by up to history lines of scrollback.
	CapturePane(name string, history int) ([]byte, error)
	// Version returns the tmux version, e.g. "3.4".
	Version() (string, error)
	// IsInsideTmux returns true if we're running inside a tmux session.
	IsInsideTmux() bool
}

// runFunc runs tmux with args and returns its stdout.
type runFunc func(args ...string) ([]byte, error)

// RealClient implements Client using actual tmux commands.
type RealClient struct {
	run runFunc
}

// NewClient creates a new tmux client.
func NewClient() *RealClient {
	return &RealClient{run: runTmux}
}

func runTmux(args ...string) ([]byte, error) {
	cmd := exec.Command("tmux", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &commandError{args: args, stderr: strings.TrimSpace(stderr.String()), err: err}
	}
	return stdout.Bytes(), nil
}

type commandError struct {
	args   []string
	stderr string
	err    error
}

func (e *commandError) Error() string {
	return fmt.Sprintf("tmux %s: %v: %s", e.args[0], e.err, e.stderr)
}

func (e *commandError) Unwrap() error { return e.err }

const sessionFormat = "#{session_name}\t#{session_path}\t#{session_created}\t#{session_attached}\t#{session_windows}\t#{window_width}\t#{window_height}"

// ListSessions returns all tmux sessions. No server running is not an error.
func (c *RealClient) ListSessions() ([]Session, error) {
	out, err := c.run("list-sessions", "-F", sessionFormat)
	if err != nil {
		var ce *commandError
		if errors.As(err, &ce) &&
			(strings.Contains(ce.stderr, "no server running") || strings.Contains(ce.stderr, "no sessions")) {
			return nil, nil
		}
		return nil, errors.Wrap(err, 0)
	}
	return parseSessions(string(out)), nil
}

// parseSessions parses tmux list-sessions output.
func parseSessions(output string) []Session {
	var sessions []Session
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		parts := strings.Split(line, "\t")
		if len(parts) < 5 {
			continue
		}

		created := time.Now()
		if ts, err := time.Parse("2006-01-02T15:04:05", parts[2]); err == nil {
			created = ts
		} else if epoch, err := parseUnixTimestamp(parts[2]); err == nil {
			created = epoch
		}

		s := Session{
			Name:        parts[0],
			Path:        parts[1],
			Created:     created,
			Attached:    parts[3] != "0" && parts[3] != "",
			WindowCount: atoiOr(parts[4], 1),
		}
		if len(parts) >= 7 {
			s.Width = atoiOr(parts[5], 0)
			s.Height = atoiOr(parts[6], 0)
		}
		sessions = append(sessions, s)
	}
	return sessions
}

func atoiOr(s string, def int) int {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return def
	}
	return n
}

func parseUnixTimestamp(s string) (time.Time, error) {
	var ts int64
	if _, err := fmt.Sscanf(s, "%d", &ts); err != nil {
		return time.Time{}, err
	}
	return time.Unix(ts, 0), nil
}

// HasSession checks if a session exists.
func (c *RealClient) HasSession(name string) bool {
	_, err := c.run("has-session", "-t", name)
	return err == nil
}

// CreateSession creates a new detached tmux session.
func (c *RealClient) CreateSession(name, dir string, cols, rows int, command []string) error {
	args := []string{"new-session", "-d", "-s", name}
	if dir != "" {
		args = append(args, "-c", dir)
	}
	if cols > 0 && rows > 0 {
		args = append(args, "-x", fmt.Sprint(cols), "-y", fmt.Sprint(rows))
	}
	args = append(args, command...)
	if _, err := c.run(args...); err != nil {
		return errors.Wrap(err, 0)
	}
	return nil
}

// KillSession kills a tmux session.
func (c *RealClient) KillSession(name string) error {
	if _, err := c.run("kill-session", "-t", name); err != nil {
		return errors.Wrap(err, 0)
	}
	return nil
}

// CapturePane captures the pane output from a session, keeping escape
// sequences so it can be replayed through an interpreter.
func (c *RealClient) CapturePane(name string, history int) ([]byte, error) {
	args := []string{"capture-pane", "-t", name, "-p", "-e"}
	if history > 0 {
		args = append(args, "-S", fmt.Sprintf("-%d", history))
	}
	out, err := c.run(args...)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	return out, nil
}

// Version returns the tmux version.
func (c *RealClient) Version() (string, error) {
	out, err := c.run("-V")
	if err != nil {
		return "", errors.Wrap(err, 0)
	}
	return parseVersion(string(out)), nil
}

// IsInsideTmux returns true if we're running inside tmux.
func (c *RealClient) IsInsideTmux() bool {
	return os.Getenv("TMUX") != ""
}

// parseVersion strips "tmux " and "next-" from tmux -V output.
func parseVersion(out string) string {
	v := strings.TrimSpace(out)
	v = strings.TrimPrefix(v, "tmux ")
	return strings.TrimPrefix(v, "next-")
}

// AtLeast reports whether version is wantMajor.wantMinor or newer.
// Unparseable versions are treated as new.
func AtLeast(version string, wantMajor, wantMinor int) bool {
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return true
	}

	var major, minor int
	if _, err := fmt.Sscanf(parts[0], "%d", &major); err != nil {
		return true
	}
	// Minor might have suffix like "2a"
	minorStr := strings.TrimRight(parts[1], "abcdefghijklmnopqrstuvwxyz")
	if _, err := fmt.Sscanf(minorStr, "%d", &minor); err != nil {
		return true
	}
	return major > wantMajor || (major == wantMajor && minor >= wantMinor)
}
