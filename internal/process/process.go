// Package process inspects the processes running behind a connector so a
// session can be named after what is actually in the foreground.
package process

import (
	"bytes"
	"os/exec"
	"strconv"
	"strings"

	"github.com/go-errors/errors"
)

// Info describes a running process.
type Info struct {
	PID     int
	PPID    int
	Command string // Full command line with arguments
}

// CommandLine returns the full command line for a process.
// Works on macOS and Linux using POSIX-compatible ps flags.
func CommandLine(pid int) (string, error) {
	out, err := ps("-p", strconv.Itoa(pid), "-o", "args=")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Children returns the direct child processes of pid.
func Children(pid int) ([]Info, error) {
	out, err := ps("-eo", "pid=,ppid=,args=")
	if err != nil {
		return nil, err
	}
	var children []Info
	for _, p := range parseTable(out) {
		if p.PPID == pid {
			children = append(children, p)
		}
	}
	return children, nil
}

// ActiveName returns the command name of the program in the foreground of
// a shell: its first child, or the shell itself at an idle prompt.
func ActiveName(shellPID int) (string, error) {
	children, err := Children(shellPID)
	if err != nil {
		return "", err
	}
	if len(children) > 0 {
		return commandName(children[0].Command), nil
	}
	cmdLine, err := CommandLine(shellPID)
	if err != nil {
		return "", err
	}
	return commandName(cmdLine), nil
}

func ps(args ...string) (string, error) {
	cmd := exec.Command("ps", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", errors.Errorf("ps %s: %v: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// parseTable parses "PID PPID ARGS..." lines.
func parseTable(out string) []Info {
	var procs []Info
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		ppid, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		procs = append(procs, Info{
			PID:     pid,
			PPID:    ppid,
			Command: strings.Join(fields[2:], " "),
		})
	}
	return procs
}

// commandName extracts the command name from a full command line.
// Handles paths like "/usr/local/bin/node" -> "node" and login shells
// like "-zsh" -> "zsh".
func commandName(cmdLine string) string {
	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return ""
	}
	cmd := parts[0]
	if idx := strings.LastIndex(cmd, "/"); idx >= 0 {
		cmd = cmd[idx+1:]
	}
	return strings.TrimPrefix(cmd, "-")
}
