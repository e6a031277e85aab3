package terminal

import (
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"github.com/go-errors/errors"

	"github.com/abdullathedruid/vtsession/internal/process"
)

// Command describes a program to run under a pseudo-terminal.
type Command struct {
	Path string
	Args []string
	Env  []string
	Dir  string
}

// PTY connects to a child process through a pseudo-terminal.
type PTY struct {
	cmd    *exec.Cmd
	f      *os.File
	name   string
	exited chan struct{}

	mu        sync.Mutex
	closeOnce sync.Once
	closed    bool
}

// StartPTY runs c under a new pseudo-terminal of the given size.
func StartPTY(c Command, cols, rows int) (*PTY, error) {
	cmd := exec.Command(c.Path, c.Args...)
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Dir = c.Dir

	f, err := pty.StartWithSize(cmd, winsize(cols, rows))
	if err != nil {
		return nil, errors.WrapPrefix(err, "start pty", 0)
	}

	p := &PTY{
		cmd:    cmd,
		f:      f,
		name:   filepath.Base(c.Path),
		exited: make(chan struct{}),
	}
	go func() {
		cmd.Wait()
		close(p.exited)
	}()
	return p, nil
}

func winsize(cols, rows int) *pty.Winsize {
	return &pty.Winsize{Rows: uint16(max(rows, 1)), Cols: uint16(max(cols, 1))}
}

// Read reads child output. The EIO a pty master reports once the child has
// exited is translated to io.EOF.
func (p *PTY) Read(b []byte) (int, error) {
	n, err := p.f.Read(b)
	if err != nil {
		if errors.Is(err, syscall.EIO) || errors.Is(err, os.ErrClosed) {
			return n, io.EOF
		}
		return n, errors.WrapPrefix(err, "read pty", 0)
	}
	return n, nil
}

// Write sends input to the child.
func (p *PTY) Write(b []byte) (int, error) {
	if p.isClosed() {
		return 0, ErrClosed
	}
	n, err := p.f.Write(b)
	if err != nil {
		return n, errors.WrapPrefix(err, "write pty", 0)
	}
	return n, nil
}

// Resize sets the pty window size, which delivers SIGWINCH to the child.
func (p *PTY) Resize(cols, rows int) error {
	if p.isClosed() {
		return ErrClosed
	}
	if err := pty.Setsize(p.f, winsize(cols, rows)); err != nil {
		return errors.WrapPrefix(err, "resize pty", 0)
	}
	return nil
}

// Name returns the command running in the foreground of the child shell,
// or the started program's name when it has no children.
func (p *PTY) Name() string {
	if p.cmd.Process == nil || p.isClosed() {
		return p.name
	}
	if name, err := process.ActiveName(p.Pid()); err == nil && name != "" {
		return name
	}
	return p.name
}

// Pid returns the child's process ID.
func (p *PTY) Pid() int {
	return p.cmd.Process.Pid
}

// Close kills the child and releases the pty. It is safe to call more than
// once.
func (p *PTY) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()

		p.f.Close()
		if p.cmd.Process != nil {
			p.cmd.Process.Kill()
		}
		<-p.exited
	})
	return nil
}

func (p *PTY) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
