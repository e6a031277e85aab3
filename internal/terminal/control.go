package terminal

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/creack/pty"
	"github.com/go-errors/errors"
)

// outputPattern matches "%output %<pane-id> <data>" lines.
// The line may be prefixed with DCS escape sequences like \033P1000p
var outputPattern = regexp.MustCompile(`%output %(\d+) (.*)$`)

// maxKeysPerCommand bounds a single send-keys line.
const maxKeysPerCommand = 256

// Tmux connects to a tmux session through control mode (tmux -CC). Pane
// output arrives as octal-escaped %output notifications; input is sent
// as hex send-keys commands.
type Tmux struct {
	target string
	cmd    *exec.Cmd
	pty    *os.File

	outputCh chan []byte
	doneCh   chan struct{}
	pending  []byte

	mu        sync.Mutex
	closeOnce sync.Once
}

// StartTmux attaches to the tmux session target in control mode.
func StartTmux(target string, cols, rows int) (*Tmux, error) {
	t := &Tmux{
		target:   target,
		outputCh: make(chan []byte, 100),
		doneCh:   make(chan struct{}),
	}
	t.cmd = exec.Command("tmux", "-CC", "attach-session", "-t", target)

	// tmux needs a real terminal even in control mode.
	var err error
	t.pty, err = pty.StartWithSize(t.cmd, winsize(cols, rows))
	if err != nil {
		return nil, errors.WrapPrefix(err, "start tmux control mode", 0)
	}

	go t.readOutput()

	// Resizing away and back forces tmux to send a full redraw.
	if err := t.Resize(max(cols-1, 1), max(rows-1, 1)); err != nil {
		t.Close()
		return nil, err
	}
	if err := t.Resize(cols, rows); err != nil {
		t.Close()
		return nil, err
	}
	return t, nil
}

// readOutput reads control mode lines until tmux exits or the connector
// is closed.
func (t *Tmux) readOutput() {
	defer close(t.outputCh)

	scanner := bufio.NewScanner(t.pty)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if isExitLine(line) {
			return
		}
		data, ok := parseOutputLine(line)
		if !ok {
			continue
		}
		select {
		case t.outputCh <- data:
		case <-t.doneCh:
			return
		}
	}
}

func isExitLine(line string) bool {
	return line == "%exit" || strings.HasPrefix(line, "%exit ")
}

// parseOutputLine parses a "%output %N <data>" line and returns decoded data.
func parseOutputLine(line string) ([]byte, bool) {
	matches := outputPattern.FindStringSubmatch(line)
	if matches == nil {
		return nil, false
	}
	return decodeOctal(matches[2]), true
}

// decodeOctal converts \NNN octal escapes and \\ to bytes.
func decodeOctal(s string) []byte {
	result := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		if s[i] == '\\' && i+3 < len(s) &&
			isOctalDigit(s[i+1]) && isOctalDigit(s[i+2]) && isOctalDigit(s[i+3]) {
			val, _ := strconv.ParseUint(s[i+1:i+4], 8, 8)
			result = append(result, byte(val))
			i += 4
			continue
		}
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == '\\' {
			result = append(result, '\\')
			i += 2
			continue
		}
		result = append(result, s[i])
		i++
	}
	return result
}

func isOctalDigit(b byte) bool {
	return b >= '0' && b <= '7'
}

// Read returns decoded pane output.
func (t *Tmux) Read(p []byte) (int, error) {
	if len(t.pending) == 0 {
		select {
		case data, ok := <-t.outputCh:
			if !ok {
				return 0, io.EOF
			}
			t.pending = data
		case <-t.doneCh:
			return 0, ErrClosed
		}
	}
	n := copy(p, t.pending)
	t.pending = t.pending[n:]
	return n, nil
}

// Write sends raw input bytes to the attached pane.
func (t *Tmux) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isDone() {
		return 0, ErrClosed
	}
	for _, cmd := range sendKeysCommands(t.target, p) {
		if _, err := io.WriteString(t.pty, cmd); err != nil {
			return 0, errors.WrapPrefix(err, "send keys", 0)
		}
	}
	return len(p), nil
}

// sendKeysCommands encodes p as one or more "send-keys -H" lines.
func sendKeysCommands(target string, p []byte) []string {
	var cmds []string
	for len(p) > 0 {
		n := min(len(p), maxKeysPerCommand)
		var sb strings.Builder
		fmt.Fprintf(&sb, "send-keys -t %s -H", target)
		for _, b := range p[:n] {
			sb.WriteByte(' ')
			sb.WriteString(hex.EncodeToString([]byte{b}))
		}
		sb.WriteByte('\n')
		cmds = append(cmds, sb.String())
		p = p[n:]
	}
	return cmds
}

// Resize tells tmux about the new client size.
func (t *Tmux) Resize(cols, rows int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isDone() {
		return ErrClosed
	}

	pty.Setsize(t.pty, winsize(cols, rows))

	cmd := fmt.Sprintf("refresh-client -C %d,%d\n", cols, rows)
	if _, err := io.WriteString(t.pty, cmd); err != nil {
		return errors.WrapPrefix(err, "refresh client", 0)
	}
	return nil
}

// Name returns the tmux target.
func (t *Tmux) Name() string {
	return "tmux:" + t.target
}

// Close detaches from tmux. The tmux session keeps running.
func (t *Tmux) Close() error {
	t.closeOnce.Do(func() {
		close(t.doneCh)
		t.pty.Close()
		if t.cmd.Process != nil {
			t.cmd.Process.Kill()
			t.cmd.Wait()
		}
	})
	return nil
}

func (t *Tmux) isDone() bool {
	select {
	case <-t.doneCh:
		return true
	default:
		return false
	}
}
