package terminal

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPTY_RunsCommand(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	p, err := StartPTY(Command{Path: "/bin/sh", Args: []string{"-c", "printf ready"}}, 40, 10)
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	defer p.Close()

	assert.Equal(t, "sh", p.Name())

	out, err := io.ReadAll(p)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(out), "ready"), "output %q", out)

	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Resize(10, 10), ErrClosed)
}
