package terminal

import (
	"io"
	"testing"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipe_ReadsFarWrites(t *testing.T) {
	p, far := NewPipe("test")
	assert.Equal(t, "test", p.Name())

	go func() {
		far.WriteString("hello")
		far.Close()
	}()

	data, err := io.ReadAll(p)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestPipe_CollectsWritesAndResizes(t *testing.T) {
	p, far := NewPipe("test")

	_, err := p.Write([]byte("ls\r"))
	require.NoError(t, err)
	require.NoError(t, p.Resize(80, 24))
	require.NoError(t, p.Resize(100, 30))

	assert.Equal(t, "ls\r", far.Sent())
	assert.Equal(t, []Size{{80, 24}, {100, 30}}, far.Resizes())
}

func TestPipe_Close(t *testing.T) {
	p, _ := NewPipe("test")

	done := make(chan error, 1)
	go func() {
		_, err := p.Read(make([]byte, 8))
		done <- err
	}()

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.True(t, errors.Is(<-done, ErrClosed))

	_, err := p.Write([]byte("x"))
	assert.True(t, errors.Is(err, ErrClosed))
	assert.True(t, errors.Is(p.Resize(1, 1), ErrClosed))
	assert.True(t, p.Closed())
}

func TestPipe_FailWrites(t *testing.T) {
	p, far := NewPipe("test")
	boom := errors.New("boom")
	far.FailWrites(boom)

	_, err := p.Write([]byte("x"))
	assert.True(t, errors.Is(err, boom))
	assert.Empty(t, far.Sent())
}
