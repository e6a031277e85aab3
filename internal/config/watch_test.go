package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scrollback_lines: 100\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu   sync.Mutex
		last *Config
		errs []error
	)
	require.NoError(t, Watch(ctx, path, func(cfg *Config, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, err)
			return
		}
		last = cfg
	}))

	require.NoError(t, os.WriteFile(path, []byte("scrollback_lines: 250\n"), 0644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return last != nil && last.ScrollbackLines == 250
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, errs)
}

func TestWatch_ReportsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan error, 4)
	require.NoError(t, Watch(ctx, path, func(_ *Config, err error) {
		select {
		case got <- err:
		default:
		}
	}))

	require.NoError(t, os.WriteFile(path, []byte("cols: -1\n"), 0644))

	select {
	case err := <-got:
		assert.ErrorIs(t, err, ErrInvalid)
	case <-time.After(2 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan struct{}, 1)
	require.NoError(t, Watch(ctx, path, func(*Config, error) {
		select {
		case got <- struct{}{}:
		default:
		}
	}))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("cols: 1\n"), 0644))

	select {
	case <-got:
		t.Fatal("reload triggered by an unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "config.yaml"), func(*Config, error) {})
	assert.Error(t, err)
}
