package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-errors/errors"
)

// reloadDelay coalesces the burst of events an editor produces on save.
const reloadDelay = 50 * time.Millisecond

// Watch reloads the config file at path whenever it changes and passes the
// result to fn. The directory is watched rather than the file so that
// editors which save by rename are followed. Watching stops when ctx is
// done.
func Watch(ctx context.Context, path string, fn func(*Config, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapPrefix(err, "watch config", 0)
	}
	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return errors.WrapPrefix(err, "watch config", 0)
	}

	go func() {
		defer w.Close()

		timer := time.NewTimer(reloadDelay)
		timer.Stop()
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					timer.Reset(reloadDelay)
				}

			case <-timer.C:
				fn(LoadFile(path))

			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}
