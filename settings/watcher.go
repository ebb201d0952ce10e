package settings

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces the burst of fsnotify events an editor or an
// atomic rename produces into a single reload.
const debounceDelay = 200 * time.Millisecond

// Watch reloads the settings file whenever it changes on disk and passes
// the result to fn. The watch runs until ctx is cancelled. The parent
// directory is watched rather than the file itself so atomic
// replace-by-rename is picked up.
func Watch(ctx context.Context, path string, fn func(Settings)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		var pending *time.Timer
		reload := func() {
			s, err := Load(path)
			if err != nil {
				slog.Warn("settings reload failed", "path", path, "error", err)
				return
			}
			fn(s)
		}

		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(debounceDelay, reload)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("settings watcher error", "error", err)
			case <-ctx.Done():
				if pending != nil {
					pending.Stop()
				}
				return
			}
		}
	}()

	return nil
}
