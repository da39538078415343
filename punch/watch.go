package punch

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/treepunch/treepunch/logging"
)

// DefaultDebounce is the quiet period after the last filesystem event before
// a watch callback fires.
const DefaultDebounce = 300 * time.Millisecond

// Watch monitors root recursively and invokes fn once per burst of
// filesystem changes, after the debounce interval has elapsed without new
// events. Blocks until ctx is cancelled.
func Watch(ctx context.Context, root string, debounce time.Duration, fn func()) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addRecursive(watcher, root); err != nil {
		return err
	}

	l := logging.Sub("watch")
	l.Info("watching external folder", "root", root, "debounce", debounce)

	pending := 0
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			base := filepath.Base(event.Name)
			if strings.HasPrefix(base, ".") {
				continue
			}
			pending++
			timer.Reset(debounce)

			// A created folder needs its own watch; adding a file is a no-op.
			if event.Has(fsnotify.Create) {
				watcher.Add(event.Name) //nolint:errcheck
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.Warn("watch error", "error", err)

		case <-timer.C:
			if pending > 0 {
				l.Info("changes settled", "events", pending)
				pending = 0
				fn()
			}
		}
	}
}

// addRecursive adds root and every non-hidden subfolder to the watcher.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible folders
		}
		if d.IsDir() {
			if strings.HasPrefix(filepath.Base(path), ".") && path != root {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}
