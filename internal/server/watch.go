package server

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// relevantOps are the events that change a file's content. Editors often
// save by renaming a temporary file over the original, so the parent
// directory is watched rather than the file itself.
const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watch calls onChange with the path of any of paths that is written,
// created, removed or renamed, until ctx is canceled. It returns ErrWatch
// when a directory cannot be watched.
func Watch(ctx context.Context, paths []string, log *zap.Logger, onChange func(path string)) error {
	if log == nil {
		log = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWatch, err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			log.Warn("closing watcher", zap.Error(err))
		}
	}()

	files := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrWatch, p, err)
		}
		files[abs] = true

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrWatch, dir, err)
		}
		dirs[dir] = true
		log.Debug("watching", zap.String("dir", dir))
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&relevantOps == 0 || !files[filepath.Clean(event.Name)] {
				continue
			}
			log.Debug("file event", zap.String("path", event.Name), zap.Stringer("op", event.Op))
			onChange(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))
		}
	}
}
