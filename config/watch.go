package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchRules watches a rules file and invokes onChange with each valid
// update. Updates that fail validation are logged and dropped; the last
// good rules stay active. WatchRules blocks until ctx is done.
func WatchRules(ctx context.Context, path string, logger *slog.Logger, onChange func(*Rules)) error {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors replace the file on save, which drops
	// a watch installed on the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			rules, err := LoadRules(path)
			if err != nil {
				logger.Warn("Ignoring invalid rules update",
					slog.String("path", path),
					slog.String("error", err.Error()))
				continue
			}
			logger.Info("Reloaded rules", slog.String("path", path))
			onChange(rules)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Rules watcher error", slog.String("error", err.Error()))
		}
	}
}
