package task

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"tools.zach/dev/sigrace"
)

// pollInterval is the stat interval used when fsnotify is unavailable.
const pollInterval = 500 * time.Millisecond

// WatchChange returns an operation that resolves with the path of the first
// file written or created under dir, skipping paths that match any of the
// doublestar ignore globs (matched against the path relative to dir, with
// forward slashes). A positive settle delays the result so a burst of writes
// to the same save operation coalesces into one event.
//
// fsnotify is the primary mechanism; if the platform watcher cannot be set
// up, the operation falls back to stat-based directory polling. The
// operation waits indefinitely for a change, which is what makes it a useful
// subject for [sigrace.WithInterruptAsError].
func WatchChange(dir string, ignore []string, settle time.Duration) sigrace.Op[string] {
	return func(ctx context.Context) (string, error) {
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			slog.Info("fsnotify unavailable, falling back to polling", "error", err)
			return pollChange(ctx, dir, ignore, settle, pollInterval)
		}
		defer fsw.Close()

		if err := fsw.Add(dir); err != nil {
			slog.Info("cannot watch directory, falling back to polling", "path", dir, "error", err)
			return pollChange(ctx, dir, ignore, settle, pollInterval)
		}

		for {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case event, ok := <-fsw.Events:
				if !ok {
					return "", errors.New("watcher closed unexpectedly")
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if ignored(dir, event.Name, ignore) {
					continue
				}
				if err := wait(ctx, settle); err != nil {
					return "", err
				}
				return event.Name, nil
			case err, ok := <-fsw.Errors:
				if !ok {
					return "", errors.New("watcher closed unexpectedly")
				}
				slog.Info("fsnotify error, switching to polling", "error", err)
				return pollChange(ctx, dir, ignore, settle, pollInterval)
			}
		}
	}
}

// pollChange scans dir every interval and resolves with the first file whose
// modification time advances past the initial snapshot, or that appears
// after it.
func pollChange(ctx context.Context, dir string, ignore []string, settle, interval time.Duration) (string, error) {
	seen := snapshot(dir)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
			current := snapshot(dir)
			for path, mod := range current {
				if prev, ok := seen[path]; ok && !mod.After(prev) {
					continue
				}
				if ignored(dir, path, ignore) {
					continue
				}
				if err := wait(ctx, settle); err != nil {
					return "", err
				}
				return path, nil
			}
			seen = current
		}
	}
}

// snapshot returns the modification time of each regular file directly in dir.
func snapshot(dir string) map[string]time.Time {
	mods := make(map[string]time.Time)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return mods
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		mods[filepath.Join(dir, e.Name())] = info.ModTime()
	}
	return mods
}

// ignored reports whether path matches any ignore glob. Patterns are matched
// against the slash-separated path relative to dir; a path outside dir is
// never ignored.
func ignored(dir, path string, ignore []string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range ignore {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

// wait sleeps for d unless the context is cancelled first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
