package tui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchFile reports writes to the database file at path, including its WAL
// and shared-memory sidecars. Bursts of writes within delay are coalesced
// into a single notification. The channel is closed when ctx is done.
func WatchFile(ctx context.Context, path string, delay time.Duration) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	// SQLite replaces sidecar files, so watch the directory and filter by name.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	base := filepath.Base(path)

	out := make(chan struct{}, 1)
	send := func() {
		select {
		case out <- struct{}{}:
		default:
			// A notification is already pending.
		}
	}

	go func() {
		defer close(out)
		defer watcher.Close()

		d := newDebouncer(delay)
		defer d.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("database watcher error", "error", err)
				d.Trigger(send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasPrefix(filepath.Base(evt.Name), base) {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				d.Trigger(send)
			}
		}
	}()

	return out, nil
}

// debouncer fires fn once per burst of triggers. fn runs with the lock held,
// so it must not block; once Stop returns fn is never called again.
type debouncer struct {
	mu      sync.Mutex
	timer   *time.Timer
	delay   time.Duration
	stopped bool
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay}
}

func (d *debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || d.timer != nil {
		return
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.timer = nil
		if d.stopped {
			return
		}
		fn()
	})
}

func (d *debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
}
