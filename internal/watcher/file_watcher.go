package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches a fixed set of files using fsnotify, falling back to
// polling when fsnotify cannot be initialized. Events are debounced and
// delivered in batches.
type FileWatcher struct {
	fsWatcher      *fsnotify.Watcher
	pollWatcher    *PollingWatcher
	useFsnotify    bool
	debouncer      *Debouncer
	targets        map[string]struct{}
	events         chan []FileEvent
	errors         chan error
	stopCh         chan struct{}
	opts           Options
	mu             sync.RWMutex
	stopped        bool
	droppedBatches atomic.Uint64
}

// NewFileWatcher creates a watcher with the given options.
func NewFileWatcher(opts Options) (*FileWatcher, error) {
	opts = opts.WithDefaults()

	w := &FileWatcher{
		debouncer: NewDebouncer(opts.DebounceWindow),
		targets:   make(map[string]struct{}),
		events:    make(chan []FileEvent, opts.EventBufferSize),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
		opts:      opts,
	}

	fsw, err := fsnotify.NewWatcher()
	if err == nil {
		w.fsWatcher = fsw
		w.useFsnotify = true
	} else {
		slog.Warn("fsnotify unavailable, falling back to polling",
			slog.String("error", err.Error()))
		w.pollWatcher = NewPollingWatcher(opts.PollInterval)
	}

	return w, nil
}

// Start watches paths until Stop is called or ctx is cancelled. Missing files
// are allowed; their creation is reported.
func (w *FileWatcher) Start(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no files to watch")
	}

	abs := make([]string, 0, len(paths))
	w.mu.Lock()
	for _, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			w.mu.Unlock()
			return fmt.Errorf("resolve absolute path: %w", err)
		}
		w.targets[a] = struct{}{}
		abs = append(abs, a)
	}
	w.mu.Unlock()

	go w.forwardDebouncedEvents(ctx)

	if w.useFsnotify {
		return w.startFsnotify(ctx, abs)
	}
	return w.startPolling(ctx, abs)
}

// startFsnotify watches the parent directory of every target.
func (w *FileWatcher) startFsnotify(ctx context.Context, targets []string) error {
	dirs := make(map[string]struct{})
	for _, t := range targets {
		dirs[filepath.Dir(t)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleFsnotifyEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

// startPolling forwards polling events through the debouncer.
func (w *FileWatcher) startPolling(ctx context.Context, targets []string) error {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			case event, ok := <-w.pollWatcher.Events():
				if !ok {
					return
				}
				w.add(event.Path, event.Operation)
			case err, ok := <-w.pollWatcher.Errors():
				if !ok {
					return
				}
				w.emitError(err)
			}
		}
	}()

	return w.pollWatcher.Start(ctx, targets...)
}

// handleFsnotifyEvent converts fsnotify events for watched files.
func (w *FileWatcher) handleFsnotifyEvent(event fsnotify.Event) {
	var op Operation
	switch {
	case event.Op&fsnotify.Create != 0:
		op = OpCreate
	case event.Op&fsnotify.Write != 0:
		op = OpModify
	case event.Op&fsnotify.Remove != 0:
		op = OpDelete
	case event.Op&fsnotify.Rename != 0:
		op = OpRename
	default:
		// chmod and unknown operations
		return
	}
	w.add(event.Name, op)
}

// add queues an event for a watched path. Other paths in the same
// directories are ignored.
func (w *FileWatcher) add(path string, op Operation) {
	w.mu.RLock()
	_, watched := w.targets[filepath.Clean(path)]
	w.mu.RUnlock()
	if !watched {
		return
	}

	if w.opts.isConfig(path) {
		op = OpConfigChange
	}
	w.debouncer.Add(FileEvent{
		Path:      path,
		Operation: op,
		Timestamp: time.Now(),
	})
}

// forwardDebouncedEvents forwards debounced events to the output channel.
func (w *FileWatcher) forwardDebouncedEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case events, ok := <-w.debouncer.Output():
			if !ok {
				return
			}
			if len(events) == 0 {
				continue
			}
			w.emitEvents(events)
		}
	}
}

// emitEvents sends events to the output channel.
func (w *FileWatcher) emitEvents(events []FileEvent) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return
	}

	select {
	case w.events <- events:
	default:
		count := w.droppedBatches.Add(1)
		slog.Warn("event buffer full, dropping batch",
			slog.Int("batch_size", len(events)),
			slog.Uint64("total_dropped_batches", count),
		)
	}
}

// DroppedBatches returns the number of event batches dropped due to buffer overflow.
func (w *FileWatcher) DroppedBatches() uint64 {
	return w.droppedBatches.Load()
}

// emitError sends an error to the error channel.
func (w *FileWatcher) emitError(err error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return
	}

	select {
	case w.errors <- err:
	default:
	}
}

// Stop stops the watcher and releases resources.
// Safe to call multiple times.
func (w *FileWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}

	w.stopped = true
	close(w.stopCh)
	w.debouncer.Stop()

	if w.fsWatcher != nil {
		_ = w.fsWatcher.Close()
	}
	if w.pollWatcher != nil {
		_ = w.pollWatcher.Stop()
	}

	close(w.events)
	close(w.errors)
	return nil
}

// Events returns the channel of batched file events.
func (w *FileWatcher) Events() <-chan []FileEvent {
	return w.events
}

// Errors returns the channel of errors.
func (w *FileWatcher) Errors() <-chan error {
	return w.errors
}

// WatcherType returns the type of watcher being used ("fsnotify" or "polling").
func (w *FileWatcher) WatcherType() string {
	if w.useFsnotify {
		return "fsnotify"
	}
	return "polling"
}
