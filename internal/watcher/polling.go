package watcher

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"
)

// PollingWatcher detects changes to a set of files by comparing their
// modification time and size at a fixed interval.
type PollingWatcher struct {
	interval  time.Duration
	paths     []string
	fileState map[string]fileSnapshot
	events    chan FileEvent
	errors    chan error
	stopCh    chan struct{}
	mu        sync.Mutex
	stopped   bool
}

type fileSnapshot struct {
	modTime time.Time
	size    int64
}

// NewPollingWatcher creates a new polling watcher with the given interval.
func NewPollingWatcher(interval time.Duration) *PollingWatcher {
	return &PollingWatcher{
		interval:  interval,
		fileState: make(map[string]fileSnapshot),
		events:    make(chan FileEvent, 100),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
	}
}

// Start polls paths until Stop is called or ctx is cancelled.
func (p *PollingWatcher) Start(ctx context.Context, paths ...string) error {
	p.mu.Lock()
	p.paths = paths
	p.fileState = p.snapshot()
	p.mu.Unlock()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = p.Stop()
			return ctx.Err()
		case <-p.stopCh:
			return nil
		case <-ticker.C:
			p.detectChanges()
		}
	}
}

// Stop stops the polling watcher.
func (p *PollingWatcher) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil
	}

	p.stopped = true
	close(p.stopCh)
	close(p.events)
	close(p.errors)
	return nil
}

// Events returns the channel of file events.
func (p *PollingWatcher) Events() <-chan FileEvent {
	return p.events
}

// Errors returns the channel of errors.
func (p *PollingWatcher) Errors() <-chan error {
	return p.errors
}

// snapshot records the state of every existing path.
// Must be called with lock held.
func (p *PollingWatcher) snapshot() map[string]fileSnapshot {
	state := make(map[string]fileSnapshot, len(p.paths))
	for _, path := range p.paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		state[path] = fileSnapshot{modTime: info.ModTime(), size: info.Size()}
	}
	return state
}

// detectChanges compares current state with previous state and emits events.
func (p *PollingWatcher) detectChanges() {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := p.snapshot()
	for _, path := range p.paths {
		prev, existed := p.fileState[path]
		cur, exists := current[path]
		switch {
		case !existed && exists:
			p.emitEvent(FileEvent{Path: path, Operation: OpCreate, Timestamp: time.Now()})
		case existed && !exists:
			p.emitEvent(FileEvent{Path: path, Operation: OpDelete, Timestamp: time.Now()})
		case exists && (prev.modTime != cur.modTime || prev.size != cur.size):
			p.emitEvent(FileEvent{Path: path, Operation: OpModify, Timestamp: time.Now()})
		}
	}
	p.fileState = current
}

// emitEvent sends an event to the events channel.
// Must be called with lock held.
func (p *PollingWatcher) emitEvent(event FileEvent) {
	if p.stopped {
		return
	}

	select {
	case p.events <- event:
	default:
		slog.Warn("polling watcher buffer full, dropping event",
			slog.String("path", event.Path),
			slog.String("op", event.Operation.String()),
		)
	}
}
