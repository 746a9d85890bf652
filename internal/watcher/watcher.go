package watcher

import (
	"path/filepath"
	"time"
)

// Operation represents a file system operation type.
type Operation int

const (
	// OpCreate indicates a watched file appeared.
	OpCreate Operation = iota
	// OpModify indicates a watched file was written.
	OpModify
	// OpDelete indicates a watched file was removed.
	OpDelete
	// OpRename indicates a watched file was renamed away.
	OpRename
	// OpConfigChange indicates a pagemark config file changed. Callers
	// reload configuration before re-running.
	OpConfigChange
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	case OpConfigChange:
		return "CONFIG_CHANGE"
	default:
		return "UNKNOWN"
	}
}

// FileEvent represents a change to a watched file.
type FileEvent struct {
	// Path is the absolute path of the file.
	Path string

	// Operation is the type of file system operation.
	Operation Operation

	// Timestamp is when the event was detected.
	Timestamp time.Time
}

// Options configures the watcher behavior.
type Options struct {
	// DebounceWindow is the time to wait before emitting coalesced events.
	// Default: 300ms
	DebounceWindow time.Duration

	// PollInterval is the interval for polling mode (fallback).
	// Default: 1s
	PollInterval time.Duration

	// EventBufferSize is the size of the event channel buffer.
	// Default: 16
	EventBufferSize int

	// ConfigNames are file base names reported as OpConfigChange.
	// Default: .pagemark.yaml, .pagemark.yml, config.yaml
	ConfigNames []string
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  300 * time.Millisecond,
		PollInterval:    time.Second,
		EventBufferSize: 16,
		ConfigNames:     []string{".pagemark.yaml", ".pagemark.yml", "config.yaml"},
	}
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.DebounceWindow == 0 {
		o.DebounceWindow = defaults.DebounceWindow
	}
	if o.PollInterval == 0 {
		o.PollInterval = defaults.PollInterval
	}
	if o.EventBufferSize == 0 {
		o.EventBufferSize = defaults.EventBufferSize
	}
	if o.ConfigNames == nil {
		o.ConfigNames = defaults.ConfigNames
	}
	return o
}

func (o Options) isConfig(path string) bool {
	base := filepath.Base(path)
	for _, name := range o.ConfigNames {
		if base == name {
			return true
		}
	}
	return false
}

// HasConfigChange reports whether any event in batch is a config change.
func HasConfigChange(batch []FileEvent) bool {
	for _, e := range batch {
		if e.Operation == OpConfigChange {
			return true
		}
	}
	return false
}
