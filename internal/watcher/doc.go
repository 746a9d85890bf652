// Package watcher re-runs work when a small set of files changes.
//
// A FileWatcher observes individual files (the input document, an annotation
// ranges file, the project config) rather than directory trees. fsnotify
// watches the parent directories so that editors which save by renaming a
// temporary file are still noticed; polling is used where fsnotify cannot be
// initialized. Events are debounced so a burst of writes triggers one re-run.
//
// Usage:
//
//	w, err := watcher.NewFileWatcher(watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	go func() { _ = w.Start(ctx, "report.json", ".pagemark.yaml") }()
//
//	for batch := range w.Events() {
//	    // re-run
//	}
package watcher
