package compiler

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/windjammer-lang/windjammer/internal/build"
	"github.com/windjammer-lang/windjammer/internal/errors"
)

// DefaultDebounce is how long Watch waits for events to settle before
// rebuilding.
const DefaultDebounce = 100 * time.Millisecond

// BuildFunc receives the outcome of every build Watch performs.
type BuildFunc func(report *Report, err error)

// Watcher rebuilds a path whenever the content of its sources changes.
type Watcher struct {
	driver   *Driver
	path     string
	Debounce time.Duration
	// OnBuild is called after each build, including the initial one.
	OnBuild BuildFunc

	snapshot build.Snapshot
}

// NewWatcher creates a watcher for path, a source file or directory.
func (d *Driver) NewWatcher(path string, onBuild BuildFunc) *Watcher {
	return &Watcher{driver: d, path: path, Debounce: DefaultDebounce, OnBuild: onBuild}
}

// watchRoot is the directory holding the watched sources
func (w *Watcher) watchRoot() (string, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		return "", errors.ReadFailed(w.path, err)
	}
	if info.IsDir() {
		return w.path, nil
	}
	return filepath.Dir(w.path), nil
}

// Run builds once and then after every settled change until ctx is done.
// Builds whose sources hash the same as the previous build are skipped.
func (w *Watcher) Run(ctx context.Context) error {
	root, err := w.watchRoot()
	if err != nil {
		return err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(root); err != nil {
		return errors.ReadFailed(root, err)
	}

	w.rebuild(ctx, true)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.driver.log.Debug("watch: %s %s", ev.Op, ev.Name)
			if timer == nil {
				timer = time.NewTimer(w.Debounce)
			} else {
				timer.Reset(w.Debounce)
			}
			fire = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.driver.log.Warn("watch: %v", err)
		case <-fire:
			fire = nil
			w.rebuild(ctx, false)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if filepath.Ext(ev.Name) != SourceExt {
		return false
	}
	if info, err := os.Stat(w.path); err == nil && !info.IsDir() {
		return filepath.Clean(ev.Name) == filepath.Clean(w.path)
	}
	return true
}

func (w *Watcher) rebuild(ctx context.Context, initial bool) {
	files, err := Discover(w.path)
	if err != nil {
		w.report(nil, err)
		return
	}
	snap, err := build.SnapshotFiles(files)
	if err != nil {
		w.report(nil, errors.ReadFailed(w.path, err))
		return
	}
	if !initial {
		changed, removed := build.Diff(w.snapshot, snap)
		if len(changed) == 0 && len(removed) == 0 {
			w.driver.log.Debug("watch: sources unchanged, skipping build")
			return
		}
		for _, p := range changed {
			w.driver.log.Info("changed: %s", p)
		}
		for _, p := range removed {
			w.driver.log.Info("removed: %s", p)
		}
	}
	w.snapshot = snap
	w.report(w.driver.Build(ctx, w.path))
}

func (w *Watcher) report(r *Report, err error) {
	if w.OnBuild != nil {
		w.OnBuild(r, err)
	}
}
