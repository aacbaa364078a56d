package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/DeusData/i18n-extract/internal/discover"
	"github.com/DeusData/i18n-extract/internal/pipeline"
)

const (
	baseInterval = 1 * time.Second
	maxInterval  = 60 * time.Second
)

type fileSnapshot struct {
	modTime time.Time
	size    int64
}

// Event reports one extraction run triggered by the watcher.
type Event struct {
	Result *pipeline.Result
	// Fingerprint is the catalog fingerprint of Result; Previous is the one
	// before it, empty for the first run.
	Fingerprint string
	Previous    string
}

// Changed reports whether the catalog differs from the previous run.
func (e Event) Changed() bool {
	return e.Fingerprint != e.Previous
}

// Options configure a Watcher.
type Options struct {
	// Pipeline selects the files to watch and how they are extracted.
	Pipeline pipeline.Options
	// OnRun receives every completed run, the initial one included.
	OnRun func(Event)
	// Notify wakes the poller early on fsnotify events.
	Notify bool
	// Tick is how often due polls are checked (default 1s).
	Tick time.Duration
	// Interval fixes the poll interval; 0 adapts it to the file count.
	Interval time.Duration
}

// Watcher polls a source tree and re-extracts its catalog when files change.
type Watcher struct {
	opts        Options
	snapshot    map[string]fileSnapshot
	interval    time.Duration
	nextPoll    time.Time
	fingerprint string
	wake        chan struct{}
}

// New creates a Watcher.
func New(opts Options) *Watcher {
	if opts.Tick <= 0 {
		opts.Tick = baseInterval
	}
	return &Watcher{
		opts: opts,
		wake: make(chan struct{}, 1),
	}
}

// Run extracts once, then blocks until ctx is cancelled, re-extracting
// whenever the watched file set changes. Only a failure of the initial run
// is returned; later failures are logged and retried on the next poll.
func (w *Watcher) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	// Start listening before the initial run so no change slips between them
	if w.opts.Notify {
		fw, err := w.notifier()
		if err != nil {
			slog.Warn("watcher.notify.disabled", "err", err)
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w.forward(ctx, fw)
			}()
		}
	}

	snap, err := w.capture(ctx)
	if err != nil {
		return err
	}
	if err := w.extract(ctx, snap); err != nil {
		return err
	}

	ticker := time.NewTicker(w.opts.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if time.Now().Before(w.nextPoll) {
				continue
			}
			w.poll(ctx)
		case <-w.wake:
			w.poll(ctx)
		}
	}
}

// poll captures a snapshot and re-extracts if it differs from the last one.
func (w *Watcher) poll(ctx context.Context) {
	base := w.opts.Pipeline.Base
	if _, err := os.Stat(base); err != nil {
		slog.Warn("watcher.root_gone", "path", base)
		w.nextPoll = time.Now().Add(maxInterval)
		return
	}

	snap, err := w.capture(ctx)
	if err != nil {
		slog.Warn("watcher.snapshot", "base", base, "err", err)
		w.nextPoll = time.Now().Add(w.interval)
		return
	}

	if snapshotsEqual(w.snapshot, snap) {
		w.schedule(len(snap))
		return
	}

	slog.Info("watcher.changed", "base", base, "files", len(snap))
	if err := w.extract(ctx, snap); err != nil {
		slog.Warn("watcher.extract", "base", base, "err", err)
		// Keep old snapshot so we retry next cycle
		w.nextPoll = time.Now().Add(w.interval)
	}
}

// extract runs the pipeline and, on success, adopts snap as the baseline.
func (w *Watcher) extract(ctx context.Context, snap map[string]fileSnapshot) error {
	res, err := pipeline.Run(ctx, w.opts.Pipeline)
	if err != nil {
		return err
	}
	ev := Event{Result: res, Fingerprint: res.Catalog.Fingerprint(), Previous: w.fingerprint}
	w.fingerprint = ev.Fingerprint
	w.snapshot = snap
	w.schedule(len(snap))
	if ev.Previous != "" && !ev.Changed() {
		slog.Debug("watcher.unchanged", "fingerprint", ev.Fingerprint)
	}
	if w.opts.OnRun != nil {
		w.opts.OnRun(ev)
	}
	return nil
}

func (w *Watcher) schedule(files int) {
	w.interval = w.opts.Interval
	if w.interval <= 0 {
		w.interval = pollInterval(files)
	}
	w.nextPoll = time.Now().Add(w.interval)
}

func (w *Watcher) capture(ctx context.Context) (map[string]fileSnapshot, error) {
	return captureSnapshot(ctx, w.opts.Pipeline.Base, &discover.Options{
		Include: w.opts.Pipeline.Include,
		Exclude: w.opts.Pipeline.Exclude,
	})
}

// captureSnapshot walks the file tree using discover.Discover and captures
// mtime+size for each file.
func captureSnapshot(ctx context.Context, rootPath string, opts *discover.Options) (map[string]fileSnapshot, error) {
	files, err := discover.Discover(ctx, rootPath, opts)
	if err != nil {
		return nil, err
	}

	snap := make(map[string]fileSnapshot, len(files))
	for _, f := range files {
		info, statErr := os.Stat(f.Path)
		if statErr != nil {
			continue
		}
		snap[f.RelPath] = fileSnapshot{
			modTime: info.ModTime(),
			size:    info.Size(),
		}
	}
	return snap, nil
}

// snapshotsEqual returns true if two snapshots have identical files with same mtime+size.
func snapshotsEqual(a, b map[string]fileSnapshot) bool {
	if len(a) != len(b) {
		return false
	}
	for path, aSnap := range a {
		bSnap, ok := b[path]
		if !ok {
			return false
		}
		if !aSnap.modTime.Equal(bSnap.modTime) || aSnap.size != bSnap.size {
			return false
		}
	}
	return true
}

// pollInterval computes the adaptive interval from file count.
// 1s base + 1s per 500 files, capped at 60s.
func pollInterval(fileCount int) time.Duration {
	ms := 1000 + (fileCount/500)*1000
	if ms > 60000 {
		ms = 60000
	}
	return time.Duration(ms) * time.Millisecond
}

// notifier watches every directory under the base that discovery would enter.
func (w *Watcher) notifier() (*fsnotify.Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := addWatchRecursive(fw, w.opts.Pipeline.Base); err != nil {
		fw.Close()
		return nil, err
	}
	return fw, nil
}

// forward turns fsnotify events into non-blocking wake-ups until ctx ends.
func (w *Watcher) forward(ctx context.Context, fw *fsnotify.Watcher) {
	defer fw.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addWatchRecursive(fw, event.Name)
				}
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case w.wake <- struct{}{}:
			default:
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher.notify", "err", err)
		}
	}
}

func addWatchRecursive(fw *fsnotify.Watcher, root string) error {
	root = filepath.Clean(root)
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && discover.IGNORE_PATTERNS[entry.Name()] {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}
