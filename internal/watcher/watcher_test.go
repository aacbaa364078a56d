package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/DeusData/i18n-extract/internal/pipeline"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSnapshotsEqual(t *testing.T) {
	now := time.Now()

	a := map[string]fileSnapshot{
		"main.go": {modTime: now, size: 100},
		"util.go": {modTime: now, size: 200},
	}
	b := map[string]fileSnapshot{
		"main.go": {modTime: now, size: 100},
		"util.go": {modTime: now, size: 200},
	}
	if !snapshotsEqual(a, b) {
		t.Error("identical snapshots should be equal")
	}

	// Different size
	c := map[string]fileSnapshot{
		"main.go": {modTime: now, size: 101},
		"util.go": {modTime: now, size: 200},
	}
	if snapshotsEqual(a, c) {
		t.Error("different size should not be equal")
	}

	// Different mtime
	d := map[string]fileSnapshot{
		"main.go": {modTime: now.Add(time.Second), size: 100},
		"util.go": {modTime: now, size: 200},
	}
	if snapshotsEqual(a, d) {
		t.Error("different mtime should not be equal")
	}

	// Missing file
	e := map[string]fileSnapshot{
		"main.go": {modTime: now, size: 100},
	}
	if snapshotsEqual(a, e) {
		t.Error("different file count should not be equal")
	}

	// Both empty
	if !snapshotsEqual(map[string]fileSnapshot{}, map[string]fileSnapshot{}) {
		t.Error("both empty should be equal")
	}
}

func TestPollInterval(t *testing.T) {
	tests := []struct {
		files    int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{499, 1 * time.Second},
		{500, 2 * time.Second},
		{2000, 5 * time.Second},
		{10000, 21 * time.Second},
		{100000, 60 * time.Second},
	}
	for _, tt := range tests {
		got := pollInterval(tt.files)
		if got != tt.expected {
			t.Errorf("pollInterval(%d) = %v, want %v", tt.files, got, tt.expected)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestCaptureSnapshot(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "main.go"), "package main\n")
	writeFile(t, filepath.Join(tmpDir, "README.md"), "# readme\n")
	writeFile(t, filepath.Join(tmpDir, "node_modules/lib.js"), "gettext('x')\n")

	snap, err := captureSnapshot(context.Background(), tmpDir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap) != 1 {
		t.Fatalf("expected only main.go, got %v", snap)
	}
	s, ok := snap["main.go"]
	if !ok {
		t.Fatal("expected main.go in snapshot")
	}
	if s.size == 0 || s.modTime.IsZero() {
		t.Errorf("unexpected snapshot entry %+v", s)
	}

	now := time.Now().Add(time.Second)
	if err := os.Chtimes(filepath.Join(tmpDir, "main.go"), now, now); err != nil {
		t.Fatal(err)
	}
	snap2, err := captureSnapshot(context.Background(), tmpDir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if snapshotsEqual(snap, snap2) {
		t.Error("snapshots should differ after mtime change")
	}
}

func newTestWatcher(dir string, events *[]Event) *Watcher {
	return New(Options{
		Pipeline: pipeline.Options{Base: dir, Workers: 1},
		OnRun:    func(ev Event) { *events = append(*events, ev) },
	})
}

func TestWatcherPollDetectsChanges(t *testing.T) {
	tmpDir := t.TempDir()
	app := filepath.Join(tmpDir, "app.py")
	writeFile(t, app, `gettext("Hello")`+"\n")

	var events []Event
	w := newTestWatcher(tmpDir, &events)
	ctx := context.Background()

	snap, err := w.capture(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.extract(ctx, snap); err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Previous != "" || !events[0].Changed() {
		t.Fatalf("initial run should report a new catalog, got %+v", events)
	}

	// No change: no run
	w.poll(ctx)
	if len(events) != 1 {
		t.Fatalf("no-change poll should not re-extract, got %d runs", len(events))
	}

	// Touch without changing messages: runs, catalog unchanged
	now := time.Now().Add(time.Second)
	if err := os.Chtimes(app, now, now); err != nil {
		t.Fatal(err)
	}
	w.poll(ctx)
	if len(events) != 2 {
		t.Fatalf("touched file should re-extract, got %d runs", len(events))
	}
	if events[1].Changed() {
		t.Error("same messages should keep the fingerprint")
	}

	// New message in a new file
	writeFile(t, filepath.Join(tmpDir, "web/ui.js"), `gettext("Bye");`)
	w.poll(ctx)
	if len(events) != 3 {
		t.Fatalf("new file should re-extract, got %d runs", len(events))
	}
	if !events[2].Changed() {
		t.Error("new message should change the fingerprint")
	}
	if got := events[2].Result.Catalog.Stats().Messages; got != 2 {
		t.Errorf("expected 2 messages, got %d", got)
	}
}

func TestWatcherSkipsMissingRoot(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "a.js"), `gettext("A");`)

	var events []Event
	w := newTestWatcher(tmpDir, &events)
	ctx := context.Background()
	snap, err := w.capture(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.extract(ctx, snap); err != nil {
		t.Fatal(err)
	}

	w.opts.Pipeline.Base = filepath.Join(tmpDir, "gone")
	before := time.Now()
	w.poll(ctx)
	if len(events) != 1 {
		t.Errorf("missing root should not re-extract, got %d runs", len(events))
	}
	if w.nextPoll.Sub(before) < maxInterval-time.Second {
		t.Errorf("missing root should back off, next poll in %v", w.nextPoll.Sub(before))
	}
}

func TestWatcherRunInitialFailure(t *testing.T) {
	w := New(Options{Pipeline: pipeline.Options{Base: filepath.Join(t.TempDir(), "missing")}})
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing base")
	}
}

func TestWatcherCancellation(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "a.js"), `gettext("A");`)

	ran := make(chan Event, 1)
	w := New(Options{
		Pipeline: pipeline.Options{Base: tmpDir},
		OnRun:    func(ev Event) { ran <- ev },
		Notify:   true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("initial run not reported")
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v after cancellation", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop after context cancellation")
	}
}

func TestWatcherNotifyWakesPoll(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "src/a.js"), `gettext("A");`)

	ran := make(chan Event, 16)
	w := New(Options{
		Pipeline: pipeline.Options{Base: tmpDir},
		OnRun: func(ev Event) {
			select {
			case ran <- ev:
			default:
			}
		},
		Notify: true,
		// Long enough that only fsnotify can trigger the second run
		Tick:     time.Hour,
		Interval: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("initial run not reported")
	}

	writeFile(t, filepath.Join(tmpDir, "src/a.js"), `gettext("A"); gettext("B");`)

	// A wake-up may land between truncate and write; wait for the final state.
	deadline := time.After(10 * time.Second)
	for {
		select {
		case ev := <-ran:
			if !ev.Changed() {
				continue
			}
			if ev.Result.Catalog.Stats().Messages == 2 {
				return
			}
		case <-deadline:
			t.Fatal("fsnotify event did not trigger a run with both messages")
		}
	}
}
