package discover

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DeusData/i18n-extract/internal/errors"
	"github.com/DeusData/i18n-extract/internal/lang"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

func relPaths(files []FileInfo) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.RelPath)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDiscoverBasic(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "main.go", "app.py", "README.md", "web/app.tsx", "web/types.d.ts", "node_modules/lib/index.js", "dist/app.min.js")

	files, err := Discover(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	want := []string{"app.py", "main.go", "web/app.tsx", "web/types.d.ts"}
	if got := relPaths(files); !equal(got, want) {
		t.Fatalf("files = %v, want %v", got, want)
	}
	if files[3].Language != lang.TypeScript {
		t.Errorf("declaration file language = %s, want typescript", files[3].Language)
	}
	for _, f := range files {
		if !filepath.IsAbs(f.Path) {
			t.Errorf("expected absolute Path, got %s", f.Path)
		}
	}
	if files[2].Language != lang.TSX {
		t.Errorf("language = %s, want tsx", files[2].Language)
	}
}

func TestDiscoverIncludeExclude(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"src/a.ts", "src/a.test.ts", "src/ui/b.tsx", "scripts/c.js", "src/gen/d.ts")

	files, err := Discover(context.Background(), dir, &Options{
		Include: []string{"src/**/*.ts", "src/**/*.tsx"},
		Exclude: []string{"!**/*.test.ts", "src/gen"},
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{"src/a.ts", "src/ui/b.tsx"}
	if got := relPaths(files); !equal(got, want) {
		t.Fatalf("files = %v, want %v", got, want)
	}
}

func TestDiscoverIgnoreFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.js", "legacy/b.js")
	if err := os.WriteFile(filepath.Join(dir, IgnoreFileName), []byte("# old code\nlegacy/**\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	files, err := Discover(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got := relPaths(files); !equal(got, []string{"a.js"}) {
		t.Fatalf("files = %v", got)
	}
}

func TestDiscoverConfigErrors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.js")

	_, err := Discover(context.Background(), filepath.Join(dir, "missing"), nil)
	if !errors.IsConfig(err) {
		t.Fatalf("missing base: want ConfigError, got %v", err)
	}
	_, err = Discover(context.Background(), filepath.Join(dir, "a.js"), nil)
	if !errors.IsConfig(err) {
		t.Fatalf("file base: want ConfigError, got %v", err)
	}
	_, err = Discover(context.Background(), dir, &Options{Include: []string{"src/[a-"}})
	if !errors.IsConfig(err) {
		t.Fatalf("bad glob: want ConfigError, got %v", err)
	}
}

func TestDiscoverCancellation(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "main.go")

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // pre-cancel

	_, err := Discover(ctx, dir, nil)
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFromPaths(t *testing.T) {
	dir := t.TempDir()
	files, skipped := FromPaths(dir, []string{"b.py", "a.js", "notes.txt", "a.js"})
	if got := relPaths(files); !equal(got, []string{"a.js", "b.py"}) {
		t.Fatalf("files = %v", got)
	}
	if len(skipped) != 1 || !errors.IsPerFile(skipped[0]) {
		t.Fatalf("skipped = %v", skipped)
	}
}
