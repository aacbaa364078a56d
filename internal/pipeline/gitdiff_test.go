package pipeline

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeusData/i18n-extract/internal/errors"
)

func TestParseNameStatusOutput(t *testing.T) {
	input := "M\tweb/menu.js\nA\tnew_file.py\nD\told_file.go\nR100\tsrc/old.ts\tsrc/new.ts\n"

	files := ParseNameStatusOutput(input)

	if len(files) != 4 {
		t.Fatalf("expected 4 files, got %d", len(files))
	}

	tests := []struct {
		idx     int
		status  string
		path    string
		oldPath string
	}{
		{0, "M", "web/menu.js", ""},
		{1, "A", "new_file.py", ""},
		{2, "D", "old_file.go", ""},
		{3, "R", "src/new.ts", "src/old.ts"},
	}

	for _, tt := range tests {
		f := files[tt.idx]
		if f.Status != tt.status {
			t.Errorf("[%d] status = %q, want %q", tt.idx, f.Status, tt.status)
		}
		if f.Path != tt.path {
			t.Errorf("[%d] path = %q, want %q", tt.idx, f.Path, tt.path)
		}
		if f.OldPath != tt.oldPath {
			t.Errorf("[%d] oldPath = %q, want %q", tt.idx, f.OldPath, tt.oldPath)
		}
	}
}

func TestParseNameStatusOutput_FiltersUnsupported(t *testing.T) {
	input := "M\tpackage-lock.json\nM\tsrc/main.go\nM\tREADME.md\n"
	files := ParseNameStatusOutput(input)

	if len(files) != 1 {
		t.Fatalf("expected 1 supported file, got %d", len(files))
	}
	if files[0].Path != "src/main.go" {
		t.Errorf("expected src/main.go, got %s", files[0].Path)
	}
}

func TestParseDiffScope(t *testing.T) {
	for _, s := range []string{"", "unstaged", "staged", "all", "branch"} {
		_, err := ParseDiffScope(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseDiffScope("yesterday")
	assert.True(t, errors.IsConfig(err))
}

func TestBuildDiffArgs(t *testing.T) {
	assert.Equal(t, []string{"diff"}, buildDiffArgs(DiffUnstaged, ""))
	assert.Equal(t, []string{"diff", "--cached"}, buildDiffArgs(DiffStaged, ""))
	assert.Equal(t, []string{"diff", "HEAD"}, buildDiffArgs(DiffAll, ""))
	assert.Equal(t, []string{"diff", "main...HEAD"}, buildDiffArgs(DiffBranch, ""))
	assert.Equal(t, []string{"diff", "dev...HEAD"}, buildDiffArgs(DiffBranch, "dev"))
}

func TestGitNotFound(t *testing.T) {
	// Override PATH to ensure git can't be found
	t.Setenv("PATH", t.TempDir())

	_, err := runGit(context.Background(), t.TempDir(), []string{"status"})
	if err == nil {
		t.Fatal("expected error when git is not found")
	}
	if !strings.Contains(err.Error(), "git not found in PATH") {
		t.Errorf("expected 'git not found in PATH' error, got: %v", err)
	}
}

func git(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(cmd.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		"GIT_CONFIG_GLOBAL=/dev/null", "GIT_CONFIG_NOSYSTEM=1")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func TestChangedPathsRun(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app/a.js"), `gettext("A");`)
	writeFile(t, filepath.Join(dir, "app/b.py"), `gettext("B")`)
	writeFile(t, filepath.Join(dir, "app/c.js"), `gettext("C");`)
	git(t, dir, "init", "-q")
	git(t, dir, "add", ".")
	git(t, dir, "commit", "-q", "-m", "init")

	writeFile(t, filepath.Join(dir, "app/a.js"), `gettext("A"); gettext("A2");`)
	git(t, dir, "rm", "-q", "app/c.js")

	// Paths are relative to the base, not the repository root.
	base := filepath.Join(dir, "app")
	paths, err := ChangedPaths(context.Background(), base, DiffAll, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.js"}, paths)

	res, err := Run(context.Background(), Options{Base: base, Paths: paths})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Catalog.Stats().Messages)
	assert.Equal(t, 1, res.Catalog.Stats().FilesParsed)

	// Only the deletion is staged: an empty, non-nil list extracts nothing.
	paths, err = ChangedPaths(context.Background(), base, DiffStaged, "")
	require.NoError(t, err)
	require.NotNil(t, paths)
	res, err = Run(context.Background(), Options{Base: base, Paths: paths})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Catalog.Stats().FilesParsed)
}

func TestChangedPathsNotARepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(t.TempDir()))
	_, err := ChangedPaths(context.Background(), t.TempDir(), DiffUnstaged, "")
	assert.Error(t, err)
}
