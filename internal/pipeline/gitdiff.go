package pipeline

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/DeusData/i18n-extract/internal/errors"
	"github.com/DeusData/i18n-extract/internal/lang"
)

// DiffScope controls which changes to include.
type DiffScope string

const (
	DiffUnstaged DiffScope = "unstaged"
	DiffStaged   DiffScope = "staged"
	DiffAll      DiffScope = "all"
	DiffBranch   DiffScope = "branch"
)

// ParseDiffScope validates a scope name. The empty string means unstaged.
func ParseDiffScope(s string) (DiffScope, error) {
	switch DiffScope(s) {
	case "", DiffUnstaged:
		return DiffUnstaged, nil
	case DiffStaged, DiffAll, DiffBranch:
		return DiffScope(s), nil
	}
	return "", errors.NewConfigError("git-diff", s, fmt.Errorf("want unstaged, staged, all or branch"))
}

// ChangedFile represents a file with a status from git diff --name-status.
type ChangedFile struct {
	Status  string // M, A, D, R (modified, added, deleted, renamed)
	Path    string
	OldPath string // non-empty only for renames
}

// ChangedPaths lists the files under base that git reports as changed in
// scope and that have a supported extension. Deleted files are left out.
// The result is never nil, so it can be used as Options.Paths directly.
func ChangedPaths(ctx context.Context, base string, scope DiffScope, baseBranch string) ([]string, error) {
	args := append(buildDiffArgs(scope, baseBranch), "--name-status", "--relative")
	output, err := runGit(ctx, base, args)
	if err != nil {
		return nil, err
	}
	paths := []string{}
	for _, cf := range ParseNameStatusOutput(output) {
		if cf.Status == "D" {
			continue
		}
		paths = append(paths, cf.Path)
	}
	slog.Debug("pipeline.git_diff", "scope", scope, "files", len(paths))
	return paths, nil
}

func buildDiffArgs(scope DiffScope, baseBranch string) []string {
	base := []string{"diff"}
	switch scope {
	case DiffStaged:
		return append(base, "--cached")
	case DiffAll:
		return append(base, "HEAD")
	case DiffBranch:
		if baseBranch == "" {
			baseBranch = "main"
		}
		return append(base, baseBranch+"...HEAD")
	default: // unstaged
		return base
	}
}

// ParseNameStatusOutput parses the raw output of git diff --name-status,
// keeping only files the extractor has a grammar for.
func ParseNameStatusOutput(output string) []ChangedFile {
	var files []ChangedFile
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		status := parts[0]
		cf := ChangedFile{Path: parts[1]}

		// Renames and copies: R100\told\tnew
		if strings.HasPrefix(status, "R") || strings.HasPrefix(status, "C") {
			cf.Status = status[:1]
			cf.OldPath = parts[1]
			if len(parts) >= 3 {
				cf.Path = parts[2]
			}
		} else {
			cf.Status = status[:1]
		}

		if _, ok := lang.LanguageForExtension(filepath.Ext(cf.Path)); !ok {
			continue
		}
		files = append(files, cf)
	}
	return files
}

// runGit executes a git command in dir and returns stdout.
func runGit(ctx context.Context, dir string, args []string) (string, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return "", errors.NewConfigError("git-diff", "git", fmt.Errorf("git not found in PATH"))
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, gitPath, args...)
	cmd.Dir = dir

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) && len(exitErr.Stderr) == 0 {
			// git diff exits 1 with differences in some modes; the output is still valid
			slog.Debug("git.exit", "code", exitErr.ExitCode(), "args", args)
			return string(output), nil
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return string(output), nil
}
