package discover

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/DeusData/i18n-extract/internal/errors"
	"github.com/DeusData/i18n-extract/internal/lang"
)

// IGNORE_PATTERNS are directory names to skip during discovery.
var IGNORE_PATTERNS = map[string]bool{
	".cache": true, ".git": true, ".hg": true, ".svn": true,
	".idea": true, ".vscode": true, ".next": true, ".nuxt": true,
	".mypy_cache": true, ".pytest_cache": true, ".tox": true,
	".venv": true, ".yarn": true, ".pnpm-store": true,
	"__pycache__": true, "bower_components": true, "coverage": true,
	"node_modules": true, "site-packages": true, "vendor": true, "venv": true,
}

// IGNORE_SUFFIXES are file suffixes to skip.
var IGNORE_SUFFIXES = map[string]bool{
	".min.js": true, ".bundle.js": true, "~": true,
}

// IgnoreFileName is read from the base directory when Options.IgnoreFile is empty.
const IgnoreFileName = ".i18nignore"

// FileInfo represents a discovered source file.
type FileInfo struct {
	Path     string        // absolute path
	RelPath  string        // relative to base, slash separated
	Language lang.Language // detected language
}

// Options configures file discovery. Patterns are doublestar globs matched
// against slash-separated paths relative to the base directory.
type Options struct {
	// Include limits discovery to matching files. Empty means every
	// supported source file.
	Include []string
	// Exclude drops matching files and directories. A leading "!" is accepted
	// and ignored so "!**/*.test.js" and "**/*.test.js" are equivalent.
	Exclude []string
	// IgnoreFile holds extra exclude patterns, one per line.
	IgnoreFile string
	// OnSkip receives unreadable directories; discovery continues past them.
	OnSkip func(error)
}

// ValidatePatterns rejects malformed glob patterns with a ConfigError.
func ValidatePatterns(field string, patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(strings.TrimPrefix(p, "!")) {
			return errors.NewConfigError(field, p, fmt.Errorf("invalid glob pattern"))
		}
	}
	return nil
}

// shouldSkipDir returns true if the directory should be skipped during discovery.
func shouldSkipDir(name, rel string, exclude []string) bool {
	if IGNORE_PATTERNS[name] {
		return true
	}
	for _, pattern := range exclude {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

func hasIgnoredSuffix(name string) bool {
	for suffix := range IGNORE_SUFFIXES {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// Discover walks base and returns the selected source files in lexical
// order. A missing base or a malformed pattern is a ConfigError.
func Discover(ctx context.Context, base string, opts *Options) ([]FileInfo, error) {
	if opts == nil {
		opts = &Options{}
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, errors.NewConfigError("base", base, err)
	}
	st, err := os.Stat(base)
	if err != nil {
		return nil, errors.NewConfigError("base", base, err)
	}
	if !st.IsDir() {
		return nil, errors.NewConfigError("base", base, fmt.Errorf("not a directory"))
	}
	if err := ValidatePatterns("include", opts.Include); err != nil {
		return nil, err
	}
	if err := ValidatePatterns("exclude", opts.Exclude); err != nil {
		return nil, err
	}

	// Check cancellation before starting walk
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	exclude := make([]string, 0, len(opts.Exclude))
	for _, p := range opts.Exclude {
		exclude = append(exclude, strings.TrimPrefix(p, "!"))
	}
	ignPath := opts.IgnoreFile
	if ignPath == "" {
		ignPath = filepath.Join(base, IgnoreFileName)
	}
	if extra, err := loadIgnoreFile(ignPath); err == nil {
		if err := ValidatePatterns("ignore_file", extra); err != nil {
			return nil, err
		}
		exclude = append(exclude, extra...)
	}

	var files []FileInfo

	err = filepath.Walk(base, func(path string, info os.FileInfo, walkErr error) error {
		// Check context cancellation periodically during walk
		if err := ctx.Err(); err != nil {
			return err
		}

		if walkErr != nil {
			if opts.OnSkip != nil {
				opts.OnSkip(errors.NewFileError("walk", path, walkErr))
			}
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, _ := filepath.Rel(base, path)
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if rel != "." && shouldSkipDir(info.Name(), rel, exclude) {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() || hasIgnoredSuffix(info.Name()) {
			return nil
		}

		l, ok := lang.LanguageForExtension(filepath.Ext(path))
		if !ok {
			return nil
		}
		if len(opts.Include) > 0 && !matchesAny(opts.Include, rel) {
			return nil
		}
		if matchesAny(exclude, rel) {
			return nil
		}
		files = append(files, FileInfo{Path: path, RelPath: rel, Language: l})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// FromPaths builds FileInfos for explicitly named files. Paths with an
// unsupported extension come back as errors instead.
func FromPaths(base string, paths []string) ([]FileInfo, []error) {
	absBase, _ := filepath.Abs(base)
	var files []FileInfo
	var skipped []error
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(absBase, p)
		}
		abs = filepath.Clean(abs)
		if seen[abs] {
			continue
		}
		seen[abs] = true
		l, ok := lang.LanguageForExtension(filepath.Ext(abs))
		if !ok {
			skipped = append(skipped, errors.NewParseError(p, 0, 0, fmt.Errorf("unsupported file extension %q", filepath.Ext(abs))))
			continue
		}
		rel, err := filepath.Rel(absBase, abs)
		if err != nil || strings.HasPrefix(rel, "..") {
			rel = abs
		}
		files = append(files, FileInfo{Path: abs, RelPath: filepath.ToSlash(rel), Language: l})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, skipped
}

func loadIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, strings.TrimPrefix(line, "!"))
		}
	}
	return patterns, scanner.Err()
}
