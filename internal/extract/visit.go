package extract

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/i18n-extract/internal/catalog"
	"github.com/DeusData/i18n-extract/internal/errors"
	"github.com/DeusData/i18n-extract/internal/lang"
	"github.com/DeusData/i18n-extract/internal/parser"
	"github.com/DeusData/i18n-extract/internal/registry"
)

// Usage is one accepted marker call.
type Usage struct {
	Function  string
	Candidate catalog.Candidate
	Line      uint
	Column    uint
}

// FileResult is everything one file contributes to a catalog. It is built
// without touching shared state so files can be processed in parallel.
type FileResult struct {
	Path     string
	Language lang.Language
	Hash     string
	Usages   []Usage
	// Skipped counts matched calls whose text argument was not a literal.
	Skipped int
	// Recovered is set when the tree had syntax errors and was walked anyway.
	Recovered bool
}

// Apply merges the file into c: one parsed file, then every usage in
// traversal order.
func (fr *FileResult) Apply(c *catalog.Catalog) {
	c.MarkParsed(fr.Path)
	for i := range fr.Usages {
		c.Insert(fr.Usages[i].Function, fr.Usages[i].Candidate, fr.Path)
	}
}

// Options tune File.
type Options struct {
	// Lenient walks trees that contain syntax errors instead of rejecting them.
	Lenient bool
}

// File parses source as the language implied by path's extension and
// collects its marker calls. A tree that cannot be produced, or that has
// syntax errors while not lenient, yields a ParseError.
func File(path string, source []byte, reg *registry.Registry, opts Options) (*FileResult, error) {
	spec := lang.ForExtension(filepath.Ext(path))
	if spec == nil {
		return nil, errors.NewParseError(path, 0, 0, fmt.Errorf("unsupported file extension %q", filepath.Ext(path)))
	}
	tree, err := parser.Parse(spec.Language, source)
	if err != nil {
		return nil, errors.NewParseError(path, 0, 0, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	fr := &FileResult{Path: path, Language: spec.Language}
	if bad := parser.FirstError(root); bad != nil {
		if !opts.Lenient {
			pos := bad.StartPosition()
			return nil, errors.NewParseError(path, int(pos.Row)+1, int(pos.Column)+1,
				fmt.Errorf("syntax error near %q", snippet(parser.NodeText(bad, source))))
		}
		fr.Recovered = true
	}
	fr.Usages, fr.Skipped = Visit(path, root, source, spec, reg)
	return fr, nil
}

// Visit walks the tree post-order, so nested calls are seen before the call
// that contains them, and returns the accepted usages.
func Visit(path string, root *tree_sitter.Node, source []byte, spec *lang.LanguageSpec, reg *registry.Registry) ([]Usage, int) {
	var usages []Usage
	skipped := 0
	parser.WalkPost(root, func(n *tree_sitter.Node) {
		site, ok := ResolveCall(n, source, spec)
		if !ok || site.Shape == lang.ShapeOther {
			return
		}
		sig, ok := reg.Lookup(site.Name)
		if !ok {
			return
		}
		cand, ok := Extract(sig, &site)
		if !ok {
			skipped++
			slog.Debug("extract.skip", "path", path, "function", site.Name, "line", site.Line)
			return
		}
		usages = append(usages, Usage{Function: site.Name, Candidate: cand, Line: site.Line, Column: site.Column})
	})
	return usages, skipped
}

// snippet shortens s to at most 24 bytes without splitting a rune.
func snippet(s string) string {
	limit := 24
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit] + "..."
}
