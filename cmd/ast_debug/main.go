// Command ast_debug prints the syntax tree of a source file and every call
// site the extractor resolves in it. Useful when adding a language or
// checking why a marker call is not picked up.
//
//	go run ./cmd/ast_debug [-functions table.yaml] [-tree=false] file...
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/i18n-extract/internal/extract"
	"github.com/DeusData/i18n-extract/internal/lang"
	"github.com/DeusData/i18n-extract/internal/parser"
	"github.com/DeusData/i18n-extract/internal/registry"
)

func printAST(w io.Writer, node *tree_sitter.Node, source []byte, indent int) {
	if node == nil {
		return
	}
	prefix := strings.Repeat("  ", indent)
	field := ""
	if p := node.Parent(); p != nil {
		for i := uint(0); i < p.ChildCount(); i++ {
			if c := p.Child(i); c != nil && c.Id() == node.Id() {
				if name := p.FieldNameForChild(uint32(i)); name != "" {
					field = name + ": "
				}
				break
			}
		}
	}
	text := parser.NodeText(node, source)
	if len(text) > 60 {
		text = text[:60] + "..."
	}
	fmt.Fprintf(w, "%s%s%s %q\n", prefix, field, node.Kind(), text)
	for i := uint(0); i < node.ChildCount(); i++ {
		printAST(w, node.Child(i), source, indent+1)
	}
}

func printCalls(w io.Writer, root *tree_sitter.Node, source []byte, spec *lang.LanguageSpec, reg *registry.Registry) {
	parser.WalkPost(root, func(n *tree_sitter.Node) {
		site, ok := extract.ResolveCall(n, source, spec)
		if !ok {
			return
		}
		args := make([]string, len(site.Args))
		for i, a := range site.Args {
			if a.Literal {
				args[i] = fmt.Sprintf("%q", a.Value)
			} else {
				args[i] = "_"
			}
		}
		status := "ignored"
		if sig, ok := reg.Lookup(site.Name); ok && site.Shape != lang.ShapeOther {
			if cand, ok := extract.Extract(sig, &site); ok {
				status = fmt.Sprintf("message context=%q text=%q", cand.Context, cand.Text)
				if cand.HasPlural {
					status += fmt.Sprintf(" plural=%q", cand.Plural)
				}
			} else {
				status = "skipped (non-literal)"
			}
		}
		fmt.Fprintf(w, "%d:%d %s %s(%s) -> %s\n", site.Line, site.Column, site.Shape, site.Name, strings.Join(args, ", "), status)
	})
}

func dump(w io.Writer, path string, reg *registry.Registry, showTree bool) error {
	spec := lang.ForExtension(filepath.Ext(path))
	if spec == nil {
		return fmt.Errorf("%s: unsupported extension", path)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	tree, err := parser.Parse(spec.Language, source)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	fmt.Fprintf(w, "=== %s (%s) ===\n", path, spec.Language)
	if bad := parser.FirstError(root); bad != nil {
		pos := bad.StartPosition()
		fmt.Fprintf(w, "syntax error at %d:%d\n", pos.Row+1, pos.Column+1)
	}
	if showTree {
		printAST(w, root, source, 0)
		fmt.Fprintln(w, "--- calls ---")
	}
	printCalls(w, root, source, spec, reg)
	return nil
}

func main() {
	functions := flag.String("functions", "", "JSON or YAML function table (default: gettext family)")
	showTree := flag.Bool("tree", true, "print the syntax tree before the call sites")
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: ast_debug [-functions table] [-tree=false] file...")
		os.Exit(2)
	}

	reg := registry.Default()
	if *functions != "" {
		var err error
		if reg, err = registry.Load(*functions); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	}

	failed := false
	for _, path := range flag.Args() {
		if err := dump(os.Stdout, path, reg, *showTree); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
