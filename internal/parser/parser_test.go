package parser

import (
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/i18n-extract/internal/lang"
)

func TestParseAllLanguages(t *testing.T) {
	sources := map[lang.Language]string{
		lang.JavaScript: `t("hello");`,
		lang.TypeScript: `const x: string = t("hello");`,
		lang.TSX:        `const el = <p>{t("hello")}</p>;`,
		lang.Python:     `_("hello")`,
		lang.Go:         "package main\n\nfunc main() { T(\"hello\") }\n",
		lang.PHP:        `<?php echo __("hello");`,
		lang.Ruby:       `t("hello")`,
		lang.Lua:        `t("hello")`,
		lang.C:          `int main(void) { return puts(_("hello")); }`,
		lang.CPP:        `int main() { return tr("hello").size(); }`,
		lang.Java:       `class A { void f() { tr("hello"); } }`,
		lang.Rust:       `fn main() { println!("{}", gettext("hello")); }`,
		lang.CSharp:     `class A { void F() { var s = catalog.GetString("hello"); } }`,
	}
	for l, src := range sources {
		tree, err := Parse(l, []byte(src))
		if err != nil {
			t.Fatalf("Parse %s: %v", l, err)
		}
		root := tree.RootNode()
		if root == nil {
			t.Fatalf("%s: root node is nil", l)
		}
		if root.HasError() {
			t.Errorf("%s: unexpected syntax error in %q", l, src)
		}
		tree.Close()
	}
}

func TestParseUnsupported(t *testing.T) {
	if _, err := Parse(lang.Language("cobol"), []byte("x")); err == nil {
		t.Fatal("expected error for unsupported language")
	}
	if _, err := GetLanguage(lang.Language("cobol")); err == nil {
		t.Fatal("expected error for unsupported language")
	}
}

func TestWalkPostOrder(t *testing.T) {
	source := []byte(`outer(inner("x"));`)
	tree, err := Parse(lang.JavaScript, source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer tree.Close()

	var calls []string
	WalkPost(tree.RootNode(), func(n *tree_sitter.Node) {
		if n.Kind() == "call_expression" {
			calls = append(calls, NodeText(n.ChildByFieldName("function"), source))
		}
	})
	if len(calls) != 2 || calls[0] != "inner" || calls[1] != "outer" {
		t.Errorf("post-order calls = %v, want [inner outer]", calls)
	}

	calls = nil
	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		if n.Kind() == "call_expression" {
			calls = append(calls, NodeText(n.ChildByFieldName("function"), source))
		}
		return true
	})
	if len(calls) != 2 || calls[0] != "outer" {
		t.Errorf("pre-order calls = %v, want [outer inner]", calls)
	}
}

func TestFirstError(t *testing.T) {
	good := []byte(`x = _("ok")`)
	tree, err := Parse(lang.Python, good)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if n := FirstError(tree.RootNode()); n != nil {
		t.Errorf("FirstError on valid source = %s", n.Kind())
	}
	tree.Close()

	bad := []byte("x = _(\"ok\"\ndef (:\n")
	tree, err = Parse(lang.Python, bad)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer tree.Close()
	if n := FirstError(tree.RootNode()); n == nil {
		t.Error("FirstError on broken source = nil")
	}
}
