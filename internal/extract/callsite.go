// Package extract recognizes translation marker calls in syntax trees and
// turns them into catalog candidates.
package extract

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/i18n-extract/internal/catalog"
	"github.com/DeusData/i18n-extract/internal/lang"
	"github.com/DeusData/i18n-extract/internal/parser"
	"github.com/DeusData/i18n-extract/internal/registry"
)

// Arg is one call argument. Value is set only for literal strings.
type Arg struct {
	Literal bool
	Value   string
}

// CallSite is a call node with its callee normalized to a single name.
// Name is empty when Shape is lang.ShapeOther.
type CallSite struct {
	Name   string
	Shape  lang.CalleeShape
	Args   []Arg
	Line   uint
	Column uint
}

func (c *CallSite) literal(i int) (string, bool) {
	if i < 0 || i >= len(c.Args) || !c.Args[i].Literal {
		return "", false
	}
	return c.Args[i].Value, true
}

// ResolveCall inspects node and reports whether it is a call site of spec's
// language: a call node kind with a parenthesized argument list.
func ResolveCall(node *tree_sitter.Node, source []byte, spec *lang.LanguageSpec) (CallSite, bool) {
	cs := spec.CallSpecFor(node.Kind())
	if cs == nil {
		return CallSite{}, false
	}
	args := node.ChildByFieldName(cs.ArgumentsField)
	if args == nil || !spec.IsArgumentList(args.Kind()) {
		return CallSite{}, false
	}
	r := resolver{spec: spec, source: source}
	pos := node.StartPosition()
	site := CallSite{Line: pos.Row + 1, Column: pos.Column + 1}
	site.Name, site.Shape = r.callee(node, cs)
	site.Args = r.arguments(args)
	return site, true
}

type resolver struct {
	spec   *lang.LanguageSpec
	source []byte
}

// callee folds the three supported callee shapes into one name.
func (r resolver) callee(node *tree_sitter.Node, cs *lang.CallSpec) (string, lang.CalleeShape) {
	callee := node.ChildByFieldName(cs.CalleeField)
	if callee == nil {
		return "", lang.ShapeOther
	}
	if cs.OptionalCallKind != "" && hasChildKind(node, cs.OptionalCallKind) {
		return "", lang.ShapeOther
	}
	switch {
	case cs.Shape != lang.ShapeOther:
		name, ok := r.ident(callee)
		if !ok {
			return "", lang.ShapeOther
		}
		return name, cs.Shape
	case cs.ReceiverField != "":
		name, ok := r.ident(callee)
		if !ok {
			return "", lang.ShapeOther
		}
		if node.ChildByFieldName(cs.ReceiverField) == nil {
			return name, lang.ShapeIdentifier
		}
		if cs.OperatorField != "" {
			if op := node.ChildByFieldName(cs.OperatorField); op != nil && parser.NodeText(op, r.source) == cs.OptionalOperator {
				return name, lang.ShapeOptionalMember
			}
		}
		return name, lang.ShapeMember
	default:
		return r.expr(callee)
	}
}

func (r resolver) expr(n *tree_sitter.Node) (string, lang.CalleeShape) {
	if name, ok := r.ident(n); ok {
		return name, lang.ShapeIdentifier
	}
	ms := r.spec.MemberSpecFor(n.Kind())
	if ms == nil {
		return "", lang.ShapeOther
	}
	prop := n.ChildByFieldName(ms.PropertyField)
	if prop == nil {
		return "", lang.ShapeOther
	}
	name, ok := r.ident(prop)
	if !ok {
		// a::b::f nests qualified names on the right
		if r.spec.MemberSpecFor(prop.Kind()) == nil {
			return "", lang.ShapeOther
		}
		var shape lang.CalleeShape
		if name, shape = r.expr(prop); shape == lang.ShapeOther {
			return "", lang.ShapeOther
		}
	}
	if ms.OptionalChainKind != "" && hasChildKind(n, ms.OptionalChainKind) {
		return name, lang.ShapeOptionalMember
	}
	return name, lang.ShapeMember
}

func (r resolver) ident(n *tree_sitter.Node) (string, bool) {
	if !r.spec.IsIdentifier(n.Kind()) {
		return "", false
	}
	name := parser.NodeText(n, r.source)
	if sep := r.spec.QualifierSeparator; sep != "" {
		if i := strings.LastIndex(name, sep); i >= 0 {
			name = name[i+len(sep):]
		}
	}
	return name, name != ""
}

func (r resolver) arguments(list *tree_sitter.Node) []Arg {
	var out []Arg
	for i := uint(0); i < list.NamedChildCount(); i++ {
		child := list.NamedChild(i)
		if child == nil || child.IsExtra() || r.spec.IsSkippedArgument(child.Kind()) {
			continue
		}
		out = append(out, r.argument(child))
	}
	return out
}

func (r resolver) argument(n *tree_sitter.Node) Arg {
	if r.spec.IsArgumentWrapper(n.Kind()) {
		// named arguments do not bind to a position
		if n.ChildByFieldName("name") != nil || n.NamedChildCount() == 0 {
			return Arg{}
		}
		n = n.NamedChild(n.NamedChildCount() - 1)
		if n == nil {
			return Arg{}
		}
	}
	v, ok := r.literal(n)
	return Arg{Literal: ok, Value: v}
}

// literal decodes n when it is a string literal without interpolation, or
// an implicit concatenation of such literals.
func (r resolver) literal(n *tree_sitter.Node) (string, bool) {
	kind := n.Kind()
	switch {
	case r.spec.IsString(kind):
		for i := uint(0); i < n.NamedChildCount(); i++ {
			part := n.NamedChild(i)
			if part == nil || part.IsExtra() {
				continue
			}
			if !r.spec.IsStringPart(part.Kind()) {
				return "", false
			}
		}
		return r.spec.Unquote(parser.NodeText(n, r.source))
	case r.spec.IsConcat(kind):
		var b strings.Builder
		parts := 0
		for i := uint(0); i < n.NamedChildCount(); i++ {
			part := n.NamedChild(i)
			if part == nil || part.IsExtra() {
				continue
			}
			v, ok := r.literal(part)
			if !ok {
				return "", false
			}
			b.WriteString(v)
			parts++
		}
		return b.String(), parts > 0
	}
	return "", false
}

func hasChildKind(n *tree_sitter.Node, kind string) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil && c.Kind() == kind {
			return true
		}
	}
	return false
}

// Extract applies sig to a call site. The text argument must be a literal
// or the call is rejected; a missing or dynamic context or plural argument
// only leaves that field empty.
func Extract(sig registry.Signature, site *CallSite) (catalog.Candidate, bool) {
	text, ok := site.literal(sig.Text)
	if !ok {
		return catalog.Candidate{}, false
	}
	cand := catalog.Candidate{Text: text}
	if sig.HasContext() {
		if v, ok := site.literal(sig.Context); ok {
			cand.Context = v
		}
	}
	if sig.HasPlural() {
		if v, ok := site.literal(sig.Plural); ok {
			cand.Plural = v
			cand.HasPlural = true
		}
	}
	return cand, true
}
