package config

import (
	"fmt"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/DeusData/i18n-extract/internal/registry"
)

// parseKDL reads the KDL form:
//
//	base "src"
//	include "**/*.ts" "**/*.tsx"
//	exclude "**/*.test.ts"
//	workers 4
//	functions {
//	    t { text 0 }
//	    tc { context 0; text 1; plural 2 }
//	}
func parseKDL(content string) (*Config, error) {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	cfg := &Config{}
	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "base":
			if s, ok := firstStringArg(n); ok {
				cfg.Base = s
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = append(cfg.Exclude, collectStringArgs(n)...)
		case "workers":
			if v, ok := firstIntArg(n); ok {
				cfg.Workers = v
			}
		case "lenient":
			if v, ok := firstBoolArg(n); ok {
				cfg.Lenient = v
			}
		case "database":
			if s, ok := firstStringArg(n); ok {
				cfg.Database = s
			}
		case "metrics_file":
			if s, ok := firstStringArg(n); ok {
				cfg.MetricsFile = s
			}
		case "similarity":
			if v, ok := firstFloatArg(n); ok {
				cfg.Similarity = v
			}
		case "functions":
			table, err := parseKDLFunctions(n)
			if err != nil {
				return nil, err
			}
			cfg.Functions = table
		}
	}
	return cfg, nil
}

func parseKDLFunctions(n *document.Node) (registry.Table, error) {
	table := make(registry.Table, len(n.Children))
	for _, fn := range n.Children {
		name := nodeName(fn)
		var spec registry.Spec
		for _, field := range fn.Children {
			v, ok := firstIntArg(field)
			if !ok {
				return nil, fmt.Errorf("functions.%s.%s: expected an integer", name, nodeName(field))
			}
			switch nodeName(field) {
			case "text":
				spec.Text = &v
			case "context":
				spec.Context = &v
			case "plural":
				spec.Plural = &v
			default:
				return nil, fmt.Errorf("functions.%s: unknown field %q", name, nodeName(field))
			}
		}
		table[name] = spec
	}
	return table, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case int:
		return v, true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func collectStringArgs(n *document.Node) []string {
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	// block form: exclude { "a/**"; "b/**" }
	if len(out) == 0 {
		for _, child := range n.Children {
			if child.Name == nil {
				continue
			}
			if s, ok := child.Name.Value.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}
