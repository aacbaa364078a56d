// Package registry maps translation marker function names to the argument
// positions that hold the message text, context and plural form.
package registry

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/DeusData/i18n-extract/internal/errors"
)

// NoIndex marks an optional argument position that is not configured.
const NoIndex = -1

// Signature tells the extractor where a marker function keeps its arguments.
type Signature struct {
	Name    string
	Text    int
	Context int
	Plural  int
}

func (s Signature) HasContext() bool { return s.Context != NoIndex }
func (s Signature) HasPlural() bool  { return s.Plural != NoIndex }

// Spec is one entry of an external function table:
//
//	{"t": {"text": 0}, "tc": {"context": 0, "text": 1, "plural": 2}}
//
// Unset fields stay nil so a missing text index can be told apart from 0.
type Spec struct {
	Text    *int `yaml:"text" json:"text,omitempty" toml:"text,omitempty"`
	Context *int `yaml:"context,omitempty" json:"context,omitempty" toml:"context,omitempty"`
	Plural  *int `yaml:"plural,omitempty" json:"plural,omitempty" toml:"plural,omitempty"`
}

// Table is a function table keyed by function name.
type Table map[string]Spec

// Registry is an immutable name -> Signature lookup.
type Registry struct {
	sigs map[string]Signature
}

func idx(i int) *int { return &i }

// DefaultTable returns the gettext family signatures.
func DefaultTable() Table {
	return Table{
		"gettext":   {Text: idx(0)},
		"ngettext":  {Text: idx(0), Plural: idx(1)},
		"pgettext":  {Context: idx(0), Text: idx(1)},
		"npgettext": {Context: idx(0), Text: idx(1), Plural: idx(2)},
	}
}

// Default returns the registry used when no function table is configured.
func Default() *Registry {
	r, err := New(DefaultTable())
	if err != nil {
		panic(fmt.Sprintf("default registry: %v", err))
	}
	return r
}

// New validates a table and builds a Registry from it. The table replaces
// the defaults wholesale. Every entry needs a text index and all indices must
// be non-negative; violations are reported as a ConfigError.
func New(table Table) (*Registry, error) {
	if len(table) == 0 {
		return nil, errors.NewConfigError("functions", "", fmt.Errorf("function table is empty"))
	}
	sigs := make(map[string]Signature, len(table))
	for _, name := range sortedKeys(table) {
		spec := table[name]
		if name == "" {
			return nil, errors.NewConfigError("functions", name, fmt.Errorf("empty function name"))
		}
		if spec.Text == nil {
			return nil, errors.NewConfigError("functions."+name+".text", "", fmt.Errorf("text index is required"))
		}
		sig := Signature{Name: name, Text: *spec.Text, Context: NoIndex, Plural: NoIndex}
		if spec.Context != nil {
			sig.Context = *spec.Context
		}
		if spec.Plural != nil {
			sig.Plural = *spec.Plural
		}
		if err := checkIndex(name, "text", sig.Text); err != nil {
			return nil, err
		}
		if spec.Context != nil {
			if err := checkIndex(name, "context", sig.Context); err != nil {
				return nil, err
			}
		}
		if spec.Plural != nil {
			if err := checkIndex(name, "plural", sig.Plural); err != nil {
				return nil, err
			}
		}
		sigs[name] = sig
	}
	return &Registry{sigs: sigs}, nil
}

func checkIndex(name, field string, v int) error {
	if v < 0 {
		return errors.NewConfigError(fmt.Sprintf("functions.%s.%s", name, field), fmt.Sprint(v),
			fmt.Errorf("argument index must be non-negative"))
	}
	return nil
}

// Parse decodes a JSON or YAML function table.
func Parse(data []byte) (*Registry, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, errors.NewConfigError("functions", "", err)
	}
	return New(table)
}

// Load reads a JSON or YAML function table from path.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("functions", path, err)
	}
	return Parse(data)
}

// Lookup returns the signature registered for name.
func (r *Registry) Lookup(name string) (Signature, bool) {
	sig, ok := r.sigs[name]
	return sig, ok
}

// Len returns the number of registered functions.
func (r *Registry) Len() int { return len(r.sigs) }

// Names returns the registered function names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sigs))
	for name := range r.sigs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Signatures returns all signatures sorted by name.
func (r *Registry) Signatures() []Signature {
	out := make([]Signature, 0, len(r.sigs))
	for _, name := range r.Names() {
		out = append(out, r.sigs[name])
	}
	return out
}

// Table converts the registry back into its external form.
func (r *Registry) Table() Table {
	t := make(Table, len(r.sigs))
	for name, sig := range r.sigs {
		spec := Spec{Text: idx(sig.Text)}
		if sig.HasContext() {
			spec.Context = idx(sig.Context)
		}
		if sig.HasPlural() {
			spec.Plural = idx(sig.Plural)
		}
		t[name] = spec
	}
	return t
}

func sortedKeys(t Table) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
