package lang

// Language represents a supported programming language.
type Language string

const (
	Python     Language = "python"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	TSX        Language = "tsx"
	Go         Language = "go"
	PHP        Language = "php"
	Ruby       Language = "ruby"
	Lua        Language = "lua"
	C          Language = "c"
	CPP        Language = "cpp"
	Java       Language = "java"
	Rust       Language = "rust"
	CSharp     Language = "csharp"
)

// AllLanguages returns all supported languages.
func AllLanguages() []Language {
	return []Language{JavaScript, TypeScript, TSX, Python, Go, PHP, Ruby, Lua, C, CPP, Java, Rust, CSharp}
}

// CalleeShape classifies the callee expression of a call site.
type CalleeShape uint8

const (
	// ShapeOther is any callee that does not resolve to a plain name
	// (computed member access, a call result invoked again, ...).
	ShapeOther CalleeShape = iota
	// ShapeIdentifier is a plain call: f(...).
	ShapeIdentifier
	// ShapeMember is a member-access call: obj.f(...).
	ShapeMember
	// ShapeOptionalMember is an optional-chaining member call: obj?.f(...).
	ShapeOptionalMember
)

func (s CalleeShape) String() string {
	switch s {
	case ShapeIdentifier:
		return "identifier"
	case ShapeMember:
		return "member"
	case ShapeOptionalMember:
		return "optional_member"
	default:
		return "other"
	}
}

// CallSpec describes one call-site node kind.
type CallSpec struct {
	Kind string
	// CalleeField holds the callee expression, or directly the method name
	// when ReceiverField is set or Shape is fixed.
	CalleeField string
	// ReceiverField names the receiver for languages whose call node carries
	// it inline (Java object, Ruby receiver). A present receiver makes the
	// call a member call.
	ReceiverField string
	// OperatorField and OptionalOperator detect safe navigation on inline
	// receivers (Ruby "&.").
	OperatorField    string
	OptionalOperator string
	ArgumentsField   string
	// OptionalCallKind is the child kind of an optional call (JS "f?.()").
	// Such calls are never matched.
	OptionalCallKind string
	// Shape, when not ShapeOther, fixes the shape of every call of this kind
	// and CalleeField names the property directly (PHP member calls).
	Shape CalleeShape
}

// MemberSpec describes a callee expression that accesses a named property.
type MemberSpec struct {
	Kind          string
	PropertyField string
	// OptionalChainKind is the child kind marking optional chaining (JS "optional_chain").
	OptionalChainKind string
}

// LanguageSpec defines the tree-sitter node types for a language.
type LanguageSpec struct {
	Language       Language
	FileExtensions []string

	Calls   []CallSpec
	Members []MemberSpec
	// IdentifierNodeTypes lists node kinds accepted as a resolved callee name.
	IdentifierNodeTypes []string
	// QualifierSeparator trims a namespace prefix from identifiers ("\" for PHP).
	QualifierSeparator string

	// ArgumentListTypes lists the node kinds of a parenthesized argument list.
	// A call whose arguments field is anything else (a tagged template) is not a call site.
	ArgumentListTypes []string
	// ArgumentWrapperTypes wraps each argument in its own node (PHP "argument").
	ArgumentWrapperTypes []string
	// SkipArgumentTypes lists named children of an argument list that are not arguments.
	SkipArgumentTypes []string

	StringNodeTypes []string
	// StringPartTypes lists the only named children a string may have and
	// still count as a literal; anything else is interpolation.
	StringPartTypes []string
	// ConcatNodeTypes lists adjacent-literal concatenation kinds ("a" "b").
	ConcatNodeTypes []string
	// Unquote decodes the source text of a string literal node.
	Unquote func(raw string) (string, bool)
}

// CallSpecFor returns the CallSpec for a node kind, or nil.
func (s *LanguageSpec) CallSpecFor(kind string) *CallSpec {
	for i := range s.Calls {
		if s.Calls[i].Kind == kind {
			return &s.Calls[i]
		}
	}
	return nil
}

// MemberSpecFor returns the MemberSpec for a node kind, or nil.
func (s *LanguageSpec) MemberSpecFor(kind string) *MemberSpec {
	for i := range s.Members {
		if s.Members[i].Kind == kind {
			return &s.Members[i]
		}
	}
	return nil
}

// IsIdentifier reports whether kind names a plain identifier.
func (s *LanguageSpec) IsIdentifier(kind string) bool {
	return contains(s.IdentifierNodeTypes, kind)
}

func (s *LanguageSpec) IsArgumentList(kind string) bool {
	return contains(s.ArgumentListTypes, kind)
}

func (s *LanguageSpec) IsArgumentWrapper(kind string) bool {
	return contains(s.ArgumentWrapperTypes, kind)
}

func (s *LanguageSpec) IsSkippedArgument(kind string) bool {
	return contains(s.SkipArgumentTypes, kind)
}

func (s *LanguageSpec) IsString(kind string) bool {
	return contains(s.StringNodeTypes, kind)
}

func (s *LanguageSpec) IsStringPart(kind string) bool {
	return contains(s.StringPartTypes, kind)
}

func (s *LanguageSpec) IsConcat(kind string) bool {
	return contains(s.ConcatNodeTypes, kind)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// registry maps file extensions to language specs.
var registry = map[string]*LanguageSpec{}

// Register adds a LanguageSpec to the global registry.
func Register(spec *LanguageSpec) {
	for _, ext := range spec.FileExtensions {
		registry[ext] = spec
	}
}

// ForExtension returns the LanguageSpec for a file extension (e.g. ".go").
func ForExtension(ext string) *LanguageSpec {
	return registry[ext]
}

// ForLanguage returns the LanguageSpec for a language.
func ForLanguage(lang Language) *LanguageSpec {
	for _, spec := range registry {
		if spec.Language == lang {
			return spec
		}
	}
	return nil
}

// LanguageForExtension returns the Language for a file extension.
func LanguageForExtension(ext string) (Language, bool) {
	spec := registry[ext]
	if spec == nil {
		return "", false
	}
	return spec.Language, true
}
