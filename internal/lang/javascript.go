package lang

func init() {
	Register(ecmaScript(JavaScript, ".js", ".jsx", ".mjs", ".cjs"))
}

// ecmaScript builds the spec shared by the JavaScript, TypeScript and TSX grammars.
func ecmaScript(l Language, exts ...string) *LanguageSpec {
	return &LanguageSpec{
		Language:       l,
		FileExtensions: exts,
		Calls: []CallSpec{
			{Kind: "call_expression", CalleeField: "function", ArgumentsField: "arguments", OptionalCallKind: "optional_chain"},
		},
		Members: []MemberSpec{
			{Kind: "member_expression", PropertyField: "property", OptionalChainKind: "optional_chain"},
		},
		IdentifierNodeTypes: []string{"identifier", "property_identifier"},
		// tagged templates carry a template_string here and are not call sites
		ArgumentListTypes: []string{"arguments"},
		SkipArgumentTypes: []string{"comment"},
		// template_string is never a literal, even without substitutions
		StringNodeTypes: []string{"string"},
		StringPartTypes: []string{"string_fragment", "escape_sequence", "html_character_reference"},
		Unquote:         unquoteJS,
	}
}
