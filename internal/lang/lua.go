package lang

func init() {
	Register(&LanguageSpec{
		Language:       Lua,
		FileExtensions: []string{".lua"},
		Calls: []CallSpec{
			{Kind: "function_call", CalleeField: "name", ArgumentsField: "arguments"},
		},
		Members: []MemberSpec{
			{Kind: "dot_index_expression", PropertyField: "field"},
			{Kind: "method_index_expression", PropertyField: "method"},
		},
		IdentifierNodeTypes: []string{"identifier"},
		// f"x" and f{...} forms carry their single argument inside the same node kind
		ArgumentListTypes: []string{"arguments"},
		SkipArgumentTypes: []string{"comment"},
		StringNodeTypes:   []string{"string"},
		StringPartTypes:   []string{"string_content", "escape_sequence"},
		Unquote:           unquoteLua,
	})
}
