package lang

func init() {
	Register(&LanguageSpec{
		Language:       Python,
		FileExtensions: []string{".py", ".pyi"},
		Calls: []CallSpec{
			{Kind: "call", CalleeField: "function", ArgumentsField: "arguments"},
		},
		Members: []MemberSpec{
			{Kind: "attribute", PropertyField: "attribute"},
		},
		IdentifierNodeTypes: []string{"identifier"},
		// generator_expression arguments (f(x for x in y)) are not call sites
		ArgumentListTypes: []string{"argument_list"},
		SkipArgumentTypes: []string{"comment"},
		StringNodeTypes:   []string{"string"},
		StringPartTypes:   []string{"string_start", "string_content", "string_end", "escape_sequence"},
		ConcatNodeTypes:   []string{"concatenated_string"},
		Unquote:           unquotePython,
	})
}
