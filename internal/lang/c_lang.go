package lang

func init() {
	Register(&LanguageSpec{
		Language:       C,
		FileExtensions: []string{".c", ".h"},
		Calls: []CallSpec{
			{Kind: "call_expression", CalleeField: "function", ArgumentsField: "arguments"},
		},
		Members: []MemberSpec{
			{Kind: "field_expression", PropertyField: "field"},
		},
		IdentifierNodeTypes: []string{"identifier", "field_identifier"},
		ArgumentListTypes:   []string{"argument_list"},
		SkipArgumentTypes:   []string{"comment"},
		StringNodeTypes:     []string{"string_literal"},
		StringPartTypes:     []string{"string_content", "escape_sequence"},
		ConcatNodeTypes:     []string{"concatenated_string"},
		Unquote:             unquoteC,
	})
}
