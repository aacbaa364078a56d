package lang

func init() {
	Register(&LanguageSpec{
		Language:       Go,
		FileExtensions: []string{".go"},
		Calls: []CallSpec{
			{Kind: "call_expression", CalleeField: "function", ArgumentsField: "arguments"},
		},
		Members: []MemberSpec{
			{Kind: "selector_expression", PropertyField: "field"},
		},
		IdentifierNodeTypes: []string{"identifier", "field_identifier"},
		ArgumentListTypes:   []string{"argument_list"},
		SkipArgumentTypes:   []string{"comment"},
		StringNodeTypes:     []string{"interpreted_string_literal", "raw_string_literal"},
		StringPartTypes: []string{
			"interpreted_string_literal_content",
			"raw_string_literal_content",
			"escape_sequence",
		},
		Unquote: unquoteGo,
	})
}
