package lang

func init() {
	Register(&LanguageSpec{
		Language:       CSharp,
		FileExtensions: []string{".cs"},
		Calls: []CallSpec{
			{Kind: "invocation_expression", CalleeField: "function", ArgumentsField: "arguments"},
		},
		Members: []MemberSpec{
			{Kind: "member_access_expression", PropertyField: "name"},
		},
		IdentifierNodeTypes:  []string{"identifier"},
		ArgumentListTypes:    []string{"argument_list"},
		ArgumentWrapperTypes: []string{"argument"},
		SkipArgumentTypes:    []string{"comment"},
		// $"..." is an interpolated_string_expression and never a literal
		StringNodeTypes: []string{"string_literal", "verbatim_string_literal", "raw_string_literal"},
		StringPartTypes: []string{
			"string_literal_content",
			"escape_sequence",
			"string_literal_encoding",
			"raw_string_start",
			"raw_string_content",
			"raw_string_end",
		},
		Unquote: unquoteCSharp,
	})
}
